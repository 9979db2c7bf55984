package cli

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	itperrors "github.com/shaggyze/itpack/internal/errors"
	"github.com/shaggyze/itpack/internal/fileops"
	"github.com/shaggyze/itpack/internal/payload"
	"github.com/spf13/cobra"
)

var packFlags struct {
	output     string
	salt       string
	noCompress bool
	extensions []string
	quiet      bool
	force      bool
}

var packCmd = &cobra.Command{
	Use:   "pack <directory>",
	Short: "Create a .it archive from a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runPack,
}

func init() {
	packCmd.Flags().StringVarP(&packFlags.output, "output", "o", "", "output .it path (default: <directory>.it)")
	packCmd.Flags().StringVarP(&packFlags.salt, "salt", "s", "", "salt string to key the archive with (required)")
	packCmd.Flags().BoolVar(&packFlags.noCompress, "no-compress", false, "disable compression regardless of extension")
	packCmd.Flags().StringSliceVar(&packFlags.extensions, "compress-ext", payload.DefaultCompressionExtensions, "file extensions eligible for compression")
	packCmd.Flags().BoolVarP(&packFlags.quiet, "quiet", "q", false, "suppress the progress bar")
	packCmd.Flags().BoolVarP(&packFlags.force, "force", "f", false, "overwrite an existing output archive")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	rootDir := args[0]

	if packFlags.salt == "" {
		return fmt.Errorf("pack: --salt is required")
	}

	outputPath := packFlags.output
	if outputPath == "" {
		outputPath = filepath.Clean(rootDir) + ".it"
	}

	files, err := fileops.Scan(rootDir)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("pack: %s: %w", rootDir, itperrors.ErrNoInputFiles)
	}
	log.Info().Int("files", len(files)).Str("output", outputPath).Msg("packing")

	var extensions payload.Extensions
	if !packFlags.noCompress {
		extensions = payload.NewExtensions(packFlags.extensions)
	}

	reporter := NewReporter(int64(len(files)), "packing", packFlags.quiet)
	defer reporter.Finish()

	err = fileops.Pack(fileops.PackOptions{
		Files:      files,
		RootDir:    rootDir,
		OutputPath: outputPath,
		Salt:       packFlags.salt,
		Extensions: extensions,
		Overwrite:  packFlags.force,
		Progress:   reporter.Progress,
		Status:     reporter.Status,
		Cancel:     reporter.Cancel,
	})
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}

	log.Info().Str("output", outputPath).Msg("pack complete")
	return nil
}
