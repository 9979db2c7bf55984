package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	itperrors "github.com/shaggyze/itpack/internal/errors"
	"github.com/shaggyze/itpack/internal/fileops"
	"github.com/spf13/cobra"
)

var extractFlags struct {
	output     string
	salt       string
	saltsFile  string
	saltsURL   string
	retries    int
	filters    []string
	parallel   int
	quiet      bool
}

var extractCmd = &cobra.Command{
	Use:   "extract <archive.it>",
	Short: "Extract a .it archive into a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFlags.output, "output", "o", "", "output directory (default: archive name without .it)")
	extractCmd.Flags().StringVarP(&extractFlags.salt, "salt", "s", "", "salt to try first")
	extractCmd.Flags().StringVar(&extractFlags.saltsFile, "salts-file", "salts.txt", "path to a local candidate salt list")
	extractCmd.Flags().StringVar(&extractFlags.saltsURL, "salts-url", "", "URL to fetch a candidate salt list from, used when --salts-file is missing or empty")
	extractCmd.Flags().IntVar(&extractFlags.retries, "salts-retries", 3, "retry count for --salts-url fetches")
	extractCmd.Flags().StringSliceVarP(&extractFlags.filters, "filter", "f", nil, "regular expression; only matching entry names are extracted (repeatable)")
	extractCmd.Flags().IntVarP(&extractFlags.parallel, "parallel", "p", 1, "number of entries to extract concurrently")
	extractCmd.Flags().BoolVarP(&extractFlags.quiet, "quiet", "q", false, "suppress the progress bar")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	archivePath := args[0]

	outputDir := extractFlags.output
	if outputDir == "" {
		outputDir = strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	}

	candidates, err := loadSalts(extractFlags.saltsFile, extractFlags.saltsURL, extractFlags.retries)
	if err != nil {
		return err
	}
	if extractFlags.salt == "" && len(candidates) == 0 {
		return fmt.Errorf("extract: %w; use --salt or --salts-file/--salts-url", itperrors.ErrNoSalt)
	}

	// Total byte count isn't known until the archive's entry table is
	// found and decrypted, which NewReporter's caller can't do ahead of
	// fileops.Extract; -1 renders as an indeterminate spinner bar.
	reporter := NewReporter(-1, "searching", extractFlags.quiet)
	defer reporter.Finish()

	result, err := fileops.Extract(fileops.ExtractOptions{
		ArchivePath: archivePath,
		OutputDir:   outputDir,
		CLISalt:     extractFlags.salt,
		Salts:       candidates,
		Filters:     extractFlags.filters,
		Parallel:    extractFlags.parallel,
		Progress:    reporter.Progress,
		Status:      reporter.Status,
		Cancel:      reporter.Cancel,
	})
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	log.Info().
		Str("salt", result.HeaderSalt).
		Int("entries", len(result.Entries)).
		Str("output", outputDir).
		Msg("extract complete")
	return nil
}
