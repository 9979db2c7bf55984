package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shaggyze/itpack/internal/archive"
	itperrors "github.com/shaggyze/itpack/internal/errors"
	"github.com/shaggyze/itpack/internal/search"
	"github.com/spf13/cobra"
)

var listFlags struct {
	salt      string
	saltsFile string
	saltsURL  string
	retries   int
	output    string
}

var listCmd = &cobra.Command{
	Use:   "list <archive.it>",
	Short: "List entries in a .it archive without extracting them",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listFlags.salt, "salt", "s", "", "salt to try first")
	listCmd.Flags().StringVar(&listFlags.saltsFile, "salts-file", "salts.txt", "path to a local candidate salt list")
	listCmd.Flags().StringVar(&listFlags.saltsURL, "salts-url", "", "URL to fetch a candidate salt list from, used when --salts-file is missing or empty")
	listCmd.Flags().IntVar(&listFlags.retries, "salts-retries", 3, "retry count for --salts-url fetches")
	listCmd.Flags().StringVarP(&listFlags.output, "output", "o", "", "write the listing here instead of stdout")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	archivePath := args[0]

	candidates, err := loadSalts(listFlags.saltsFile, listFlags.saltsURL, listFlags.retries)
	if err != nil {
		return err
	}
	if listFlags.salt != "" {
		candidates = append([]string{listFlags.salt}, candidates...)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("list: %w; use --salt or --salts-file/--salts-url", itperrors.ErrNoSalt)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer f.Close()

	result, err := search.Find(f, filepath.Base(archivePath), candidates)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	var out io.Writer = os.Stdout
	if listFlags.output != "" {
		file, err := os.Create(listFlags.output)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		defer file.Close()
		out = file
	}

	w := bufio.NewWriter(out)
	for _, e := range result.Entries {
		fmt.Fprintf(w, "%s\t%d\t%s\n", e.Name, e.OriginalSize, describeFlags(e))
	}
	return w.Flush()
}

func describeFlags(e archive.Entry) string {
	var s string
	if e.AllEncrypted() {
		s += "E"
	}
	if e.HeadEncrypted() {
		s += "H"
	}
	if e.Compressed() {
		s += "C"
	}
	if s == "" {
		s = "-"
	}
	return s
}
