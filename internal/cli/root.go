// Package cli provides command-line interface functionality for itpack.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	itperrors "github.com/shaggyze/itpack/internal/errors"
	"github.com/spf13/cobra"
)

// Version is set by main.go.
var Version = "dev"

var verbosity int

var rootCmd = &cobra.Command{
	Use:   "itpack",
	Short: "Read and write .it encrypted archive containers",
	Long: `itpack lists, extracts, and creates .it archive containers: files
whose header, entry table, and payload are each obscured by a
keyed SNOW-2 stream cipher and a filename/salt-derived key and
offset scheme. Because the container does not record which salt
produced it, reading one generally means searching a candidate
salt list until a header and entry table both validate.`,
	Version:           Version,
	PersistentPreRunE: setupLogging,
}

var globalCancel *cancelState

// Execute runs the itpack CLI, returning the process exit code.
func Execute(version string) int {
	Version = version
	rootCmd.Version = version

	globalCancel = newCancelState()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		globalCancel.cancel()
		fmt.Fprintln(os.Stderr, "\ncancelling...")
	}()

	if err := rootCmd.Execute(); err != nil {
		if itperrors.IsCancelled(err) {
			return 1
		}
		var fileErr *itperrors.FileError
		if itperrors.As(err, &fileErr) {
			log.Error().Str("op", fileErr.Op).Str("path", fileErr.Path).Err(fileErr.Err).Msg("failed")
		} else {
			log.Error().Err(err).Msg("failed")
		}
		return 1
	}
	return 0
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := zerolog.WarnLevel
	switch {
	case verbosity >= 2:
		level = zerolog.TraceLevel
	case verbosity == 1:
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).Level(level)
	return nil
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")
}
