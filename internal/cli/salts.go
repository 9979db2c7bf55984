package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/shaggyze/itpack/internal/salts"
)

// loadSalts assembles the candidate salt list for a command: the
// local file named by saltsFile (if any), falling back to saltsURL
// (if any) only when the file is missing or empty.
func loadSalts(saltsFile, saltsURL string, retries int) ([]string, error) {
	opts := salts.LoadOptions{FilePath: saltsFile, URL: saltsURL}
	if saltsURL != "" {
		opts.Fetcher = salts.NewHTTPFetcher(retries)
	}
	list, err := salts.Load(context.Background(), opts)
	if err != nil {
		log.Warn().Err(err).Msg("salts: remote fetch failed, continuing with local candidates only")
		return list, nil
	}
	log.Debug().Int("count", len(list)).Msg("salts: candidate list loaded")
	return list, nil
}
