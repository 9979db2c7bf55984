// Package salts loads the candidate salt strings internal/search
// probes an archive with: a local file first, and an optional remote
// list as a fallback when the local file is missing or empty. A missing
// local file or an empty list is not an error; a local file that
// cannot be read or parsed, or a failed remote fetch, is returned as
// one.
package salts

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// ParseList splits raw salt-list text into trimmed, non-empty,
// non-comment ("#"-prefixed) lines, in file order.
func ParseList(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

// LoadFile reads and parses a local salts file. A missing file is not
// an error: it returns a nil slice, since the caller may still have a
// remote source to fall back on.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("salts: open %s: %w", path, err)
	}
	defer f.Close()

	list, err := ParseList(f)
	if err != nil {
		return nil, fmt.Errorf("salts: parse %s: %w", path, err)
	}
	return list, nil
}

// Fetcher retrieves a salt list from a remote source, keeping
// internal/cli's orchestration independent of the transport.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]string, error)
}

// HTTPFetcher fetches a salt list over HTTP(S), retrying transient
// failures with exponential backoff.
type HTTPFetcher struct {
	client *retryablehttp.Client
}

// NewHTTPFetcher builds an HTTPFetcher with the given retry count. The
// client's Logger is set to nil, so retries are not logged.
func NewHTTPFetcher(maxRetries int) *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = maxRetries
	client.Logger = nil
	return &HTTPFetcher{client: client}
}

// Fetch downloads url and parses its body as a salt list.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("salts: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("salts: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("salts: fetch %s: unexpected status %s", url, resp.Status)
	}

	list, err := ParseList(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("salts: parse response from %s: %w", url, err)
	}
	return list, nil
}

// LoadOptions configures Load.
type LoadOptions struct {
	FilePath string  // local salts file path; "" disables the local source
	URL      string  // remote salt list URL; "" disables the remote source
	Fetcher  Fetcher // required when URL is set
}

// Load returns the local salt list if it is non-empty, otherwise falls
// back to fetching URL (when both are configured). It never returns an
// error for "no salts found" — an empty result is valid input to
// search.Find as long as the caller also supplies a CLI-provided salt.
func Load(ctx context.Context, opts LoadOptions) ([]string, error) {
	var local []string
	if opts.FilePath != "" {
		var err error
		local, err = LoadFile(opts.FilePath)
		if err != nil {
			return nil, err
		}
		if len(local) > 0 {
			return local, nil
		}
	}

	if opts.URL == "" {
		return local, nil
	}
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("salts: URL %q configured without a Fetcher", opts.URL)
	}

	remote, err := opts.Fetcher.Fetch(ctx, opts.URL)
	if err != nil {
		return local, err
	}
	return remote, nil
}
