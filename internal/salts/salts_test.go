package salts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseListSkipsBlankAndCommentLines(t *testing.T) {
	input := "salt-one\n\n# a comment\n  salt-two  \n#another\nsalt-three\n"
	got, err := ParseList(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"salt-one", "salt-two", "salt-three"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	list, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if list != nil {
		t.Fatalf("expected nil list for missing file, got %v", list)
	}
}

func TestLoadFileParsesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salts.txt")
	if err := os.WriteFile(path, []byte("alpha\nbeta\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0] != "alpha" || list[1] != "beta" {
		t.Fatalf("unexpected list: %v", list)
	}
}

type stubFetcher struct {
	salts []string
	err   error
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) ([]string, error) {
	return s.salts, s.err
}

func TestLoadPrefersLocalOverRemote(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salts.txt")
	if err := os.WriteFile(path, []byte("local-salt\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(context.Background(), LoadOptions{
		FilePath: path,
		URL:      "https://example.invalid/salts.txt",
		Fetcher:  &stubFetcher{salts: []string{"remote-salt"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "local-salt" {
		t.Fatalf("expected local salt to take priority, got %v", got)
	}
}

func TestLoadFallsBackToRemoteWhenLocalEmpty(t *testing.T) {
	got, err := Load(context.Background(), LoadOptions{
		FilePath: filepath.Join(t.TempDir(), "missing.txt"),
		URL:      "https://example.invalid/salts.txt",
		Fetcher:  &stubFetcher{salts: []string{"remote-salt"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "remote-salt" {
		t.Fatalf("expected remote fallback, got %v", got)
	}
}

func TestLoadWithNoSourcesReturnsEmpty(t *testing.T) {
	got, err := Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}
