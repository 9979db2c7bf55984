package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shaggyze/itpack/internal/fileops"
)

func TestReporterQuietDoesNotPanic(t *testing.T) {
	r := NewReporter(100, "testing", true)
	r.Progress(0.5, "halfway")
	r.Status("still going")
	if r.Cancel() {
		t.Fatal("expected Cancel() to be false with no cancelState installed")
	}
	r.Finish()
}

func TestReporterUnknownTotalDoesNotPanic(t *testing.T) {
	r := NewReporter(-1, "searching", false)
	r.Progress(0.25, "probing")
	r.Finish()
}

func TestCancelState(t *testing.T) {
	cs := newCancelState()
	if cs.isCancelled() {
		t.Fatal("expected fresh cancelState to be uncancelled")
	}
	cs.cancel()
	if !cs.isCancelled() {
		t.Fatal("expected cancelState to report cancelled after cancel()")
	}
}

func TestPackExtractListViaFileops(t *testing.T) {
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "note.txt"), []byte("hello from cli test"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := fileops.Scan(srcDir)
	if err != nil {
		t.Fatal(err)
	}

	archivePath := filepath.Join(t.TempDir(), "bundle.it")
	if err := fileops.Pack(fileops.PackOptions{
		Files:      files,
		RootDir:    srcDir,
		OutputPath: archivePath,
		Salt:       "cli-test-salt",
	}); err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	result, err := fileops.Extract(fileops.ExtractOptions{
		ArchivePath: archivePath,
		OutputDir:   outDir,
		Salts:       []string{"cli-test-salt"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(result.Entries))
	}

	got, err := os.ReadFile(filepath.Join(outDir, "note.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello from cli test" {
		t.Fatalf("content mismatch: %q", got)
	}
}
