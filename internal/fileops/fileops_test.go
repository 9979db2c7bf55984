package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/shaggyze/itpack/internal/archive"
	itperrors "github.com/shaggyze/itpack/internal/errors"
	"github.com/shaggyze/itpack/internal/payload"
)

func writeTestFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPackExtractRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	writeTestFile(t, srcDir, "readme.txt", "hello, this is readme content, repeated. "+
		"hello, this is readme content, repeated. hello, this is readme content, repeated.")
	writeTestFile(t, srcDir, "data/binary.dat", "\x00\x01\x02\x03binarydata")
	writeTestFile(t, srcDir, "nested/dir/nested.xml", "<root><child/></root>")

	files, err := Scan(srcDir)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)

	archivePath := filepath.Join(t.TempDir(), "bundle.it")
	err = Pack(PackOptions{
		Files:      files,
		RootDir:    srcDir,
		OutputPath: archivePath,
		Salt:       "test-salt",
		Extensions: payload.NewExtensions([]string{"txt", "xml"}),
	})
	if err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	result, err := Extract(ExtractOptions{
		ArchivePath: archivePath,
		OutputDir:   outDir,
		Salts:       []string{"test-salt"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(result.Entries))
	}

	for _, rel := range []string{"readme.txt", "data/binary.dat", "nested/dir/nested.xml"} {
		orig, err := os.ReadFile(filepath.Join(srcDir, rel))
		if err != nil {
			t.Fatal(err)
		}
		got, err := os.ReadFile(filepath.Join(outDir, rel))
		if err != nil {
			t.Fatalf("missing extracted file %s: %v", rel, err)
		}
		if string(got) != string(orig) {
			t.Fatalf("%s: content mismatch after round trip", rel)
		}
	}
}

func TestPackWritesCurrentVersion(t *testing.T) {
	srcDir := t.TempDir()
	writeTestFile(t, srcDir, "note.txt", "version check")

	files, err := Scan(srcDir)
	if err != nil {
		t.Fatal(err)
	}

	archivePath := filepath.Join(t.TempDir(), "bundle.it")
	if err := Pack(PackOptions{
		Files:      files,
		RootDir:    srcDir,
		OutputPath: archivePath,
		Salt:       "version-salt",
	}); err != nil {
		t.Fatal(err)
	}

	result, err := Extract(ExtractOptions{
		ArchivePath: archivePath,
		OutputDir:   t.TempDir(),
		Salts:       []string{"version-salt"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Header.Version != archive.CurrentVersion {
		t.Fatalf("got header version %d, want %d (archive.CurrentVersion)", result.Header.Version, archive.CurrentVersion)
	}
}

func TestPackRefusesToOverwriteByDefault(t *testing.T) {
	srcDir := t.TempDir()
	writeTestFile(t, srcDir, "note.txt", "content")

	files, err := Scan(srcDir)
	if err != nil {
		t.Fatal(err)
	}

	archivePath := filepath.Join(t.TempDir(), "bundle.it")
	opts := PackOptions{Files: files, RootDir: srcDir, OutputPath: archivePath, Salt: "s"}
	if err := Pack(opts); err != nil {
		t.Fatal(err)
	}

	err = Pack(opts)
	if !errors.Is(err, itperrors.ErrFileExists) {
		t.Fatalf("got %v, want ErrFileExists", err)
	}

	opts.Overwrite = true
	if err := Pack(opts); err != nil {
		t.Fatalf("Pack with Overwrite=true should succeed, got %v", err)
	}
}

func TestExtractMissingArchiveReturnsFileNotFound(t *testing.T) {
	_, err := Extract(ExtractOptions{
		ArchivePath: filepath.Join(t.TempDir(), "missing.it"),
		OutputDir:   t.TempDir(),
		Salts:       []string{"s"},
	})
	if !errors.Is(err, itperrors.ErrFileNotFound) {
		t.Fatalf("got %v, want ErrFileNotFound", err)
	}
}

func TestExtractUndersizedArchiveReturnsInvalidFormat(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "tiny.it")
	if err := os.WriteFile(archivePath, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Extract(ExtractOptions{
		ArchivePath: archivePath,
		OutputDir:   t.TempDir(),
		Salts:       []string{"s"},
	})
	if !errors.Is(err, itperrors.ErrInvalidFormat) {
		t.Fatalf("got %v, want ErrInvalidFormat", err)
	}
}

func TestPackExtractRoundTripParallel(t *testing.T) {
	srcDir := t.TempDir()
	for i := 0; i < 6; i++ {
		name := parallelTestFileName(i)
		writeTestFile(t, srcDir, name, name+" content body")
	}

	files, err := Scan(srcDir)
	if err != nil {
		t.Fatal(err)
	}

	archivePath := filepath.Join(t.TempDir(), "bundle.it")
	if err := Pack(PackOptions{
		Files:      files,
		RootDir:    srcDir,
		OutputPath: archivePath,
		Salt:       "parallel-salt",
	}); err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	result, err := Extract(ExtractOptions{
		ArchivePath: archivePath,
		OutputDir:   outDir,
		Salts:       []string{"parallel-salt"},
		Parallel:    4,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 6 {
		t.Fatalf("got %d entries, want 6", len(result.Entries))
	}
}

func parallelTestFileName(i int) string {
	const letters = "abcdefghijklmnop"
	return "file_" + string(letters[i%len(letters)]) + ".bin"
}

func TestExtractFiltersByName(t *testing.T) {
	srcDir := t.TempDir()
	writeTestFile(t, srcDir, "keep.txt", "keep me")
	writeTestFile(t, srcDir, "skip.bin", "skip me")

	files, err := Scan(srcDir)
	if err != nil {
		t.Fatal(err)
	}
	archivePath := filepath.Join(t.TempDir(), "bundle.it")
	if err := Pack(PackOptions{Files: files, RootDir: srcDir, OutputPath: archivePath, Salt: "s"}); err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	result, err := Extract(ExtractOptions{
		ArchivePath: archivePath,
		OutputDir:   outDir,
		Salts:       []string{"s"},
		Filters:     []string{`^keep\.txt$`},
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = result

	if _, err := os.Stat(filepath.Join(outDir, "keep.txt")); err != nil {
		t.Fatal("expected keep.txt to be extracted")
	}
	if _, err := os.Stat(filepath.Join(outDir, "skip.bin")); err == nil {
		t.Fatal("expected skip.bin to be filtered out")
	}
}
