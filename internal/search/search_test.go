package search

import (
	"bytes"
	"testing"

	"github.com/shaggyze/itpack/internal/archive"
	"github.com/shaggyze/itpack/internal/cipher"
	"github.com/shaggyze/itpack/internal/keyderiv"
)

// buildArchive writes a minimal valid header + entry table at the
// formula-derived offsets, the simplest case Find must solve.
func buildArchive(t *testing.T, name, salt string, entries []archive.Entry) []byte {
	t.Helper()

	headerOffset := keyderiv.HeaderOffset(name)
	entriesOffset := headerOffset + keyderiv.EntriesOffset(name)

	buf := make([]byte, entriesOffset)

	headerKey := keyderiv.HeaderKey(name, salt)
	var headerBuf bytes.Buffer
	enc, err := cipher.NewEncoder(headerKey, &headerBuf)
	if err != nil {
		t.Fatal(err)
	}
	hdr := archive.NewHeader(1, uint32(len(entries)))
	if err := archive.WriteHeader(enc, hdr); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	buf = append(buf[:headerOffset], headerBuf.Bytes()...)
	for uint64(len(buf)) < entriesOffset {
		buf = append(buf, 0)
	}

	entriesKey := keyderiv.EntriesKey(name, salt)
	var entriesBuf bytes.Buffer
	entEnc, err := cipher.NewEncoder(entriesKey, &entriesBuf)
	if err != nil {
		t.Fatal(err)
	}
	if err := archive.WriteEntries(entEnc, entries); err != nil {
		t.Fatal(err)
	}
	if err := entEnc.Close(); err != nil {
		t.Fatal(err)
	}
	buf = append(buf, entriesBuf.Bytes()...)

	return buf
}

func TestFindSolvesFormulaOffsets(t *testing.T) {
	const name = "archive.it"
	const salt = "correct-salt"

	var key2 [16]byte
	entries := []archive.Entry{
		archive.NewEntry("readme.txt", 0, 0, 100, 100, key2),
	}

	data := buildArchive(t, name, salt, entries)

	result, err := Find(bytes.NewReader(data), name, []string{"wrong-salt-1", salt, "wrong-salt-2"})
	if err != nil {
		t.Fatal(err)
	}
	if result.HeaderSalt != salt || result.EntriesSalt != salt {
		t.Fatalf("got header salt %q entries salt %q, want %q", result.HeaderSalt, result.EntriesSalt, salt)
	}
	if len(result.Entries) != 1 || result.Entries[0].Name != "readme.txt" {
		t.Fatalf("unexpected entries: %+v", result.Entries)
	}
}

func TestFindFailsWithoutCorrectSalt(t *testing.T) {
	const name = "archive.it"
	var key2 [16]byte
	entries := []archive.Entry{archive.NewEntry("a.txt", 0, 0, 1, 1, key2)}
	data := buildArchive(t, name, "real-salt", entries)

	if _, err := Find(bytes.NewReader(data), name, []string{"wrong-1", "wrong-2"}); err != ErrParametersExhausted {
		t.Fatalf("got %v, want ErrParametersExhausted", err)
	}
}

func TestCandidateHeaderOffsetsIncludesFixedSet(t *testing.T) {
	offsets := candidateHeaderOffsets("anything.it")
	want := map[uint64]bool{0x20: true, 0x30: true, 0x40: true, 0x60: true, 0x80: true, 0x100: true}
	found := map[uint64]bool{}
	for _, o := range offsets {
		if want[o] {
			found[o] = true
		}
	}
	if len(found) != len(want) {
		t.Fatalf("missing fixed offsets, got %v", offsets)
	}
}

func TestDedupPreservesFirstOccurrenceOrder(t *testing.T) {
	got := dedup([]string{"b", "a", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
