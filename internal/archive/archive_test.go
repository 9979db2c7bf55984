package archive

import (
	"bytes"
	"testing"
)

func TestHeaderChecksumRoundTrip(t *testing.T) {
	h := NewHeader(3, 12)
	var buf bytes.Buffer
	if err := WriteHeader(&buf, h); err != nil {
		t.Fatal(err)
	}
	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
	if err := ValidateHeader(got); err != nil {
		t.Fatalf("ValidateHeader failed on a well-formed header: %v", err)
	}
}

func TestNewHeaderUsesCurrentVersion(t *testing.T) {
	h := NewHeader(CurrentVersion, 0)
	var buf bytes.Buffer
	if err := WriteHeader(&buf, h); err != nil {
		t.Fatal(err)
	}
	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != CurrentVersion {
		t.Fatalf("got version %d, want %d", got.Version, CurrentVersion)
	}
	if err := ValidateHeader(got); err != nil {
		t.Fatalf("ValidateHeader failed on a CurrentVersion header: %v", err)
	}
}

func TestValidateHeaderRejectsBadChecksum(t *testing.T) {
	h := NewHeader(3, 12)
	h.Checksum++
	if err := ValidateHeader(h); err != ErrHeaderChecksum {
		t.Fatalf("got %v, want ErrHeaderChecksum", err)
	}
}

func TestValidateHeaderRejectsInsaneValues(t *testing.T) {
	h := Header{Version: 200, FileCnt: 1}
	h.Checksum = h.expectedChecksum()
	if err := ValidateHeader(h); err != ErrHeaderInsane {
		t.Fatalf("got %v, want ErrHeaderInsane", err)
	}
}

func TestEntryChecksumRoundTrip(t *testing.T) {
	var key2 [16]byte
	for i := range key2 {
		key2[i] = byte(i)
	}
	entries := []Entry{
		NewEntry("readme.txt", FlagCompressed, 0, 500, 300, key2),
		NewEntry("data/世界.bin", FlagAllEncrypted|FlagHeadEncrypted, 2, 4096, 4096, key2),
	}

	var buf bytes.Buffer
	if err := WriteEntries(&buf, entries); err != nil {
		t.Fatal(err)
	}
	got, err := ReadEntries(&buf, uint32(len(entries)))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Fatalf("entry %d: got %+v, want %+v", i, got[i], entries[i])
		}
	}
	if err := ValidateEntries(got); err != nil {
		t.Fatalf("ValidateEntries failed on well-formed entries: %v", err)
	}
}

func TestValidateEntriesRejectsBadChecksum(t *testing.T) {
	var key2 [16]byte
	e := NewEntry("a.txt", 0, 0, 1, 1, key2)
	e.Checksum++
	if err := ValidateEntries([]Entry{e}); err != ErrEntryChecksum {
		t.Fatalf("got %v, want ErrEntryChecksum", err)
	}
}

func TestReadEntriesRejectsZeroNameLength(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0}) // name length = 0
	if _, err := ReadEntries(buf, 1); err == nil {
		t.Fatal("expected error for zero-length name")
	}
}

func TestPayloadStartAligns(t *testing.T) {
	cases := map[int64]int64{
		0:    0,
		1:    1024,
		1023: 1024,
		1024: 1024,
		1025: 2048,
	}
	for in, want := range cases {
		if got := PayloadStart(in); got != want {
			t.Fatalf("PayloadStart(%d) = %d, want %d", in, got, want)
		}
	}
}
