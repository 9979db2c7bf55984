package payload

import (
	"bytes"
	"testing"
)

func TestExtensionsMatchesIsCaseInsensitive(t *testing.T) {
	exts := NewExtensions(DefaultCompressionExtensions)
	cases := map[string]bool{
		"readme.TXT":    true,
		"data.xml":      true,
		"archive.DDS":   true,
		"photo.png":     false,
		"noext":         false,
		"weird.TxT.bak": false,
	}
	for name, want := range cases {
		if got := exts.Matches(name); got != want {
			t.Errorf("Matches(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	original := bytes.Repeat([]byte("hello world, this compresses well "), 100)
	compressed, err := Compress(original)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decompress(compressed, uint32(len(original)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, original) {
		t.Fatal("decompressed content does not match original")
	}
}

func TestDecompressEmptyPayloadIsEmptyFile(t *testing.T) {
	got, err := Decompress(nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d bytes", len(got))
	}
}

func TestDecompressRejectsSizeMismatch(t *testing.T) {
	compressed, err := Compress([]byte("some content"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decompress(compressed, 999); err == nil {
		t.Fatal("expected error for original size mismatch")
	}
}

func TestHeadEncryptDecryptRoundTrip(t *testing.T) {
	key := make([]byte, 128)
	for i := range key {
		key[i] = byte(i * 3)
	}

	content := bytes.Repeat([]byte("A"), 2048)
	original := append([]byte(nil), content...)

	if err := EncryptHead(key, content); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(content[:1024], original[:1024]) {
		t.Fatal("head was not modified by EncryptHead")
	}
	if !bytes.Equal(content[1024:], original[1024:]) {
		t.Fatal("EncryptHead modified bytes beyond the first block")
	}

	if err := DecryptHead(key, content); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(content, original) {
		t.Fatal("head encrypt/decrypt round trip mismatch")
	}
}

func TestHeadEncryptShortContent(t *testing.T) {
	key := make([]byte, 128)
	content := []byte{1, 2, 3, 4, 5}
	original := append([]byte(nil), content...)

	if err := EncryptHead(key, content); err != nil {
		t.Fatal(err)
	}
	if err := DecryptHead(key, content); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(content, original) {
		t.Fatal("short-content head round trip mismatch")
	}
}
