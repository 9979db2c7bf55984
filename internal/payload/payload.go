// Package payload implements the per-entry payload transform (C6):
// optional zlib compression selected by file extension, and the
// head-only encryption mode where just the first block of a stored
// file is re-keyed independently of the rest.
package payload

import (
	"bytes"
	"compress/zlib"
	"io"
	"path/filepath"
	"strings"

	"github.com/shaggyze/itpack/internal/archive"
	"github.com/shaggyze/itpack/internal/cipher"
)

// DefaultCompressionExtensions lists the file extensions (without the
// leading dot, lowercase) compressed by default when packing.
var DefaultCompressionExtensions = []string{"txt", "xml", "dds", "pmg", "set", "raw"}

// Extensions is a set of file extensions eligible for compression,
// matched case-insensitively against a file's suffix.
type Extensions map[string]struct{}

// NewExtensions builds an Extensions set from a list like
// DefaultCompressionExtensions.
func NewExtensions(exts []string) Extensions {
	set := make(Extensions, len(exts))
	for _, e := range exts {
		set[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}
	return set
}

// Matches reports whether name's extension is in the set.
func (e Extensions) Matches(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return false
	}
	_, ok := e[ext]
	return ok
}

// Compress zlib-deflates data at the default compression level.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress zlib-inflates data and checks the result against
// originalSize, returning archive.ErrInflateFailed if inflation fails
// or the sizes disagree. A zero-length compressed payload decodes to
// an empty file without invoking zlib at all, matching the container's
// treatment of empty stored files.
func Decompress(data []byte, originalSize uint32) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, archive.ErrInflateFailed
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, archive.ErrInflateFailed
	}
	if uint32(len(out)) != originalSize {
		return nil, archive.ErrInflateFailed
	}
	return out, nil
}

// DecryptHead re-decrypts the first min(len(content), archive.BlockSize)
// bytes of content in place, using a fresh cipher keyed by key. It is
// used when only the head of a stored file is encrypted: the rest of
// content, if any, is left untouched.
func DecryptHead(key []byte, content []byte) error {
	n := headLen(content)
	if n == 0 {
		return nil
	}

	// The decoder consumes whole words; a head that ends mid-word is
	// zero-padded, which leaves the low (stored) bytes of that word
	// decrypting correctly.
	padded := make([]byte, (n+3)&^3)
	copy(padded, content[:n])
	dec, err := cipher.NewDecoder(key, bytes.NewReader(padded))
	if err != nil {
		return err
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(dec, out); err != nil {
		return err
	}
	copy(content[:n], out)
	return nil
}

// EncryptHead encrypts the first min(len(content), archive.BlockSize)
// bytes of content in place, the write-side counterpart to
// DecryptHead.
func EncryptHead(key []byte, content []byte) error {
	n := headLen(content)
	if n == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc, err := cipher.NewEncoder(key, &buf)
	if err != nil {
		return err
	}
	if _, err := enc.Write(content[:n]); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	copy(content[:n], buf.Bytes())
	return nil
}

func headLen(content []byte) int {
	if len(content) > archive.BlockSize {
		return archive.BlockSize
	}
	return len(content)
}
