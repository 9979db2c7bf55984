package archive

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"
)

// ReadHeader reads the 9-byte header from r, which the caller must
// already have wrapped in a cipher.Decoder keyed for the header. It
// does not validate the header's checksum or plausibility — call
// ValidateHeader separately, so search can distinguish "couldn't even
// read" from "read fine but the checksum was wrong."
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("archive: read header: %w", err)
	}
	return Header{
		Checksum: binary.LittleEndian.Uint32(buf[0:4]),
		Version:  buf[4],
		FileCnt:  binary.LittleEndian.Uint32(buf[5:9]),
	}, nil
}

// ValidateHeader checks a decoded Header's checksum invariant and
// plausibility bounds, returning ErrHeaderChecksum or ErrHeaderInsane
// as appropriate.
func ValidateHeader(h Header) error {
	if h.Version >= maxPlausibleVersion || h.FileCnt >= maxPlausibleFileCnt {
		return ErrHeaderInsane
	}
	if h.expectedChecksum() != h.Checksum {
		return ErrHeaderChecksum
	}
	return nil
}

// ReadEntries reads count entry records from r, which the caller must
// already have wrapped in a cipher.Decoder keyed for the entry table.
// It stops and returns an error at the first malformed entry; it does
// not validate per-entry checksums — call ValidateEntries afterward.
func ReadEntries(r io.Reader, count uint32) ([]Entry, error) {
	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		e, err := readEntry(r)
		if err != nil {
			return nil, fmt.Errorf("archive: read entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func readEntry(r io.Reader) (Entry, error) {
	var u32buf [4]byte

	if _, err := io.ReadFull(r, u32buf[:]); err != nil {
		return Entry{}, fmt.Errorf("name length: %w", err)
	}
	nameUnits := binary.LittleEndian.Uint32(u32buf[:])
	if nameUnits == 0 || nameUnits > maxEntryNameUnits {
		return Entry{}, ErrEntryNameLength
	}

	nameBytes := make([]byte, nameUnits*2)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return Entry{}, fmt.Errorf("name bytes: %w", err)
	}
	name, err := decodeUTF16LE(nameBytes)
	if err != nil {
		return Entry{}, err
	}

	readU32 := func(field string) (uint32, error) {
		if _, err := io.ReadFull(r, u32buf[:]); err != nil {
			return 0, fmt.Errorf("%s: %w", field, err)
		}
		return binary.LittleEndian.Uint32(u32buf[:]), nil
	}

	checksum, err := readU32("checksum")
	if err != nil {
		return Entry{}, err
	}
	flags, err := readU32("flags")
	if err != nil {
		return Entry{}, err
	}
	offset, err := readU32("offset")
	if err != nil {
		return Entry{}, err
	}
	originalSize, err := readU32("original_size")
	if err != nil {
		return Entry{}, err
	}
	rawSize, err := readU32("raw_size")
	if err != nil {
		return Entry{}, err
	}

	var key2 [16]byte
	if _, err := io.ReadFull(r, key2[:]); err != nil {
		return Entry{}, fmt.Errorf("key2: %w", err)
	}

	return Entry{
		Name:         name,
		Checksum:     checksum,
		Flags:        flags,
		Offset:       offset,
		OriginalSize: originalSize,
		RawSize:      rawSize,
		Key2:         key2,
	}, nil
}

// ValidateEntries checks every entry's checksum invariant, returning
// ErrEntryChecksum at the first mismatch.
func ValidateEntries(entries []Entry) error {
	for _, e := range entries {
		if e.expectedChecksum() != e.Checksum {
			return ErrEntryChecksum
		}
	}
	return nil
}

func decodeUTF16LE(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", ErrUTF16Decode
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2 : i*2+2])
	}
	runes := utf16.Decode(units)
	for _, r := range runes {
		if r == utf8.RuneError {
			return "", ErrUTF16Decode
		}
	}
	return string(runes), nil
}
