package archive

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"
)

// NewHeader builds a Header with a correctly computed checksum for
// the given version and entry count.
func NewHeader(version uint8, fileCnt uint32) Header {
	h := Header{Version: version, FileCnt: fileCnt}
	h.Checksum = h.expectedChecksum()
	return h
}

// NewEntry builds an Entry with a correctly computed checksum for the
// given fields.
func NewEntry(name string, flags, offset, originalSize, rawSize uint32, key2 [16]byte) Entry {
	e := Entry{
		Name:         name,
		Flags:        flags,
		Offset:       offset,
		OriginalSize: originalSize,
		RawSize:      rawSize,
		Key2:         key2,
	}
	e.Checksum = e.expectedChecksum()
	return e
}

// WriteHeader writes the 9-byte header to w, which the caller must
// already have wrapped in a cipher.Encoder keyed for the header.
func WriteHeader(w io.Writer, h Header) error {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.Checksum)
	buf[4] = h.Version
	binary.LittleEndian.PutUint32(buf[5:9], h.FileCnt)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("archive: write header: %w", err)
	}
	return nil
}

// WriteEntries writes each entry record to w, which the caller must
// already have wrapped in a cipher.Encoder keyed for the entry table.
func WriteEntries(w io.Writer, entries []Entry) error {
	for i, e := range entries {
		if err := writeEntry(w, e); err != nil {
			return fmt.Errorf("archive: write entry %d: %w", i, err)
		}
	}
	return nil
}

func writeEntry(w io.Writer, e Entry) error {
	nameUnits := utf16.Encode([]rune(e.Name))
	nameBytes := make([]byte, len(nameUnits)*2)
	for i, u := range nameUnits {
		binary.LittleEndian.PutUint16(nameBytes[i*2:i*2+2], u)
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(nameUnits)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("name length: %w", err)
	}
	if _, err := w.Write(nameBytes); err != nil {
		return fmt.Errorf("name bytes: %w", err)
	}

	writeU32 := func(field string, v uint32) error {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		if _, err := w.Write(b[:]); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		return nil
	}
	if err := writeU32("checksum", e.Checksum); err != nil {
		return err
	}
	if err := writeU32("flags", e.Flags); err != nil {
		return err
	}
	if err := writeU32("offset", e.Offset); err != nil {
		return err
	}
	if err := writeU32("original_size", e.OriginalSize); err != nil {
		return err
	}
	if err := writeU32("raw_size", e.RawSize); err != nil {
		return err
	}

	if _, err := w.Write(e.Key2[:]); err != nil {
		return fmt.Errorf("key2: %w", err)
	}
	return nil
}

// PayloadStart rounds pos up to the next BlockSize boundary, giving
// the absolute offset at which the payload region begins following
// the header and entry table.
func PayloadStart(pos int64) int64 {
	if rem := pos % BlockSize; rem != 0 {
		return pos + (BlockSize - rem)
	}
	return pos
}
