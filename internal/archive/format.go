// Package archive implements the .it container codec (C4): the
// encrypted header, the encrypted entry table, and the 1024-byte-
// aligned payload region that follows them. Every multi-byte field is
// little-endian; every checksum is a narrow wrapping sum used only as
// a probabilistic validator during salt/offset search, never as a
// cryptographic authenticator.
package archive

// CurrentVersion is the format version this package writes. Readers
// accept any version below maxPlausibleVersion; only the writer is
// pinned to one value.
const CurrentVersion uint8 = 2

// HeaderSize is the encoded size of Header: a 4-byte checksum, a
// 1-byte version, and a 4-byte file count.
const HeaderSize = 9

// BlockSize is the alignment unit for entry payload offsets: an
// entry's Offset field counts BlockSize-byte blocks from the start of
// the payload region, and the payload region itself starts on a
// BlockSize boundary following the entry table.
const BlockSize = 1024

// Flag bits stored in Entry.Flags.
const (
	FlagCompressed   uint32 = 1 << 0 // payload was zlib-deflated before encryption
	FlagAllEncrypted uint32 = 1 << 1 // entire payload is SNOW-2 encrypted
	FlagHeadEncrypted uint32 = 1 << 2 // only the first BlockSize bytes are encrypted
)

// Header is the 9-byte container header: a checksum over the two
// fields that follow it, a format version, and the declared entry
// count.
type Header struct {
	Checksum uint32
	Version  uint8
	FileCnt  uint32
}

// expectedChecksum computes the wrapping checksum a valid Header must
// carry: version + file_cnt, both widened to uint32 before the add.
func (h Header) expectedChecksum() uint32 {
	return uint32(h.Version) + h.FileCnt
}

// Entry describes one archived file: its name, integrity checksum,
// behavior flags, location, sizes, and the per-file key material
// (Key2) that combines with its name to derive the SNOW-2 key used on
// its payload.
type Entry struct {
	Name         string
	Checksum     uint32
	Flags        uint32
	Offset       uint32 // payload location, in BlockSize-byte blocks
	OriginalSize uint32 // size before compression
	RawSize      uint32 // size actually stored (possibly compressed)
	Key2         [16]byte
}

// expectedChecksum computes the wrapping checksum a valid Entry must
// carry: flags + offset + original_size + raw_size + sum(key2 bytes),
// all as uint32, wrapping on overflow.
func (e Entry) expectedChecksum() uint32 {
	sum := e.Flags + e.Offset + e.OriginalSize + e.RawSize
	for _, b := range e.Key2 {
		sum += uint32(b)
	}
	return sum
}

// Compressed reports whether FlagCompressed is set.
func (e Entry) Compressed() bool { return e.Flags&FlagCompressed != 0 }

// AllEncrypted reports whether FlagAllEncrypted is set.
func (e Entry) AllEncrypted() bool { return e.Flags&FlagAllEncrypted != 0 }

// HeadEncrypted reports whether FlagHeadEncrypted is set.
func (e Entry) HeadEncrypted() bool { return e.Flags&FlagHeadEncrypted != 0 }
