package archive

import "errors"

// Validation errors returned by ValidateHeader/ValidateEntries and by
// the field readers. Search (internal/search) treats these, and any
// seek or read failure while probing a candidate, as "wrong
// salt/offset, try the next candidate"; I/O and inflate errors during
// extraction itself abort the operation.
var (
	// ErrHeaderChecksum means a decrypted header's checksum field does
	// not match version+file_cnt: almost certainly the wrong key/offset.
	ErrHeaderChecksum = errors.New("archive: header checksum mismatch")

	// ErrHeaderInsane means the header decrypted to checksum-consistent
	// but implausible values (version or file_cnt absurdly large),
	// caught before an attempt to read that many entries.
	ErrHeaderInsane = errors.New("archive: header values out of plausible range")

	// ErrEntryNameLength means a decrypted entry's declared name length
	// (in UTF-16 code units) is zero or exceeds the sanity bound.
	ErrEntryNameLength = errors.New("archive: entry name length out of range")

	// ErrEntryChecksum means a decrypted entry's checksum field does
	// not match the sum of its own fields.
	ErrEntryChecksum = errors.New("archive: entry checksum mismatch")

	// ErrUTF16Decode means an entry's name bytes do not form valid
	// UTF-16LE (e.g. an unpaired surrogate).
	ErrUTF16Decode = errors.New("archive: entry name is not valid UTF-16")

	// ErrInflateFailed means zlib decompression of a compressed payload
	// failed or produced a size other than OriginalSize. Unlike the
	// checksum errors above, this is NOT swallowed during search: by
	// the time inflate runs, the key/offset/entries have already
	// validated, so a failure here means corrupt or truncated data.
	ErrInflateFailed = errors.New("archive: zlib inflate failed or size mismatch")
)

// maxPlausibleVersion and maxPlausibleFileCnt bound ErrHeaderInsane,
// matching the heuristic used to stop a bogus decrypt from being
// treated as a real header during blind salt search.
const (
	maxPlausibleVersion = 10
	maxPlausibleFileCnt = 50000
	maxEntryNameUnits   = 4096
)
