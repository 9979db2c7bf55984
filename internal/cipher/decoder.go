// Package cipher provides word-granular SNOW-2 stream cipher adapters
// over byte-oriented readers and writers: Decoder subtracts the
// keystream, Encoder adds it. Both operate on whole 32-bit words
// internally and buffer the 0-3 leftover bytes of a partial word across
// calls, so callers can issue arbitrarily small reads/writes.
package cipher

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/shaggyze/itpack/internal/snow2"
)

// ErrNoSeeker is returned by Decoder.Seek when the underlying reader
// does not implement io.ReadSeeker.
var ErrNoSeeker = errors.New("cipher: underlying reader does not support seeking")

// ErrEndRelativeSeek is returned for io.SeekEnd, which a stream cipher
// cannot support without knowing the plaintext length in advance.
var ErrEndRelativeSeek = errors.New("cipher: end-relative seek is not supported")

// Decoder decrypts a byte stream encrypted by Encoder (or the original
// archive tool) using the same 128-byte key. It has no keyed random
// access: Seek always rewinds the underlying stream and re-derives the
// keystream from scratch, then discards bytes forward (see Seek).
type Decoder struct {
	key       []byte
	state     *snow2.State
	keystream [snow2.BlockWords]uint32
	wordIndex int
	r         io.Reader

	leftover    [4]byte
	leftoverLen int

	pos int64
}

// NewDecoder constructs a Decoder keyed by a 128-byte key, generating
// the first keystream block immediately so the first Read can proceed.
func NewDecoder(key []byte, r io.Reader) (*Decoder, error) {
	st, err := snow2.LoadKey(key)
	if err != nil {
		return nil, err
	}
	d := &Decoder{key: key, state: st, r: r}
	d.keystream = st.Generate()
	return d, nil
}

func (d *Decoder) nextWord() uint32 {
	w := d.keystream[d.wordIndex]
	d.wordIndex++
	if d.wordIndex >= snow2.BlockWords {
		d.keystream = d.state.Generate()
		d.wordIndex = 0
	}
	return w
}

// Read drains any leftover bytes from a prior sub-word read, then pulls
// exactly as many whole words as needed to cover the rest of p from the
// underlying reader, decrypting each word in turn and retaining any
// trailing bytes beyond what p needed for the next call.
func (d *Decoder) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	out := 0
	if d.leftoverLen > 0 {
		drained := copy(p, d.leftover[:d.leftoverLen])
		copy(d.leftover[:], d.leftover[drained:d.leftoverLen])
		d.leftoverLen -= drained
		out += drained
	}

	remaining := len(p) - out
	if remaining == 0 {
		d.pos += int64(out)
		return out, nil
	}

	words := (remaining + 3) / 4
	raw := make([]byte, words*4)
	if _, err := io.ReadFull(d.r, raw); err != nil {
		if out > 0 {
			// Bytes were already drained from the leftover buffer;
			// report what we have and surface the failure on the
			// next call, per the short-read contract in §4.2.
			d.pos += int64(out)
			return out, nil
		}
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return out, err
	}

	decrypted := make([]byte, words*4)
	for i := 0; i < words; i++ {
		v := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		v -= d.nextWord()
		binary.LittleEndian.PutUint32(decrypted[i*4:i*4+4], v)
	}

	copy(p[out:], decrypted[:remaining])
	d.leftoverLen = len(decrypted) - remaining
	copy(d.leftover[:d.leftoverLen], decrypted[remaining:])

	out += remaining
	d.pos += int64(out)
	return out, nil
}

// StreamPosition returns the total number of decrypted bytes produced
// so far, equal to the logical position in the plaintext stream.
func (d *Decoder) StreamPosition() int64 {
	return d.pos
}

// Seek repositions the decoder. Because a stream cipher has no keyed
// random access, any seek that is not a pure forward skip rewinds the
// underlying reader to its origin, reloads the key, regenerates the
// first keystream block, and discards bytes up to the target by
// reading them into a scratch buffer — an O(target) operation.
//
// io.SeekEnd is not supported. A negative io.SeekCurrent offset is
// treated as an absolute seek to pos+offset rather than a true relative
// rewind, since the cipher cannot seek backward without resetting.
func (d *Decoder) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekEnd:
		return 0, ErrEndRelativeSeek
	case io.SeekCurrent:
		if offset >= 0 {
			return d.skipForward(offset)
		}
		return d.resetAndSkip(d.pos + offset)
	case io.SeekStart:
		return d.resetAndSkip(offset)
	default:
		return 0, errors.New("cipher: invalid whence")
	}
}

func (d *Decoder) skipForward(k int64) (int64, error) {
	buf := make([]byte, 4096)
	remaining := k
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		read, err := d.Read(buf[:n])
		remaining -= int64(read)
		if err != nil {
			return d.pos, err
		}
		if read == 0 {
			return d.pos, io.ErrUnexpectedEOF
		}
	}
	return d.pos, nil
}

func (d *Decoder) resetAndSkip(target int64) (int64, error) {
	if target < 0 {
		return 0, errors.New("cipher: negative seek target")
	}

	rs, ok := d.r.(io.Seeker)
	if !ok {
		return 0, ErrNoSeeker
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	st, err := snow2.LoadKey(d.key)
	if err != nil {
		return 0, err
	}
	d.state = st
	d.keystream = st.Generate()
	d.wordIndex = 0
	d.leftoverLen = 0
	d.pos = 0

	return d.skipForward(target)
}
