package cipher

import (
	"encoding/binary"
	"io"

	"github.com/shaggyze/itpack/internal/snow2"
)

// Encoder encrypts a byte stream by adding SNOW-2 keystream words to
// the plaintext, word by word. Unlike the original's Rust encoder,
// Go has no destructor: callers MUST call Close to flush the final
// partial word, or up to 3 trailing bytes will be silently lost.
type Encoder struct {
	state     *snow2.State
	keystream [snow2.BlockWords]uint32
	wordIndex int
	w         io.Writer

	leftover    [4]byte
	leftoverLen int
}

// NewEncoder constructs an Encoder keyed by a 128-byte key.
func NewEncoder(key []byte, w io.Writer) (*Encoder, error) {
	st, err := snow2.LoadKey(key)
	if err != nil {
		return nil, err
	}
	e := &Encoder{state: st, w: w}
	e.keystream = st.Generate()
	return e, nil
}

func (e *Encoder) nextWord() uint32 {
	v := e.keystream[e.wordIndex]
	e.wordIndex++
	if e.wordIndex >= snow2.BlockWords {
		e.keystream = e.state.Generate()
		e.wordIndex = 0
	}
	return v
}

// Write always reports len(p), nil on success: plaintext bytes that
// don't fill a whole word are held in the leftover buffer until enough
// arrive to encrypt a full word, or until Close flushes them.
func (e *Encoder) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	buf := append(e.leftover[:e.leftoverLen], p...)
	e.leftoverLen = 0

	words := len(buf) / 4
	if words > 0 {
		out := make([]byte, words*4)
		for i := 0; i < words; i++ {
			v := binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
			v += e.nextWord()
			binary.LittleEndian.PutUint32(out[i*4:i*4+4], v)
		}
		if _, err := e.w.Write(out); err != nil {
			return 0, err
		}
	}

	rem := buf[words*4:]
	e.leftoverLen = copy(e.leftover[:], rem)

	return len(p), nil
}

// Close flushes any buffered partial word, zero-padding it to a full
// word before encrypting and writing it out. It must be called exactly
// once after the last Write, typically via defer.
func (e *Encoder) Close() error {
	if e.leftoverLen == 0 {
		return nil
	}

	var word [4]byte
	copy(word[:], e.leftover[:e.leftoverLen])

	v := binary.LittleEndian.Uint32(word[:])
	v += e.nextWord()
	binary.LittleEndian.PutUint32(word[:], v)

	e.leftoverLen = 0
	_, err := e.w.Write(word[:])
	return err
}
