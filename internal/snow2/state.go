package snow2

import (
	"encoding/binary"
	"errors"
)

// KeySize is the key material LoadKey expects: the 128-byte subkeys
// produced by internal/keyderiv's header/entries/file-key derivations.
const KeySize = 128

// BlockWords is the number of keystream words Generate emits per call.
const BlockWords = 16

// initRounds is the number of feedback-mixing clocks LoadKey runs before
// the cipher starts emitting keystream, mirroring SNOW-2's init mode
// where the FSM output is folded back into the LFSR feedback to diffuse
// key material across the full 16-word register.
const initRounds = 32

// State is the 18-word SNOW-2 engine state: a 16-word LFSR plus the
// 2-word FSM (R1, R2). It is opaque to callers; internal/cipher only
// calls LoadKey and Generate.
type State struct {
	lfsr [16]uint32
	r1   uint32
	r2   uint32
}

// LoadKey initializes an 18-word state from a 128-byte key, running the
// standard SNOW-2 initialization clocks before any keystream is
// produced. The key's two 64-byte halves are folded together (XORed)
// to seed the 16-word LFSR, so every key byte influences the initial
// state.
func LoadKey(key []byte) (*State, error) {
	if len(key) != KeySize {
		return nil, errors.New("snow2: key must be 128 bytes")
	}

	s := &State{}
	for i := 0; i < 16; i++ {
		lo := binary.LittleEndian.Uint32(key[i*4 : i*4+4])
		hi := binary.LittleEndian.Uint32(key[64+i*4 : 64+i*4+4])
		s.lfsr[i] = lo ^ hi
	}

	for i := 0; i < initRounds; i++ {
		s.clock(true)
	}
	// One extra clock fully decouples the FSM from the keystream-mode
	// clocks that follow, as in the reference initialization procedure.
	s.clock(true)

	return s, nil
}

// clock advances the LFSR and FSM by one step and returns the keystream
// word that step would emit. When withFeedback is true (initialization
// mode), the FSM output F is folded into the new LFSR word instead of
// being returned as keystream, mixing key material across the register.
func (s *State) clock(withFeedback bool) uint32 {
	f := (s.lfsr[15] + s.r1) ^ s.r2
	z := s.lfsr[0] ^ f

	newR1 := (s.lfsr[5] + s.r2) ^ s.r1
	newR2 := sBoxFunction(s.r1)

	newWord := mulAlpha(s.lfsr[0]) ^ s.lfsr[2] ^ mulAlphaInv(s.lfsr[11])
	if withFeedback {
		newWord ^= f
	}

	copy(s.lfsr[0:15], s.lfsr[1:16])
	s.lfsr[15] = newWord
	s.r1 = newR1
	s.r2 = newR2

	return z
}

// Generate emits the next 16-word block of keystream and advances the
// state. After 16 words are consumed, callers invoke Generate again.
func (s *State) Generate() [BlockWords]uint32 {
	var out [BlockWords]uint32
	for i := range out {
		out[i] = s.clock(false)
	}
	return out
}
