// Package keyderiv implements the archive's deterministic key and
// offset derivation formulas (C3): every key and seek offset used to
// read or write a .it archive is derived from a filename, a salt
// string, and (for per-entry file keys) the entry's stored 16-byte
// key2, rather than stored anywhere in the container itself.
//
// All arithmetic below is intentionally narrow and wrapping — uint8
// and uint16 overflow is part of the derivation, not a bug. None of
// this is cryptographic key stretching; it is a fixed, public
// transform that obfuscation and salt search both depend on behaving
// exactly as specified.
package keyderiv

import (
	"strings"
	"unicode/utf16"
)

// HeaderKeySize is the byte length of every derived key (header,
// entries, and per-file), matching snow2.KeySize.
const HeaderKeySize = 128

func utf16Units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// HeaderKey derives the 128-byte key used to decrypt the archive
// header, from the archive's base filename (lowercased) and a salt
// candidate string.
func HeaderKey(name, salt string) []byte {
	input := utf16Units(strings.ToLower(name) + salt)
	out := make([]byte, HeaderKeySize)
	for i := 0; i < HeaderKeySize; i++ {
		v := input[i%len(input)] + uint16(i)
		out[i] = byte(v)
	}
	return out
}

// HeaderOffset derives the candidate byte offset of the header within
// the archive file, from the base filename alone (no salt).
func HeaderOffset(name string) uint64 {
	input := utf16Units(strings.ToLower(name))
	var sum uint64
	for _, c := range input {
		sum += uint64(c)
	}
	return sum%312 + 30
}

// EntriesKey derives the 128-byte key used to decrypt the entry table,
// from the base filename (lowercased) and a salt candidate string.
func EntriesKey(name, salt string) []byte {
	input := utf16Units(strings.ToLower(name) + salt)
	length := len(input)
	out := make([]byte, HeaderKeySize)
	for i := 0; i < HeaderKeySize; i++ {
		c := input[length-1-i%length]
		mult := uint64(i%3 + 2)
		v := uint64(i) + mult*uint64(c)
		out[i] = byte(v)
	}
	return out
}

// EntriesOffset derives the candidate byte offset of the entry table
// relative to the header's offset (HeaderOffset), from the base
// filename alone.
func EntriesOffset(name string) uint64 {
	input := utf16Units(strings.ToLower(name))
	var r uint64
	for _, c := range input {
		r += uint64(c) * 3
	}
	return r%212 + 42
}

// FileKey derives the 128-byte key used to encrypt/decrypt a single
// entry's payload, from the entry's original filename (NOT lowercased
// — unlike HeaderKey/EntriesKey, file keys are case-sensitive) and the
// entry's stored 16-byte key2 field.
func FileKey(name string, key2 [16]byte) []byte {
	input := utf16Units(name)
	out := make([]byte, HeaderKeySize)
	for i := 0; i < HeaderKeySize; i++ {
		k2 := key2[i%16]
		factor := k2 - byte(i/5*5) + 2 + byte(i)
		v := input[i%len(input)] * uint16(factor)
		v += uint16(i)
		out[i] = byte(v)
	}
	return out
}
