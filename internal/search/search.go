// Package search implements the blind salt/offset probing (C5) that
// lets a reader open a .it archive without knowing which salt string
// produced it: the container stores no indication of the salt used,
// so every candidate salt is tried against every candidate offset
// until a header and entry table both validate.
package search

import (
	"errors"
	"io"

	"github.com/shaggyze/itpack/internal/archive"
	"github.com/shaggyze/itpack/internal/cipher"
	"github.com/shaggyze/itpack/internal/keyderiv"
)

// ErrParametersExhausted is returned when no combination of candidate
// salt and offset produced a validating header and entry table.
var ErrParametersExhausted = errors.New("search: exhausted all salt and offset combinations")

// fixedHeaderOffsets are offsets observed across archives independent
// of the formula derivation, tried alongside the formula's result.
var fixedHeaderOffsets = []uint64{0x20, 0x30, 0x40, 0x60, 0x80, 0x100}

// Result is everything Find discovered: the winning salts and offsets,
// the decoded and validated header and entry table, and the absolute
// file offset at which the BlockSize-aligned payload region begins.
type Result struct {
	HeaderSalt    string
	HeaderOffset  uint64
	EntriesSalt   string
	EntriesOffset uint64
	Header        archive.Header
	Entries       []archive.Entry
	ContentStart  int64
}

// Find tries every salt in salts (in order — callers should put a
// CLI-supplied salt first) against every candidate header offset; once
// a header validates, it tries every salt again (header's own salt
// first) against every candidate entries offset. It returns the first
// fully-validating combination, or ErrParametersExhausted.
//
// rs is repositioned freely during the search; callers should not rely
// on its position after Find returns (Result.ContentStart gives the
// position that matters).
func Find(rs io.ReadSeeker, name string, salts []string) (*Result, error) {
	salts = dedup(salts)
	if len(salts) == 0 {
		return nil, errors.New("search: no candidate salts provided")
	}

	headerOffsets := candidateHeaderOffsets(name)
	entriesOffsets := candidateEntriesOffsets(name)

	for _, headerSalt := range salts {
		headerKey := keyderiv.HeaderKey(name, headerSalt)

		for _, hOff := range headerOffsets {
			hdr, ok := tryHeader(rs, headerKey, hOff)
			if !ok {
				continue
			}

			for _, entriesSalt := range prioritize(salts, headerSalt) {
				entriesKey := keyderiv.EntriesKey(name, entriesSalt)

				for _, eOff := range entriesOffsets {
					entries, contentStart, ok := tryEntries(rs, entriesKey, eOff, hdr.FileCnt)
					if !ok {
						continue
					}
					return &Result{
						HeaderSalt:    headerSalt,
						HeaderOffset:  hOff,
						EntriesSalt:   entriesSalt,
						EntriesOffset: eOff,
						Header:        hdr,
						Entries:       entries,
						ContentStart:  contentStart,
					}, nil
				}
			}
		}
	}

	return nil, ErrParametersExhausted
}

func tryHeader(rs io.ReadSeeker, key []byte, offset uint64) (archive.Header, bool) {
	if _, err := rs.Seek(int64(offset), io.SeekStart); err != nil {
		return archive.Header{}, false
	}
	dec, err := cipher.NewDecoder(key, rs)
	if err != nil {
		return archive.Header{}, false
	}
	hdr, err := archive.ReadHeader(dec)
	if err != nil {
		return archive.Header{}, false
	}
	if err := archive.ValidateHeader(hdr); err != nil {
		return archive.Header{}, false
	}
	return hdr, true
}

func tryEntries(rs io.ReadSeeker, key []byte, offset uint64, count uint32) ([]archive.Entry, int64, bool) {
	if _, err := rs.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, 0, false
	}
	dec, err := cipher.NewDecoder(key, rs)
	if err != nil {
		return nil, 0, false
	}
	entries, err := archive.ReadEntries(dec, count)
	if err != nil {
		return nil, 0, false
	}
	if err := archive.ValidateEntries(entries); err != nil {
		return nil, 0, false
	}
	// The decoder reads whole words, so the underlying reader sits at the
	// decrypted byte count rounded up to a multiple of 4.
	tableEnd := int64(offset) + ((dec.StreamPosition() + 3) &^ 3)
	contentStart := archive.PayloadStart(tableEnd)
	return entries, contentStart, true
}

// candidateHeaderOffsets returns the formula-derived header offset
// plus a fixed set of commonly observed offsets and +/-4/+/-8
// neighbors of the formula result, sorted and deduplicated.
func candidateHeaderOffsets(name string) []uint64 {
	formula := keyderiv.HeaderOffset(name)

	set := make(map[uint64]struct{}, len(fixedHeaderOffsets)+5)
	for _, o := range fixedHeaderOffsets {
		set[o] = struct{}{}
	}
	set[formula] = struct{}{}
	if formula > 8 {
		set[formula-8] = struct{}{}
		set[formula-4] = struct{}{}
	}
	set[formula+4] = struct{}{}
	set[formula+8] = struct{}{}

	return sortedUint64s(set)
}

// candidateEntriesOffsets returns, in this order and without
// duplicates: the formula-derived entries offset (header formula
// offset + entries formula offset, absolute from file start), the bare
// entries-offset component, the byte right after a 9-byte header at
// the formula header offset, and the -4/+4/-8/+8 neighbors of the
// formula result.
func candidateEntriesOffsets(name string) []uint64 {
	headerFormula := keyderiv.HeaderOffset(name)
	entriesFormula := keyderiv.EntriesOffset(name)
	combined := headerFormula + entriesFormula

	set := map[uint64]struct{}{
		combined:            {},
		entriesFormula:      {},
		headerFormula + 9:   {},
	}
	if combined > 8 {
		set[combined-8] = struct{}{}
		set[combined-4] = struct{}{}
	}
	set[combined+4] = struct{}{}
	set[combined+8] = struct{}{}

	out := make([]uint64, 0, len(set))
	for _, o := range []uint64{combined, entriesFormula, headerFormula + 9, combined - 4, combined + 4, combined - 8, combined + 8} {
		if _, ok := set[o]; ok {
			out = append(out, o)
			delete(set, o)
		}
	}
	return out
}

func sortedUint64s(set map[uint64]struct{}) []uint64 {
	out := make([]uint64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// dedup removes duplicate salts while preserving first-occurrence
// order, so a CLI-supplied salt placed first stays first.
func dedup(salts []string) []string {
	seen := make(map[string]struct{}, len(salts))
	out := make([]string, 0, len(salts))
	for _, s := range salts {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// prioritize returns salts with first moved to the front, preserving
// the relative order of the rest.
func prioritize(salts []string, first string) []string {
	out := make([]string, 0, len(salts))
	out = append(out, first)
	for _, s := range salts {
		if s != first {
			out = append(out, s)
		}
	}
	return out
}
