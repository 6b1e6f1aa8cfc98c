/*
NAME
  huffman.go - canonical JPEG Huffman table construction and fast decode.

DESCRIPTION
  Builds mincode/maxcode/valptr tables from a canonical JPEG DHT
  definition (bits[1..16], huffval[0..255]) following ISO/IEC 10918-1
  Annex C/F, and provides a two-tier decode cache: an 8-bit "small" table
  for codes that fit within a byte, and a 13-bit "big" table for the hot
  path of code-plus-magnitude-bits decode (spec §4.3).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package huffman builds canonical JPEG Huffman decode tables and
// implements the fast small/big cache decode used by the LJPEG and NEF
// entropy decoders.
package huffman

import (
	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/bitpump"
)

// ErrMalformedTable is returned when bits/huffval do not describe a
// valid canonical Huffman tree.
var ErrMalformedTable = errors.New("huffman: malformed table")

const (
	smallBits = 8
	bigBits   = 13
)

// smallEntry is the small-table cache entry: a code of length<=8 bits
// decodes directly to (length, value).
type smallEntry struct {
	length uint8
	value  uint8
	valid  bool
}

// bigEntry is the big-table cache entry: a code of length<=13 bits,
// including its magnitude bits, decodes directly to the total bits
// consumed and the signed difference (spec §4.3's hot path).
type bigEntry struct {
	bitsConsumed uint8
	diff         int32
	valid        bool
}

// Table is an initialized canonical Huffman decode table.
type Table struct {
	bits    [17]int   // bits[1..16], count of codes of each length
	huffval []uint8   // symbol values in code-length order
	mincode [17]int32 // per length
	maxcode [18]int32 // sentinel maxcode[17] = 0xFFFFF
	valptr  [17]int32

	small [1 << smallBits]smallEntry
	big   [1 << bigBits]bigEntry

	// NEF shift variant: per-symbol extra low-bit shift, indexed the
	// same as huffval.
	shifts []uint8
	isNEF  bool

	dngBug bool // DNG huff_diff(16) compatibility knob, spec §9
}

// New builds and initializes a Table from a canonical (bits,huffval)
// definition. bits has 16 entries (index 0 = codes of length 1).
func New(bits [16]int, huffval []uint8) (*Table, error) {
	t := &Table{huffval: huffval}
	for i := 0; i < 16; i++ {
		t.bits[i+1] = bits[i]
	}
	if err := t.initialize(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewNEF is like New but additionally records a per-symbol shift count
// (0..4 extra low bits appended after the decoded magnitude).
func NewNEF(bits [16]int, huffval []uint8, shifts []uint8) (*Table, error) {
	t, err := New(bits, huffval)
	if err != nil {
		return nil, err
	}
	if len(shifts) != len(huffval) {
		return nil, errors.Wrap(ErrMalformedTable, "NEF shift table length mismatch")
	}
	t.shifts = shifts
	t.isNEF = true
	return t, nil
}

// SetDNGBug enables the DNG huff_diff(16) compatibility behaviour
// (spec §4.3, §9): callers must set this for DNG streams only.
func (t *Table) SetDNGBug(v bool) { t.dngBug = v }

// initialize computes mincode/maxcode/valptr per JPEG Figures C.1/C.2/F.15
// and builds the small/big decode caches.
func (t *Table) initialize() error {
	total := 0
	for l := 1; l <= 16; l++ {
		total += t.bits[l]
	}
	if total > 256 || total != len(t.huffval) {
		return errors.Wrapf(ErrMalformedTable, "bits sum %d != %d huffval entries", total, len(t.huffval))
	}

	// Assign codes: huffsize/huffcode construction (Annex C.2).
	var huffsize []int
	for l := 1; l <= 16; l++ {
		for i := 0; i < t.bits[l]; i++ {
			huffsize = append(huffsize, l)
		}
	}
	huffcode := make([]int32, len(huffsize))
	code := int32(0)
	si := huffsize[0]
	k := 0
	for k < len(huffsize) {
		for k < len(huffsize) && huffsize[k] == si {
			huffcode[k] = code
			code++
			k++
		}
		code <<= 1
		si++
	}

	// mincode/maxcode/valptr (Annex F.15).
	p := 0
	for l := 1; l <= 16; l++ {
		if t.bits[l] == 0 {
			t.maxcode[l] = -1
			continue
		}
		t.valptr[l] = int32(p)
		t.mincode[l] = huffcode[p]
		p += t.bits[l]
		t.maxcode[l] = huffcode[p-1]
	}
	t.maxcode[17] = 0xFFFFF // sentinel guaranteeing the slow walk terminates

	// Small table: direct lookup for codes of length <= smallBits.
	p = 0
	for l := 1; l <= smallBits; l++ {
		for i := 0; i < t.bits[l]; i++ {
			c := huffcode[p]
			val := t.huffval[p]
			lowBits := smallBits - l
			base := int(c) << uint(lowBits)
			for f := 0; f < (1 << uint(lowBits)); f++ {
				t.small[base+f] = smallEntry{length: uint8(l), value: val, valid: true}
			}
			p++
		}
	}

	// Big table: direct lookup for (code length + magnitude bits) <= bigBits,
	// yielding the signed difference directly.
	p = 0
	for l := 1; l <= 16; l++ {
		for i := 0; i < t.bits[l]; i++ {
			c := huffcode[p]
			mag := int(t.huffval[p])
			total := l + mag
			if total <= bigBits && mag <= 16 {
				lowBits := bigBits - total
				base := (int(c)<<uint(mag) | 0) << uint(lowBits)
				for f := 0; f < (1 << uint(lowBits)); f++ {
					for m := 0; m < (1 << uint(mag)); m++ {
						idx := base + (m << uint(lowBits)) + f
						if idx >= len(t.big) {
							continue
						}
						diff := diffFromMagBits(mag, uint32(m))
						t.big[idx] = bigEntry{bitsConsumed: uint8(total), diff: diff, valid: true}
					}
				}
			}
			p++
		}
	}
	return nil
}

// diffFromMagBits implements huff_diff's core rule given an already-known
// magnitude length and its raw bits.
func diffFromMagBits(mag int, bits uint32) int32 {
	if mag == 0 {
		return 0
	}
	if bits&(1<<(uint(mag)-1)) == 0 {
		return int32(bits) - (1<<uint(mag) - 1)
	}
	return int32(bits)
}

// Len decodes just the Huffman code, returning its bit length without
// reading any magnitude bits (used by callers that need the raw
// code/diff split, such as the Hasselblad paired-predictor decode).
func (t *Table) Len(p *bitpump.Pump) (int, error) { return t.huffLen(p) }

// Diff consumes length magnitude bits and returns the signed difference
// they encode, applying the same rules as Decode's slow path.
func (t *Table) Diff(p *bitpump.Pump, length int) (int32, error) { return t.huffDiff(p, length) }

// Decode performs huff_decode: a 13-bit big-table lookup on the hot
// path, falling back to huffLen+huffDiff when the code+magnitude does
// not fit in the big table (spec §4.3).
func (t *Table) Decode(p *bitpump.Pump) (int32, error) {
	peek := t.big[p.PeekBits(bigBits)]
	if peek.valid {
		p.ConsumeBits(uint(peek.bitsConsumed))
		return peek.diff, nil
	}

	length, err := t.huffLen(p)
	if err != nil {
		return 0, err
	}
	if t.isNEF {
		return t.huffDiffNEF(p, length)
	}
	return t.huffDiff(p, length)
}

// huffLen decodes just the Huffman code, returning its bit length, via
// the small table when possible and a bit-by-bit walk otherwise.
func (t *Table) huffLen(p *bitpump.Pump) (int, error) {
	peek := t.small[p.PeekBits(smallBits)]
	if peek.valid {
		p.ConsumeBits(uint(peek.length))
		return int(peek.value), nil
	}

	code := int32(p.PeekBits(smallBits))
	p.ConsumeBits(smallBits)
	l := smallBits
	for l < 16 {
		l++
		code = (code << 1) | int32(p.GetBits(1))
		if code <= t.maxcode[l] && t.maxcode[l] != -1 {
			idx := t.valptr[l] + (code - t.mincode[l])
			if idx < 0 || int(idx) >= len(t.huffval) {
				return 0, errors.Wrap(ErrMalformedTable, "code index out of range")
			}
			return int(t.huffval[idx]), nil
		}
	}
	return 0, errors.Wrap(ErrMalformedTable, "code length exceeds 16")
}

// huffDiff implements the magnitude-bits-to-signed-difference rule
// (spec §4.3), including the DNG huff_diff(16) knob.
func (t *Table) huffDiff(p *bitpump.Pump, length int) (int32, error) {
	if length > 16 {
		return 0, errors.Wrap(ErrMalformedTable, "magnitude length exceeds 16")
	}
	if length == 0 {
		return 0, nil
	}
	if length == 16 {
		if t.dngBug {
			p.ConsumeBits(16)
		}
		return -32768, nil
	}
	bits := p.GetBits(uint(length))
	return diffFromMagBits(length, bits), nil
}

// huffDiffNEF is the difference step Decode uses for a table built with
// NewNEF. It returns huffDiff's plain difference and applies no
// per-symbol shift; neither does Decode's big-table path. Only
// DecodeNEF applies the shift.
func (t *Table) huffDiffNEF(p *bitpump.Pump, length int) (int32, error) {
	diff, err := t.huffDiff(p, length)
	if err != nil {
		return 0, err
	}
	// huffLen reports the symbol's value, not its index, so the shift
	// for this symbol cannot be looked up here.
	return diff, nil
}

// DecodeNEF decodes one NEF-variant symbol, returning the shifted
// difference and the shift amount actually applied.
func (t *Table) DecodeNEF(p *bitpump.Pump) (int32, uint8, error) {
	length, shift, err := t.huffLenNEF(p)
	if err != nil {
		return 0, 0, err
	}
	diff, err := t.huffDiff(p, length)
	if err != nil {
		return 0, 0, err
	}
	if shift > 0 {
		extra := p.GetBits(uint(shift))
		diff = (diff << shift) | int32(extra)
	}
	return diff, shift, nil
}

func (t *Table) huffLenNEF(p *bitpump.Pump) (int, uint8, error) {
	// Bit-by-bit walk against the canonical tables, tracking the
	// consumed symbol index directly so the per-symbol shift can be
	// looked up (the small cache alone does not carry it).
	acc := int32(0)
	consumed := uint(0)
	for l := 1; l <= 16; l++ {
		acc = (acc << 1) | int32(p.GetBits(1))
		consumed++
		if t.maxcode[l] != -1 && acc <= t.maxcode[l] {
			idx := t.valptr[l] + (acc - t.mincode[l])
			if idx < 0 || int(idx) >= len(t.huffval) {
				return 0, 0, errors.Wrap(ErrMalformedTable, "code index out of range")
			}
			var shift uint8
			if t.isNEF && int(idx) < len(t.shifts) {
				shift = t.shifts[idx]
			}
			return int(t.huffval[idx]), shift, nil
		}
	}
	return 0, 0, errors.Wrap(ErrMalformedTable, "code length exceeds 16")
}
