/*
NAME
  huffman_test.go - tests for canonical Huffman table construction and decode.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package huffman

import (
	"testing"

	"github.com/ausocean/rawcore/bitpump"
)

// standardDCTable is the canonical baseline DC luminance table from
// ISO/IEC 10918-1 Annex K, reused widely by LJPEG raw encoders.
func standardDCTable() ([16]int, []uint8) {
	bits := [16]int{0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0}
	huffval := []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	return bits, huffval
}

func TestNewValidTable(t *testing.T) {
	bits, huffval := standardDCTable()
	tbl, err := New(bits, huffval)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tbl.maxcode[17] != 0xFFFFF {
		t.Errorf("maxcode[17] = %x, want 0xFFFFF sentinel", tbl.maxcode[17])
	}
}

func TestNewRejectsMismatchedCounts(t *testing.T) {
	bits := [16]int{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	_, err := New(bits, []uint8{0, 1}) // bits sums to 1, huffval has 2
	if err == nil {
		t.Fatal("expected error for mismatched bits/huffval counts")
	}
}

// TestDecodeKnownSymbol builds the standard DC table and manually encodes
// symbol value 0 (code length 2, per the canonical assignment: value 0 gets
// the shortest code) to check Decode recovers the magnitude-0 category and
// its zero signed difference.
func TestDecodeKnownSymbol(t *testing.T) {
	bits, huffval := standardDCTable()
	tbl, err := New(bits, huffval)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Symbol 0 (magnitude category 0) has the single 2-bit code "00" per
	// Annex K.3's canonical assignment for this bits/huffval pair.
	p := bitpump.New([]byte{0b00000000}, bitpump.MSB)
	diff, err := tbl.Decode(p)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff != 0 {
		t.Errorf("diff = %d, want 0 for magnitude-0 category", diff)
	}
}

func TestHuffDiffZeroLength(t *testing.T) {
	bits, huffval := standardDCTable()
	tbl, _ := New(bits, huffval)
	p := bitpump.New([]byte{0x00}, bitpump.MSB)
	v, err := tbl.huffDiff(p, 0)
	if err != nil || v != 0 {
		t.Errorf("huffDiff(0) = (%d,%v), want (0,nil)", v, err)
	}
}

func TestHuffDiffSixteenDNGBug(t *testing.T) {
	bits, huffval := standardDCTable()
	tbl, _ := New(bits, huffval)
	tbl.SetDNGBug(true)
	p := bitpump.New([]byte{0xFF, 0xFF}, bitpump.MSB)
	v, err := tbl.huffDiff(p, 16)
	if err != nil {
		t.Fatalf("huffDiff(16): %v", err)
	}
	if v != -32768 {
		t.Errorf("huffDiff(16) = %d, want -32768", v)
	}
}

func TestDiffFromMagBits(t *testing.T) {
	cases := []struct {
		mag  int
		bits uint32
		want int32
	}{
		{0, 0, 0},
		{1, 0, -1},
		{1, 1, 1},
		{3, 0b011, -4},
		{3, 0b100, 4},
	}
	for _, c := range cases {
		got := diffFromMagBits(c.mag, c.bits)
		if got != c.want {
			t.Errorf("diffFromMagBits(%d,%b) = %d, want %d", c.mag, c.bits, got, c.want)
		}
	}
}

func TestNEFShiftLengthMismatch(t *testing.T) {
	bits, huffval := standardDCTable()
	_, err := NewNEF(bits, huffval, []uint8{0, 1}) // too short
	if err == nil {
		t.Fatal("expected error for mismatched shift table length")
	}
}
