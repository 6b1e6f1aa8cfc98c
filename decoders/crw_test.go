/*
NAME
  crw_test.go - tests for the CRW (CIFF) decoder's white-balance
  fallback chain (the fixed Huffman pixel codec itself is exercised by
  the crw package's own tests).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package decoders

import (
	"math"
	"testing"

	"github.com/ausocean/rawcore/container/ciff"
)

const ciffInHeap = uint16(0x8000)

func u16leBytes(vals ...uint16) []byte {
	out := make([]byte, 0, 2*len(vals))
	for _, v := range vals {
		out = append(out, byte(v), byte(v>>8))
	}
	return out
}

func TestCRWWhiteBalancePrefersWhiteBalanceTag(t *testing.T) {
	cam := testCamera(t, "")
	heap := parseCIFFFixture(t, []ciffField{
		{tag: ciff.TagWhiteBalance | ciffInHeap, data: u16leBytes(10, 20, 0, 30)},
		{tag: ciff.TagColorInfo1 | ciffInHeap, data: u16leBytes(1, 2, 0, 3)},
	})
	wb := crwWhiteBalance(heap, cam)
	if wb[0] != 10 || wb[1] != 20 || wb[2] != 30 {
		t.Errorf("WB = %v, want WhiteBalance channels 0,1,3 = [10 20 30 NaN]", wb)
	}
	if !math.IsNaN(wb[3]) {
		t.Errorf("WB[3] = %v, want NaN", wb[3])
	}
}

func TestCRWWhiteBalanceFallsBackToColorInfo1(t *testing.T) {
	cam := testCamera(t, "")
	heap := parseCIFFFixture(t, []ciffField{
		{tag: ciff.TagColorInfo1 | ciffInHeap, data: u16leBytes(100, 200, 0, 300)},
	})
	wb := crwWhiteBalance(heap, cam)
	if wb[0] != 100 || wb[1] != 200 || wb[2] != 300 {
		t.Errorf("WB = %v, want ColorInfo1 channels 0,1,3 = [100 200 300 NaN]", wb)
	}
}

func TestCRWWhiteBalanceColorInfo1WBMangleXORsGains(t *testing.T) {
	cam := testCamera(t, "hints = [\"wb_mangle\"]\n")
	heap := parseCIFFFixture(t, []ciffField{
		{tag: ciff.TagColorInfo1 | ciffInHeap, data: u16leBytes(0, 0, 0, 0)},
	})
	wb := crwWhiteBalance(heap, cam)
	if wb[0] != 0xFFFF || wb[1] != 0xFFFF || wb[2] != 0xFFFF {
		t.Errorf("WB = %v, want every channel XOR-masked to 0xFFFF", wb)
	}
}

func TestCRWWhiteBalanceD30SpecialCase(t *testing.T) {
	cam := testCamera(t, "")
	data := make([]byte, 768)
	// D30's fixed index triple: u16 indices 36, 37, 39.
	data[72], data[73] = 0x11, 0x00  // idx 36 = 17
	data[74], data[75] = 0x22, 0x00  // idx 37 = 34
	data[78], data[79] = 0x33, 0x00  // idx 39 = 51
	heap := parseCIFFFixture(t, []ciffField{
		{tag: ciff.TagColorInfo1 | ciffInHeap, data: data},
	})
	wb := crwWhiteBalance(heap, cam)
	if wb[0] != 17 || wb[1] != 34 || wb[2] != 51 {
		t.Errorf("WB = %v, want D30 indices 36,37,39 = [17 34 51 NaN]", wb)
	}
}

func TestCRWWhiteBalanceDegradesToNaN(t *testing.T) {
	cam := testCamera(t, "")
	heap := parseCIFFFixture(t, nil)
	wb := crwWhiteBalance(heap, cam)
	for i, v := range wb {
		if !math.IsNaN(v) {
			t.Errorf("wb[%d] = %v, want NaN", i, v)
		}
	}
}
