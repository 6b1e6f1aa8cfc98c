/*
NAME
  srw1_test.go - tests for the SRW1 predictive pixel codec.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package srw1

import "testing"

func TestDecodeOutputLength(t *testing.T) {
	width, height := 16, 4
	loffsets := make([]byte, height*4)
	buf := make([]byte, 256)
	out := Decode(buf, loffsets, width, height)
	if len(out) != width*height {
		t.Fatalf("len(out) = %d, want %d", len(out), width*height)
	}
}

func TestDecodeLeftEdgeUsesConstant128(t *testing.T) {
	width, height := 16, 1
	loffsets := make([]byte, height*4)
	// All-zero entropy stream: dir=0 (left-to-right), every op selects
	// the "no change" branch (op==0), and every adj decodes to -127 via
	// GetIBitsSextended(7) on an all-zero bit-pattern (top bit unset ->
	// value - (1<<7 - 1)). The group anchors every even pixel in the
	// col==0 group to the constant predictor 128, so every one of them
	// decodes to 128-127=1.
	buf := make([]byte, 64)
	out := Decode(buf, loffsets, width, height)
	if out[0] != 1 {
		t.Errorf("out[0] = %d, want 1 (128 + adj(-127))", out[0])
	}
}

func TestSwapRB(t *testing.T) {
	width, height := 4, 2
	out := make([]uint16, width*height)
	for i := range out {
		out[i] = uint16(i)
	}
	before := append([]uint16(nil), out...)
	swapRB(out, width, height)
	// (0,1) <-> (1,0): index 1 <-> index 4; (0,3) <-> (1,2): index 3 <-> index 6.
	if out[1] != before[4] || out[4] != before[1] {
		t.Errorf("swap at col0 incorrect: out[1]=%d out[4]=%d", out[1], out[4])
	}
	if out[3] != before[6] || out[6] != before[3] {
		t.Errorf("swap at col2 incorrect: out[3]=%d out[6]=%d", out[3], out[6])
	}
}
