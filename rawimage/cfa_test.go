/*
NAME
  cfa_test.go - tests for CFA pattern parsing.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rawimage

import "testing"

func TestParseCFABayer(t *testing.T) {
	c := ParseCFA("RGGB")
	if c.Width != 2 || c.Height != 2 {
		t.Fatalf("dims = %dx%d, want 2x2", c.Width, c.Height)
	}
	if c.At(0, 0) != ColorR || c.At(0, 1) != ColorG || c.At(1, 0) != ColorG || c.At(1, 1) != ColorB {
		t.Errorf("RGGB tile wrong: %v", c.Tile)
	}
}

func TestParseCFAXTrans(t *testing.T) {
	pattern := "GGRGGBGGBGGRBRGRBGGGBGGRGGRGGBRBGBRG"
	c := ParseCFA(pattern)
	if c.Width != 6 || c.Height != 6 {
		t.Fatalf("dims = %dx%d, want 6x6", c.Width, c.Height)
	}
	if c.At(0, 2) != ColorR {
		t.Errorf("At(0,2) = %d, want ColorR", c.At(0, 2))
	}
}

func TestParseCFAWrapsAtBounds(t *testing.T) {
	c := ParseCFA("RGGB")
	if c.At(2, 2) != c.At(0, 0) {
		t.Error("expected CFA tile to wrap at its bounds")
	}
}

func TestParseCFAUnrecognisedFallsBackToRGGB(t *testing.T) {
	c := ParseCFA("bogus")
	if c.Width != 2 || c.Height != 2 || c.At(0, 0) != ColorR {
		t.Error("expected fallback to RGGB for unrecognised pattern")
	}
}
