/*
NAME
  orient_test.go - tests for EXIF orientation decomposition.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package orient

import "testing"

func TestDecomposeKnownCodes(t *testing.T) {
	cases := []struct {
		o    Orientation
		want Decomposed
	}{
		{Top, Decomposed{false, false, false}},
		{TopFlip, Decomposed{false, true, false}},
		{Bottom, Decomposed{false, true, true}},
		{BotFlip, Decomposed{false, false, true}},
		{LeftFlip, Decomposed{true, false, false}},
		{Right, Decomposed{true, true, false}},
		{RightFlip, Decomposed{true, true, true}},
		{Left, Decomposed{true, false, true}},
	}
	for _, c := range cases {
		if got := Decompose(c.o); got != c.want {
			t.Errorf("Decompose(%d) = %+v, want %+v", c.o, got, c.want)
		}
	}
}

func TestDecomposeUnknownIsIdentity(t *testing.T) {
	if got := Decompose(Unknown); got != (Decomposed{}) {
		t.Errorf("Decompose(Unknown) = %+v, want identity", got)
	}
}

func TestFromEXIFClampsOutOfRange(t *testing.T) {
	if got := FromEXIF(0); got != Unknown {
		t.Errorf("FromEXIF(0) = %v, want Unknown", got)
	}
	if got := FromEXIF(9); got != Unknown {
		t.Errorf("FromEXIF(9) = %v, want Unknown", got)
	}
	if got := FromEXIF(5); got != LeftFlip {
		t.Errorf("FromEXIF(5) = %v, want LeftFlip", got)
	}
}

// TestDecomposeInvolution checks, for every defined code, that applying
// the decomposition's transpose step twice restores the original width
// and height; the flip steps are not exercised.
func TestDecomposeInvolution(t *testing.T) {
	for o := Top; o <= Left; o++ {
		d := Decompose(o)
		w, h := 4, 6
		w2, h2 := w, h
		if d.Transpose {
			w2, h2 = h2, w2
		}
		w3, h3 := w2, h2
		if d.Transpose {
			w3, h3 = h3, w3
		}
		if w3 != w || h3 != h {
			t.Errorf("orientation %d: transpose is not its own inverse on dims", o)
		}
	}
}

func TestFujiRotatedDims(t *testing.T) {
	w, h := FujiRotatedDims(100, 50)
	if w != 125 || h != 124 {
		t.Errorf("FujiRotatedDims(100,50) = (%d,%d), want (125,124)", w, h)
	}
}

func TestRotateFujiPreservesSampleCount(t *testing.T) {
	cropWidth, cropHeight := 8, 6
	data := make([]uint16, cropWidth*cropHeight)
	for i := range data {
		data[i] = uint16(i + 1)
	}

	out, w, h := RotateFuji(data, cropWidth, cropHeight, false)
	wantW, wantH := FujiRotatedDims(cropWidth, cropHeight)
	if w != wantW || h != wantH {
		t.Fatalf("RotateFuji dims = (%d,%d), want (%d,%d)", w, h, wantW, wantH)
	}
	if len(out) != w*h {
		t.Fatalf("len(out) = %d, want %d", len(out), w*h)
	}

	var nonZero int
	for _, v := range out {
		if v != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Error("RotateFuji placed no samples into the rotated frame")
	}
}

func TestRotateFujiAltDiffersFromStandard(t *testing.T) {
	cropWidth, cropHeight := 8, 6
	data := make([]uint16, cropWidth*cropHeight)
	for i := range data {
		data[i] = uint16(i + 1)
	}

	std, _, _ := RotateFuji(data, cropWidth, cropHeight, false)
	alt, _, _ := RotateFuji(data, cropWidth, cropHeight, true)

	same := true
	for i := range std {
		if std[i] != alt[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("RotateFuji(alt=true) produced the same layout as alt=false")
	}
}
