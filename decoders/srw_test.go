/*
NAME
  srw_test.go - tests for the Samsung SRW decoder.

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

	"github.com/ausocean/rawcore/container/tiff"
)

func TestDecodeSRWPlain12Bit(t *testing.T) {
	const width, height = 4, 2
	stripOffset := uint32(200)

	buf := buildTIFF([]tiffField{
		fieldU32(tiff.TagImageWidth, width),
		fieldU32(tiff.TagImageLength, height),
		fieldU16(tiff.TagCompression, 32770),
		fieldU16(tiff.TagBitsPerSample, 12),
		fieldU32(tiff.TagStripOffsets, stripOffset),
		fieldU32(tiff.TagSrwRGGBLevels, 1000, 2000, 1500, 1800),
		fieldU32(tiff.TagSrwRGGBBlacks, 100, 200, 150, 180),
	})
	for len(buf) < int(stripOffset) {
		buf = append(buf, 0)
	}
	// 12-bit big-endian packed needs 3 bytes per 2 samples.
	buf = append(buf, make([]byte, (width*height/2)*3)...)

	root, err := tiff.NewRoot(buf, 0)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	cam := testCamera(t, "")

	img, err := DecodeSRW(buf, root, cam)
	if err != nil {
		t.Fatalf("DecodeSRW: %v", err)
	}
	if img.Width != width || img.Height != height {
		t.Errorf("dims = %dx%d, want %dx%d", img.Width, img.Height, width, height)
	}
	if len(img.Data) != width*height {
		t.Fatalf("len(Data) = %d, want %d", len(img.Data), width*height)
	}
	want := [3]float64{900, 1800, 1620}
	if img.WB[0] != want[0] || img.WB[1] != want[1] || img.WB[2] != want[2] {
		t.Errorf("WB = %v, want levels-blacks on channels 0,1,3 = %v", img.WB, want)
	}
	if !math.IsNaN(img.WB[3]) {
		t.Errorf("WB[3] = %v, want NaN", img.WB[3])
	}
}

func TestDecodeSRWRejectsUnsupportedCompression(t *testing.T) {
	buf := buildTIFF([]tiffField{
		fieldU32(tiff.TagImageWidth, 4),
		fieldU32(tiff.TagImageLength, 4),
		fieldU16(tiff.TagCompression, 1),
		fieldU32(tiff.TagStripOffsets, 100),
	})
	root, err := tiff.NewRoot(buf, 0)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	cam := testCamera(t, "")
	if _, err := DecodeSRW(buf, root, cam); err == nil {
		t.Error("expected error for compression != 32770")
	}
}

func TestSRWWhiteBalanceMissingIsNaN(t *testing.T) {
	ifd := parseFixture(t, []tiffField{fieldU32(tiff.TagImageWidth, 4)})
	wb := srwWhiteBalance(ifd)
	for i, v := range wb {
		if !math.IsNaN(v) {
			t.Errorf("wb[%d] = %v, want NaN", i, v)
		}
	}
}
