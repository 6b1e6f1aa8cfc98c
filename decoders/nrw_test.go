/*
NAME
  nrw_test.go - tests for the Nikon NRW decoder.

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

func TestDecodeNRWPlain12BitDefault(t *testing.T) {
	const width, height = 4, 2
	stripOffset := uint32(200)

	buf := buildTIFF([]tiffField{
		fieldU16(tiff.TagCFAPattern, 0, 1, 1, 2),
		fieldU32(tiff.TagImageWidth, width),
		fieldU32(tiff.TagImageLength, height),
		fieldU32(tiff.TagStripOffsets, stripOffset),
		fieldU32(tiff.TagNrwWB, 10, 20, 30, 40),
	})
	for len(buf) < int(stripOffset) {
		buf = append(buf, 0)
	}
	buf = append(buf, make([]byte, (width*height/2)*3)...)

	root, err := tiff.NewRoot(buf, 0)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	cam := testCamera(t, "")

	img, err := DecodeNRW(buf, root, cam)
	if err != nil {
		t.Fatalf("DecodeNRW: %v", err)
	}
	if img.Width != width || img.Height != height {
		t.Errorf("dims = %dx%d, want %dx%d", img.Width, img.Height, width, height)
	}
	if img.WB[0] != 10 || img.WB[1] != 20 || img.WB[2] != 40 {
		t.Errorf("WB = %v, want NrwWB channels 0,1,3 = [10 20 40 NaN]", img.WB)
	}
	if !math.IsNaN(img.WB[3]) {
		t.Errorf("WB[3] = %v, want NaN", img.WB[3])
	}
}

func TestNRWWhiteBalanceEmbeddedMarker(t *testing.T) {
	ifd := parseFixture(t, []tiffField{fieldU32(tiff.TagImageWidth, 4)})

	buf := append([]byte("junkjunk"), []byte("NRW")...)
	buf = append(buf, []byte("0100")...)
	gains := make([]byte, 8)
	gains[0], gains[1] = 0x01, 0x00 // channel 0 = 256 (big-endian u16 at off+0)
	gains[2], gains[3] = 0x02, 0x00 // channel 1 = 512
	gains[6], gains[7] = 0x03, 0x00 // channel 2 (blue) = 768
	buf = append(buf, gains...)

	wb := nrwWhiteBalance(buf, ifd)
	if wb[0] != 256 || wb[1] != 512 || wb[2] != 768 {
		t.Errorf("WB = %v, want [256 512 768 NaN]", wb)
	}
	if !math.IsNaN(wb[3]) {
		t.Errorf("WB[3] = %v, want NaN", wb[3])
	}
}

func TestNRWWhiteBalanceDegradesToNaN(t *testing.T) {
	ifd := parseFixture(t, []tiffField{fieldU32(tiff.TagImageWidth, 4)})
	wb := nrwWhiteBalance([]byte("no markers here"), ifd)
	for i, v := range wb {
		if !math.IsNaN(v) {
			t.Errorf("wb[%d] = %v, want NaN", i, v)
		}
	}
}
