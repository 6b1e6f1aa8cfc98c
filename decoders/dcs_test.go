/*
NAME
  dcs_test.go - tests for the Kodak DCS decoder.

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

func TestDecodeDCSSkipsThumbnailIFD(t *testing.T) {
	const width, height = 1296, 2
	stripOffset := uint32(400)

	buf := buildTIFFChain([][]tiffField{
		{ // thumbnail IFD, width below the 1000 threshold
			fieldU32(tiff.TagImageWidth, 80),
			fieldU32(tiff.TagImageLength, 60),
			fieldU32(tiff.TagStripOffsets, 300),
		},
		{ // main raw IFD
			fieldU32(tiff.TagImageWidth, width),
			fieldU32(tiff.TagImageLength, height),
			fieldU32(tiff.TagStripOffsets, stripOffset),
		},
	})
	for len(buf) < int(stripOffset) {
		buf = append(buf, 0)
	}
	buf = append(buf, make([]byte, width*height)...)

	root, err := tiff.NewRoot(buf, 0)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	cam := testCamera(t, "")

	img, err := DecodeDCS(buf, root, cam)
	if err != nil {
		t.Fatalf("DecodeDCS: %v", err)
	}
	if img.Width != width || img.Height != height {
		t.Errorf("dims = %dx%d, want %dx%d (thumbnail IFD should be skipped)", img.Width, img.Height, width, height)
	}
	if len(img.Data) != width*height {
		t.Fatalf("len(Data) = %d, want %d", len(img.Data), width*height)
	}
	for i, v := range img.WB {
		if !math.IsNaN(v) {
			t.Errorf("WB[%d] = %v, want NaN (DCS carries no WB tag)", i, v)
		}
	}
}

func TestDecodeDCSNoCandidateIFD(t *testing.T) {
	buf := buildTIFF([]tiffField{
		fieldU32(tiff.TagImageWidth, 80),
		fieldU32(tiff.TagStripOffsets, 100),
	})
	root, err := tiff.NewRoot(buf, 0)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	cam := testCamera(t, "")
	if _, err := DecodeDCS(buf, root, cam); err != ErrNoDCSRawIFD {
		t.Errorf("err = %v, want ErrNoDCSRawIFD", err)
	}
}

func TestDecodeDCSUsesIdentityTableWithoutGrayResponse(t *testing.T) {
	const width, height = 1296, 1
	stripOffset := uint32(300)
	buf := buildTIFF([]tiffField{
		fieldU32(tiff.TagImageWidth, width),
		fieldU32(tiff.TagImageLength, height),
		fieldU32(tiff.TagStripOffsets, stripOffset),
	})
	for len(buf) < int(stripOffset) {
		buf = append(buf, 0)
	}
	data := make([]byte, width*height)
	data[0] = 0xAB
	buf = append(buf, data...)

	root, err := tiff.NewRoot(buf, 0)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	cam := testCamera(t, "")
	img, err := DecodeDCS(buf, root, cam)
	if err != nil {
		t.Fatalf("DecodeDCS: %v", err)
	}
	if want := uint16(0xAB) << 8; img.Data[0] != want {
		t.Errorf("Data[0] = %#x, want identity-table value %#x", img.Data[0], want)
	}
}
