/*
NAME
  mef.go - Mamiya MEF raw decoder.

DESCRIPTION
  Decodes a Mamiya MEF file (spec §4.9, grounded on original_source's
  mef.rs): the raw IFD is found by CFAPattern and decoded as plain
  12-bit big-endian samples. MEF carries no white-balance tag the
  original decodes, so WB always degrades to NaN.

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
	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/camera"
	"github.com/ausocean/rawcore/container/tiff"
	"github.com/ausocean/rawcore/pixdecode"
	"github.com/ausocean/rawcore/rawimage"
)

// DecodeMEF decodes buf as a Mamiya MEF file using root and cam.
func DecodeMEF(buf []byte, root *tiff.IFD, cam *camera.Camera) (*rawimage.RawImage, error) {
	rawIFD, ok := root.FindFirstIFD(tiff.TagCFAPattern)
	if !ok {
		return nil, errors.New("mef: no IFD with CFAPattern")
	}

	widthE, _ := rawIFD.FindEntry(tiff.TagImageWidth)
	heightE, _ := rawIFD.FindEntry(tiff.TagImageLength)
	width := int(widthE.U32(0))
	height := int(heightE.U32(0))

	stripE, ok := rawIFD.FindEntry(tiff.TagStripOffsets)
	if !ok {
		return nil, errors.New("mef: missing StripOffsets")
	}
	offset := int(stripE.U32(0))
	if offset < 0 || offset > len(buf) {
		return nil, errors.New("mef: strip offset out of range")
	}

	pixels := pixdecode.Decode12BE(buf[offset:], width, height)

	img := newImage(cam, width, height)
	img.Data = pixels
	img.WB = nanWB
	return img, nil
}
