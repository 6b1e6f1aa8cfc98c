/*
NAME
  pef.go - Pentax PEF raw decoder.

DESCRIPTION
  Decodes a Pentax PEF file (spec §4.9, grounded on original_source's
  pef.rs): the raw IFD is found by StripOffsets, compression must be
  1 (uncompressed), and samples are 16-bit big-endian. White balance
  comes from the Pentax makernote's WB tag, channels 0, 1, and 3.

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

// DecodePEF decodes buf as a Pentax PEF file using root and cam.
func DecodePEF(buf []byte, root *tiff.IFD, cam *camera.Camera) (*rawimage.RawImage, error) {
	rawIFD, ok := root.FindFirstIFD(tiff.TagStripOffsets)
	if !ok {
		return nil, errors.New("pef: no IFD with StripOffsets")
	}

	compE, _ := rawIFD.FindEntry(tiff.TagCompression)
	if err := requireCompression(int(compE.U32(0)), 1); err != nil {
		return nil, err
	}

	widthE, _ := rawIFD.FindEntry(tiff.TagImageWidth)
	heightE, _ := rawIFD.FindEntry(tiff.TagImageLength)
	width := int(widthE.U32(0))
	height := int(heightE.U32(0))

	stripE, _ := rawIFD.FindEntry(tiff.TagStripOffsets)
	offset := int(stripE.U32(0))
	if offset < 0 || offset > len(buf) {
		return nil, errors.New("pef: strip offset out of range")
	}

	pixels := pixdecode.Decode16BE(buf[offset:], width, height)

	img := newImage(cam, width, height)
	img.Data = pixels
	img.WB = pefWhiteBalance(root)
	return img, nil
}

// pefWhiteBalance reads the PefWB tag's channels 0, 1, 3 (spec §4.8).
func pefWhiteBalance(root *tiff.IFD) [4]float64 {
	e, ok := root.FindEntry(tiff.TagPefWB)
	if !ok || e.Count < 4 {
		return nanWB
	}
	return [4]float64{float64(e.U32(0)), float64(e.U32(1)), float64(e.U32(3)), nan()}
}
