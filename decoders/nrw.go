/*
NAME
  nrw.go - Nikon NRW raw decoder.

DESCRIPTION
  Decodes a Nikon NRW file (spec §4.9, grounded on original_source's
  nrw.rs): the raw IFD is identified by CFAPattern, and the pixel
  stream's packing is chosen by camera hint ("coolpixsplit" for the
  interlaced Coolpix layout, "msb32" for the MSB-first 32-bit-word
  packing some compacts use, else plain 12-bit big-endian). White
  balance tries the Nikon makernote's WB0 tag, then an embedded
  "NRW"/"0100" marker's fixed-offset gains, then the NrwWB tag, before
  degrading to NaN.

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
	"bytes"

	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/bitpump"
	"github.com/ausocean/rawcore/camera"
	"github.com/ausocean/rawcore/container/tiff"
	"github.com/ausocean/rawcore/pixdecode"
	"github.com/ausocean/rawcore/rawimage"
)

// DecodeNRW decodes buf as a Nikon NRW file using root and cam.
func DecodeNRW(buf []byte, root *tiff.IFD, cam *camera.Camera) (*rawimage.RawImage, error) {
	rawIFD, ok := root.FindFirstIFD(tiff.TagCFAPattern)
	if !ok {
		return nil, errors.New("nrw: no IFD with CFAPattern")
	}

	widthE, _ := rawIFD.FindEntry(tiff.TagImageWidth)
	heightE, _ := rawIFD.FindEntry(tiff.TagImageLength)
	width := int(widthE.U32(0))
	height := int(heightE.U32(0))

	stripE, ok := rawIFD.FindEntry(tiff.TagStripOffsets)
	if !ok {
		return nil, errors.New("nrw: missing StripOffsets")
	}
	offset := int(stripE.U32(0))
	if offset < 0 || offset > len(buf) {
		return nil, errors.New("nrw: strip offset out of range")
	}
	data := buf[offset:]

	var pixels []uint16
	switch {
	case cam.HasHint("coolpixsplit"):
		pixels = pixdecode.Decode12BEInterlacedUnaligned(data, width, height)
	case cam.HasHint("msb32"):
		pixels = pixdecode.Decode12BEMSB32(data, width, height)
	default:
		pixels = pixdecode.Decode12BE(data, width, height)
	}

	img := newImage(cam, width, height)
	img.Data = pixels
	img.WB = nrwWhiteBalance(buf, root)
	return img, nil
}

// nrwWhiteBalance implements the NefWB0 -> embedded-NRW-marker ->
// NrwWB -> NaN fallback chain (spec §4.8).
func nrwWhiteBalance(buf []byte, root *tiff.IFD) [4]float64 {
	if e, ok := root.FindEntry(tiff.TagNefWB0); ok && e.Count >= 4 {
		return [4]float64{float64(e.U32(0)), float64(e.U32(1)), float64(e.U32(3)), nan()}
	}
	if idx := bytes.Index(buf, []byte("NRW")); idx >= 0 {
		if idx2 := bytes.Index(buf[idx:], []byte("0100")); idx2 >= 0 {
			off := idx + idx2 + 4
			if off+8 <= len(buf) {
				return [4]float64{
					float64(bitpump.U16BE(buf, off)),
					float64(bitpump.U16BE(buf, off+2)),
					float64(bitpump.U16BE(buf, off+6)),
					nan(),
				}
			}
		}
	}
	if e, ok := root.FindEntry(tiff.TagNrwWB); ok && e.Count >= 4 {
		return [4]float64{float64(e.U32(0)), float64(e.U32(1)), float64(e.U32(3)), nan()}
	}
	return nanWB
}
