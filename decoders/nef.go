/*
NAME
  nef.go - Nikon NEF (lossless-JPEG compressed) raw decoder.

DESCRIPTION
  Decodes a Nikon NEF file whose raw IFD's Compression tag names
  Nikon's lossless-JPEG scheme (spec §4.9, §4.4): the entropy-coded
  strip is a standard 2-component lossless-JPEG stream, decoded the
  same way as CR2's (ljpeg.Decompressor.Decode2). Some older Nikon
  bodies additionally apply a per-symbol "NEF shift" (huffman.NewNEF /
  DecodeNEF) to their DHT tables; this decoder does not implement that
  variant (see DESIGN.md) and returns ErrUnsupportedEncoding for a
  camera hinting it.

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
	"github.com/ausocean/rawcore/ljpeg"
	"github.com/ausocean/rawcore/rawimage"
)

// ErrNoNEFRawIFD is returned when no IFD in the file carries CFAPattern
// (the raw sensor strip; NEF's embedded preview/thumbnail IFDs do not).
var ErrNoNEFRawIFD = errors.New("nef: no raw IFD found")

// DecodeNEF decodes buf as a Nikon NEF file using root (already parsed
// by tiff.NewRoot) and cam's registry metadata.
func DecodeNEF(buf []byte, root *tiff.IFD, cam *camera.Camera) (*rawimage.RawImage, error) {
	if cam.HasHint("nef_shift") {
		return nil, errors.Wrap(ErrUnsupportedEncoding, "nef: shifted-Huffman variant not implemented")
	}

	rawIFD, ok := root.FindFirstIFD(tiff.TagCFAPattern)
	if !ok {
		return nil, ErrNoNEFRawIFD
	}

	widthE, ok := rawIFD.FindEntry(tiff.TagImageWidth)
	if !ok {
		return nil, errors.New("nef: missing ImageWidth")
	}
	heightE, _ := rawIFD.FindEntry(tiff.TagImageLength)
	width := int(widthE.U32(0))
	height := int(heightE.U32(0))

	stripE, ok := rawIFD.FindEntry(tiff.TagStripOffsets)
	if !ok {
		return nil, errors.New("nef: missing StripOffsets")
	}
	offset := int(stripE.U32(0))
	if offset < 0 || offset > len(buf) {
		return nil, errors.New("nef: strip offset out of range")
	}

	dec, err := ljpeg.New(buf[offset:], false)
	if err != nil {
		return nil, errors.Wrap(err, "nef: ljpeg parse")
	}

	pixels := make([]uint16, width*height)
	if err := dec.Decode2(pixels, 0, width, width, height); err != nil {
		return nil, errors.Wrap(err, "nef: ljpeg decode")
	}

	img := newImage(cam, width, height)
	img.Data = pixels
	img.WB = nefWhiteBalance(root)
	return img, nil
}

// nefWhiteBalance implements the NefWB0 -> NaN fallback chain (spec
// §4.8); NEF's makernote WB0 tag is the same tag NRW's chain tries first.
func nefWhiteBalance(root *tiff.IFD) [4]float64 {
	if e, ok := root.FindEntry(tiff.TagNefWB0); ok && e.Count >= 4 {
		return [4]float64{float64(e.U32(0)), float64(e.U32(1)), float64(e.U32(3)), nan()}
	}
	return nanWB
}
