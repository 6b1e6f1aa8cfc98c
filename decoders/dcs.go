/*
NAME
  dcs.go - Kodak DCS raw decoder.

DESCRIPTION
  Decodes a Kodak DCS file (spec §4.9, grounded on original_source's
  dcs.rs): the raw IFD is the one carrying StripOffsets whose declared
  width exceeds 1000 (Kodak DCS bodies also embed a low-resolution
  thumbnail IFD that must be skipped), and its 8-bit samples are
  mapped to 16-bit through the GrayResponse lookup table, a plain
  lookup with no dithering. DCS
  carries no white-balance tag the original decodes, so WB always
  degrades to NaN.

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

// ErrNoDCSRawIFD is returned when no IFD's declared width exceeds the
// thumbnail-exclusion threshold.
var ErrNoDCSRawIFD = errors.New("dcs: no raw IFD found")

// DecodeDCS decodes buf as a Kodak DCS file using root and cam.
func DecodeDCS(buf []byte, root *tiff.IFD, cam *camera.Camera) (*rawimage.RawImage, error) {
	var rawIFD *tiff.IFD
	for _, ifd := range root.FindIFDsWithTag(tiff.TagStripOffsets) {
		widthE, _ := ifd.FindEntry(tiff.TagImageWidth)
		if int(widthE.U32(0)) > 1000 {
			rawIFD = ifd
			break
		}
	}
	if rawIFD == nil {
		return nil, ErrNoDCSRawIFD
	}

	widthE, _ := rawIFD.FindEntry(tiff.TagImageWidth)
	heightE, _ := rawIFD.FindEntry(tiff.TagImageLength)
	width := int(widthE.U32(0))
	height := int(heightE.U32(0))

	stripE, _ := rawIFD.FindEntry(tiff.TagStripOffsets)
	offset := int(stripE.U32(0))
	if offset < 0 || offset > len(buf) {
		return nil, errors.New("dcs: strip offset out of range")
	}

	var table [256]uint16
	if grE, ok := rawIFD.FindEntry(tiff.TagGrayResponse); ok {
		for i := 0; i < 256 && i < int(grE.Count); i++ {
			table[i] = uint16(grE.U32(i))
		}
	} else {
		for i := range table {
			table[i] = uint16(i) << 8
		}
	}

	pixels := pixdecode.Decode8BitWTable(buf[offset:], width, height, &table)

	img := newImage(cam, width, height)
	img.Data = pixels
	img.WB = nanWB
	return img, nil
}
