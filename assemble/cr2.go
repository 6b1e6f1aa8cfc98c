/*
NAME
  cr2.go - CR2 multi-stripe reassembly.

DESCRIPTION
  A CR2 lossless-JPEG frame with more than one entry in Cr2StripeWidths
  (spec §4.4, §4.11) interleaves several narrower lossless-JPEG strips
  side by side into one sensor row. The ordinary (non-sRAW) case decodes
  each strip independently with ljpeg.Decompressor.Decode2 at its own
  x-offset and width, laying the results side by side into the
  full-width output directly at decode time (CR2Stripes). Canon's sRAW
  variant (super_v==2, decoded two lines at a time) and its
  YCbCr-packed pixel layout (super_h==2, three components per pixel)
  can't use that shortcut — cr2.rs decodes the whole concatenated-stripe
  buffer first and reassembles it afterwards, so CR2StripesPaired and
  ConvertYCbCr operate the same way, as a post-decode pass over an
  already-decoded buffer.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package assemble reassembles striped or tiled pixel streams (CR2
// multi-stripe frames, DNG tiled frames) into one contiguous RawImage
// pixel buffer.
package assemble

import "github.com/ausocean/rawcore/ljpeg"

// CR2Stripes decodes dec's lossless-JPEG scan into a width*height
// buffer, splitting it across len(widths) vertical stripes when more
// than one width is given. A single-width slice is the common case of
// one strip spanning the whole frame.
func CR2Stripes(dec *ljpeg.Decompressor, widths []int, width, height int) ([]uint16, error) {
	out := make([]uint16, width*height)
	if len(widths) <= 1 {
		if err := dec.Decode2(out, 0, width, width, height); err != nil {
			return nil, err
		}
		return out, nil
	}

	x := 0
	for _, w := range widths {
		if w <= 0 {
			continue
		}
		if err := dec.Decode2(out, x, width, w, height); err != nil {
			return nil, err
		}
		x += w
	}
	return out, nil
}

// ConvertYCbCr converts an already-decoded sRAW pixel buffer in place
// from YCbCr triples to RGB triples (spec §4.11). wb supplies the
// per-channel white-balance coefficients the fixed-point conversion
// scales by; wb[3] (emerald) is unused.
func ConvertYCbCr(pixels []uint16, wb [4]float64) {
	c1 := int32(1024 * 1024 / wb[0])
	c2 := int32(wb[1])
	c3 := int32(1024 * 1024 / wb[2])

	for i := 0; i+3 <= len(pixels); i += 3 {
		y := int32(pixels[i])
		cb := int32(pixels[i+1]) - 16380
		cr := int32(pixels[i+2]) - 16380

		r := c1 * (y + cr)
		g := c2 * (y + ((-778*cb - (cr << 11)) >> 12))
		b := c3 * (y + cb)

		pixels[i] = uint16(r >> 8)
		pixels[i+1] = uint16(g >> 8)
		pixels[i+2] = uint16(b >> 8)
	}
}

// CR2StripesPaired reassembles an already-decoded concatenated-stripe
// buffer (in, width*height) into out the same shape, for Canon's sRAW
// super_v==2 encoding: the LJPEG stream was decoded two rows at a time,
// so reassembly must copy pairs of rows per field rather than one row
// at a time (spec §4.11). widths' first entry is the common stripe
// width every field shares; a camera declaring mismatched widths here
// would not decode correctly, matching the upstream reassembly this is
// ported from.
func CR2StripesPaired(in []uint16, widths []int, width, height int) []uint16 {
	out := make([]uint16, width*height)
	if len(widths) == 0 || widths[0] <= 0 {
		copy(out, in)
		return out
	}
	nfields := len(widths)
	fieldwidth := widths[0]
	fieldstart := 0
	inpos := 0
	for f := 0; f < nfields; f++ {
		row := 0
		for row < height {
			for g := 0; g < nfields; g++ {
				outpos := row*width + fieldstart
				copy(out[outpos:outpos+fieldwidth], in[inpos:inpos+fieldwidth])
				row++
				outpos = row*width + fieldstart
				copy(out[outpos:outpos+fieldwidth], in[inpos+width:inpos+width+fieldwidth])
				row++
				inpos += fieldwidth
			}
			inpos += width
		}
		fieldstart += fieldwidth
	}
	return out
}

// CR2StripesScaled reassembles an already-decoded concatenated-stripe
// buffer for the non-paired sRAW case: each field's on-disk width is
// scaled by cpp/sh (components-per-pixel over the horizontal sampling
// factor) to get its true width in the YCbCr-converted buffer, then
// copied row by row into its destination column range (spec §4.11).
func CR2StripesScaled(in []uint16, widths []int, width, height, cpp, sh int) []uint16 {
	out := make([]uint16, width*height)
	fieldstart, fieldpos := 0, 0
	for _, w := range widths {
		fw := w / sh * cpp
		if fw <= 0 {
			continue
		}
		for row := 0; row < height; row++ {
			outpos := row*width + fieldstart
			inpos := fieldpos + row*fw
			copy(out[outpos:outpos+fw], in[inpos:inpos+fw])
		}
		fieldstart += fw
		fieldpos += fw * height
	}
	return out
}
