/*
NAME
  cr2.go - Canon CR2 raw decoder.

DESCRIPTION
  Decodes a Canon CR2 file (spec §4.4, §4.11, grounded on
  original_source's cr2.rs): the raw strip is taken from the first TIFF
  IFD carrying both StripOffsets and a Compression tag (its value is not
  checked), and is
  decoded with the ljpeg package. An ordinary frame's Cr2StripeWidths
  stripes are decoded directly into their destination columns
  (assemble.CR2Stripes). A Canon sRAW frame declares a 3-component
  YCbCr pixel layout (SuperH()==2) and, on some bodies, a paired-row
  entropy stream (SuperV()==2): both require decoding the whole
  concatenated-stripe buffer first, then converting YCbCr to RGB and
  reassembling stripes as a post-decode pass (assemble.ConvertYCbCr,
  assemble.CR2StripesPaired / CR2StripesScaled). White balance falls
  back through Cr2ColorData, Cr2PowerShotWB, and Cr2OldWB before
  degrading to NaN (spec §7).

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

	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/assemble"
	"github.com/ausocean/rawcore/camera"
	"github.com/ausocean/rawcore/container/tiff"
	"github.com/ausocean/rawcore/ljpeg"
	"github.com/ausocean/rawcore/rawimage"
)

// ErrNoCR2RawIFD is returned when no IFD in the file carries both
// StripOffsets and a Compression tag.
var ErrNoCR2RawIFD = errors.New("cr2: no raw IFD found")

// DecodeCR2 decodes buf as a Canon CR2 file using root (already parsed
// by tiff.NewRoot) and cam's registry metadata.
func DecodeCR2(buf []byte, root *tiff.IFD, cam *camera.Camera) (*rawimage.RawImage, error) {
	rawIFD, err := findCR2RawIFD(root)
	if err != nil {
		return nil, err
	}

	widthE, ok := rawIFD.FindEntry(tiff.TagImageWidth)
	if !ok {
		return nil, errors.New("cr2: missing ImageWidth")
	}
	heightE, _ := rawIFD.FindEntry(tiff.TagImageLength)
	width := int(widthE.U32(0))
	height := int(heightE.U32(0))

	stripE, ok := rawIFD.FindEntry(tiff.TagStripOffsets)
	if !ok {
		return nil, errors.New("cr2: missing StripOffsets")
	}
	offset := int(stripE.U32(0))
	if offset < 0 || offset > len(buf) {
		return nil, errors.New("cr2: strip offset out of range")
	}

	dec, err := ljpeg.New(buf[offset:], false)
	if err != nil {
		return nil, errors.Wrap(err, "cr2: ljpeg parse")
	}

	cpp := 1
	if dec.SuperH() == 2 {
		cpp = 3 // sRAW: Y/Cb/Cr packed per pixel (spec §4.11).
	}

	var widths []int
	if stripeE, ok := rawIFD.FindEntry(tiff.TagCr2StripeWidths); ok && stripeE.Count > 0 && stripeE.U32(0) != 0 {
		widths = make([]int, stripeE.Count)
		for i := range widths {
			widths[i] = int(stripeE.U32(i))
		}
	}

	// The decode-at-offset shortcut in CR2Stripes only holds for an
	// ordinary Bayer-pair stream: sRAW needs the raw concatenated-stripe
	// buffer intact so ConvertYCbCr and the paired-row reassembly can
	// run over it afterwards (spec §4.11).
	var pixels []uint16
	directStripes := cpp == 1 && dec.SuperV() != 2 && len(widths) > 0
	if directStripes {
		pixels, err = assemble.CR2Stripes(dec, widths, width, height)
	} else {
		pixels = make([]uint16, width*height)
		err = dec.Decode2(pixels, 0, width, width, height)
	}
	if err != nil {
		return nil, errors.Wrap(err, "cr2: ljpeg decode")
	}

	wb := cr2WhiteBalance(rawIFD, cam)

	if cpp == 3 {
		assemble.ConvertYCbCr(pixels, wb)
		if width/cpp < height {
			width, height = height*cpp, width/cpp
		}
	}
	if cam.HasHint("double_line") {
		width /= 2
		height *= 2
	}

	if len(widths) > 0 && !directStripes {
		if dec.SuperV() == 2 {
			pixels = assemble.CR2StripesPaired(pixels, widths, width, height)
		} else {
			pixels = assemble.CR2StripesScaled(pixels, widths, width, height, cpp, dec.SuperH())
		}
	}

	img := newImage(cam, width, height)
	img.WB = wb
	img.Data = pixels
	if cpp == 3 {
		img.Components = 3
		img.Width /= 3
		img.Crops = [4]int{}
		img.BlackLevels = [4]int{}
		img.WhiteLevels = [4]int{65535, 65535, 65535, 65535}
	}
	return img, nil
}

// findCR2RawIFD returns the first IFD, in traversal order, carrying
// both StripOffsets and Compression; the Compression value itself is
// not compared.
func findCR2RawIFD(root *tiff.IFD) (*tiff.IFD, error) {
	for _, ifd := range root.FindIFDsWithTag(tiff.TagStripOffsets) {
		if _, ok := ifd.FindEntry(tiff.TagCompression); ok {
			return ifd, nil
		}
	}
	return nil, ErrNoCR2RawIFD
}

// cr2WhiteBalance implements the Cr2ColorData -> Cr2PowerShotWB ->
// Cr2OldWB -> NaN fallback chain (spec §4.8).
func cr2WhiteBalance(ifd *tiff.IFD, cam *camera.Camera) [4]float64 {
	if e, ok := ifd.FindEntry(tiff.TagCr2ColorData); ok {
		idx := cam.WBOffset
		if idx == 0 {
			idx = 63
		}
		if int(e.Count) > idx+3 {
			return [4]float64{
				float64(e.U32(idx)), float64(e.U32(idx + 1)),
				float64(e.U32(idx + 3)), math.NaN(),
			}
		}
	}
	if e, ok := ifd.FindEntry(tiff.TagCr2PowerShotWB); ok && e.Count >= 4 {
		return [4]float64{float64(e.U32(0)), float64(e.U32(1)), float64(e.U32(3)), math.NaN()}
	}
	if e, ok := ifd.FindEntry(tiff.TagCr2OldWB); ok && e.Count >= 4 {
		return [4]float64{float64(e.U32(0)), float64(e.U32(1)), float64(e.U32(3)), math.NaN()}
	}
	return nanWB
}
