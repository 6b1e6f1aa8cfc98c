/*
NAME
  raf.go - FUJIFILM RAF raw decoder.

DESCRIPTION
  Decodes a FUJIFILM RAF file (spec §4.4, grounded on original_source's
  raf.rs): dimensions and the pixel offset come from the synthesized
  RafImageWidth/RafImageLength/RafOffsets tags the container/fuji
  parser attaches, bit depth selects 16-bit samples or 14-bit samples
  each in its own little-endian 16-bit word (with camera hints for the
  double-width 12-bit layout and the 12-bit even-rows-then-odd-rows
  "jpeg32" layout some bodies use), and
  SuperCCD bodies carrying the "fuji_rotation"/"fuji_rotation_alt" hint
  have their skewed sensor grid remapped via orient.RotateFuji. White
  balance falls back from RafWBGRB to RafOldWB.

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
	"github.com/ausocean/rawcore/container/fuji"
	"github.com/ausocean/rawcore/container/tiff"
	"github.com/ausocean/rawcore/orient"
	"github.com/ausocean/rawcore/pixdecode"
	"github.com/ausocean/rawcore/rawimage"
)

// DecodeRAF decodes buf using f (already parsed by fuji.Parse) and cam.
func DecodeRAF(buf []byte, f *fuji.File, cam *camera.Camera) (*rawimage.RawImage, error) {
	widthE, ok := f.IFD.FindEntry(tiff.TagRafImageWidth)
	if !ok {
		return nil, errors.New("raf: missing RafImageWidth")
	}
	heightE, _ := f.IFD.FindEntry(tiff.TagRafImageLength)
	width := int(widthE.U32(0))
	height := int(heightE.U32(0))

	data := f.PixelData(buf)
	if data == nil {
		return nil, errors.New("raf: pixel data out of range")
	}

	bps := 16
	if bpsE, ok := f.IFD.FindEntry(tiff.TagRafBitsPerSample); ok {
		bps = int(bpsE.U32(0))
	}

	var pixels []uint16
	switch {
	case cam.HasHint("double_width"):
		pixels = pixdecode.Decode12BEUnpacked(data, width*2, height)
	case cam.HasHint("jpeg32"):
		pixels = pixdecode.Decode12BEInterlacedUnaligned(data, width, height)
	case bps == 14:
		pixels = pixdecode.Decode14LEUnpacked(data, width, height)
	default:
		pixels = pixdecode.Decode16LE(data, width, height)
	}

	img := newImage(cam, width, height)
	img.WB = rafWhiteBalance(f.IFD)

	if cam.HasHint("fuji_rotation") || cam.HasHint("fuji_rotation_alt") {
		rotated, w, h := orient.RotateFuji(pixels, width, height, cam.HasHint("fuji_rotation_alt"))
		img.Width, img.Height = w, h
		img.Data = rotated
	} else {
		img.Data = pixels
	}
	return img, nil
}

// rafWhiteBalance implements the RafWBGRB -> RafOldWB -> NaN fallback
// chain (spec §4.8).
func rafWhiteBalance(ifd *tiff.IFD) [4]float64 {
	if e, ok := ifd.FindEntry(tiff.TagRafWBGRB); ok && e.Count >= 3 {
		return [4]float64{float64(e.U32(1)), float64(e.U32(0)), float64(e.U32(2)), nan()}
	}
	if e, ok := ifd.FindEntry(tiff.TagRafOldWB); ok && e.Count >= 2 {
		return [4]float64{float64(e.U32(0)), 1, float64(e.U32(1)), nan()}
	}
	return nanWB
}
