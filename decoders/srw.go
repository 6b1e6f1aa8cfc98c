/*
NAME
  srw.go - Samsung SRW raw decoder.

DESCRIPTION
  Decodes a Samsung SRW file (spec §4.6, grounded on original_source's
  srw.rs): the raw IFD is found by StripOffsets and must declare
  compression 32770; a SrwSensorAreas tag routes the stream to the
  srw1 package's predictive codec, otherwise BitsPerSample selects
  packed 12-bit big-endian samples or 14-bit samples each in its own
  little-endian 16-bit word. White balance is
  SrwRGGBLevels minus SrwRGGBBlacks, per channel.

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
	"github.com/ausocean/rawcore/srw1"
)

// DecodeSRW decodes buf as a Samsung SRW file using root and cam.
func DecodeSRW(buf []byte, root *tiff.IFD, cam *camera.Camera) (*rawimage.RawImage, error) {
	rawIFD, ok := root.FindFirstIFD(tiff.TagStripOffsets)
	if !ok {
		return nil, errors.New("srw: no IFD with StripOffsets")
	}

	compE, _ := rawIFD.FindEntry(tiff.TagCompression)
	if err := requireCompression(int(compE.U32(0)), 32770); err != nil {
		return nil, err
	}

	widthE, _ := rawIFD.FindEntry(tiff.TagImageWidth)
	heightE, _ := rawIFD.FindEntry(tiff.TagImageLength)
	width := int(widthE.U32(0))
	height := int(heightE.U32(0))

	stripE, _ := rawIFD.FindEntry(tiff.TagStripOffsets)
	offset := int(stripE.U32(0))
	if offset < 0 || offset > len(buf) {
		return nil, errors.New("srw: strip offset out of range")
	}
	data := buf[offset:]

	var pixels []uint16
	if areasE, ok := rawIFD.FindEntry(tiff.TagSrwSensorAreas); ok {
		loffset := int(areasE.U32(0))
		if loffset < 0 || loffset > len(buf) {
			return nil, errors.New("srw: SensorAreas offset out of range")
		}
		pixels = srw1.Decode(data, buf[loffset:], width, height)
	} else {
		bpsE, _ := rawIFD.FindEntry(tiff.TagBitsPerSample)
		if bpsE.U32(0) == 14 {
			pixels = pixdecode.Decode14LEUnpacked(data, width, height)
		} else {
			pixels = pixdecode.Decode12BE(data, width, height)
		}
	}

	img := newImage(cam, width, height)
	img.Data = pixels
	img.WB = srwWhiteBalance(rawIFD)
	return img, nil
}

// srwWhiteBalance subtracts SrwRGGBBlacks from SrwRGGBLevels per
// channel (spec §4.8).
func srwWhiteBalance(ifd *tiff.IFD) [4]float64 {
	levels, ok1 := ifd.FindEntry(tiff.TagSrwRGGBLevels)
	blacks, ok2 := ifd.FindEntry(tiff.TagSrwRGGBBlacks)
	if !ok1 || !ok2 || levels.Count < 4 || blacks.Count < 4 {
		return nanWB
	}
	return [4]float64{
		float64(levels.U32(0)) - float64(blacks.U32(0)),
		float64(levels.U32(1)) - float64(blacks.U32(1)),
		float64(levels.U32(3)) - float64(blacks.U32(3)),
		nan(),
	}
}
