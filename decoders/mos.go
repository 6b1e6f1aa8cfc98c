/*
NAME
  mos.go - Leaf/Mamiya MOS raw decoder.

DESCRIPTION
  Decodes a Leaf/Mamiya MOS file (spec §4.9, grounded on
  original_source's mos.rs): MOS stores make/model as an embedded XMP
  packet rather than TIFF Make/Model tags, so those are recovered by a
  substring search for <tiff:Make>/<tiff:Model> instead of an IFD
  lookup; the raw IFD is found by TileOffsets, and only compression=1
  (uncompressed) is implemented. White balance is parsed out of the
  embedded Leaf metadata block's "NeutObj_neutrals" text field.

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
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/camera"
	"github.com/ausocean/rawcore/container/tiff"
	"github.com/ausocean/rawcore/pixdecode"
	"github.com/ausocean/rawcore/rawimage"
)

// DecodeMOS decodes buf as a Leaf/Mamiya MOS file using root and cam.
func DecodeMOS(buf []byte, root *tiff.IFD, cam *camera.Camera) (*rawimage.RawImage, error) {
	rawIFD, ok := root.FindFirstIFD(tiff.TagTileOffsets)
	if !ok {
		return nil, errors.New("mos: no IFD with TileOffsets")
	}

	compE, _ := rawIFD.FindEntry(tiff.TagCompression)
	if err := requireCompression(int(compE.U32(0)), 1); err != nil {
		return nil, err
	}

	widthE, _ := rawIFD.FindEntry(tiff.TagImageWidth)
	heightE, _ := rawIFD.FindEntry(tiff.TagImageLength)
	width := int(widthE.U32(0))
	height := int(heightE.U32(0))

	tileE, ok := rawIFD.FindEntry(tiff.TagTileOffsets)
	if !ok {
		return nil, errors.New("mos: missing TileOffsets")
	}
	offset := int(tileE.U32(0))
	if offset < 0 || offset > len(buf) {
		return nil, errors.New("mos: tile offset out of range")
	}

	pixels := pixdecode.Decode16BE(buf[offset:], width, height)

	img := newImage(cam, width, height)
	img.Data = pixels
	if mk, model, ok := mosXMPMakeModel(buf); ok {
		img.Make, img.Model = mk, model
	}
	img.WB = mosWhiteBalance(buf)
	return img, nil
}

// mosXMPMakeModel recovers tiff:Make/tiff:Model from an embedded XMP
// packet, since MOS carries no plain TIFF Make/Model tags.
func mosXMPMakeModel(buf []byte) (mk, model string, ok bool) {
	mk, okM := xmpTagValue(buf, "tiff:Make")
	model, okD := xmpTagValue(buf, "tiff:Model")
	return mk, model, okM && okD
}

func xmpTagValue(buf []byte, tag string) (string, bool) {
	open := []byte("<" + tag + ">")
	closeTag := []byte("</" + tag + ">")
	i := bytes.Index(buf, open)
	if i < 0 {
		return "", false
	}
	start := i + len(open)
	j := bytes.Index(buf[start:], closeTag)
	if j < 0 {
		return "", false
	}
	return string(buf[start : start+j]), true
}

// mosWhiteBalance searches the embedded Leaf metadata block for the
// "NeutObj_neutrals" key and parses its three whitespace-separated
// channel multipliers.
func mosWhiteBalance(buf []byte) [4]float64 {
	key := []byte("NeutObj_neutrals")
	i := bytes.Index(buf, key)
	if i < 0 {
		return nanWB
	}
	// The value follows the key as whitespace-separated decimal text,
	// conventionally within the next 64 bytes.
	end := i + len(key) + 64
	if end > len(buf) {
		end = len(buf)
	}
	fields := strings.Fields(string(buf[i+len(key) : end]))
	if len(fields) < 3 {
		return nanWB
	}
	r, errR := strconv.ParseFloat(fields[0], 64)
	g, errG := strconv.ParseFloat(fields[1], 64)
	b, errB := strconv.ParseFloat(fields[2], 64)
	if errR != nil || errG != nil || errB != nil {
		return nanWB
	}
	return [4]float64{r, g, b, nan()}
}
