/*
NAME
  mrw.go - Minolta MRW raw decoder.

DESCRIPTION
  Decodes a Minolta MRW file (spec §4.7, grounded on original_source's
  mrw.rs): dimensions, the packed flag, and the white-balance gains come
  straight off the PRD/WBG blocks the container/mrw parser already
  extracted; packed files are 12-bit big-endian packed triples, unpacked
  files are 12-bit big-endian with one sample per 16-bit word.

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
	"github.com/ausocean/rawcore/container/mrw"
	"github.com/ausocean/rawcore/pixdecode"
	"github.com/ausocean/rawcore/rawimage"
)

// DecodeMRW decodes buf using f (already parsed by mrw.Parse) and cam.
func DecodeMRW(buf []byte, f *mrw.File, cam *camera.Camera) (*rawimage.RawImage, error) {
	if f.DataOffset < 0 || f.DataOffset > len(buf) {
		return nil, errors.New("mrw: data offset out of range")
	}
	data := buf[f.DataOffset:]

	var pixels []uint16
	if f.Packed {
		pixels = pixdecode.Decode12BE(data, f.RawWidth, f.RawHeight)
	} else {
		pixels = pixdecode.Decode12BEUnpacked(data, f.RawWidth, f.RawHeight)
	}

	img := newImage(cam, f.RawWidth, f.RawHeight)
	img.Data = pixels
	img.WB = [4]float64{float64(f.WBVals[0]), float64(f.WBVals[1]), float64(f.WBVals[3]), nan()}
	return img, nil
}
