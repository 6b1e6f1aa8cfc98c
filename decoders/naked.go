/*
NAME
  naked.go - "naked" sensor dump decoder.

DESCRIPTION
  Decodes a bare sensor dump with no container at all (spec §4.10,
  grounded on original_source's nkd.rs): dimensions come entirely from
  the registry camera record (there is no header to read them from),
  and the stream holds one 10-bit sample per little-endian 16-bit word,
  the top 6 bits of each word unused. WB always degrades to NaN; there is nowhere
  in a naked dump to read it from.

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
	"github.com/ausocean/rawcore/pixdecode"
	"github.com/ausocean/rawcore/rawimage"
)

// DecodeNaked decodes buf as a headerless raw dump using cam's
// registry-declared raw_width/raw_height as the frame's width/height.
func DecodeNaked(buf []byte, cam *camera.Camera) (*rawimage.RawImage, error) {
	width := cam.RawWidth
	height := cam.RawHeight
	if width <= 0 || height <= 0 {
		return nil, errors.New("naked: camera record has no declared dimensions")
	}

	pixels := pixdecode.Decode10LELSB16(buf, width, height)

	img := newImage(cam, width, height)
	img.Data = pixels
	img.WB = nanWB
	return img, nil
}
