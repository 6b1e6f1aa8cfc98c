/*
NAME
  orient.go - EXIF orientation decomposition and Fuji SuperCCD rotation.

DESCRIPTION
  Maps the standard EXIF Orientation code (1..8) to the (transpose,
  flip-x, flip-y) triple a consumer applies to rotate a decoded image
  (spec §3, §4.12). The decoder itself never rotates pixel data; the
  one exception is Fuji SuperCCD geometry, whose sensor grid is skewed
  45 degrees, so the RAF decoder computes the rotated frame's width and
  height directly (spec §4.4/§4.12).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package orient decomposes EXIF orientation codes and computes the
// Fuji SuperCCD rotated-frame geometry.
package orient

// Orientation is an EXIF orientation code (1..8), or Unknown when the
// source tag was absent.
type Orientation int

const (
	Unknown Orientation = 0
	Top     Orientation = 1
	TopFlip Orientation = 2
	Bottom  Orientation = 3
	BotFlip Orientation = 4
	LeftFlip Orientation = 5
	Right   Orientation = 6
	RightFlip Orientation = 7
	Left    Orientation = 8
)

// Decomposed is the (transpose, flip-x, flip-y) triple a consumer
// applies, in that order, to rotate a decoded image into visual
// orientation.
type Decomposed struct {
	Transpose bool
	FlipX     bool
	FlipY     bool
}

// table is the standard EXIF orientation truth table (spec §4.12).
var table = map[Orientation]Decomposed{
	Top:       {false, false, false},
	TopFlip:   {false, true, false},
	Bottom:    {false, true, true},
	BotFlip:   {false, false, true},
	LeftFlip:  {true, false, false},
	Right:     {true, true, false},
	RightFlip: {true, true, true},
	Left:      {true, false, true},
}

// Decompose resolves o to its (transpose, flip-x, flip-y) triple.
// Unknown and any code outside 1..8 decompose to the identity.
func Decompose(o Orientation) Decomposed {
	d, ok := table[o]
	if !ok {
		return Decomposed{}
	}
	return d
}

// FromEXIF clamps a raw EXIF orientation tag value to a valid
// Orientation, collapsing anything outside 1..8 to Unknown.
func FromEXIF(v int) Orientation {
	if v < 1 || v > 8 {
		return Unknown
	}
	return Orientation(v)
}

// FujiRotatedDims computes the SuperCCD rotated frame's width and
// height from the sensor's active-area crop width/height (spec §4.4,
// §4.12): the 45-degree-skewed grid widens into rotatedWidth =
// cropWidth + cropHeight/2, and rotatedHeight = rotatedWidth - 1.
func FujiRotatedDims(cropWidth, cropHeight int) (width, height int) {
	width = cropWidth + cropHeight/2
	height = width - 1
	return width, height
}

// RotateFuji remaps a cropWidth x cropHeight SuperCCD sensor grid
// (stored as plain rows and columns) into the skewed rotatedWidth x
// rotatedHeight frame FujiRotatedDims describes, placing each source
// sample along its true 45-degree diagonal. alt selects the mirrored
// variant some SuperCCD generations need (spec §4.4's
// "fuji_rotation_alt" hint).
func RotateFuji(data []uint16, cropWidth, cropHeight int, alt bool) (out []uint16, width, height int) {
	width, height = FujiRotatedDims(cropWidth, cropHeight)
	out = make([]uint16, width*height)
	for row := 0; row < cropHeight; row++ {
		for col := 0; col < cropWidth; col++ {
			v := data[row*cropWidth+col]
			var ox, oy int
			if alt {
				ox = cropHeight - 1 - row + col/2
				oy = col + (cropHeight-1-row)/2
			} else {
				ox = col + (cropHeight-1-row)/2
				oy = cropHeight - 1 - row + col/2
			}
			if ox >= 0 && ox < width && oy >= 0 && oy < height {
				out[oy*width+ox] = v
			}
		}
	}
	return out, width, height
}
