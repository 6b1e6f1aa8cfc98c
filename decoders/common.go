/*
NAME
  common.go - shared scaffolding for the per-format raw decoders.

DESCRIPTION
  Each format-specific file in this package (spec §4) implements one
  decoder: locate the pixel stream and its dimensions from the parsed
  container, dispatch to the right pixdecode/huffman/ljpeg routine, and
  extract a white-balance vector. newImage centralises the part that
  never varies by format: stamping the camera registry's metadata
  (CFA, color matrix, black/white levels, crops, orientation) onto the
  product RawImage.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package decoders implements the per-raw-format pixel decoders
// dispatched to by the root package once rawformat.Sniff identifies a
// file's kind.
package decoders

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/camera"
	"github.com/ausocean/rawcore/orient"
	"github.com/ausocean/rawcore/rawimage"
)

// ErrUnsupportedEncoding is returned when a format's compression or
// bit-depth tag carries a value this library does not implement for
// that format (spec §7 kind 3).
var ErrUnsupportedEncoding = errors.New("decoders: unsupported encoding for this format")

// nanWB is the "channel unknown" white-balance vector (spec §3, §7).
var nanWB = [4]float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}

// nan is a short alias used by per-format WB fallback chains to mark
// the emerald/4th channel unknown.
func nan() float64 { return math.NaN() }

// newImage builds the product RawImage's camera-derived fields plus
// Width/Height, with Components 1 and an all-NaN WB, leaving Data for
// the caller to fill (and WB/Components to override where known).
func newImage(cam *camera.Camera, width, height int) *rawimage.RawImage {
	return &rawimage.RawImage{
		Make:           cam.Make,
		Model:          cam.Model,
		CanonicalMake:  cam.CanonicalMake,
		CanonicalModel: cam.CanonicalModel,
		Width:          width,
		Height:         height,
		Components:     1,
		WB:             nanWB,
		BlackLevels:    [4]int{cam.BlackPoint, cam.BlackPoint, cam.BlackPoint, cam.BlackPoint},
		WhiteLevels:    [4]int{cam.WhitePoint, cam.WhitePoint, cam.WhitePoint, cam.WhitePoint},
		ColorMatrix:    cam.ColorMatrix,
		CFA:            rawimage.ParseCFA(cam.CFAPattern),
		Crops:          cam.Crops,
		Orientation:    orient.FromEXIF(cam.Orientation),
	}
}

// requireCompression returns ErrUnsupportedEncoding wrapped with got/want
// unless got equals one of want.
func requireCompression(got int, want ...int) error {
	for _, w := range want {
		if got == w {
			return nil
		}
	}
	return errors.Wrapf(ErrUnsupportedEncoding, "compression %d not in %v", got, want)
}
