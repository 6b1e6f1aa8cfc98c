/*
NAME
  image.go - the decoded RawImage product type.

DESCRIPTION
  RawImage is the normalized output of a decode call (spec §3): the
  sensor pixel array promoted to 16-bit samples, a per-camera metadata
  record, and provenance tags. Held in its own package (rather than the
  root package) so that decoders/ can return it without importing back
  into the root rawcore package, which itself dispatches into decoders/.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rawimage holds the decoded RawImage product type and the CFA
// pattern it carries, shared by the root rawcore package and the
// per-format decoders that build one.
package rawimage

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/rawcore/orient"
)

// RawImage is the product of a successful decode (spec §3).
type RawImage struct {
	Make, Model                   string
	CanonicalMake, CanonicalModel string

	Width, Height int
	// Components is 1 for Bayer/X-Trans sensor data, 3 for already
	// demosaiced-in-camera sRAW/YCbCr-assembled data.
	Components int
	Data       []uint16

	// WB holds four white-balance coefficients; an unknown channel is
	// NaN rather than omitted (spec §3, §7: "degrades to all-NaN").
	WB [4]float64

	BlackLevels [4]int
	WhiteLevels [4]int

	ColorMatrix *mat.Dense // 4x3 XYZ-to-camera, nil if unknown.

	CFA CFA

	// Crops is [top, right, bottom, left]; zero value if undeclared.
	Crops [4]int

	Orientation orient.Orientation
}
