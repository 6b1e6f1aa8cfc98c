/*
NAME
  camera.go - camera identification record and capability registry.

DESCRIPTION
  A Camera is the metadata record a decoder looks up by (make, model,
  mode) to learn how to interpret a raw file's pixel stream (spec §3,
  §4.8): CFA pattern, black/white levels, the XYZ-to-camera color
  matrix, active-area crops, orientation, and a set of opaque decoding
  hints consulted via HasHint.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package camera holds the camera-identification record and the
// (make, model, mode) → Camera capability registry decoders consult.
package camera

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Camera is one registry entry's decoded capability record (spec §3).
type Camera struct {
	Make, Model                   string
	CanonicalMake, CanonicalModel string
	Mode                          string
	CFAPattern                    string // BGGR/GRBG/GBRG/RGGB, or an X-Trans pattern string.
	WhitePoint                    int
	BlackPoint                    int
	ColorMatrix                   *mat.Dense // 4x3 XYZ-to-camera.
	Crops                         [4]int     // top, right, bottom, left.
	Orientation                   int
	WBOffset                      int
	// RawWidth/RawHeight declare the full sensor frame dimensions for
	// formats with no in-file header to read them from (spec §4.10's
	// naked dumps).
	RawWidth, RawHeight int
	hints               map[string]struct{}
}

// HasHint reports whether name is among this camera's decoding hints
// (e.g. "nolowbits", "wb_mangle", "double_line", "fuji_rotation",
// "coolpixsplit", "msb32", "linearization"; spec §4.8).
func (c Camera) HasHint(name string) bool {
	if c.hints == nil {
		return false
	}
	_, ok := c.hints[name]
	return ok
}

// ErrUnsupported is wrapped with the make/model/mode string on a
// registry miss (spec §7 kind 2: "unsupported camera").
var ErrUnsupported = errors.New("camera: unsupported camera")

// key identifies a registry entry by its lookup triple.
type key struct {
	make, model, mode string
}

// Registry is an immutable (make, model, mode) → Camera map, built once
// by ParseRegistry or the process-wide default (Default).
type Registry struct {
	entries map[key]*Camera
}

// Lookup finds the camera entry for (make, model, mode), trying the
// exact mode first and falling back to the empty mode (spec §4.8: exact
// (make, model, "") first, since most decoders never pass a mode).
func (r *Registry) Lookup(make_, model, mode string) (*Camera, error) {
	if c, ok := r.entries[key{make_, model, mode}]; ok {
		return c, nil
	}
	if mode != "" {
		if c, ok := r.entries[key{make_, model, ""}]; ok {
			return c, nil
		}
	}
	return nil, errors.Wrapf(ErrUnsupported, "%s %s (mode %q)", make_, model, mode)
}
