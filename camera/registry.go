/*
NAME
  registry.go - TOML-backed camera registry loader.

DESCRIPTION
  Parses the registry file schema from spec §6: a top-level `cameras`
  table of entries with `make`, `model`, `canonical_make`,
  `canonical_model`, `whitepoint`, `blackpoint`, `color_matrix` (12 ints,
  column-major 4x3), `color_pattern`, and optional `hints`, `crops`,
  `wb_offset`, `mode`. A malformed entry is skipped, and a duplicate
  entry replaces the earlier one, each with a warning rather than
  failing the whole registry (spec §9); Default
  lazily builds the process-wide registry from the embedded
  cameras.toml on first use, guarded by sync.Once.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package camera

import (
	"bytes"
	_ "embed"
	"io"
	"io/ioutil"
	"sync"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

//go:embed cameras.toml
var defaultRegistryTOML []byte

type registryFile struct {
	Cameras []cameraEntry `toml:"cameras"`
}

type cameraEntry struct {
	Make           string `toml:"make"`
	Model          string `toml:"model"`
	CanonicalMake  string `toml:"canonical_make"`
	CanonicalModel string `toml:"canonical_model"`
	Whitepoint     int    `toml:"whitepoint"`
	Blackpoint     int    `toml:"blackpoint"`
	ColorMatrix    []int  `toml:"color_matrix"`
	ColorPattern   string `toml:"color_pattern"`
	Hints          []string `toml:"hints"`
	Crops          []int    `toml:"crops"`
	WBOffset       int      `toml:"wb_offset"`
	Mode           string   `toml:"mode"`
	RawWidth       int      `toml:"raw_width"`
	RawHeight      int      `toml:"raw_height"`
}

// ParseRegistry reads a registry file per spec §6's schema. Entries
// missing make, model, or a 12-element color_matrix are skipped with a
// warning rather than rejecting the whole file; a later entry with the
// same (make, model, mode) replaces an earlier one, also with a warning.
func ParseRegistry(r io.Reader) (*Registry, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "camera: reading registry")
	}

	var rf registryFile
	if err := toml.Unmarshal(data, &rf); err != nil {
		return nil, errors.Wrap(err, "camera: parsing registry TOML")
	}

	reg := &Registry{entries: make(map[key]*Camera)}
	for _, e := range rf.Cameras {
		if e.Make == "" || e.Model == "" {
			warnLogger().Log(levelWarning, "camera: skipping registry entry with empty make/model")
			continue
		}
		if len(e.ColorMatrix) != 12 {
			warnLogger().Log(levelWarning, "camera: skipping registry entry with malformed color_matrix",
				"make", e.Make, "model", e.Model, "len", len(e.ColorMatrix))
			continue
		}

		m := mat.NewDense(4, 3, nil)
		for col := 0; col < 3; col++ {
			for row := 0; row < 4; row++ {
				m.Set(row, col, float64(e.ColorMatrix[col*4+row]))
			}
		}

		var crops [4]int
		copy(crops[:], e.Crops)

		hints := make(map[string]struct{}, len(e.Hints))
		for _, h := range e.Hints {
			hints[h] = struct{}{}
		}

		c := &Camera{
			Make: e.Make, Model: e.Model,
			CanonicalMake: e.CanonicalMake, CanonicalModel: e.CanonicalModel,
			Mode:         e.Mode,
			CFAPattern:   e.ColorPattern,
			WhitePoint:   e.Whitepoint,
			BlackPoint:   e.Blackpoint,
			ColorMatrix:  m,
			Crops:        crops,
			WBOffset:     e.WBOffset,
			RawWidth:     e.RawWidth,
			RawHeight:    e.RawHeight,
			hints:        hints,
		}

		k := key{e.Make, e.Model, e.Mode}
		if _, exists := reg.entries[k]; exists {
			warnLogger().Log(levelWarning, "camera: duplicate registry entry, replacing",
				"make", e.Make, "model", e.Model, "mode", e.Mode)
		}
		reg.entries[k] = c
	}

	return reg, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry built from the embedded
// cameras.toml, parsed exactly once under a single-assignment guard
// (spec §9 "Global lazy registry"). A parse failure in the embedded
// file is a build-time defect, not a runtime condition callers must
// handle, so it yields an empty registry plus a logged warning rather
// than panicking the calling decode.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := ParseRegistry(bytes.NewReader(defaultRegistryTOML))
		if err != nil {
			warnLogger().Log(levelWarning, "camera: embedded registry failed to parse", "error", err.Error())
			r = &Registry{entries: make(map[key]*Camera)}
		}
		defaultReg = r
	})
	return defaultReg
}
