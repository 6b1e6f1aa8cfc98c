/*
NAME
  cfa.go - color filter array pattern.

DESCRIPTION
  A small 2D tile of color indices (spec §3 CFA): 2x2 Bayer variants
  (RGGB, BGGR, GRBG, GBRG) and Fuji's 6x6 X-Trans, expressed the same
  way so downstream consumers never special-case Bayer vs non-Bayer.
  ParseCFA builds no other tile shape (such as Canon Pro70's 8x2); any
  other pattern string yields the RGGB tile.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rawimage

// Color indices used by a CFA tile.
const (
	ColorR = 0
	ColorG = 1
	ColorB = 2
	ColorE = 3 // Emerald, used by some Sony sensors.
)

// CFA is a camera's color filter array tile: a width*height grid of
// color indices repeated across the full sensor.
type CFA struct {
	Width, Height int
	Tile          []byte
}

// bayerTiles are the four 2x2 Bayer permutations keyed by their
// registry color_pattern string.
var bayerTiles = map[string][]byte{
	"RGGB": {ColorR, ColorG, ColorG, ColorB},
	"BGGR": {ColorB, ColorG, ColorG, ColorR},
	"GRBG": {ColorG, ColorR, ColorB, ColorG},
	"GBRG": {ColorG, ColorB, ColorR, ColorG},
}

// xtransLetters maps the X-Trans pattern string's R/G/B characters to
// color indices.
var xtransLetters = map[byte]byte{'R': ColorR, 'G': ColorG, 'B': ColorB}

// ParseCFA builds a CFA from a registry color_pattern string: one of
// the four Bayer permutations (2x2), or a 36-character X-Trans pattern
// (6x6), per spec §6.
func ParseCFA(pattern string) CFA {
	if tile, ok := bayerTiles[pattern]; ok {
		return CFA{Width: 2, Height: 2, Tile: tile}
	}
	if len(pattern) == 36 {
		tile := make([]byte, 36)
		for i := 0; i < 36; i++ {
			c, ok := xtransLetters[pattern[i]]
			if !ok {
				c = ColorG
			}
			tile[i] = c
		}
		return CFA{Width: 6, Height: 6, Tile: tile}
	}
	// Unrecognised pattern length: fall back to RGGB rather than fail
	// the whole decode over a cosmetic CFA mismatch.
	return CFA{Width: 2, Height: 2, Tile: bayerTiles["RGGB"]}
}

// At returns the color index at (row, col), wrapping at the tile's
// bounds.
func (c CFA) At(row, col int) byte {
	if c.Width == 0 || c.Height == 0 {
		return ColorG
	}
	return c.Tile[(row%c.Height)*c.Width+(col%c.Width)]
}
