/*
NAME
  mrw.go - Minolta MRW block container parser.

DESCRIPTION
  Parses the \0MRM-prefixed block stream (spec §4.7): 8-byte (tag,
  length) block headers enumerated up to the declared data offset, with
  PRD (raw dimensions and packing flag), WBG (white-balance gains), and
  TTW (embedded TIFF block, whose offsets are relative to the TIFF
  block's own start rather than the file start) recognised.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mrw parses the Minolta MRW raw container.
package mrw

import (
	"github.com/ausocean/rawcore/bitpump"
	"github.com/ausocean/rawcore/container/tiff"
)

const (
	blockPRD = 0x505244
	blockWBG = 0x574247
	blockTTW = 0x545457
)

// IsMRW reports whether buf begins with the \0MRM magic.
func IsMRW(buf []byte) bool {
	return len(buf) >= 4 && bitpump.U32BE(buf, 0) == 0x004D524D
}

// File holds an MRW file's parsed block metadata and the TIFF block
// embedded in its TTW block.
type File struct {
	DataOffset int
	RawWidth   int
	RawHeight  int
	Packed     bool
	WBVals     [4]uint16
	TIFF       *tiff.IFD
}

// Parse walks buf's MRW block stream and parses the embedded TIFF block.
func Parse(buf []byte) (*File, error) {
	f := &File{DataOffset: int(bitpump.U32BE(buf, 4)) + 8}

	tiffPos := 0
	currPos := 8
	for currPos+20 < f.DataOffset && currPos+20 <= len(buf) {
		tag := bitpump.U32BE(buf, currPos)
		length := bitpump.U32BE(buf, currPos+4)

		switch tag {
		case blockPRD:
			f.RawHeight = int(bitpump.U16BE(buf, currPos+16))
			f.RawWidth = int(bitpump.U16BE(buf, currPos+18))
			f.Packed = buf[currPos+24] == 12
		case blockWBG:
			for i := 0; i < 4; i++ {
				f.WBVals[i] = bitpump.U16BE(buf, currPos+12+i*2)
			}
		case blockTTW:
			tiffPos = currPos + 8
		}
		currPos += int(length) + 8
	}

	if tiffPos >= len(buf) {
		tiffPos = 0
	}
	t, err := tiff.New(buf[tiffPos:], 8, 0, tiffPos, 0, tiff.BigEndian)
	if err != nil {
		return nil, err
	}
	f.TIFF = t
	return f, nil
}

// PixelData returns the raw pixel stream starting at the MRW data offset.
func (f *File) PixelData(buf []byte) []byte {
	if f.DataOffset >= len(buf) {
		return nil
	}
	return buf[f.DataOffset:]
}
