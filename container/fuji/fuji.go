/*
NAME
  fuji.go - FUJIFILM RAF custom header parser.

DESCRIPTION
  Parses the FUJIFILM wrapper (spec §4.7): fixed file offsets point at a
  standard TIFF IFD (84), a Fuji-proprietary tagged directory (92), and
  the raw pixel data (100). The proprietary directory's entries are
  synthesized onto a wrapper IFD as RafOffsets/ImageWidth/RafOldWB so
  downstream decoders can treat a RAF file like any other TIFF-rooted
  format (container/tiff's AddSyntheticEntry/AddSubIFD exist for this).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package fuji parses the FUJIFILM RAF custom header and wraps its
// embedded TIFF IFD with synthesized proprietary-directory tags.
package fuji

import (
	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/bitpump"
	"github.com/ausocean/rawcore/container/tiff"
)

// Fixed offsets into a RAF file (spec §4.7).
const (
	offTIFFPointer = 84
	offDirPointer  = 92
	offDataPointer = 100
)

// ErrNotFuji is returned when buf lacks the FUJIFILM magic.
var ErrNotFuji = errors.New("fuji: missing FUJIFILM magic")

// IsFuji reports whether buf begins with the FUJIFILM magic.
func IsFuji(buf []byte) bool {
	return len(buf) >= 8 && string(buf[0:8]) == "FUJIFILM"
}

// File holds a parsed RAF wrapper: the embedded TIFF IFD, enriched with
// the proprietary directory's synthesized tags, plus the raw data
// offset/length pulled from the same directory.
type File struct {
	IFD        *tiff.IFD
	DataOffset int
	DataLength int
}

// Parse reads the three fixed pointers, parses the TIFF IFD they locate,
// and synthesizes RafOffsets/ImageWidth/RafOldWB entries from the
// proprietary directory onto a wrapper IFD above it.
func Parse(buf []byte) (*File, error) {
	if !IsFuji(buf) {
		return nil, ErrNotFuji
	}
	if offDataPointer+8 > len(buf) {
		return nil, errors.New("fuji: truncated header")
	}

	tiffOff := int(bitpump.U32BE(buf, offTIFFPointer))
	dirOff := int(bitpump.U32BE(buf, offDirPointer))
	dataOff := int(bitpump.U32BE(buf, offDataPointer))
	dataLen := int(bitpump.U32BE(buf, offDataPointer+4))

	var inner *tiff.IFD
	if tiffOff > 0 && tiffOff < len(buf) {
		t, err := tiff.NewRoot(buf, tiffOff)
		if err == nil {
			inner = t
		}
	}

	wrapper := tiff.NewEmpty(tiff.BigEndian, tiffOff)
	if inner != nil {
		wrapper.AddSubIFD(inner)
	}

	if err := parseDirectory(buf, dirOff, wrapper); err != nil {
		return nil, err
	}

	f := &File{IFD: wrapper, DataOffset: dataOff, DataLength: dataLen}
	return f, nil
}

// parseDirectory walks the Fuji-proprietary tagged-record directory
// starting at off: a big-endian entry count followed by (tag uint16,
// length uint16, value[length]) records, synthesizing the handful this
// library needs directly onto dst.
func parseDirectory(buf []byte, off int, dst *tiff.IFD) error {
	if off <= 0 || off+2 > len(buf) {
		return nil
	}
	count := int(bitpump.U16BE(buf, off))
	pos := off + 2
	for i := 0; i < count && pos+4 <= len(buf); i++ {
		tag := bitpump.U16BE(buf, pos)
		length := int(bitpump.U16BE(buf, pos+2))
		valOff := pos + 4
		if valOff+length > len(buf) {
			break
		}
		data := buf[valOff : valOff+length]

		switch tag {
		case rafTagRawImageSize:
			// Two big-endian u16s: height then width.
			if length >= 4 {
				dst.AddSyntheticEntry(tiff.TagRafImageLength, syntheticU32(data[0:2], tiff.BigEndian))
				dst.AddSyntheticEntry(tiff.TagRafImageWidth, syntheticU32(data[2:4], tiff.BigEndian))
			}
		case rafTagRawOffsets:
			dst.AddSyntheticEntry(tiff.TagRafOffsets, tiff.Entry{
				Tag: tiff.TagRafOffsets, Typ: 4, Count: uint32(length / 4),
				Data: data, Endian: tiff.BigEndian,
			})
		case rafTagOldWB:
			dst.AddSyntheticEntry(tiff.TagRafOldWB, tiff.Entry{
				Tag: tiff.TagRafOldWB, Typ: 4, Count: uint32(length / 4),
				Data: data, Endian: tiff.BigEndian,
			})
		}
		pos = valOff + length
	}
	return nil
}

// Fuji-proprietary directory tags (not TIFF tags; local to this walk).
const (
	rafTagRawImageSize = 0x0100
	rafTagRawOffsets   = 0x0121
	rafTagOldWB        = 0x2ff0
)

// syntheticU32 wraps a raw big-endian u16 field as a single-value LONG
// entry so it can be read back through Entry.U32 uniformly.
func syntheticU32(data []byte, e tiff.Endian) tiff.Entry {
	v := bitpump.U16BE(data, 0)
	full := []byte{0, 0, byte(v >> 8), byte(v)}
	return tiff.Entry{Typ: 4, Count: 1, Data: full, Endian: e}
}

// PixelData returns the raw pixel stream located by the data pointer.
func (f *File) PixelData(buf []byte) []byte {
	end := f.DataOffset + f.DataLength
	if f.DataOffset < 0 || end > len(buf) || f.DataOffset > end {
		return nil
	}
	return buf[f.DataOffset:end]
}
