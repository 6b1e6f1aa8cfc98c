/*
NAME
  tiff.go - TIFF-family IFD/entry parser.

DESCRIPTION
  Implements the recursive TIFF directory walk shared by most raw
  formats (spec §4.7, §3 TiffEntry/TiffIFD): byte-order detection,
  SubIFD/Exif/Makernote/vendor-IFD recursion bounded by depth, sibling,
  and entry-count caps, and the entry value accessors the per-format
  decoders build on.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tiff parses the TIFF-family IFD structure shared by most raw
// container formats.
package tiff

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/bitpump"
)

// Well-known tags referenced by the per-format decoders (spec §4.7, §4.10).
const (
	TagNewSubFileType   = 0x00FE
	TagImageWidth       = 0x0100
	TagImageLength      = 0x0101
	TagBitsPerSample    = 0x0102
	TagCompression      = 0x0103
	TagMake             = 0x010F
	TagModel            = 0x0110
	TagStripOffsets     = 0x0111
	TagStripByteCounts  = 0x0117
	TagSubIFDs          = 0x014A
	TagCFAPattern       = 0x828E
	TagKodakIFD         = 0x8290
	TagExifIFDPointer   = 0x8769
	TagMakernote        = 0x927C
	TagSrwSensorAreas   = 0xA010
	TagSrwRGGBLevels    = 0xA021
	TagSrwRGGBBlacks    = 0xA028
	TagDNGVersion       = 0xC612
	TagAsShotNeutral    = 0xC628
	TagRafRawSubIFD     = 0xF000
	TagRafImageWidth    = 0xF001
	TagRafImageLength   = 0xF002
	TagRafBitsPerSample = 0xF003
	TagRafOffsets       = 0xF007
	TagRafWBGRB         = 0xF00E
	TagRafOldWB         = 0x2FF0
	TagKdcIFD           = 0xFE00
	TagCr2ColorData     = 0x4001
	TagCr2StripeWidths  = 0x3010
	TagCr2PowerShotWB   = 0x0081
	TagCr2OldWB         = 0x00A4
	TagPefWB            = 0x0097
	TagNefWB0           = 0x0097
	TagNrwWB            = 0x1011
	TagGrayResponse     = 0x0123
	TagXMP              = 0x02BC
	TagLeafMetadataIFD  = 0x8606
	TagTileOffsets      = 0x0144
	TagTileWidth        = 0x0142
	TagTileLength       = 0x0143
	TagTileByteCounts   = 0x0145
	TagArwWBRGGB        = 0x7313
)

// Endian selects a TIFF file's declared byte order.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

func (e Endian) u16(buf []byte, off int) uint16 {
	if off+2 > len(buf) {
		return 0
	}
	if e == LittleEndian {
		return bitpump.U16LE(buf, off)
	}
	return bitpump.U16BE(buf, off)
}

func (e Endian) u32(buf []byte, off int) uint32 {
	if off+4 > len(buf) {
		return 0
	}
	if e == LittleEndian {
		return bitpump.U32LE(buf, off)
	}
	return bitpump.U32BE(buf, off)
}

// datashifts maps a TIFF field type (1..13) to the log2 of its byte size.
var datashifts = [14]uint{0, 0, 0, 1, 2, 3, 0, 0, 1, 2, 3, 2, 3, 2}

var (
	// ErrBadByteOrder is returned when the first two bytes are neither
	// "II" nor "MM".
	ErrBadByteOrder = errors.New("tiff: unrecognised byte-order marker")
	// ErrTooManyEntries is returned when an IFD claims more than 4000
	// directory entries.
	ErrTooManyEntries = errors.New("tiff: too many entries in IFD")
)

const (
	maxDepth      = 10
	maxSiblingIFD = 100
	maxEntries    = 4000
)

// Entry is one parsed IFD directory entry.
type Entry struct {
	Tag          uint16
	Typ          uint16
	Count        uint32
	ParentOffset int
	Doffset      int
	Data         []byte
	Endian       Endian
}

// newEntry parses the 12-byte directory entry at offset in buf.
// baseOffset is subtracted from the file-absolute data offset for
// container formats (e.g. embedded makernotes) that store offsets
// relative to their own start rather than the file start.
func newEntry(buf []byte, offset, baseOffset, parentOffset int, e Endian) Entry {
	tag := e.u16(buf, offset)
	typ := e.u16(buf, offset+2)
	count := e.u32(buf, offset+4)
	if typ == 0 || typ > 13 {
		typ = 1
	}
	byteSize := int(count) << datashifts[typ]
	var doffset int
	if byteSize <= 4 {
		doffset = offset + 8
	} else {
		doffset = int(e.u32(buf, offset+8)) - baseOffset
	}
	var data []byte
	if doffset >= 0 && doffset+byteSize <= len(buf) {
		data = buf[doffset : doffset+byteSize]
	}
	return Entry{
		Tag: tag, Typ: typ, Count: count,
		ParentOffset: parentOffset, Doffset: doffset,
		Data: data, Endian: e,
	}
}

// U32 reads the idx'th value of the entry as an unsigned 32-bit integer,
// covering the BYTE/SHORT/LONG/SLONG/SRATIONAL-numerator family (spec §3).
func (en Entry) U32(idx int) uint32 {
	switch en.Typ {
	case 1, 6, 7:
		if idx < 0 || idx >= len(en.Data) {
			return 0
		}
		return uint32(en.Data[idx])
	case 3, 8:
		return uint32(en.Endian.u16(en.Data, idx*2))
	default:
		return en.Endian.u32(en.Data, idx*4)
	}
}

// F32 reads the idx'th value as a float, resolving RATIONAL (typ 5) as
// numerator/denominator.
func (en Entry) F32(idx int) float32 {
	if en.Typ == 5 {
		a := en.Endian.u32(en.Data, idx*8)
		b := en.Endian.u32(en.Data, idx*8+4)
		if b == 0 {
			return 0
		}
		return float32(a) / float32(b)
	}
	return float32(en.U32(idx))
}

// Str returns the entry's ASCII value, truncated at the first NUL and
// trimmed of surrounding whitespace.
func (en Entry) Str() string {
	data := en.Data
	for i, b := range data {
		if b == 0 {
			data = data[:i]
			break
		}
	}
	return strings.TrimSpace(string(data))
}

// IFD is a parsed TIFF Image File Directory, including every SubIFD,
// Exif IFD, and recognised vendor makernote reachable from it.
type IFD struct {
	entries     map[uint16]Entry
	subIFDs     []*IFD
	nextIFD     int
	startOffset int
	endian      Endian
}

// isContainerTag reports whether tag's value is itself an offset (or
// list of offsets) to further IFDs that must be walked recursively.
func isContainerTag(tag uint16) bool {
	switch tag {
	case TagSubIFDs, TagExifIFDPointer, TagRafRawSubIFD, TagKodakIFD, TagKdcIFD:
		return true
	}
	return false
}

// New parses one IFD at offset (relative to buf's start) plus every
// container tag it references, recursively, bounded by depth.
func New(buf []byte, offset, baseOffset, startOffset, depth int, e Endian) (*IFD, error) {
	entries := make(map[uint16]Entry)
	var subIFDs []*IFD

	if offset+2 > len(buf) {
		return nil, errors.New("tiff: IFD offset out of range")
	}
	num := int(e.u16(buf, offset))
	if num > maxEntries {
		return nil, errors.Wrapf(ErrTooManyEntries, "%d", num)
	}

	for i := 0; i < num; i++ {
		entryOffset := offset + 2 + i*12
		if entryOffset+12 > len(buf) {
			break
		}
		entry := newEntry(buf, entryOffset, baseOffset, offset, e)

		switch {
		case isContainerTag(entry.Tag) && depth < maxDepth:
			ok := false
			n := int(entry.Count)
			if n > maxSiblingIFD {
				n = maxSiblingIFD
			}
			for i := 0; i < n; i++ {
				sub, err := New(buf, int(entry.U32(i)), baseOffset, startOffset, depth+1, e)
				if err != nil {
					continue
				}
				subIFDs = append(subIFDs, sub)
				ok = true
			}
			if !ok {
				entries[entry.Tag] = entry
			}
		case entry.Tag == TagMakernote && depth < maxDepth:
			sub, err := newMakernote(buf, entry.Doffset, baseOffset, depth+1, e)
			if err != nil {
				entries[entry.Tag] = entry
			} else {
				subIFDs = append(subIFDs, sub)
			}
		default:
			entries[entry.Tag] = entry
		}
	}

	var next int
	if nextOff := offset + 2 + num*12; nextOff+4 <= len(buf) {
		next = int(e.u32(buf, nextOff))
	}

	return &IFD{entries: entries, subIFDs: subIFDs, nextIFD: next, startOffset: startOffset, endian: e}, nil
}

// newMakernote strips known vendor makernote signature prefixes before
// parsing the embedded IFD.
func newMakernote(buf []byte, offset, baseOffset, depth int, e Endian) (*IFD, error) {
	off := offset
	if offset+8 <= len(buf) {
		data := buf[offset:]
		if len(data) >= 5 && string(data[0:5]) == "OLYMP" {
			off += 8
			if len(data) >= 7 && string(data[0:7]) == "OLYMPUS" {
				off += 4
			}
		} else if len(data) >= 5 && string(data[0:5]) == "EPSON" {
			off += 8
		}
	}
	return New(buf, off, baseOffset, 0, depth, e)
}

// NewRoot detects byte order at offset and walks every top-level IFD in
// the 0-terminated IFD chain, up to 100 siblings.
func NewRoot(buf []byte, offset int) (*IFD, error) {
	if offset+4 > len(buf) {
		return nil, ErrBadByteOrder
	}
	var endian Endian
	switch bitpump.U16LE(buf, offset) {
	case 0x4949:
		endian = LittleEndian
	case 0x4d4d:
		endian = BigEndian
	default:
		return nil, ErrBadByteOrder
	}

	next := int(endian.u32(buf, offset+4))
	var subIFDs []*IFD
	for i := 0; i < maxSiblingIFD; i++ {
		ifd, err := New(buf[offset:], next, 0, offset, 0, endian)
		if err != nil {
			return nil, err
		}
		next = ifd.nextIFD
		subIFDs = append(subIFDs, ifd)
		if next == 0 {
			break
		}
	}

	return &IFD{entries: make(map[uint16]Entry), subIFDs: subIFDs, startOffset: offset, endian: endian}, nil
}

// FindEntry searches this IFD and every descendant for tag, depth first.
func (d *IFD) FindEntry(tag uint16) (Entry, bool) {
	if e, ok := d.entries[tag]; ok {
		return e, true
	}
	for _, sub := range d.subIFDs {
		if e, ok := sub.FindEntry(tag); ok {
			return e, true
		}
	}
	return Entry{}, false
}

// FindIFDsWithTag returns every IFD in the tree (this one included) that
// directly carries tag.
func (d *IFD) FindIFDsWithTag(tag uint16) []*IFD {
	var out []*IFD
	if _, ok := d.entries[tag]; ok {
		out = append(out, d)
	}
	for _, sub := range d.subIFDs {
		out = append(out, sub.FindIFDsWithTag(tag)...)
	}
	return out
}

// FindFirstIFD returns the first IFD (depth-first) carrying tag.
func (d *IFD) FindFirstIFD(tag uint16) (*IFD, bool) {
	ifds := d.FindIFDsWithTag(tag)
	if len(ifds) == 0 {
		return nil, false
	}
	return ifds[0], true
}

// Endian reports the byte order this IFD (and its root file) was parsed with.
func (d *IFD) Endian() Endian { return d.endian }

// StartOffset returns the file offset this IFD's data section begins at.
func (d *IFD) StartOffset() int { return d.startOffset }

// AddSyntheticEntry installs an entry that was not present in the raw
// IFD bytes (used by the Fuji wrapper to synthesize tags for
// fixed-offset fields, spec §4.7).
func (d *IFD) AddSyntheticEntry(tag uint16, e Entry) {
	if d.entries == nil {
		d.entries = make(map[uint16]Entry)
	}
	d.entries[tag] = e
}

// NewEmpty returns an IFD with no entries, used as the root wrapper for
// the FUJIFILM container, which synthesizes its top-level tags.
func NewEmpty(endian Endian, startOffset int) *IFD {
	return &IFD{entries: make(map[uint16]Entry), startOffset: startOffset, endian: endian}
}

// AddSubIFD attaches an already-parsed IFD as a child of d.
func (d *IFD) AddSubIFD(sub *IFD) {
	d.subIFDs = append(d.subIFDs, sub)
}
