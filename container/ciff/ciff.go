/*
NAME
  ciff.go - Canon CIFF (pre-TIFF) tagged-record container parser.

DESCRIPTION
  Parses the CIFF heap structure used by CRW files (spec §3, §4.7): a
  trailing per-heap directory of (tag, length, offset) triples, whose
  tag word's top two bits discriminate in-record storage (value fits in
  the record itself) from in-heap storage (value lives elsewhere in the
  heap, possibly a nested sub-heap). Recursion mirrors the TIFF walker's
  depth/sibling caps.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ciff parses Canon's pre-TIFF CIFF heap container (CRW files).
package ciff

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/bitpump"
)

// Well-known CIFF tags (spec §4.5, §4.8).
const (
	TagMakeModel    = 0x080A
	TagSensorInfo   = 0x1031
	TagWhiteBalance = 0x102A
	TagColorInfo1   = 0x10A9
	TagColorInfo2   = 0x1038
	TagDecoderTable = 0x1835
	TagRawData      = 0x2005
)

// Storage class encoded in a tag word's top 2 bits: 0x0000/0x4000 store
// an 8-byte value inline in the record itself; 0x8000 stores the value
// elsewhere in the heap; 0xC000 additionally marks that value as itself
// a nested heap directory to walk recursively.
const (
	storageClassMask = 0xC000
	storageInHeap    = 0x8000
	storageSubHeap   = 0xC000
)

var (
	// ErrTooManyRecords caps a single heap's directory size.
	ErrTooManyRecords = errors.New("ciff: too many records in heap")
	// ErrTruncated is returned when the trailing directory or a record
	// extends past the buffer.
	ErrTruncated = errors.New("ciff: truncated heap")
)

const (
	maxDepth        = 10
	maxSiblingHeaps = 100
	maxRecords      = 4000
)

// Record is one parsed CIFF directory entry.
type Record struct {
	Tag    uint16
	Length int
	Data   []byte
}

// U32 reads the record's data as a little-endian u32 at byte offset idx*4.
func (r Record) U32(idx int) uint32 {
	if idx*4+4 > len(r.Data) {
		return 0
	}
	return bitpump.U32LE(r.Data, idx*4)
}

// F32 reads the record's data as a little-endian f32 (IEEE 754 bit
// pattern) at byte offset idx*4.
func (r Record) F32(idx int) float32 {
	return math.Float32frombits(r.U32(idx))
}

// U16 reads the record's data as a little-endian u16 at byte offset idx*2.
func (r Record) U16(idx int) uint16 {
	if idx*2+2 > len(r.Data) {
		return 0
	}
	return bitpump.U16LE(r.Data, idx*2)
}

// Strings splits the record's data on NUL bytes, as CIFF MakeModel does
// (make and model stored as two consecutive NUL-terminated strings).
func (r Record) Strings() []string {
	var out []string
	start := 0
	for i, b := range r.Data {
		if b == 0 {
			if i > start {
				out = append(out, string(r.Data[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(r.Data) {
		out = append(out, string(r.Data[start:]))
	}
	return out
}

// Heap is a parsed CIFF heap: its own records plus any nested sub-heaps
// reached through in-heap entries whose data is itself a heap.
type Heap struct {
	records map[uint16]Record
	subs    []*Heap
}

// Parse parses the heap occupying buf[start:start+length], whose
// trailing directory (entry count + (tag,length,offset) triples) sits
// at the end of the region.
func Parse(buf []byte, start, length, depth int) (*Heap, error) {
	if start < 0 || length < 4 || start+length > len(buf) {
		return nil, ErrTruncated
	}
	region := buf[start : start+length]

	dirOff := int(bitpump.U32LE(region, length-4))
	if dirOff+2 > length {
		return nil, ErrTruncated
	}
	count := int(bitpump.U16LE(region, dirOff))
	if count > maxRecords {
		return nil, errors.Wrapf(ErrTooManyRecords, "%d", count)
	}

	h := &Heap{records: make(map[uint16]Record)}
	entryBase := dirOff + 2
	for i := 0; i < count; i++ {
		entOff := entryBase + i*10
		if entOff+10 > length {
			break
		}
		tag := bitpump.U16LE(region, entOff)
		recLen := int(bitpump.U32LE(region, entOff+2))
		recOff := int(bitpump.U32LE(region, entOff+6))

		class := tag & storageClassMask
		var data []byte
		if class&storageInHeap == 0 {
			// In-record: the 8 value bytes live directly in the entry.
			if entOff+2+8 <= length {
				data = region[entOff+2 : entOff+2+8]
			}
		} else if recOff >= 0 && recOff+recLen <= length {
			data = region[recOff : recOff+recLen]
		}
		// Callers (FindEntry, and every lookup in decoders/crw.go) use
		// the bare tag constant, so the dictionary key must drop the
		// storage-class bits the same way the on-disk tag carries them.
		h.records[tag&^storageClassMask] = Record{Tag: tag, Length: recLen, Data: data}

		// A sub-heap entry is walked recursively, bounded by depth and
		// by the number of sub-heaps per heap.
		if class == storageSubHeap && depth < maxDepth && len(h.subs) < maxSiblingHeaps {
			if sub, err := Parse(buf, start+recOff, recLen, depth+1); err == nil {
				h.subs = append(h.subs, sub)
			}
		}
	}
	return h, nil
}

// FindEntry searches this heap and its descendants for tag, depth first.
func (h *Heap) FindEntry(tag uint16) (Record, bool) {
	if r, ok := h.records[tag]; ok {
		return r, true
	}
	for _, sub := range h.subs {
		if r, ok := sub.FindEntry(tag); ok {
			return r, true
		}
	}
	return Record{}, false
}
