/*
NAME
  fixtures_test.go - synthetic TIFF/camera fixtures shared by this
  package's decoder tests.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package decoders

import (
	"strings"
	"testing"

	"github.com/ausocean/rawcore/camera"
	"github.com/ausocean/rawcore/container/ciff"
	"github.com/ausocean/rawcore/container/tiff"
)

// ciffField describes one in-heap CIFF record to be laid out by
// buildCIFFHeap. tag must already carry the 0x8000 in-heap storage bit
// (see container/ciff.go's storage-class mask).
type ciffField struct {
	tag  uint16
	data []byte
}

// buildCIFFHeap lays out a CIFF heap region (spec §3, §4.5) holding
// each field's raw bytes as an in-heap record, followed by the trailing
// directory container/ciff.Parse expects.
func buildCIFFHeap(fields []ciffField) []byte {
	var data []byte
	type laidOut struct {
		tag    uint16
		offset int
		length int
	}
	var laid []laidOut
	for _, f := range fields {
		laid = append(laid, laidOut{tag: f.tag, offset: len(data), length: len(f.data)})
		data = append(data, f.data...)
	}

	dirOff := len(data)
	region := make([]byte, dirOff+2+10*len(laid)+4)
	copy(region, data)
	putU16(region, dirOff, uint16(len(laid)))
	pos := dirOff + 2
	for _, l := range laid {
		putU16(region, pos, l.tag)
		putU32(region, pos+2, uint32(l.length))
		putU32(region, pos+6, uint32(l.offset))
		pos += 10
	}
	putU32(region, len(region)-4, uint32(dirOff))
	return region
}

// parseCIFFFixture builds and parses a synthetic CIFF heap from fields,
// failing the test on any parse error.
func parseCIFFFixture(t *testing.T, fields []ciffField) *ciff.Heap {
	t.Helper()
	region := buildCIFFHeap(fields)
	h, err := ciff.Parse(region, 0, len(region), 0)
	if err != nil {
		t.Fatalf("ciff.Parse: %v", err)
	}
	return h
}

// tiffField describes one IFD entry to be laid out by buildTIFF. data
// holds the entry's value already encoded in little-endian bytes.
type tiffField struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// fieldU16 builds a SHORT-typed field from a list of 16-bit values.
func fieldU16(tag uint16, vals ...uint16) tiffField {
	data := make([]byte, 0, 2*len(vals))
	for _, v := range vals {
		data = append(data, byte(v), byte(v>>8))
	}
	return tiffField{tag: tag, typ: 3, count: uint32(len(vals)), data: data}
}

// fieldU32 builds a LONG-typed field from a list of 32-bit values.
func fieldU32(tag uint16, vals ...uint32) tiffField {
	data := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		data = append(data, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return tiffField{tag: tag, typ: 4, count: uint32(len(vals)), data: data}
}

// fieldRational builds a RATIONAL-typed field (num/denom pairs).
func fieldRational(tag uint16, pairs ...[2]uint32) tiffField {
	data := make([]byte, 0, 8*len(pairs))
	for _, p := range pairs {
		for _, v := range p {
			data = append(data, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
		}
	}
	return tiffField{tag: tag, typ: 5, count: uint32(len(pairs)), data: data}
}

// fieldASCII builds an ASCII-typed field, NUL-terminated.
func fieldASCII(tag uint16, s string) tiffField {
	data := append([]byte(s), 0)
	return tiffField{tag: tag, typ: 2, count: uint32(len(data)), data: data}
}

// buildTIFF lays out a single little-endian IFD containing fields, with
// any value wider than 4 bytes spilled into a trailing data area, the
// same shape as container/tiff_test.go's minimalLETiff but for an
// arbitrary field set.
func buildTIFF(fields []tiffField) []byte {
	const ifdOffset = 8
	dirSize := 2 + 12*len(fields) + 4
	dataStart := ifdOffset + dirSize

	buf := make([]byte, dataStart)
	buf[0], buf[1] = 'I', 'I'
	buf[2], buf[3] = 0x2A, 0x00
	putU32(buf, 4, ifdOffset)

	putU16(buf, ifdOffset, uint16(len(fields)))
	pos := ifdOffset + 2
	for _, f := range fields {
		putU16(buf, pos, f.tag)
		putU16(buf, pos+2, f.typ)
		putU32(buf, pos+4, f.count)
		if len(f.data) <= 4 {
			copy(buf[pos+8:pos+12], f.data)
		} else {
			putU32(buf, pos+8, uint32(len(buf)))
			buf = append(buf, f.data...)
		}
		pos += 12
	}
	putU32(buf, pos, 0) // next IFD

	return buf
}

// buildTIFFChain lays out a sequential chain of IFDs, one per entry in
// ifds, linked by their next-IFD offsets, for formats (like DCS) whose
// raw IFD must be found among several top-level siblings.
func buildTIFFChain(ifds [][]tiffField) []byte {
	buf := make([]byte, 8)
	buf[0], buf[1] = 'I', 'I'
	buf[2], buf[3] = 0x2A, 0x00

	offsets := make([]int, len(ifds))
	for i, fields := range ifds {
		offsets[i] = len(buf)
		dirSize := 2 + 12*len(fields) + 4
		ifdStart := len(buf)
		buf = append(buf, make([]byte, dirSize)...)

		putU16(buf, ifdStart, uint16(len(fields)))
		pos := ifdStart + 2
		for _, f := range fields {
			putU16(buf, pos, f.tag)
			putU16(buf, pos+2, f.typ)
			putU32(buf, pos+4, f.count)
			if len(f.data) <= 4 {
				copy(buf[pos+8:pos+12], f.data)
			} else {
				putU32(buf, pos+8, uint32(len(buf)))
				buf = append(buf, f.data...)
			}
			pos += 12
		}
		// next-IFD offset patched below once every offset is known.
		_ = pos
	}

	for i, fields := range ifds {
		dirSize := 2 + 12*len(fields) + 4
		nextFieldPos := offsets[i] + dirSize - 4
		if i+1 < len(ifds) {
			putU32(buf, nextFieldPos, uint32(offsets[i+1]))
		} else {
			putU32(buf, nextFieldPos, 0)
		}
	}

	putU32(buf, 4, uint32(offsets[0]))
	return buf
}

func putU16(buf []byte, off int, v uint16) {
	buf[off], buf[off+1] = byte(v), byte(v>>8)
}

func putU32(buf []byte, off int, v uint32) {
	buf[off], buf[off+1], buf[off+2], buf[off+3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}

// parseFixture builds and parses a synthetic TIFF from fields, failing
// the test on any parse error.
func parseFixture(t *testing.T, fields []tiffField) *tiff.IFD {
	t.Helper()
	root, err := tiff.NewRoot(buildTIFF(fields), 0)
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	return root
}

// testCamera parses a minimal one-entry registry TOML into a *Camera,
// optionally carrying hints, for decoder tests that need a fully
// populated camera.Camera (including its unexported hints set).
func testCamera(t *testing.T, extra string) *camera.Camera {
	t.Helper()
	const base = `
[[cameras]]
make = "Acme"
model = "RawCam 1"
canonical_make = "Acme"
canonical_model = "RawCam 1"
whitepoint = 4095
blackpoint = 0
color_matrix = [1,2,3,4,5,6,7,8,9,10,11,12]
color_pattern = "RGGB"
`
	reg, err := camera.ParseRegistry(strings.NewReader(base + extra))
	if err != nil {
		t.Fatalf("ParseRegistry: %v", err)
	}
	c, err := reg.Lookup("Acme", "RawCam 1", "")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	return c
}

// minimalLJPEGStream is the exact 2-component, 2x1 lossless-JPEG stream
// ljpeg's own TestParseMinimalStream/TestDecode2BasePrediction verify:
// trivial 1-bit-codeword Huffman tables that always decode to a diff of
// zero, so both output pixels equal the base prediction value (2).
func minimalLJPEGStream() []byte {
	return []byte{
		0xFF, 0xD8, // SOI

		0xFF, 0xC3, 0x00, 0x0E, // SOF3, length 14
		0x02,       // precision
		0x00, 0x01, // height
		0x00, 0x02, // width
		0x02,             // num components
		0x01, 0x11, 0x00, // comp1: id, h/v, dc table 0
		0x02, 0x11, 0x01, // comp2: id, h/v, dc table 1

		0xFF, 0xC4, 0x00, 0x14, // DHT, length 20
		0x00, // tc/th = 0/0
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, // huffval[0] = 0

		0xFF, 0xC4, 0x00, 0x14, // DHT, length 20
		0x01, // tc/th = 0/1
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, // huffval[0] = 0

		0xFF, 0xDA, 0x00, 0x0A, // SOS, length 10
		0x02,       // num components
		0x01, 0x00, // comp1: selector, dc table 0 (upper nibble)
		0x02, 0x10, // comp2: selector, dc table 1 (upper nibble)
		0x01, 0x00, 0x00, // Ss, Se, AhAl (point transform = 0)

		0x00, // entropy data: two 1-bit codewords "0","0"
	}
}
