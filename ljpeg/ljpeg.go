/*
NAME
  ljpeg.go - lossless JPEG (SOF3) marker parsing and predictive decode.

DESCRIPTION
  Parses the SOI/SOF3/DHT/SOS marker sequence used by lossless-JPEG
  compressed raw strips (spec §4.4), and implements the 1/2/4-component
  and Hasselblad-paired predictive decode loops built on top of the
  huffman package's per-component DC tables.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ljpeg decodes lossless-JPEG (SOF3) compressed raw image strips.
package ljpeg

import (
	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/bitpump"
	"github.com/ausocean/rawcore/huffman"
)

// Marker byte values relevant to a lossless-JPEG stream.
const (
	markerSOI = 0xD8
	markerSOF3 = 0xC3
	markerDHT  = 0xC4
	markerSOS  = 0xDA
	markerEOI  = 0xD9
)

var (
	// ErrTruncated is returned when a marker segment runs past the end
	// of the buffer.
	ErrTruncated = errors.New("ljpeg: truncated marker segment")
	// ErrUnsupportedSOF is returned for any frame marker other than SOF3.
	ErrUnsupportedSOF = errors.New("ljpeg: unsupported start-of-frame marker")
	// ErrBadComponentCount is returned for SOF3/SOS component counts
	// outside {1,2,4}, or mismatched between SOF3 and SOS.
	ErrBadComponentCount = errors.New("ljpeg: bad component count")
	// ErrUndefinedTable is returned when SOS references a DHT index
	// that was never defined.
	ErrUndefinedTable = errors.New("ljpeg: undefined Huffman table")
	// ErrNoSOF is returned when SOS is reached before any SOF3 marker.
	ErrNoSOF = errors.New("ljpeg: SOS before SOF3")
)

// Component describes one SOF3 component's identifiers.
type Component struct {
	ID       byte
	HSamp    byte
	VSamp    byte
	DCTblNum byte
}

// SOF holds the parsed SOF3 frame header.
type SOF struct {
	Precision  int
	Height     int
	Width      int
	Components []Component
}

// Decompressor holds a fully parsed lossless-JPEG stream, ready for
// Decode1/Decode2/Decode4/DecodeHasselblad.
type Decompressor struct {
	SOF            SOF
	PointTransform int
	tables         [4]*huffman.Table
	scanTableNums  []byte // per-SOS-component DC table index, in scan order
	entropyData    []byte
	dngBug         bool
}

// New parses buf as a lossless-JPEG stream starting at a SOI marker and
// returns a Decompressor positioned at the start of entropy-coded data.
// dngBug is forwarded to every constructed Huffman table (spec §9).
func New(buf []byte, dngBug bool) (*Decompressor, error) {
	d := &Decompressor{dngBug: dngBug}
	pos := 0

	readMarker := func() (byte, error) {
		for pos < len(buf) && buf[pos] != 0xFF {
			pos++
		}
		for pos < len(buf) && buf[pos] == 0xFF {
			pos++
		}
		if pos >= len(buf) {
			return 0, ErrTruncated
		}
		m := buf[pos]
		pos++
		return m, nil
	}

	segLen := func() (int, error) {
		if pos+2 > len(buf) {
			return 0, ErrTruncated
		}
		l := int(bitpump.U16BE(buf, pos))
		if l < 2 || pos+l > len(buf) {
			return 0, ErrTruncated
		}
		return l, nil
	}

	m, err := readMarker()
	if err != nil {
		return nil, err
	}
	if m != markerSOI {
		return nil, errors.Wrap(ErrUnsupportedSOF, "missing SOI")
	}

	haveSOF := false
	for {
		m, err := readMarker()
		if err != nil {
			return nil, err
		}
		switch m {
		case markerSOF3:
			l, err := segLen()
			if err != nil {
				return nil, err
			}
			if err := d.parseSOF(buf[pos : pos+l]); err != nil {
				return nil, err
			}
			pos += l
			haveSOF = true
		case markerDHT:
			l, err := segLen()
			if err != nil {
				return nil, err
			}
			if err := d.parseDHT(buf[pos : pos+l]); err != nil {
				return nil, err
			}
			pos += l
		case markerSOS:
			if !haveSOF {
				return nil, ErrNoSOF
			}
			l, err := segLen()
			if err != nil {
				return nil, err
			}
			if err := d.parseSOS(buf[pos : pos+l]); err != nil {
				return nil, err
			}
			pos += l
			d.entropyData = buf[pos:]
			return d, nil
		case markerEOI:
			return nil, errors.Wrap(ErrTruncated, "EOI before SOS")
		default:
			// Any other marker with a length field (APPn, COM, DQT, DRI,
			// other DHT-like segments) is skipped.
			if m >= 0xD0 && m <= 0xD9 {
				continue // standalone markers carry no length
			}
			l, err := segLen()
			if err != nil {
				return nil, err
			}
			pos += l
		}
	}
}

func (d *Decompressor) parseSOF(seg []byte) error {
	if len(seg) < 8 {
		return ErrTruncated
	}
	d.SOF.Precision = int(seg[2])
	d.SOF.Height = int(bitpump.U16BE(seg, 3))
	d.SOF.Width = int(bitpump.U16BE(seg, 5))
	n := int(seg[7])
	if n != 1 && n != 2 && n != 4 {
		return errors.Wrapf(ErrBadComponentCount, "SOF3 declares %d components", n)
	}
	if len(seg) < 8+n*3 {
		return ErrTruncated
	}
	d.SOF.Components = make([]Component, n)
	for i := 0; i < n; i++ {
		b := seg[8+i*3:]
		d.SOF.Components[i] = Component{
			ID:       b[0],
			HSamp:    b[1] >> 4,
			VSamp:    b[1] & 0x0F,
			DCTblNum: b[2],
		}
	}
	return nil
}

func (d *Decompressor) parseDHT(seg []byte) error {
	p := 2 // skip length field
	for p < len(seg) {
		if p+17 > len(seg) {
			return ErrTruncated
		}
		tc := seg[p] >> 4
		th := seg[p] & 0x0F
		if tc != 0 || th > 3 {
			return errors.Wrapf(ErrBadComponentCount, "DHT class/index %d/%d", tc, th)
		}
		var counts [16]int
		total := 0
		for i := 0; i < 16; i++ {
			counts[i] = int(seg[p+1+i])
			total += counts[i]
		}
		p += 17
		if p+total > len(seg) {
			return ErrTruncated
		}
		huffval := make([]uint8, total)
		copy(huffval, seg[p:p+total])
		p += total

		tbl, err := huffman.New(counts, huffval)
		if err != nil {
			return err
		}
		tbl.SetDNGBug(d.dngBug)
		d.tables[th] = tbl
	}
	return nil
}

func (d *Decompressor) parseSOS(seg []byte) error {
	if len(seg) < 3 {
		return ErrTruncated
	}
	n := int(seg[2])
	if len(seg) < 3+n*2 {
		return ErrTruncated
	}
	d.scanTableNums = make([]byte, n)
	for i := 0; i < n; i++ {
		tblNum := seg[3+i*2+1] >> 4 // DC table selector, upper nibble
		if int(tblNum) >= len(d.tables) || d.tables[tblNum] == nil {
			return errors.Wrapf(ErrUndefinedTable, "table %d", tblNum)
		}
		d.scanTableNums[i] = tblNum
	}
	// Point transform is read from the SOS segment's last byte (Ah/Al).
	d.PointTransform = int(seg[len(seg)-1])
	return nil
}

func (d *Decompressor) table(componentIdx int) *huffman.Table {
	c := d.SOF.Components[componentIdx]
	return d.tables[c.DCTblNum]
}

// SuperH and SuperV report the first SOF3 component's horizontal and
// vertical sampling factors. A plain Bayer-pair lossless-JPEG stream
// declares 1:1 sampling; Canon's sRAW variant declares SuperH()==2,
// signalling a 3-components-per-pixel YCbCr stream (spec §4.11) rather
// than an ordinary 2-component Bayer pair, and SuperV()==2 signals that
// the stream's rows must be reassembled two at a time.
func (d *Decompressor) SuperH() int {
	if len(d.SOF.Components) == 0 {
		return 1
	}
	return int(d.SOF.Components[0].HSamp)
}

func (d *Decompressor) SuperV() int {
	if len(d.SOF.Components) == 0 {
		return 1
	}
	return int(d.SOF.Components[0].VSamp)
}

func (d *Decompressor) basePrediction() int32 {
	return 1 << uint(d.SOF.Precision-d.PointTransform-1)
}

// Decode2 decodes a 2-component strip (spec §4.4: the common Bayer-pair
// lossless-JPEG layout) into out, writing width*height samples laid out
// with row stride stripWidth starting at column offset x.
func (d *Decompressor) Decode2(out []uint16, x, stripWidth, width, height int) error {
	if len(d.SOF.Components) != 2 {
		return errors.Wrapf(ErrBadComponentCount, "Decode2 requires 2 SOF components, got %d", len(d.SOF.Components))
	}
	if d.SOF.Width*2 < width || d.SOF.Height < height {
		return errors.Errorf("ljpeg: trying to decode %dx%d into %dx%d", d.SOF.Width*2, d.SOF.Height, width, height)
	}
	h1, h2 := d.table(0), d.table(1)
	p := bitpump.New(d.entropyData, bitpump.JPEG)
	base := d.basePrediction()

	diff1, err := h1.Decode(p)
	if err != nil {
		return err
	}
	diff2, err := h2.Decode(p)
	if err != nil {
		return err
	}
	out[x] = uint16(base + diff1)
	out[x+1] = uint16(base + diff2)
	skipX := d.SOF.Width - width/2

	for row := 0; row < height; row++ {
		startCol := x
		if row == 0 {
			startCol = x + 2
		}
		for col := startCol; col < width+x; col += 2 {
			var p1, p2 uint16
			if col == x {
				p1 = out[(row-1)*stripWidth+x]
				p2 = out[(row-1)*stripWidth+1+x]
			} else {
				p1 = out[row*stripWidth+col-2]
				p2 = out[row*stripWidth+col-1]
			}
			diff1, err := h1.Decode(p)
			if err != nil {
				return err
			}
			diff2, err := h2.Decode(p)
			if err != nil {
				return err
			}
			out[row*stripWidth+col] = uint16(int32(p1) + diff1)
			out[row*stripWidth+col+1] = uint16(int32(p2) + diff2)
		}
		for i := 0; i < skipX; i++ {
			if _, err := h1.Decode(p); err != nil {
				return err
			}
			if _, err := h2.Decode(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Decode4 decodes a 4-component strip (spec §4.4) into out at full width.
func (d *Decompressor) Decode4(out []uint16, width, height int) error {
	if len(d.SOF.Components) != 4 {
		return errors.Wrapf(ErrBadComponentCount, "Decode4 requires 4 SOF components, got %d", len(d.SOF.Components))
	}
	if d.SOF.Width*4 < width || d.SOF.Height < height {
		return errors.Errorf("ljpeg: trying to decode %dx%d into %dx%d", d.SOF.Width*4, d.SOF.Height, width, height)
	}
	tbls := [4]*huffman.Table{d.table(0), d.table(1), d.table(2), d.table(3)}
	p := bitpump.New(d.entropyData, bitpump.JPEG)
	base := d.basePrediction()

	for i := 0; i < 4; i++ {
		diff, err := tbls[i].Decode(p)
		if err != nil {
			return err
		}
		out[i] = uint16(base + diff)
	}
	skipX := d.SOF.Width - width/4

	for row := 0; row < height; row++ {
		startCol := 0
		if row == 0 {
			startCol = 4
		}
		for col := startCol; col < width; col += 4 {
			var pos int
			if col == 0 {
				pos = (row - 1) * width
			} else {
				pos = row*width + col - 4
			}
			prev := [4]uint16{out[pos], out[pos+1], out[pos+2], out[pos+3]}
			for i := 0; i < 4; i++ {
				diff, err := tbls[i].Decode(p)
				if err != nil {
					return err
				}
				out[row*width+col+i] = uint16(int32(prev[i]) + diff)
			}
		}
		for i := 0; i < skipX; i++ {
			for j := 0; j < 4; j++ {
				if _, err := tbls[j].Decode(p); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// DecodeHasselblad decodes the Hasselblad variant: pixels packed two at
// a time as [len1][len2][diff1][diff2], using an MSB32 pump and paired
// predictors initialized to 0x8000 at the start of every row (spec §4.4).
func (d *Decompressor) DecodeHasselblad(out []uint16, width int) error {
	if len(d.SOF.Components) == 0 {
		return errors.Wrap(ErrBadComponentCount, "DecodeHasselblad requires at least 1 SOF component")
	}
	h := d.table(0)
	p := bitpump.New(d.entropyData, bitpump.MSB32)

	for lineStart := 0; lineStart < len(out); lineStart += width {
		line := out[lineStart : lineStart+width]
		p1 := int32(0x8000)
		p2 := int32(0x8000)
		for o := 0; o+1 < len(line); o += 2 {
			len1, err := h.Len(p)
			if err != nil {
				return err
			}
			len2, err := h.Len(p)
			if err != nil {
				return err
			}
			diff1, err := h.Diff(p, len1)
			if err != nil {
				return err
			}
			diff2, err := h.Diff(p, len2)
			if err != nil {
				return err
			}
			p1 += diff1
			p2 += diff2
			line[o] = uint16(p1)
			line[o+1] = uint16(p2)
		}
	}
	return nil
}
