/*
NAME
  crw.go - CIFF/CRW-specific Huffman pixel codec.

DESCRIPTION
  Implements the fixed three-table-pair Huffman codec used by Canon CRW
  raw streams (spec §4.5): 64-sample block decode with DC carry across
  blocks, two interleaved row predictors reset to 512, and an optional
  2-bit low-bit plane merged in afterward.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package crw decodes the CIFF/CRW Huffman-compressed pixel stream.
package crw

import (
	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/bitpump"
	"github.com/ausocean/rawcore/huffman"
)

// ErrUnknownDecoderTable is returned for a DecoderTable tag value
// outside the three known fixed tables.
var ErrUnknownDecoderTable = errors.New("crw: unknown decoder table")

// crwFirstTree holds, per decoder table index, the DC-like first
// Huffman table: 16 bits-per-length counts followed by 12 huffval
// bytes plus the 0xFF sentinel entry.
var crwFirstTree = [3][29]byte{
	{0, 1, 4, 2, 3, 1, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0x04, 0x03, 0x05, 0x06, 0x02, 0x07, 0x01, 0x08, 0x09, 0x00, 0x0a, 0x0b, 0xff},
	{0, 2, 2, 3, 1, 1, 1, 1, 2, 0, 0, 0, 0, 0, 0, 0,
		0x03, 0x02, 0x04, 0x01, 0x05, 0x00, 0x06, 0x07, 0x09, 0x08, 0x0a, 0x0b, 0xff},
	{0, 0, 6, 3, 1, 1, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0x06, 0x05, 0x07, 0x04, 0x08, 0x03, 0x09, 0x02, 0x00, 0x0a, 0x01, 0x0b, 0xff},
}

// crwSecondTree holds, per decoder table index, the AC-like second
// Huffman table: 16 bits-per-length counts followed by 164 huffval
// bytes whose high nibble is a zero-run/skip count and low nibble is
// a magnitude length.
var crwSecondTree = [3][180]byte{
	{0, 2, 2, 2, 1, 4, 2, 1, 2, 5, 1, 1, 0, 0, 0, 139,
		0x03, 0x04, 0x02, 0x05, 0x01, 0x06, 0x07, 0x08,
		0x12, 0x13, 0x11, 0x14, 0x09, 0x15, 0x22, 0x00, 0x21, 0x16, 0x0a, 0xf0,
		0x23, 0x17, 0x24, 0x31, 0x32, 0x18, 0x19, 0x33, 0x25, 0x41, 0x34, 0x42,
		0x35, 0x51, 0x36, 0x37, 0x38, 0x29, 0x79, 0x26, 0x1a, 0x39, 0x56, 0x57,
		0x28, 0x27, 0x52, 0x55, 0x58, 0x43, 0x76, 0x59, 0x77, 0x54, 0x61, 0xf9,
		0x71, 0x78, 0x75, 0x96, 0x97, 0x49, 0xb7, 0x53, 0xd7, 0x74, 0xb6, 0x98,
		0x47, 0x48, 0x95, 0x69, 0x99, 0x91, 0xfa, 0xb8, 0x68, 0xb5, 0xb9, 0xd6,
		0xf7, 0xd8, 0x67, 0x46, 0x45, 0x94, 0x89, 0xf8, 0x81, 0xd5, 0xf6, 0xb4,
		0x88, 0xb1, 0x2a, 0x44, 0x72, 0xd9, 0x87, 0x66, 0xd4, 0xf5, 0x3a, 0xa7,
		0x73, 0xa9, 0xa8, 0x86, 0x62, 0xc7, 0x65, 0xc8, 0xc9, 0xa1, 0xf4, 0xd1,
		0xe9, 0x5a, 0x92, 0x85, 0xa6, 0xe7, 0x93, 0xe8, 0xc1, 0xc6, 0x7a, 0x64,
		0xe1, 0x4a, 0x6a, 0xe6, 0xb3, 0xf1, 0xd3, 0xa5, 0x8a, 0xb2, 0x9a, 0xba,
		0x84, 0xa4, 0x63, 0xe5, 0xc5, 0xf3, 0xd2, 0xc4, 0x82, 0xaa, 0xda, 0xe4,
		0xf2, 0xca, 0x83, 0xa3, 0xa2, 0xc3, 0xea, 0xc2, 0xe2, 0xe3, 0xff, 0xff},
	{0, 2, 2, 1, 4, 1, 4, 1, 3, 3, 1, 0, 0, 0, 0, 140,
		0x02, 0x03, 0x01, 0x04, 0x05, 0x12, 0x11, 0x06,
		0x13, 0x07, 0x08, 0x14, 0x22, 0x09, 0x21, 0x00, 0x23, 0x15, 0x31, 0x32,
		0x0a, 0x16, 0xf0, 0x24, 0x33, 0x41, 0x42, 0x19, 0x17, 0x25, 0x18, 0x51,
		0x34, 0x43, 0x52, 0x29, 0x35, 0x61, 0x39, 0x71, 0x62, 0x36, 0x53, 0x26,
		0x38, 0x1a, 0x37, 0x81, 0x27, 0x91, 0x79, 0x55, 0x45, 0x28, 0x72, 0x59,
		0xa1, 0xb1, 0x44, 0x69, 0x54, 0x58, 0xd1, 0xfa, 0x57, 0xe1, 0xf1, 0xb9,
		0x49, 0x47, 0x63, 0x6a, 0xf9, 0x56, 0x46, 0xa8, 0x2a, 0x4a, 0x78, 0x99,
		0x3a, 0x75, 0x74, 0x86, 0x65, 0xc1, 0x76, 0xb6, 0x96, 0xd6, 0x89, 0x85,
		0xc9, 0xf5, 0x95, 0xb4, 0xc7, 0xf7, 0x8a, 0x97, 0xb8, 0x73, 0xb7, 0xd8,
		0xd9, 0x87, 0xa7, 0x7a, 0x48, 0x82, 0x84, 0xea, 0xf4, 0xa6, 0xc5, 0x5a,
		0x94, 0xa4, 0xc6, 0x92, 0xc3, 0x68, 0xb5, 0xc8, 0xe4, 0xe5, 0xe6, 0xe9,
		0xa2, 0xa3, 0xe3, 0xc2, 0x66, 0x67, 0x93, 0xaa, 0xd4, 0xd5, 0xe7, 0xf8,
		0x88, 0x9a, 0xd7, 0x77, 0xc4, 0x64, 0xe2, 0x98, 0xa5, 0xca, 0xda, 0xe8,
		0xf3, 0xf6, 0xa9, 0xb2, 0xb3, 0xf2, 0xd2, 0x83, 0xba, 0xd3, 0xff, 0xff},
	{0, 0, 6, 2, 1, 3, 3, 2, 5, 1, 2, 2, 8, 10, 0, 117,
		0x04, 0x05, 0x03, 0x06, 0x02, 0x07, 0x01, 0x08,
		0x09, 0x12, 0x13, 0x14, 0x11, 0x15, 0x0a, 0x16, 0x17, 0xf0, 0x00, 0x22,
		0x21, 0x18, 0x23, 0x19, 0x24, 0x32, 0x31, 0x25, 0x33, 0x38, 0x37, 0x34,
		0x35, 0x36, 0x39, 0x79, 0x57, 0x58, 0x59, 0x28, 0x56, 0x78, 0x27, 0x41,
		0x29, 0x77, 0x26, 0x42, 0x76, 0x99, 0x1a, 0x55, 0x98, 0x97, 0xf9, 0x48,
		0x54, 0x96, 0x89, 0x47, 0xb7, 0x49, 0xfa, 0x75, 0x68, 0xb6, 0x67, 0x69,
		0xb9, 0xb8, 0xd8, 0x52, 0xd7, 0x88, 0xb5, 0x74, 0x51, 0x46, 0xd9, 0xf8,
		0x3a, 0xd6, 0x87, 0x45, 0x7a, 0x95, 0xd5, 0xf6, 0x86, 0xb4, 0xa9, 0x94,
		0x53, 0x2a, 0xa8, 0x43, 0xf5, 0xf7, 0xd4, 0x66, 0xa7, 0x5a, 0x44, 0x8a,
		0xc9, 0xe8, 0xc8, 0xe7, 0x9a, 0x6a, 0x73, 0x4a, 0x61, 0xc7, 0xf4, 0xc6,
		0x65, 0xe9, 0x72, 0xe6, 0x71, 0x91, 0x93, 0xa6, 0xda, 0x92, 0x85, 0x62,
		0xf3, 0xc5, 0xb2, 0xa4, 0x84, 0xba, 0x64, 0xa5, 0xb3, 0xd2, 0x81, 0xe5,
		0xd3, 0xaa, 0xc4, 0xca, 0xf2, 0xb1, 0xe4, 0xd1, 0x83, 0x63, 0xea, 0xc3,
		0xe2, 0x82, 0xf1, 0xa3, 0xc2, 0xa1, 0xc1, 0xe3, 0xa2, 0xe1, 0xff, 0xff},
}

func buildTable(raw []byte) (*huffman.Table, error) {
	var bits [16]int
	for i := 0; i < 16; i++ {
		bits[i] = int(raw[i])
	}
	huffval := make([]uint8, len(raw)-16)
	copy(huffval, raw[16:])
	return huffman.New(bits, huffval)
}

func createHuffTables(num int) (*huffman.Table, *huffman.Table, error) {
	if num < 0 || num > 2 {
		return nil, nil, errors.Wrapf(ErrUnknownDecoderTable, "table %d", num)
	}
	t0, err := buildTable(crwFirstTree[num][:])
	if err != nil {
		return nil, nil, err
	}
	t1, err := buildTable(crwSecondTree[num][:])
	if err != nil {
		return nil, nil, err
	}
	return t0, t1, nil
}

// Decode decodes a CRW compressed pixel stream into width*height u16
// samples. lowBits indicates the stream carries a separate 2-bit low
// plane at the start of buffer (spec §4.5); decTable selects one of
// the three fixed table pairs (0, 1, or 2).
func Decode(buffer []byte, lowBits bool, decTable, width, height int) ([]uint16, error) {
	t0, t1, err := createHuffTables(decTable)
	if err != nil {
		return nil, err
	}

	out := make([]uint16, width*height)
	lowOff := 0
	if lowBits {
		lowOff = height * width / 4
	}
	offset := 540 + lowOff
	if offset > len(buffer) {
		offset = len(buffer)
	}
	p := bitpump.New(buffer[offset:], bitpump.JPEG)

	carry := int32(0)
	base := [2]int32{512, 512}
	pnum := 0

	for blockStart := 0; blockStart+64 <= len(out); blockStart += 64 {
		pixout := out[blockStart : blockStart+64]

		var diffbuf [64]int32
		i := 0
		for i < 64 {
			tbl := t0
			if i > 0 {
				tbl = t1
			}
			leaf, err := tbl.Len(p)
			if err != nil {
				return nil, err
			}
			if leaf == 0 && i != 0 {
				break
			}
			if leaf == 0xFF {
				i++
				continue
			}
			i += leaf >> 4
			length := uint(leaf & 0x0F)
			if length == 0 {
				i++
				continue
			}
			diff := int32(p.GetBits(length))
			if diff&(1<<(length-1)) == 0 {
				diff -= (1 << length) - 1
			}
			if i < 64 {
				diffbuf[i] = diff
			}
			i++
		}
		diffbuf[0] += carry
		carry = diffbuf[0]

		for j := 0; j < 64; j++ {
			if pnum%width == 0 {
				base[0] = 512
				base[1] = 512
			}
			pnum++
			base[j&1] += diffbuf[j]
			pixout[j] = uint16(base[j&1])
		}
	}

	if lowBits {
		mergeLowBits(out, buffer, width)
	}
	return out, nil
}

// mergeLowBits folds the uncompressed 2-bit low plane stored at
// buffer[26:] into the decoded 10-bit high samples (spec §4.5), applying
// the width==2672 clamp-up-by-2 quirk verbatim.
func mergeLowBits(out []uint16, buffer []byte, width int) {
	for i := 0; i+3 < len(out); i += 4 {
		var c byte
		if off := 26 + i/4; off < len(buffer) {
			c = buffer[off]
		}
		out[i+0] = out[i+0]<<2 | uint16(c)&0x03
		out[i+1] = out[i+1]<<2 | uint16(c>>2)&0x03
		out[i+2] = out[i+2]<<2 | uint16(c>>4)&0x03
		out[i+3] = out[i+3]<<2 | uint16(c>>6)&0x03

		if width == 2672 {
			for j := 0; j < 4; j++ {
				if out[i+j] < 512 {
					out[i+j] += 2
				}
			}
		}
	}
}
