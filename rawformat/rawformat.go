/*
NAME
  rawformat.go - magic-number format dispatcher.

DESCRIPTION
  Sniffs a raw file's first bytes to pick a DecoderKind (spec §4.9): CIFF
  magic before MRW before FUJIFILM before TIFF, TIFF further split by
  DNGVersion presence and then by Make tag, with an explicit CR2 marker
  check ("CR" at TIFF byte offset 8) ahead of the generic Make dispatch.
  A file matching no magic falls through to Naked, left for the caller
  to confirm against a registry entry naming its dimensions.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rawformat sniffs a raw image file's container format from its
// leading bytes.
package rawformat

import (
	"strings"

	"github.com/ausocean/rawcore/container/tiff"
)

// Kind is the dispatcher's format enum (spec §4.9, §6 DecoderKind).
type Kind int

const (
	Unknown Kind = iota
	Arw
	Cr2
	Crw
	Dng
	Mef
	Mos
	Mrw
	Nef
	Nrw
	Pef
	Raf
	Srw
	Dcs
	Naked
)

// nikonNEFCompression is the registered TIFF Compression value for
// Nikon's NEF lossless-JPEG raw stream (as opposed to an uncompressed
// or linearized NRW stream, both handled by decoders.DecodeNRW).
const nikonNEFCompression = 34713

func (k Kind) String() string {
	switch k {
	case Arw:
		return "ARW"
	case Cr2:
		return "CR2"
	case Crw:
		return "CRW"
	case Dng:
		return "DNG"
	case Mef:
		return "MEF"
	case Mos:
		return "MOS"
	case Mrw:
		return "MRW"
	case Nef:
		return "NEF"
	case Nrw:
		return "NRW"
	case Pef:
		return "PEF"
	case Raf:
		return "RAF"
	case Srw:
		return "SRW"
	case Dcs:
		return "DCS"
	case Naked:
		return "Naked"
	default:
		return "Unknown"
	}
}

// makeToKind maps an IFD0 Make string (case/whitespace-insensitive
// substring match) to a decoder kind for TIFF-rooted files without a
// more specific magic (spec §4.9).
var makeToKind = []struct {
	substr string
	kind   Kind
}{
	{"SONY", Arw},
	{"NIKON", Nrw}, // refined to Nef when the raw IFD's Compression tag names Nikon's lossless-JPEG scheme, see sniffNikon.
	{"PENTAX", Pef},
	{"MINOLTA", Mos},
	{"LEAF", Mef},
	{"KODAK", Dcs},
	{"SAMSUNG", Srw},
}

// Sniff inspects buf's leading bytes and picks a DecoderKind.
func Sniff(buf []byte) Kind {
	if len(buf) >= 8 && string(buf[0:8]) == "HEAPCCDR" ||
		len(buf) >= 14 && string(buf[6:14]) == "HEAPCCDR" {
		return Crw
	}
	if len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 'M' && buf[2] == 'R' && buf[3] == 'M' {
		return Mrw
	}
	if len(buf) >= 8 && string(buf[0:8]) == "FUJIFILM" {
		return Raf
	}
	if len(buf) >= 4 && (buf[0] == 'I' && buf[1] == 'I' && buf[2] == 0x2A && buf[3] == 0x00 ||
		buf[0] == 'M' && buf[1] == 'M' && buf[2] == 0x00 && buf[3] == 0x2A) {
		return sniffTIFF(buf)
	}
	return Naked
}

// sniffTIFF distinguishes the TIFF-rooted formats: DNG via DNGVersion,
// CR2 via the "CR" marker at byte offset 8, else by Make tag.
func sniffTIFF(buf []byte) Kind {
	if len(buf) >= 10 && buf[8] == 'C' && buf[9] == 'R' {
		return Cr2
	}

	ifd, err := tiff.NewRoot(buf, 0)
	if err != nil {
		return Naked
	}
	if _, ok := ifd.FindEntry(tiff.TagDNGVersion); ok {
		return Dng
	}

	e, ok := ifd.FindEntry(tiff.TagMake)
	if !ok {
		return Naked
	}
	mk := strings.ToUpper(e.Str())
	for _, m := range makeToKind {
		if strings.Contains(mk, m.substr) {
			if m.kind == Nrw {
				return sniffNikon(ifd)
			}
			return m.kind
		}
	}
	return Naked
}

// sniffNikon distinguishes NEF (lossless-JPEG compressed) from NRW
// (uncompressed or linearized) Nikon files by the raw IFD's
// Compression tag: NEF's entropy-coded stream needs ljpeg.Decode2
// (decoders.DecodeNEF), while NRW's packed/plain samples are unpacked
// directly (decoders.DecodeNRW).
func sniffNikon(ifd *tiff.IFD) Kind {
	for _, raw := range ifd.FindIFDsWithTag(tiff.TagCFAPattern) {
		if c, ok := raw.FindEntry(tiff.TagCompression); ok && int(c.U32(0)) == nikonNEFCompression {
			return Nef
		}
	}
	return Nrw
}
