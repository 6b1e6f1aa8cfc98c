/*
NAME
  rawcore.go - package entry points: Decode and DecodeFile.

DESCRIPTION
  Implements the public API (spec §6): sniff the container format,
  look the camera up in the registry, and dispatch to the matching
  decoders package function. Everything below this call never touches
  an io.Reader again — every per-format decoder works off a fully
  buffered []byte, matching the teacher's "read once, parse in memory"
  style for bounded device capture buffers.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rawcore decodes raw camera image files into a normalized
// RawImage: sensor samples, a CFA description, and white-balance and
// color metadata looked up from a camera capability registry.
package rawcore

import (
	"io"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"

	"github.com/ausocean/rawcore/camera"
	"github.com/ausocean/rawcore/container/ciff"
	"github.com/ausocean/rawcore/container/fuji"
	"github.com/ausocean/rawcore/container/mrw"
	"github.com/ausocean/rawcore/container/tiff"
	"github.com/ausocean/rawcore/decoders"
	"github.com/ausocean/rawcore/rawformat"
	"github.com/ausocean/rawcore/rawimage"
)

// RawImage is the decoded product type (spec §3), re-exported from
// rawimage so callers never need to import that package directly.
type RawImage = rawimage.RawImage

// CFA is a camera's color filter array tile (spec §3).
type CFA = rawimage.CFA

// Color indices used by a CFA tile.
const (
	ColorR = rawimage.ColorR
	ColorG = rawimage.ColorG
	ColorB = rawimage.ColorB
	ColorE = rawimage.ColorE
)

// ParseCFA builds a CFA from a registry color_pattern string.
func ParseCFA(pattern string) CFA { return rawimage.ParseCFA(pattern) }

// ErrUnknownFormat is returned when Sniff could not recognise buf as
// any supported container (spec §7 kind 1). Decode does not try such a
// file as a naked sensor dump; DecodeNaked decodes those.
var ErrUnknownFormat = errors.New("rawcore: unrecognised file format")

// DecodeFile reads path and decodes it with Decode.
func DecodeFile(path string) (*RawImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "rawcore: opening file")
	}
	defer f.Close()
	return Decode(f)
}

// Decode buffers r fully, sniffs its container format, looks up the
// camera's registry entry, and dispatches to the matching decoder.
// Naked sensor dumps (no in-file identification) are not handled by
// Decode; use DecodeNaked for those.
func Decode(r io.Reader) (*RawImage, error) {
	buf, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "rawcore: reading input")
	}
	return decodeBuf(buf, camera.Default())
}

// DecodeWithRegistry behaves like Decode but looks cameras up in reg
// instead of the process-wide default registry.
func DecodeWithRegistry(r io.Reader, reg *camera.Registry) (*RawImage, error) {
	buf, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "rawcore: reading input")
	}
	return decodeBuf(buf, reg)
}

// DecodeNaked decodes a headerless sensor dump, whose camera cannot be
// identified from the file itself and must be named explicitly (spec
// §4.10).
func DecodeNaked(r io.Reader, make_, model, mode string) (*RawImage, error) {
	buf, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "rawcore: reading input")
	}
	cam, err := camera.Default().Lookup(make_, model, mode)
	if err != nil {
		return nil, err
	}
	return decoders.DecodeNaked(buf, cam)
}

func decodeBuf(buf []byte, reg *camera.Registry) (*RawImage, error) {
	kind := rawformat.Sniff(buf)

	switch kind {
	case rawformat.Crw:
		return decodeCRW(buf, reg)
	case rawformat.Mrw:
		return decodeMRW(buf, reg)
	case rawformat.Raf:
		return decodeRAF(buf, reg)
	case rawformat.Cr2, rawformat.Dng, rawformat.Arw, rawformat.Nef, rawformat.Nrw,
		rawformat.Pef, rawformat.Mef, rawformat.Mos, rawformat.Srw, rawformat.Dcs:
		return decodeTIFFRooted(buf, kind, reg)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "sniffed kind %v", kind)
	}
}

func decodeTIFFRooted(buf []byte, kind rawformat.Kind, reg *camera.Registry) (*RawImage, error) {
	root, err := tiff.NewRoot(buf, 0)
	if err != nil {
		return nil, errors.Wrap(err, "rawcore: parsing TIFF root")
	}
	mk, model := tiffMakeModel(root)
	cam, err := reg.Lookup(mk, model, "")
	if err != nil {
		return nil, err
	}

	switch kind {
	case rawformat.Cr2:
		return decoders.DecodeCR2(buf, root, cam)
	case rawformat.Dng:
		return decoders.DecodeDNG(buf, root, cam)
	case rawformat.Arw:
		return decoders.DecodeARW(buf, root, cam)
	case rawformat.Nef:
		return decoders.DecodeNEF(buf, root, cam)
	case rawformat.Nrw:
		return decoders.DecodeNRW(buf, root, cam)
	case rawformat.Pef:
		return decoders.DecodePEF(buf, root, cam)
	case rawformat.Mef:
		return decoders.DecodeMEF(buf, root, cam)
	case rawformat.Mos:
		return decoders.DecodeMOS(buf, root, cam)
	case rawformat.Srw:
		return decoders.DecodeSRW(buf, root, cam)
	case rawformat.Dcs:
		return decoders.DecodeDCS(buf, root, cam)
	}
	return nil, errors.Errorf("rawcore: no TIFF-rooted dispatch for %v", kind)
}

func tiffMakeModel(root *tiff.IFD) (make_, model string) {
	if e, ok := root.FindEntry(tiff.TagMake); ok {
		make_ = e.Str()
	}
	if e, ok := root.FindEntry(tiff.TagModel); ok {
		model = e.Str()
	}
	return make_, model
}

func decodeMRW(buf []byte, reg *camera.Registry) (*RawImage, error) {
	f, err := mrw.Parse(buf)
	if err != nil {
		return nil, errors.Wrap(err, "rawcore: parsing MRW")
	}
	var mk, model string
	if f.TIFF != nil {
		mk, model = tiffMakeModel(f.TIFF)
	}
	cam, err := reg.Lookup(mk, model, "")
	if err != nil {
		return nil, err
	}
	return decoders.DecodeMRW(buf, f, cam)
}

func decodeRAF(buf []byte, reg *camera.Registry) (*RawImage, error) {
	f, err := fuji.Parse(buf)
	if err != nil {
		return nil, errors.Wrap(err, "rawcore: parsing RAF")
	}
	mk, model := tiffMakeModel(f.IFD)
	if mk == "" {
		mk = "FUJIFILM"
	}
	cam, err := reg.Lookup(mk, model, "")
	if err != nil {
		return nil, err
	}
	return decoders.DecodeRAF(buf, f, cam)
}

// crwHeapOffset is the fixed CIFF file header size preceding the heap:
// 2-byte byte-order marker, 4-byte header-length field (which equals
// this offset for every CRW file this library has seen), the 8-byte
// "HEAPCCDR" signature, a 4-byte version and 8 reserved bytes.
const crwHeapOffset = 26

func decodeCRW(buf []byte, reg *camera.Registry) (*RawImage, error) {
	if len(buf) < crwHeapOffset {
		return nil, errors.New("rawcore: CRW file too short")
	}
	heap, err := ciff.Parse(buf, crwHeapOffset, len(buf)-crwHeapOffset, 0)
	if err != nil {
		return nil, errors.Wrap(err, "rawcore: parsing CIFF heap")
	}
	mk, model := "", ""
	if e, ok := heap.FindEntry(ciff.TagMakeModel); ok {
		parts := e.Strings()
		if len(parts) > 0 {
			mk = parts[0]
		}
		if len(parts) > 1 {
			model = parts[1]
		}
	}
	cam, err := reg.Lookup(mk, model, "")
	if err != nil {
		return nil, err
	}
	return decoders.DecodeCRW(buf, heap, cam)
}
