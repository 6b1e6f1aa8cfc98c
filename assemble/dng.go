/*
NAME
  dng.go - DNG tiled frame reassembly.

DESCRIPTION
  Tiled DNG (spec §4.11) decodes each TileWidth x TileLength tile
  independently and writes it into its destination rectangle; tile
  count must equal ceil(W/TW) x ceil(H/TL) (enforced by the caller in
  decoders/dng.go). Tiles don't depend on each other, so decode fans
  out across a bounded worker pool: the goroutine-plus-sync.WaitGroup
  shape revid/senders.go uses for its background sender, adapted from
  one long-lived I/O goroutine into a worker-per-core pool since tile
  decode is CPU-bound.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package assemble

import (
	"runtime"
	"sync"
)

// DNGTile is one tile's destination rectangle and source bytes.
type DNGTile struct {
	X, Y, Width, Height int
	Data                []byte
}

// DNGTiles decodes every tile with decode and writes each tile's
// output into its destination rectangle of a width*height buffer.
// Tiles are decoded concurrently across min(len(tiles), GOMAXPROCS)
// workers; a tile's rectangle is clipped against width/height so a
// ragged final row/column of partial tiles never writes out of bounds.
// The first decode error observed by any worker is returned.
func DNGTiles(tiles []DNGTile, width, height int, decode func(data []byte, w, h int) ([]uint16, error)) ([]uint16, error) {
	out := make([]uint16, width*height)
	if len(tiles) == 0 {
		return out, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(tiles) {
		workers = len(tiles)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan DNGTile)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				px, err := decode(t.Data, t.Width, t.Height)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				rowWidth := t.Width
				if t.X+rowWidth > width {
					rowWidth = width - t.X
				}
				if rowWidth <= 0 {
					continue
				}
				for row := 0; row < t.Height; row++ {
					destY := t.Y + row
					if destY >= height {
						break
					}
					srcStart := row * t.Width
					destStart := destY*width + t.X
					copy(out[destStart:destStart+rowWidth], px[srcStart:srcStart+rowWidth])
				}
			}
		}()
	}
	for _, t := range tiles {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
