package anvil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RegionCoord addresses one region file within a world.
type RegionCoord struct {
	X int
	Z int
}

// regionOf maps a world block coordinate to its region coordinate.
func regionOf(x, z int) RegionCoord {
	return RegionCoord{X: x >> 9, Z: z >> 9}
}

// World is a collection of regions, keyed by region coordinate. Regions are
// created on demand when blocks are placed outside every loaded one.
type World struct {
	regions map[RegionCoord]*Region
}

// NewWorld makes a world with no regions.
func NewWorld() *World {
	return &World{regions: make(map[RegionCoord]*Region)}
}

// OpenWorld loads every region file in a directory, one goroutine per file.
func OpenWorld(dir string) (*World, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if regionFileName.MatchString(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	var wg sync.WaitGroup
	wg.Add(len(paths))
	type result struct {
		region *Region
		err    error
	}
	results := make(chan result, len(paths))
	for _, path := range paths {
		go func(path string) {
			defer wg.Done()
			region, err := OpenRegion(path)
			if err != nil {
				err = fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			results <- result{region: region, err: err}
		}(path)
	}
	wg.Wait()
	close(results)

	w := NewWorld()
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		w.regions[RegionCoord{X: res.region.X, Z: res.region.Z}] = res.region
	}
	return w, nil
}

// Region returns the region containing the world block coordinate, creating
// it if asked to.
func (w *World) Region(x, z int, create bool) *Region {
	coord := regionOf(x, z)
	r, ok := w.regions[coord]
	if !ok && create {
		r = NewRegion(coord.X, coord.Z)
		w.regions[coord] = r
	}
	return r
}

// Regions lists the loaded regions in no particular order.
func (w *World) Regions() []*Region {
	out := make([]*Region, 0, len(w.regions))
	for _, r := range w.regions {
		out = append(out, r)
	}
	return out
}

// GetBlock returns the block at world coordinates. Coordinates in a region
// that was never loaded read as air.
func (w *World) GetBlock(x, y, z int) (*Block, error) {
	if y < worldMinY || y > worldMaxY {
		return nil, fmt.Errorf("%w: y must be %d..%d, got %d", ErrOutOfBounds, worldMinY, worldMaxY, y)
	}
	r := w.Region(x, z, false)
	if r == nil {
		return Air(), nil
	}
	return r.GetBlock(x, y, z)
}

// GetBiome returns the biome at world coordinates. Coordinates in a region
// that was never loaded read as plains.
func (w *World) GetBiome(x, y, z int) (*Biome, error) {
	if y < worldMinY || y > worldMaxY {
		return nil, fmt.Errorf("%w: y must be %d..%d, got %d", ErrOutOfBounds, worldMinY, worldMaxY, y)
	}
	r := w.Region(x, z, false)
	if r == nil {
		return BiomeFromName(defaultBiome), nil
	}
	return r.GetBiome(x, y, z)
}

// SetBlock places a block at world coordinates, creating the region and
// chunk if needed.
func (w *World) SetBlock(b *Block, x, y, z int) error {
	if y < worldMinY || y > worldMaxY {
		return fmt.Errorf("%w: y must be %d..%d, got %d", ErrOutOfBounds, worldMinY, worldMaxY, y)
	}
	return w.Region(x, z, true).SetBlock(b, x, y, z)
}

// Save writes every region to dir, one goroutine per file.
func (w *World) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var wg sync.WaitGroup
	wg.Add(len(w.regions))
	errs := make(chan error, len(w.regions))
	for _, r := range w.regions {
		go func(r *Region) {
			defer wg.Done()
			if err := r.SaveFile(dir); err != nil {
				errs <- fmt.Errorf("region (%d, %d): %w", r.X, r.Z, err)
			}
		}(r)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		return err
	}
	return nil
}
