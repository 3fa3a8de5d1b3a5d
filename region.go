package anvil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/klauspost/compress/zlib"
	"github.com/voxelforge/anvil/nbt"
	"github.com/willf/bitset"
)

const (
	sectorSize   = 4096
	regionChunks = 32 * 32
	headerSize   = 2 * sectorSize

	compressionGzip = 1
	compressionZlib = 2
)

// Region is one 32x32 grid of chunks backed by a sector-allocated file. A
// chunk's compressed payload is kept as read until the chunk is first
// accessed; payloads that are never touched are written back byte for byte.
type Region struct {
	X, Z int

	chunks    [regionChunks]*Chunk
	raw       [regionChunks][]byte
	populated *bitset.BitSet
}

// NewRegion makes an empty region at the given region coordinates.
func NewRegion(x, z int) *Region {
	return &Region{X: x, Z: z, populated: bitset.New(regionChunks)}
}

// chunkSlot maps world chunk coordinates to a header index.
func chunkSlot(cx, cz int) int {
	return (cz&31)*32 + (cx & 31)
}

var regionFileName = regexp.MustCompile(`^r\.(-?\d+)\.(-?\d+)\.mca$`)

// OpenRegion reads a region file, taking the region coordinates from the
// r.X.Z.mca file name.
func OpenRegion(path string) (*Region, error) {
	m := regionFileName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return nil, fmt.Errorf("anvil: %q is not a region file name", filepath.Base(path))
	}
	x, _ := strconv.Atoi(m[1])
	z, _ := strconv.Atoi(m[2])
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRegion(f, x, z)
}

// ReadRegion parses a region file. Each populated chunk's compressed payload
// is sliced out and validated, but not decompressed until the chunk is
// accessed.
func ReadRegion(r io.Reader, x, z int) (*Region, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	reg := NewRegion(x, z)
	if len(buf) == 0 {
		return reg, nil
	}
	if len(buf) < headerSize {
		return nil, fmt.Errorf("anvil: region file is %d bytes, want at least %d", len(buf), headerSize)
	}
	for i := 0; i < regionChunks; i++ {
		loc := uint32(buf[i*4])<<24 | uint32(buf[i*4+1])<<16 | uint32(buf[i*4+2])<<8 | uint32(buf[i*4+3])
		offset := int(loc >> 8)
		if offset == 0 {
			continue
		}
		start := offset * sectorSize
		if start+5 > len(buf) {
			return nil, fmt.Errorf("%w: chunk %d starts past the end of the file", ErrInvalidChunkLength, i)
		}
		length := int(uint32(buf[start])<<24 | uint32(buf[start+1])<<16 | uint32(buf[start+2])<<8 | uint32(buf[start+3]))
		if length < 1 || start+4+length > len(buf) {
			return nil, fmt.Errorf("%w: chunk %d claims %d bytes", ErrInvalidChunkLength, i, length)
		}
		scheme := buf[start+4]
		if scheme != compressionZlib {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, scheme)
		}
		reg.raw[i] = buf[start+5 : start+4+length]
		reg.populated.Set(uint(i))
	}
	return reg, nil
}

// chunkAt parses the chunk in the given slot, or returns nil for an
// ungenerated one.
func (r *Region) chunkAt(slot int) (*Chunk, error) {
	if c := r.chunks[slot]; c != nil {
		return c, nil
	}
	if r.raw[slot] == nil {
		return nil, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(r.raw[slot]))
	if err != nil {
		return nil, fmt.Errorf("anvil: chunk %d: %w", slot, err)
	}
	defer zr.Close()
	_, tag, err := nbt.Read(zr)
	if err != nil {
		return nil, fmt.Errorf("anvil: chunk %d: %w", slot, err)
	}
	root, ok := tag.(nbt.Compound)
	if !ok {
		return nil, fmt.Errorf("anvil: chunk %d: root tag is %v, want Compound", slot, tag.Type())
	}
	c, err := chunkFromTag(root, r.X*32+slot%32, r.Z*32+slot/32)
	if err != nil {
		return nil, err
	}
	r.chunks[slot] = c
	return c, nil
}

// GetChunk returns the chunk at world chunk coordinates, or nil if it was
// never generated.
func (r *Region) GetChunk(cx, cz int) (*Chunk, error) {
	if cx>>5 != r.X || cz>>5 != r.Z {
		return nil, fmt.Errorf("%w: chunk (%d, %d) is not in region (%d, %d)", ErrOutOfBounds, cx, cz, r.X, r.Z)
	}
	return r.chunkAt(chunkSlot(cx, cz))
}

// AddChunk places a chunk in its slot. Without replace, an occupied slot is
// an error.
func (r *Region) AddChunk(c *Chunk, replace bool) error {
	if c.X>>5 != r.X || c.Z>>5 != r.Z {
		return fmt.Errorf("%w: chunk (%d, %d) is not in region (%d, %d)", ErrOutOfBounds, c.X, c.Z, r.X, r.Z)
	}
	slot := chunkSlot(c.X, c.Z)
	if r.populated.Test(uint(slot)) && !replace {
		return fmt.Errorf("%w: (%d, %d)", ErrChunkExists, c.X, c.Z)
	}
	r.chunks[slot] = c
	r.raw[slot] = nil
	r.populated.Set(uint(slot))
	return nil
}

// AddSection places a section into the chunk at world chunk coordinates,
// creating the chunk if needed.
func (r *Region) AddSection(s *Section, cx, cz int, replace bool) error {
	c, err := r.GetChunk(cx, cz)
	if err != nil {
		return err
	}
	if c == nil {
		c = NewChunk(cx, cz, s.version)
		if err := r.AddChunk(c, false); err != nil {
			return err
		}
	}
	return c.AddSection(s, replace)
}

// Inside reports whether the world coordinate falls within this region.
func (r *Region) Inside(x, y, z int) bool {
	return x>>9 == r.X && z>>9 == r.Z && y >= worldMinY && y <= worldMaxY
}

// GetBlock returns the block at world coordinates. Ungenerated chunks read
// as air.
func (r *Region) GetBlock(x, y, z int) (*Block, error) {
	if !r.Inside(x, y, z) {
		return nil, fmt.Errorf("%w: (%d, %d, %d) is not in region (%d, %d)", ErrOutOfBounds, x, y, z, r.X, r.Z)
	}
	c, err := r.chunkAt(chunkSlot(x>>4, z>>4))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return Air(), nil
	}
	return c.GetBlock(x&15, y, z&15)
}

// GetBiome returns the biome at world coordinates. Ungenerated chunks read
// as plains.
func (r *Region) GetBiome(x, y, z int) (*Biome, error) {
	if !r.Inside(x, y, z) {
		return nil, fmt.Errorf("%w: (%d, %d, %d) is not in region (%d, %d)", ErrOutOfBounds, x, y, z, r.X, r.Z)
	}
	c, err := r.chunkAt(chunkSlot(x>>4, z>>4))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return BiomeFromName(defaultBiome), nil
	}
	return c.GetBiome(x&15, y, z&15)
}

// SetBlock places a block at world coordinates, creating the chunk if
// needed.
func (r *Region) SetBlock(b *Block, x, y, z int) error {
	if !r.Inside(x, y, z) {
		return fmt.Errorf("%w: (%d, %d, %d) is not in region (%d, %d)", ErrOutOfBounds, x, y, z, r.X, r.Z)
	}
	slot := chunkSlot(x>>4, z>>4)
	c, err := r.chunkAt(slot)
	if err != nil {
		return err
	}
	if c == nil {
		c = NewChunk(x>>4, z>>4, DefaultVersion)
		r.chunks[slot] = c
		r.populated.Set(uint(slot))
	}
	return c.SetBlock(b, x&15, y, z&15)
}

// SetIfInside is SetBlock for bulk placement across regions: coordinates
// outside this region are skipped without error.
func (r *Region) SetIfInside(b *Block, x, y, z int) error {
	if !r.Inside(x, y, z) {
		return nil
	}
	return r.SetBlock(b, x, y, z)
}

// PopulatedChunks lists the world chunk coordinates of every chunk present
// in the region.
func (r *Region) PopulatedChunks() [][2]int {
	coords := make([][2]int, 0, r.populated.Count())
	for i, ok := r.populated.NextSet(0); ok; i, ok = r.populated.NextSet(i + 1) {
		coords = append(coords, [2]int{r.X*32 + int(i)%32, r.Z*32 + int(i)/32})
	}
	return coords
}

// chunkPayload produces the zlib payload for one slot, reusing the bytes
// read from disk when the chunk was never parsed.
func (r *Region) chunkPayload(slot int) ([]byte, error) {
	if r.chunks[slot] == nil {
		return r.raw[slot], nil
	}
	tag, err := r.chunks[slot].save()
	if err != nil {
		return nil, err
	}
	var plain bytes.Buffer
	if err := nbt.Write(&plain, "", tag); err != nil {
		return nil, err
	}
	var packed bytes.Buffer
	zw := zlib.NewWriter(&packed)
	if _, err := zw.Write(plain.Bytes()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return packed.Bytes(), nil
}

// Save writes the region file: the location and timestamp tables, then every
// populated chunk padded out to whole sectors.
func (r *Region) Save(w io.Writer) error {
	header := make([]byte, headerSize)
	var body bytes.Buffer
	for i, ok := r.populated.NextSet(0); ok; i, ok = r.populated.NextSet(i + 1) {
		payload, err := r.chunkPayload(int(i))
		if err != nil {
			return err
		}
		if payload == nil {
			continue
		}
		stored := len(payload) + 5
		sectors := (stored + sectorSize - 1) / sectorSize
		if sectors > 0xff {
			return fmt.Errorf("%w: chunk %d needs %d sectors", ErrInvalidChunkLength, i, sectors)
		}
		offset := 2 + body.Len()/sectorSize
		loc := uint32(offset)<<8 | uint32(sectors)
		header[i*4] = byte(loc >> 24)
		header[i*4+1] = byte(loc >> 16)
		header[i*4+2] = byte(loc >> 8)
		header[i*4+3] = byte(loc)

		length := len(payload) + 1
		body.Write([]byte{byte(length >> 24), byte(length >> 16), byte(length >> 8), byte(length), compressionZlib})
		body.Write(payload)
		if pad := body.Len() % sectorSize; pad != 0 {
			body.Write(make([]byte, sectorSize-pad))
		}
	}
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}

// SaveFile writes the region to its canonical file name under dir.
func (r *Region) SaveFile(dir string) error {
	name := fmt.Sprintf("r.%d.%d.mca", r.X, r.Z)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if err := r.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
