package anvil

import (
	"fmt"

	"github.com/voxelforge/anvil/nbt"
)

// Chunk is one 16x16 column of sections. Like Section it is either raw
// (holding the tag tree it was parsed from) or constructed (holding a slot
// array of sections). Reads work in either state; the first mutation or an
// explicit Materialize builds the slot array.
type Chunk struct {
	X, Z    int
	Version DataVersion

	sections    []*Section
	data        nbt.Compound
	constructed bool
}

// NewChunk makes an empty, constructed chunk. A zero version means the chunk
// predates version stamping and uses the oldest encoding.
func NewChunk(x, z int, version DataVersion) *Chunk {
	return &Chunk{
		X:           x,
		Z:           z,
		Version:     version,
		sections:    make([]*Section, version.sectionCount()),
		constructed: true,
	}
}

// chunkFromTag wraps a parsed chunk tree. A mismatch between the slot-derived
// coordinate and the stored one is diagnosed, not rejected; the stored
// coordinate wins.
func chunkFromTag(root nbt.Compound, wantX, wantZ int) (*Chunk, error) {
	var version DataVersion
	if v, err := root.GetNumber("DataVersion"); err == nil {
		version = DataVersion(v)
	}
	c := &Chunk{Version: version, data: root}
	level := c.level()
	if level == nil {
		return nil, fmt.Errorf("anvil: chunk (%d, %d) has no Level data", wantX, wantZ)
	}
	x, err := level.GetNumber("xPos")
	if err != nil {
		return nil, err
	}
	z, err := level.GetNumber("zPos")
	if err != nil {
		return nil, err
	}
	c.X, c.Z = int(x), int(z)
	if c.X != wantX || c.Z != wantZ {
		Log.Warnf("chunk in slot (%d, %d) reports coordinates (%d, %d)", wantX, wantZ, c.X, c.Z)
	}
	return c, nil
}

// level resolves the compound the per-chunk fields live in: the root itself
// after the Level wrapper was dropped, the Level child before.
func (c *Chunk) level() nbt.Compound {
	if c.data == nil {
		return nil
	}
	if c.Version.extendedHeight() {
		return c.data
	}
	lvl, err := c.data.GetCompound("Level")
	if err != nil {
		return nil
	}
	return lvl
}

func sectionList(level nbt.Compound) *nbt.List {
	if l, err := level.GetList("sections"); err == nil {
		return l
	}
	if l, err := level.GetList("Sections"); err == nil {
		return l
	}
	return nil
}

// Materialize builds the section slot array from the raw tag tree. The
// sections themselves stay raw until they are first touched.
func (c *Chunk) Materialize() {
	if c.constructed {
		return
	}
	level := c.level()
	c.constructed = true
	c.sections = make([]*Section, c.Version.sectionCount())
	c.data = nil
	if level == nil {
		return
	}
	list := sectionList(level)
	if list == nil {
		return
	}
	min := c.Version.minSectionY()
	for _, item := range list.Items {
		tag, ok := item.(nbt.Compound)
		if !ok {
			continue
		}
		sec, err := sectionFromTag(tag, c.Version)
		if err != nil {
			Log.Warnf("chunk (%d, %d): skipping unreadable section: %v", c.X, c.Z, err)
			continue
		}
		slot := sec.Y - min
		if slot < 0 || slot >= len(c.sections) {
			Log.Warnf("chunk (%d, %d): section Y=%d outside the vertical range", c.X, c.Z, sec.Y)
			continue
		}
		c.sections[slot] = sec
	}
}

func checkColumnBounds(x, y, z int) error {
	if x < 0 || x > 15 {
		return fmt.Errorf("%w: x must be 0..15, got %d", ErrOutOfBounds, x)
	}
	if z < 0 || z > 15 {
		return fmt.Errorf("%w: z must be 0..15, got %d", ErrOutOfBounds, z)
	}
	if y < worldMinY || y > worldMaxY {
		return fmt.Errorf("%w: y must be %d..%d, got %d", ErrOutOfBounds, worldMinY, worldMaxY, y)
	}
	return nil
}

// GetBlock returns the block at chunk-local x, z and global y. Missing
// sections read as air. A raw chunk answers from its tag tree without
// materializing.
func (c *Chunk) GetBlock(x, y, z int) (*Block, error) {
	if err := checkColumnBounds(x, y, z); err != nil {
		return nil, err
	}
	if !c.constructed {
		return c.blockFromData(x, y, z)
	}
	slot := y>>4 - c.Version.minSectionY()
	if slot < 0 || slot >= len(c.sections) {
		return Air(), nil
	}
	sec := c.sections[slot]
	if sec == nil {
		return Air(), nil
	}
	return sec.GetBlock(x, y&15, z)
}

// SetBlock places a block at chunk-local x, z and global y, creating the
// target section if needed.
func (c *Chunk) SetBlock(b *Block, x, y, z int) error {
	if err := checkColumnBounds(x, y, z); err != nil {
		return err
	}
	c.Materialize()
	slot := y>>4 - c.Version.minSectionY()
	if slot < 0 || slot >= len(c.sections) {
		return fmt.Errorf("%w: section Y=%d is outside this chunk's vertical range", ErrOutOfBounds, y>>4)
	}
	sec := c.sections[slot]
	if sec == nil {
		sec = NewSection(c.Version, y>>4)
		c.sections[slot] = sec
	}
	return sec.SetBlock(b, x, y&15, z)
}

// AddSection places a section at its Y index. Without replace, an occupied
// slot is an error.
func (c *Chunk) AddSection(s *Section, replace bool) error {
	c.Materialize()
	slot := s.Y - c.Version.minSectionY()
	if slot < 0 || slot >= len(c.sections) {
		return fmt.Errorf("%w: section Y=%d is outside this chunk's vertical range", ErrOutOfBounds, s.Y)
	}
	if c.sections[slot] != nil && !replace {
		return fmt.Errorf("%w: Y=%d", ErrSectionExists, s.Y)
	}
	c.sections[slot] = s
	return nil
}

// SetBiome assigns one uniform biome to every populated section.
func (c *Chunk) SetBiome(b *Biome) {
	c.Materialize()
	for _, s := range c.sections {
		if s != nil {
			s.SetBiome(b)
		}
	}
}

// sectionTag finds the raw subtree for the section at the given Y index.
func (c *Chunk) sectionTag(yIndex int) nbt.Compound {
	level := c.level()
	if level == nil {
		return nil
	}
	list := sectionList(level)
	if list == nil {
		return nil
	}
	for _, item := range list.Items {
		tag, ok := item.(nbt.Compound)
		if !ok {
			continue
		}
		if y, err := tag.GetNumber("Y"); err == nil && int(y) == yIndex {
			return tag
		}
	}
	return nil
}

// blockFromData answers a read against the raw tag tree, extracting just the
// addressed entry from the packed index array.
func (c *Chunk) blockFromData(x, y, z int) (*Block, error) {
	tag := c.sectionTag(y >> 4)
	if tag == nil {
		return Air(), nil
	}
	if !c.Version.hasNamespacedIDs() {
		return c.legacyBlockFromData(tag, x, y&15, z)
	}
	pal, words, err := sectionStates(tag)
	if err != nil {
		Log.Warnf("chunk (%d, %d): section Y=%d unreadable, treating as air: %v", c.X, c.Z, y>>4, err)
		return Air(), nil
	}
	if len(pal.Items) == 0 {
		return Air(), nil
	}
	idx := 0
	if len(pal.Items) > 1 && words != nil {
		width := paletteBits(len(pal.Items))
		idx, err = stateAt(words, sectionIndex(x, y&15, z), width, c.Version.stretches())
		if err != nil {
			Log.Warnf("chunk (%d, %d): section Y=%d unreadable, treating as air: %v", c.X, c.Z, y>>4, err)
			return Air(), nil
		}
	}
	if idx >= len(pal.Items) {
		Log.Warnf("chunk (%d, %d): palette index %d out of range, treating as air", c.X, c.Z, idx)
		return Air(), nil
	}
	entry, ok := pal.Items[idx].(nbt.Compound)
	if !ok {
		return Air(), nil
	}
	return blockFromPalette(entry)
}

func (c *Chunk) legacyBlockFromData(tag nbt.Compound, x, y, z int) (*Block, error) {
	if !tag.Has("Blocks") {
		return Air(), nil
	}
	ids, err := tag.GetByteArray("Blocks")
	if err != nil || len(ids) < sectionVolume {
		Log.Warnf("chunk (%d, %d): legacy Blocks array unreadable, treating as air", c.X, c.Z)
		return Air(), nil
	}
	i := sectionIndex(x, y, z)
	id := int32(ids[i])
	if add, err := tag.GetByteArray("Add"); err == nil && len(add) >= sectionVolume/2 {
		id |= int32(nibble4(add, i)) << 8
	}
	var d byte
	if meta, err := tag.GetByteArray("Data"); err == nil && len(meta) >= sectionVolume/2 {
		d = nibble4(meta, i)
	}
	return OldBlock{ID: id, Data: d}.Convert(), nil
}

// GetBiome returns the biome at chunk-local x, z and global y, reading the
// paletted per-section storage or the older flat column arrays depending on
// era.
func (c *Chunk) GetBiome(x, y, z int) (*Biome, error) {
	if err := checkColumnBounds(x, y, z); err != nil {
		return nil, err
	}
	if c.constructed {
		slot := y>>4 - c.Version.minSectionY()
		if slot >= 0 && slot < len(c.sections) {
			if s := c.sections[slot]; s != nil {
				if !s.constructed {
					return c.biomeFromSectionTag(s.data, x, y, z)
				}
				if s.biome != nil {
					return s.biome, nil
				}
			}
		}
		return BiomeFromName(defaultBiome), nil
	}
	level := c.level()
	if level == nil {
		return BiomeFromName(defaultBiome), nil
	}
	if level.Has("Biomes") {
		return c.biomeFromColumn(level, x, y, z)
	}
	tag := c.sectionTag(y >> 4)
	if tag == nil {
		return BiomeFromName(defaultBiome), nil
	}
	return c.biomeFromSectionTag(tag, x, y, z)
}

// biomeFromSectionTag reads the per-section biome palette: one entry per
// 4x4x4 cell, no index array when the palette has a single entry.
func (c *Chunk) biomeFromSectionTag(tag nbt.Compound, x, y, z int) (*Biome, error) {
	biomes, err := tag.GetCompound("biomes")
	if err != nil {
		return BiomeFromName(defaultBiome), nil
	}
	pal, err := biomes.GetList("palette")
	if err != nil || len(pal.Items) == 0 {
		return BiomeFromName(defaultBiome), nil
	}
	idx := 0
	if len(pal.Items) > 1 && biomes.Has("data") {
		words, err := biomes.GetLongArray("data")
		if err != nil {
			return BiomeFromName(defaultBiome), nil
		}
		cell := (y&15)/4*16 + z/4*4 + x/4
		idx, err = stateAt(words, cell, indexBits(len(pal.Items)), c.Version.stretches())
		if err != nil || idx >= len(pal.Items) {
			Log.Warnf("chunk (%d, %d): biome data unreadable, treating as plains", c.X, c.Z)
			return BiomeFromName(defaultBiome), nil
		}
	}
	name, ok := pal.Items[idx].(nbt.String)
	if !ok {
		return BiomeFromName(defaultBiome), nil
	}
	return BiomeFromName(string(name)), nil
}

// biomeFromColumn reads the chunk-level Biomes array: one numeric id per
// column originally, one per 4x4x4 cell from 19w36a to the schema change.
func (c *Chunk) biomeFromColumn(level nbt.Compound, x, y, z int) (*Biome, error) {
	var idx int
	if c.Version.hasCubicBiomes() {
		idx = y>>2*16 + z/4*4 + x/4
	} else {
		idx = z*16 + x
	}
	if ids, err := level.GetIntArray("Biomes"); err == nil {
		if idx < 0 || idx >= len(ids) {
			return BiomeFromName(defaultBiome), nil
		}
		return biomeFromNumericID(ids[idx]), nil
	}
	if ids, err := level.GetByteArray("Biomes"); err == nil {
		if idx < 0 || idx >= len(ids) {
			return BiomeFromName(defaultBiome), nil
		}
		return biomeFromNumericID(int32(ids[idx])), nil
	}
	return BiomeFromName(defaultBiome), nil
}

// save regenerates the chunk tag tree, or returns the original tree
// untouched when nothing was ever materialized. Regenerated trees carry only
// the auxiliary fields the game requires to be present: empty entity and
// tick lists, the light flag and a full status marker.
func (c *Chunk) save() (nbt.Compound, error) {
	if !c.constructed {
		return c.data, nil
	}
	if c.Version.extendedHeight() {
		return c.saveNew()
	}
	return c.saveOld()
}

func emptyCompoundList() *nbt.List {
	return &nbt.List{Elem: nbt.TagCompound}
}

func (c *Chunk) saveNew() (nbt.Compound, error) {
	list := emptyCompoundList()
	for _, s := range c.sections {
		if s == nil {
			continue
		}
		tag, err := s.save()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, tag)
	}
	return nbt.Compound{
		"DataVersion":    nbt.Int(c.Version),
		"sections":       list,
		"block_entities": emptyCompoundList(),
		"block_ticks":    emptyCompoundList(),
		"fluid_ticks":    emptyCompoundList(),
		"LastUpdate":     nbt.Long(0),
		"InhabitedTime":  nbt.Long(0),
		"isLightOn":      nbt.Byte(1),
		"xPos":           nbt.Int(c.X),
		"yPos":           nbt.Int(c.Version.minSectionY()),
		"zPos":           nbt.Int(c.Z),
		"Status":         nbt.String("full"),
	}, nil
}

func (c *Chunk) saveOld() (nbt.Compound, error) {
	list := emptyCompoundList()
	for _, s := range c.sections {
		if s == nil {
			continue
		}
		// All-air sections are not stored.
		if s.allAir() {
			continue
		}
		tag, err := s.save()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, tag)
	}
	level := nbt.Compound{
		"Entities":      emptyCompoundList(),
		"TileEntities":  emptyCompoundList(),
		"LiquidTicks":   emptyCompoundList(),
		"xPos":          nbt.Int(c.X),
		"zPos":          nbt.Int(c.Z),
		"LastUpdate":    nbt.Long(0),
		"InhabitedTime": nbt.Long(0),
		"isLightOn":     nbt.Byte(1),
		"Status":        nbt.String("full"),
		"Sections":      list,
	}
	root := nbt.Compound{"Level": level}
	if c.Version != 0 {
		root["DataVersion"] = nbt.Int(c.Version)
	}
	return root, nil
}
