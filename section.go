package anvil

import (
	"errors"
	"fmt"

	"github.com/voxelforge/anvil/nbt"
)

const sectionVolume = 16 * 16 * 16

// Section stores one 16x16x16 cube of blocks. A section parsed from a file
// starts raw, holding only its tag subtree; the first access decodes it,
// after which the block array is authoritative and the subtree is dropped.
// Empty cells stay nil rather than materializing an air block per cell.
type Section struct {
	Y int

	version     DataVersion
	blocks      [sectionVolume]*Block
	biome       *Biome
	data        nbt.Compound
	constructed bool
}

// NewSection makes an empty, constructed section at the given Y index.
func NewSection(version DataVersion, y int) *Section {
	return &Section{Y: y, version: version, constructed: true}
}

func sectionFromTag(data nbt.Compound, version DataVersion) (*Section, error) {
	y, err := data.GetNumber("Y")
	if err != nil {
		return nil, err
	}
	return &Section{Y: int(y), version: version, data: data}, nil
}

// Cells are ordered X fastest, then Z, then Y.
func sectionIndex(x, y, z int) int {
	return y*256 + z*16 + x
}

func insideSection(x, y, z int) bool {
	return x >= 0 && x < 16 && y >= 0 && y < 16 && z >= 0 && z < 16
}

// Materialize decodes the packed block data. It is a no-op on a section that
// is already constructed. A corrupt payload degrades to all air with a
// diagnostic instead of failing the chunk.
func (s *Section) Materialize() {
	if s.constructed {
		return
	}
	s.constructed = true
	data := s.data
	s.data = nil
	if err := s.decode(data); err != nil {
		Log.Warnf("section Y=%d unreadable, treating as air: %v", s.Y, err)
		for i := range s.blocks {
			s.blocks[i] = nil
		}
	}
}

// sectionStates pulls the palette list and packed index words out of a
// section tag, handling both the block_states wrapper and the older flat
// Palette/BlockStates fields. words is nil when the tag stores no index
// array.
func sectionStates(tag nbt.Compound) (pal *nbt.List, words []int64, err error) {
	if tag.Has("block_states") {
		states, err := tag.GetCompound("block_states")
		if err != nil {
			return nil, nil, err
		}
		pal, err = states.GetList("palette")
		if err != nil {
			return nil, nil, err
		}
		if states.Has("data") {
			if words, err = states.GetLongArray("data"); err != nil {
				return nil, nil, err
			}
		}
		return pal, words, nil
	}
	if pal, err = tag.GetList("Palette"); err != nil {
		return nil, nil, err
	}
	if words, err = tag.GetLongArray("BlockStates"); err != nil {
		return nil, nil, err
	}
	return pal, words, nil
}

func (s *Section) decode(data nbt.Compound) error {
	if !s.version.hasNamespacedIDs() {
		return s.decodeLegacy(data)
	}
	pal, words, err := sectionStates(data)
	if err != nil {
		return err
	}
	blocks := make([]*Block, 0, len(pal.Items))
	for _, item := range pal.Items {
		entry, ok := item.(nbt.Compound)
		if !ok {
			return fmt.Errorf("anvil: palette entry is %v, want Compound", item.Type())
		}
		b, err := blockFromPalette(entry)
		if err != nil {
			return err
		}
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		return errors.New("anvil: empty palette")
	}
	if len(blocks) == 1 || words == nil {
		// A single-entry palette needs no index array.
		if !blocks[0].isAir() {
			for i := range s.blocks {
				s.blocks[i] = blocks[0]
			}
		}
		return nil
	}
	width := paletteBits(len(blocks))
	states, err := unpackStates(words, sectionVolume, width, s.version.stretches())
	if err != nil {
		return err
	}
	for i, idx := range states {
		if idx >= len(blocks) {
			return fmt.Errorf("anvil: palette index %d out of range (%d entries)", idx, len(blocks))
		}
		if b := blocks[idx]; !b.isAir() {
			s.blocks[i] = b
		}
	}
	return nil
}

// decodeLegacy reads the flat pre-flattening layout: one byte id per cell,
// 4-bit data values and an optional Add nibble array carrying the high id
// bits.
func (s *Section) decodeLegacy(data nbt.Compound) error {
	if !data.Has("Blocks") {
		return nil
	}
	ids, err := data.GetByteArray("Blocks")
	if err != nil {
		return err
	}
	if len(ids) < sectionVolume {
		return fmt.Errorf("anvil: Blocks array has %d entries, want %d", len(ids), sectionVolume)
	}
	var add, meta []byte
	if data.Has("Add") {
		if add, err = data.GetByteArray("Add"); err != nil {
			return err
		}
	}
	if data.Has("Data") {
		if meta, err = data.GetByteArray("Data"); err != nil {
			return err
		}
	}
	for i := 0; i < sectionVolume; i++ {
		id := int32(ids[i])
		if len(add) >= sectionVolume/2 {
			id |= int32(nibble4(add, i)) << 8
		}
		if id == 0 {
			continue
		}
		var d byte
		if len(meta) >= sectionVolume/2 {
			d = nibble4(meta, i)
		}
		s.blocks[i] = OldBlock{ID: id, Data: d}.Convert()
	}
	return nil
}

func (s *Section) GetBlock(x, y, z int) (*Block, error) {
	if !insideSection(x, y, z) {
		return nil, fmt.Errorf("%w: section coordinates (%d, %d, %d) must be 0..15", ErrOutOfBounds, x, y, z)
	}
	s.Materialize()
	if b := s.blocks[sectionIndex(x, y, z)]; b != nil {
		return b, nil
	}
	return Air(), nil
}

func (s *Section) SetBlock(b *Block, x, y, z int) error {
	if !insideSection(x, y, z) {
		return fmt.Errorf("%w: section coordinates (%d, %d, %d) must be 0..15", ErrOutOfBounds, x, y, z)
	}
	s.Materialize()
	s.blocks[sectionIndex(x, y, z)] = b
	return nil
}

// SetBiome assigns one uniform biome to the whole section.
func (s *Section) SetBiome(b *Biome) {
	s.biome = b
}

// palette returns the distinct blocks present in first-seen order, with air
// substituted for empty cells, plus the reverse lookup the encoder uses for
// its per-cell index resolution.
func (s *Section) palette() ([]*Block, map[string]int) {
	var pal []*Block
	index := make(map[string]int)
	for _, b := range s.blocks {
		if b == nil {
			b = Air()
		}
		k := b.key()
		if _, ok := index[k]; !ok {
			index[k] = len(pal)
			pal = append(pal, b)
		}
	}
	return pal, index
}

func (s *Section) blockStates(index map[string]int, width int) []int64 {
	values := make([]int, sectionVolume)
	for i, b := range s.blocks {
		k := "minecraft:air"
		if b != nil {
			k = b.key()
		}
		values[i] = index[k]
	}
	return packStates(values, width, s.version.stretches())
}

func (s *Section) allAir() bool {
	if !s.constructed {
		return false
	}
	for _, b := range s.blocks {
		if b != nil && !b.isAir() {
			return false
		}
	}
	return true
}

// save serializes the section for its era, or reuses the original subtree
// verbatim when the section was never decoded.
func (s *Section) save() (nbt.Compound, error) {
	if !s.constructed {
		return s.data, nil
	}
	if !s.version.hasNamespacedIDs() {
		return s.saveLegacy()
	}
	pal, index := s.palette()
	width := paletteBits(len(pal))
	palList := &nbt.List{Elem: nbt.TagCompound}
	for _, b := range pal {
		palList.Items = append(palList.Items, b.paletteTag())
	}
	words := nbt.LongArray(s.blockStates(index, width))
	if !s.version.extendedHeight() {
		return nbt.Compound{
			"Y":           nbt.Byte(s.Y),
			"Palette":     palList,
			"BlockStates": words,
		}, nil
	}
	biomeName := defaultBiome
	if s.biome != nil {
		biomeName = s.biome.ID()
	}
	return nbt.Compound{
		"Y": nbt.Byte(s.Y),
		"block_states": nbt.Compound{
			"palette": palList,
			"data":    words,
		},
		"biomes": nbt.Compound{
			"palette": &nbt.List{Elem: nbt.TagString, Items: []nbt.Tag{nbt.String(biomeName)}},
		},
	}, nil
}

func (s *Section) saveLegacy() (nbt.Compound, error) {
	ids := make([]byte, sectionVolume)
	for i, b := range s.blocks {
		if b == nil {
			continue
		}
		id, err := legacyID(b)
		if err != nil {
			return nil, err
		}
		if id > 0xff {
			return nil, fmt.Errorf("anvil: legacy id %d for %s does not fit a byte", id, b.ID())
		}
		ids[i] = byte(id)
	}
	return nbt.Compound{
		"Y":      nbt.Byte(s.Y),
		"Blocks": nbt.ByteArray(ids),
		"Data":   nbt.ByteArray(make([]byte, sectionVolume/2)),
	}, nil
}
