package anvil

// DataVersion selects the encoding era of a chunk. The zero value stands in
// for worlds old enough to predate the field and sorts below every
// threshold.
type DataVersion int32

const (
	// Version17w47a is "the Flattening": namespaced block identities with a
	// palette and bit-packed indices replace numeric ids and nibble data.
	Version17w47a DataVersion = 1451
	// Version19w36a moves biome storage to a palette per 4x4x4 cell instead
	// of one flat column array.
	Version19w36a DataVersion = 2203
	// Version20w17a stops stretching packed values across 64-bit word
	// boundaries; values are padded to fit wholly within one word.
	Version20w17a DataVersion = 2529
	// Version1_17_1 is the last version before the world grew from sixteen
	// sections (Y 0..255) to twenty-four (Y -64..319) and the chunk schema
	// lost its Level wrapper.
	Version1_17_1 DataVersion = 2730
)

// DefaultVersion stamps chunks built from scratch.
const DefaultVersion = Version1_17_1 + 1

// Accepted vertical range for block coordinates. Applied uniformly across
// eras; legacy chunks simply have no sections above Y 255.
const (
	worldMinY = -64
	worldMaxY = 319
)

// After reports whether v is strictly beyond the given threshold.
func (v DataVersion) After(threshold DataVersion) bool {
	return v > threshold
}

func (v DataVersion) hasNamespacedIDs() bool { return v.After(Version17w47a) }
func (v DataVersion) hasCubicBiomes() bool   { return v.After(Version19w36a) }
func (v DataVersion) stretches() bool        { return !v.After(Version20w17a) }
func (v DataVersion) extendedHeight() bool   { return v.After(Version1_17_1) }

// minSectionY is the Y index of a chunk's lowest section slot.
func (v DataVersion) minSectionY() int {
	if v.extendedHeight() {
		return -4
	}
	return 0
}

func (v DataVersion) sectionCount() int {
	if v.extendedHeight() {
		return 24
	}
	return 16
}
