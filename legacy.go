package anvil

import "fmt"

// OldBlock is a numeric block identity from before the Flattening: a byte id
// (optionally extended by the Add nibble) plus a 4-bit data value.
type OldBlock struct {
	ID   int32
	Data byte
}

// Convert maps the numeric id onto a namespaced identity. Ids outside the
// table convert to air with a diagnostic; the data value does not survive
// conversion.
func (o OldBlock) Convert() *Block {
	name, ok := legacyNames[o.ID]
	if !ok {
		Log.Debugf("no namespaced name for legacy block id %d, treating as air", o.ID)
		return Air()
	}
	return &Block{Namespace: "minecraft", Name: name}
}

func legacyID(b *Block) (int32, error) {
	if b.isAir() {
		return 0, nil
	}
	if b.Namespace == "minecraft" {
		if id, ok := legacyIDs[b.Name]; ok {
			return id, nil
		}
	}
	return 0, fmt.Errorf("anvil: %s has no legacy numeric id", b.ID())
}

// The well-known pre-flattening ids the converter pipeline emits.
var legacyNames = map[int32]string{
	0:   "air",
	1:   "stone",
	2:   "grass_block",
	3:   "dirt",
	4:   "cobblestone",
	5:   "oak_planks",
	7:   "bedrock",
	9:   "water",
	11:  "lava",
	12:  "sand",
	13:  "gravel",
	14:  "gold_ore",
	15:  "iron_ore",
	16:  "coal_ore",
	17:  "oak_log",
	18:  "oak_leaves",
	20:  "glass",
	24:  "sandstone",
	35:  "white_wool",
	41:  "gold_block",
	42:  "iron_block",
	45:  "bricks",
	49:  "obsidian",
	57:  "diamond_block",
	80:  "snow_block",
	89:  "glowstone",
	98:  "stone_bricks",
	155: "quartz_block",
}

var legacyIDs = func() map[string]int32 {
	m := make(map[string]int32, len(legacyNames))
	for id, name := range legacyNames {
		m[name] = id
	}
	return m
}()

// nibble4 reads the 4-bit value at index from a packed nibble array, low
// nibble first.
func nibble4(arr []byte, index int) byte {
	v := arr[index/2]
	if index%2 == 1 {
		return v >> 4
	}
	return v & 0x0f
}
