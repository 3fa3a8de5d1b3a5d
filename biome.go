package anvil

import "strings"

const defaultBiome = "minecraft:plains"

// Biome is a namespaced biome identity.
type Biome struct {
	Namespace string
	Name      string
}

func BiomeFromName(qualified string) *Biome {
	if ns, name, ok := strings.Cut(qualified, ":"); ok {
		return &Biome{Namespace: ns, Name: name}
	}
	return &Biome{Namespace: "minecraft", Name: qualified}
}

// ID returns the canonical "namespace:name".
func (b *Biome) ID() string {
	return b.Namespace + ":" + b.Name
}

// Numeric biome ids from before the palette era, as far as the read paths
// need them. Unknown ids fall back to plains.
var legacyBiomeNames = map[int32]string{
	0:  "ocean",
	1:  "plains",
	2:  "desert",
	4:  "forest",
	5:  "taiga",
	6:  "swamp",
	7:  "river",
	14: "mushroom_fields",
	16: "beach",
	21: "jungle",
	35: "savanna",
}

func biomeFromNumericID(id int32) *Biome {
	name, ok := legacyBiomeNames[id]
	if !ok {
		Log.Debugf("no name for legacy biome id %d, treating as plains", id)
		return BiomeFromName(defaultBiome)
	}
	return &Biome{Namespace: "minecraft", Name: name}
}
