package anvil

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/voxelforge/anvil/nbt"
)

// Block identifies one voxel: a namespaced name plus its block state
// properties. Properties keep their insertion order for output; equality and
// palette deduplication ignore it.
type Block struct {
	Namespace string
	Name      string

	props *orderedmap.OrderedMap[string, string]
}

func NewBlock(namespace, name string) *Block {
	return &Block{Namespace: namespace, Name: name}
}

// BlockFromName parses a qualified "namespace:name". A bare name defaults to
// the minecraft namespace.
func BlockFromName(qualified string) *Block {
	if ns, name, ok := strings.Cut(qualified, ":"); ok {
		return &Block{Namespace: ns, Name: name}
	}
	return &Block{Namespace: "minecraft", Name: qualified}
}

// Air is the identity of an empty cell. Cells hold nil internally; this is
// what read paths hand back for them.
func Air() *Block {
	return &Block{Namespace: "minecraft", Name: "air"}
}

// ID returns the canonical "namespace:name".
func (b *Block) ID() string {
	return b.Namespace + ":" + b.Name
}

// SetProperty records a block state value. Strings are kept as given;
// booleans and integers are stored in their string form, which is how the
// format persists them.
func (b *Block) SetProperty(key string, value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case bool:
		s = strconv.FormatBool(v)
	case int:
		s = strconv.Itoa(v)
	default:
		return fmt.Errorf("anvil: unsupported property type %T for %q", value, key)
	}
	if b.props == nil {
		b.props = orderedmap.New[string, string]()
	}
	b.props.Set(key, s)
	return nil
}

func (b *Block) Property(key string) (string, bool) {
	if b.props == nil {
		return "", false
	}
	return b.props.Get(key)
}

// key is the structural identity of the block: namespace, name and the full
// property map with keys sorted. It is what palettes and dedup maps hash on.
func (b *Block) key() string {
	if b == nil {
		return "minecraft:air"
	}
	if b.props == nil || b.props.Len() == 0 {
		return b.ID()
	}
	keys := make([]string, 0, b.props.Len())
	for p := b.props.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(b.ID())
	sb.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		v, _ := b.props.Get(k)
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(v)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal compares by full structural value, never by reference.
func (b *Block) Equal(o *Block) bool {
	return b.key() == o.key()
}

func (b *Block) String() string {
	return b.key()
}

func (b *Block) isAir() bool {
	return b == nil ||
		(b.Namespace == "minecraft" && b.Name == "air" && (b.props == nil || b.props.Len() == 0))
}

// blockFromPalette builds a Block from one palette entry tag: the qualified
// Name plus an optional Properties compound.
func blockFromPalette(entry nbt.Compound) (*Block, error) {
	name, err := entry.GetString("Name")
	if err != nil {
		return nil, err
	}
	b := BlockFromName(name)
	props, err := entry.GetCompound("Properties")
	if err != nil {
		return b, nil
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := props[k].(type) {
		case nbt.String:
			_ = b.SetProperty(k, string(v))
		case nbt.Byte:
			_ = b.SetProperty(k, int(v))
		case nbt.Int:
			_ = b.SetProperty(k, int(v))
		default:
			return nil, fmt.Errorf("anvil: property %q has unsupported tag %v", k, v.Type())
		}
	}
	return b, nil
}

// paletteTag is the inverse of blockFromPalette.
func (b *Block) paletteTag() nbt.Compound {
	tag := nbt.Compound{"Name": nbt.String(b.ID())}
	if b.props != nil && b.props.Len() > 0 {
		props := nbt.Compound{}
		for p := b.props.Oldest(); p != nil; p = p.Next() {
			props[p.Key] = nbt.String(p.Value)
		}
		tag["Properties"] = props
	}
	return tag
}
