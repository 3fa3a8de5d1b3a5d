// Package nbt implements the named binary tag format as a tree of typed
// nodes. Unlike a struct-based marshaller, the tree can hold subtrees whose
// schema is not known up front and re-emit them verbatim, which the chunk
// codec relies on for untouched chunks.
package nbt

import "fmt"

type TagType byte

const (
	TagEnd TagType = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

var tagNames = [...]string{
	TagEnd:       "End",
	TagByte:      "Byte",
	TagShort:     "Short",
	TagInt:       "Int",
	TagLong:      "Long",
	TagFloat:     "Float",
	TagDouble:    "Double",
	TagByteArray: "ByteArray",
	TagString:    "String",
	TagList:      "List",
	TagCompound:  "Compound",
	TagIntArray:  "IntArray",
	TagLongArray: "LongArray",
}

func (t TagType) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("TagType(%d)", byte(t))
}

// Tag is one node of the tree. The set of implementations is closed: one per
// TagType except TagEnd, which only exists on the wire.
type Tag interface {
	Type() TagType
}

type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	String    string
	IntArray  []int32
	LongArray []int64
)

// List holds same-typed elements. Elem must match the Type() of every entry;
// an empty list may use TagEnd.
type List struct {
	Elem  TagType
	Items []Tag
}

type Compound map[string]Tag

func (Byte) Type() TagType      { return TagByte }
func (Short) Type() TagType     { return TagShort }
func (Int) Type() TagType       { return TagInt }
func (Long) Type() TagType      { return TagLong }
func (Float) Type() TagType     { return TagFloat }
func (Double) Type() TagType    { return TagDouble }
func (ByteArray) Type() TagType { return TagByteArray }
func (String) Type() TagType    { return TagString }
func (*List) Type() TagType     { return TagList }
func (Compound) Type() TagType  { return TagCompound }
func (IntArray) Type() TagType  { return TagIntArray }
func (LongArray) Type() TagType { return TagLongArray }

func (c Compound) Has(name string) bool {
	_, ok := c[name]
	return ok
}

func (c Compound) get(name string, want TagType) (Tag, error) {
	t, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("nbt: missing tag %q", name)
	}
	if t.Type() != want {
		return nil, fmt.Errorf("nbt: tag %q is %v, want %v", name, t.Type(), want)
	}
	return t, nil
}

func (c Compound) GetByte(name string) (int8, error) {
	t, err := c.get(name, TagByte)
	if err != nil {
		return 0, err
	}
	return int8(t.(Byte)), nil
}

func (c Compound) GetInt(name string) (int32, error) {
	t, err := c.get(name, TagInt)
	if err != nil {
		return 0, err
	}
	return int32(t.(Int)), nil
}

func (c Compound) GetLong(name string) (int64, error) {
	t, err := c.get(name, TagLong)
	if err != nil {
		return 0, err
	}
	return int64(t.(Long)), nil
}

// GetNumber reads any of the integral tag types. Chunk files are not
// consistent about the width of fields like Y across versions.
func (c Compound) GetNumber(name string) (int64, error) {
	t, ok := c[name]
	if !ok {
		return 0, fmt.Errorf("nbt: missing tag %q", name)
	}
	switch v := t.(type) {
	case Byte:
		return int64(v), nil
	case Short:
		return int64(v), nil
	case Int:
		return int64(v), nil
	case Long:
		return int64(v), nil
	}
	return 0, fmt.Errorf("nbt: tag %q is %v, want an integral type", name, t.Type())
}

func (c Compound) GetString(name string) (string, error) {
	t, err := c.get(name, TagString)
	if err != nil {
		return "", err
	}
	return string(t.(String)), nil
}

func (c Compound) GetByteArray(name string) ([]byte, error) {
	t, err := c.get(name, TagByteArray)
	if err != nil {
		return nil, err
	}
	return []byte(t.(ByteArray)), nil
}

func (c Compound) GetIntArray(name string) ([]int32, error) {
	t, err := c.get(name, TagIntArray)
	if err != nil {
		return nil, err
	}
	return []int32(t.(IntArray)), nil
}

func (c Compound) GetLongArray(name string) ([]int64, error) {
	t, err := c.get(name, TagLongArray)
	if err != nil {
		return nil, err
	}
	return []int64(t.(LongArray)), nil
}

func (c Compound) GetList(name string) (*List, error) {
	t, err := c.get(name, TagList)
	if err != nil {
		return nil, err
	}
	return t.(*List), nil
}

func (c Compound) GetCompound(name string) (Compound, error) {
	t, err := c.get(name, TagCompound)
	if err != nil {
		return nil, err
	}
	return t.(Compound), nil
}
