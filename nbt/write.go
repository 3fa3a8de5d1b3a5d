package nbt

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// Write encodes a single named tag. Compound entries are written in sorted
// key order so that output is deterministic.
func Write(w io.Writer, name string, tag Tag) error {
	e := &encoder{w: w}
	if err := e.writeTag(tag.Type(), name); err != nil {
		return err
	}
	return e.payload(tag)
}

type encoder struct {
	w io.Writer
}

func (e *encoder) payload(tag Tag) error {
	switch v := tag.(type) {
	case Byte:
		_, err := e.w.Write([]byte{byte(v)})
		return err
	case Short:
		return e.writeInt16(int16(v))
	case Int:
		return e.writeInt32(int32(v))
	case Long:
		return e.writeInt64(int64(v))
	case Float:
		return e.writeInt32(int32(math.Float32bits(float32(v))))
	case Double:
		return e.writeInt64(int64(math.Float64bits(float64(v))))
	case ByteArray:
		if err := e.writeInt32(int32(len(v))); err != nil {
			return err
		}
		_, err := e.w.Write(v)
		return err
	case String:
		return e.writeString(string(v))
	case *List:
		return e.listPayload(v)
	case Compound:
		return e.compoundPayload(v)
	case IntArray:
		if err := e.writeInt32(int32(len(v))); err != nil {
			return err
		}
		for _, n := range v {
			if err := e.writeInt32(n); err != nil {
				return err
			}
		}
		return nil
	case LongArray:
		if err := e.writeInt32(int32(len(v))); err != nil {
			return err
		}
		for _, n := range v {
			if err := e.writeInt64(n); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("nbt: cannot encode %T", tag)
}

func (e *encoder) listPayload(list *List) error {
	elem := list.Elem
	if len(list.Items) > 0 {
		elem = list.Items[0].Type()
	}
	if _, err := e.w.Write([]byte{byte(elem)}); err != nil {
		return err
	}
	if err := e.writeInt32(int32(len(list.Items))); err != nil {
		return err
	}
	for _, item := range list.Items {
		if item.Type() != elem {
			return fmt.Errorf("nbt: mixed list: %v and %v", elem, item.Type())
		}
		if err := e.payload(item); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) compoundPayload(c Compound) error {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tag := c[name]
		if err := e.writeTag(tag.Type(), name); err != nil {
			return err
		}
		if err := e.payload(tag); err != nil {
			return err
		}
	}
	_, err := e.w.Write([]byte{byte(TagEnd)})
	return err
}

func (e *encoder) writeTag(t TagType, name string) error {
	if _, err := e.w.Write([]byte{byte(t)}); err != nil {
		return err
	}
	return e.writeString(name)
}

func (e *encoder) writeString(s string) error {
	if err := e.writeInt16(int16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

func (e *encoder) writeInt16(n int16) error {
	_, err := e.w.Write([]byte{byte(n >> 8), byte(n)})
	return err
}

func (e *encoder) writeInt32(n int32) error {
	_, err := e.w.Write([]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	return err
}

func (e *encoder) writeInt64(n int64) error {
	_, err := e.w.Write([]byte{
		byte(n >> 56), byte(n >> 48), byte(n >> 40), byte(n >> 32),
		byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	return err
}
