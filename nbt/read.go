package nbt

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// Payload readers indexed by tag type. Populated in init to break the
// recursion through list and compound payloads.
var payloadReaders [TagLongArray + 1]func(*decoder) (Tag, error)

func init() {
	payloadReaders = [TagLongArray + 1]func(*decoder) (Tag, error){
		TagByte:      (*decoder).bytePayload,
		TagShort:     (*decoder).shortPayload,
		TagInt:       (*decoder).intPayload,
		TagLong:      (*decoder).longPayload,
		TagFloat:     (*decoder).floatPayload,
		TagDouble:    (*decoder).doublePayload,
		TagByteArray: (*decoder).byteArrayPayload,
		TagString:    (*decoder).stringPayload,
		TagList:      (*decoder).listPayload,
		TagCompound:  (*decoder).compoundPayload,
		TagIntArray:  (*decoder).intArrayPayload,
		TagLongArray: (*decoder).longArrayPayload,
	}
}

// Read decodes a single named tag, normally the root compound of a chunk.
func Read(r io.Reader) (name string, tag Tag, err error) {
	d := &decoder{r: r}
	t, err := d.readByte()
	if err != nil {
		return "", nil, err
	}
	if TagType(t) == TagEnd {
		return "", nil, errors.New("nbt: unexpected End tag at root")
	}
	if name, err = d.readString(); err != nil {
		return "", nil, err
	}
	tag, err = d.payload(TagType(t))
	return name, tag, err
}

type decoder struct {
	r   io.Reader
	buf [8]byte
}

func (d *decoder) payload(t TagType) (Tag, error) {
	if int(t) >= len(payloadReaders) || payloadReaders[t] == nil {
		return nil, fmt.Errorf("nbt: unknown tag type %d", byte(t))
	}
	return payloadReaders[t](d)
}

func (d *decoder) readByte() (byte, error) {
	if _, err := io.ReadFull(d.r, d.buf[:1]); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

func (d *decoder) readUint16() (uint16, error) {
	if _, err := io.ReadFull(d.r, d.buf[:2]); err != nil {
		return 0, err
	}
	return uint16(d.buf[0])<<8 | uint16(d.buf[1]), nil
}

func (d *decoder) readUint32() (uint32, error) {
	if _, err := io.ReadFull(d.r, d.buf[:4]); err != nil {
		return 0, err
	}
	return uint32(d.buf[0])<<24 | uint32(d.buf[1])<<16 | uint32(d.buf[2])<<8 | uint32(d.buf[3]), nil
}

func (d *decoder) readUint64() (uint64, error) {
	if _, err := io.ReadFull(d.r, d.buf[:8]); err != nil {
		return 0, err
	}
	hi := uint64(d.buf[0])<<24 | uint64(d.buf[1])<<16 | uint64(d.buf[2])<<8 | uint64(d.buf[3])
	lo := uint64(d.buf[4])<<24 | uint64(d.buf[5])<<16 | uint64(d.buf[6])<<8 | uint64(d.buf[7])
	return hi<<32 | lo, nil
}

func (d *decoder) readLength() (int, error) {
	n, err := d.readUint32()
	if err != nil {
		return 0, err
	}
	if int32(n) < 0 {
		return 0, fmt.Errorf("nbt: negative length %d", int32(n))
	}
	return int(int32(n)), nil
}

func (d *decoder) readString() (string, error) {
	n, err := d.readUint16()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) bytePayload() (Tag, error) {
	b, err := d.readByte()
	return Byte(b), err
}

func (d *decoder) shortPayload() (Tag, error) {
	n, err := d.readUint16()
	return Short(n), err
}

func (d *decoder) intPayload() (Tag, error) {
	n, err := d.readUint32()
	return Int(n), err
}

func (d *decoder) longPayload() (Tag, error) {
	n, err := d.readUint64()
	return Long(n), err
}

func (d *decoder) floatPayload() (Tag, error) {
	n, err := d.readUint32()
	return Float(math.Float32frombits(n)), err
}

func (d *decoder) doublePayload() (Tag, error) {
	n, err := d.readUint64()
	return Double(math.Float64frombits(n)), err
}

func (d *decoder) byteArrayPayload() (Tag, error) {
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, err
	}
	return ByteArray(b), nil
}

func (d *decoder) stringPayload() (Tag, error) {
	s, err := d.readString()
	return String(s), err
}

func (d *decoder) listPayload() (Tag, error) {
	elem, err := d.readByte()
	if err != nil {
		return nil, err
	}
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	list := &List{Elem: TagType(elem)}
	if n == 0 {
		return list, nil
	}
	if TagType(elem) == TagEnd {
		return nil, errors.New("nbt: non-empty list of End tags")
	}
	list.Items = make([]Tag, 0, n)
	for i := 0; i < n; i++ {
		item, err := d.payload(TagType(elem))
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
	return list, nil
}

func (d *decoder) compoundPayload() (Tag, error) {
	c := Compound{}
	for {
		t, err := d.readByte()
		if err != nil {
			return nil, err
		}
		if TagType(t) == TagEnd {
			return c, nil
		}
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		tag, err := d.payload(TagType(t))
		if err != nil {
			return nil, err
		}
		c[name] = tag
	}
}

func (d *decoder) intArrayPayload() (Tag, error) {
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	a := make(IntArray, n)
	for i := range a {
		v, err := d.readUint32()
		if err != nil {
			return nil, err
		}
		a[i] = int32(v)
	}
	return a, nil
}

func (d *decoder) longArrayPayload() (Tag, error) {
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	a := make(LongArray, n)
	for i := range a {
		v, err := d.readUint64()
		if err != nil {
			return nil, err
		}
		a[i] = int64(v)
	}
	return a, nil
}
