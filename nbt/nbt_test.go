package nbt

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	original := Compound{
		"byte":   Byte(-5),
		"short":  Short(1000),
		"int":    Int(-70000),
		"long":   Long(1 << 40),
		"float":  Float(1.5),
		"double": Double(-2.25),
		"bytes":  ByteArray{0, 1, 2, 255},
		"text":   String("héllo wörld"),
		"ints":   IntArray{-1, 0, 1},
		"longs":  LongArray{1 << 62, -1},
		"list": &List{Elem: TagCompound, Items: []Tag{
			Compound{"a": Int(1)},
			Compound{"a": Int(2)},
		}},
		"nested": Compound{
			"empty": &List{Elem: TagEnd},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "root", original))

	name, tag, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, "root", name)
	if diff := cmp.Diff(original, tag); diff != "" {
		t.Errorf("tree changed over the wire (-want +got):\n%s", diff)
	}
}

func TestWriteDeterministic(t *testing.T) {
	c := Compound{"b": Int(2), "a": Int(1), "c": Int(3)}
	var first bytes.Buffer
	require.NoError(t, Write(&first, "", c))
	for i := 0; i < 5; i++ {
		var again bytes.Buffer
		require.NoError(t, Write(&again, "", c))
		require.Equal(t, first.Bytes(), again.Bytes())
	}
}

func TestWriteMixedList(t *testing.T) {
	bad := &List{Elem: TagInt, Items: []Tag{Int(1), String("two")}}
	err := Write(&bytes.Buffer{}, "", Compound{"list": bad})
	assert.Error(t, err)
}

func TestReadTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "", Compound{"n": Long(7)}))
	whole := buf.Bytes()
	for cut := 1; cut < len(whole); cut++ {
		_, _, err := Read(bytes.NewReader(whole[:cut]))
		assert.Error(t, err, "cut at %d bytes", cut)
	}
}

func TestReadRejectsNegativeLength(t *testing.T) {
	// TagByteArray named "" with length -1.
	raw := []byte{byte(TagByteArray), 0, 0, 0xff, 0xff, 0xff, 0xff}
	_, _, err := Read(bytes.NewReader(raw))
	assert.Error(t, err)
}

func TestCompoundAccessors(t *testing.T) {
	c := Compound{
		"byte":   Byte(3),
		"int":    Int(9),
		"long":   Long(11),
		"text":   String("x"),
		"list":   &List{Elem: TagEnd},
		"nested": Compound{},
	}

	assert.True(t, c.Has("byte"))
	assert.False(t, c.Has("missing"))

	n, err := c.GetInt("int")
	require.NoError(t, err)
	assert.Equal(t, int32(9), n)

	_, err = c.GetInt("text")
	assert.Error(t, err)

	_, err = c.GetInt("missing")
	assert.Error(t, err)

	_, err = c.GetList("list")
	assert.NoError(t, err)

	_, err = c.GetCompound("nested")
	assert.NoError(t, err)
}

func TestGetNumberAcceptsAnyWidth(t *testing.T) {
	c := Compound{
		"byte":  Byte(-4),
		"short": Short(300),
		"int":   Int(70000),
		"long":  Long(1 << 33),
		"text":  String("no"),
	}
	for name, want := range map[string]int64{
		"byte":  -4,
		"short": 300,
		"int":   70000,
		"long":  1 << 33,
	} {
		got, err := c.GetNumber(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := c.GetNumber("text")
	assert.Error(t, err)
	_, err = c.GetNumber("missing")
	assert.Error(t, err)
}
