package anvil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionRoundTrip(t *testing.T) {
	r := NewRegion(0, 0)
	stone := BlockFromName("minecraft:stone")
	glass := BlockFromName("minecraft:glass")

	require.NoError(t, r.SetBlock(stone, 5, 70, 9))
	require.NoError(t, r.SetBlock(glass, 40, -60, 500))

	var buf bytes.Buffer
	require.NoError(t, r.Save(&buf))

	// Sector-aligned: header plus whole 4096-byte sectors.
	assert.Zero(t, buf.Len()%sectorSize)
	assert.GreaterOrEqual(t, buf.Len(), headerSize+sectorSize)

	back, err := ReadRegion(bytes.NewReader(buf.Bytes()), 0, 0)
	require.NoError(t, err)

	got, err := back.GetBlock(5, 70, 9)
	require.NoError(t, err)
	assert.True(t, stone.Equal(got))

	got, err = back.GetBlock(40, -60, 500)
	require.NoError(t, err)
	assert.True(t, glass.Equal(got))

	// A populated chunk's other cells read as air.
	got, err = back.GetBlock(5, 71, 9)
	require.NoError(t, err)
	assert.True(t, got.isAir())
}

func TestRegionEmptySave(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRegion(2, -1).Save(&buf))
	// Just the two header sectors, all zero.
	assert.Equal(t, headerSize, buf.Len())
	assert.Equal(t, make([]byte, headerSize), buf.Bytes())
}

func TestRegionUngeneratedChunkReadsAsAir(t *testing.T) {
	r := NewRegion(0, 0)

	c, err := r.GetChunk(3, 3)
	require.NoError(t, err)
	assert.Nil(t, c)

	got, err := r.GetBlock(100, 64, 100)
	require.NoError(t, err)
	assert.True(t, got.isAir())
}

func TestRegionOutOfBounds(t *testing.T) {
	r := NewRegion(0, 0)

	_, err := r.GetChunk(32, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.GetChunk(0, -1)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = r.GetBlock(512, 64, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.GetBlock(-1, 64, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.ErrorIs(t, r.SetBlock(Air(), 0, 320, 0), ErrOutOfBounds)

	assert.False(t, r.Inside(512, 64, 0))
	assert.True(t, r.Inside(511, 64, 511))
}

func TestRegionNegativeCoordinates(t *testing.T) {
	r := NewRegion(-1, -1)
	stone := BlockFromName("minecraft:stone")

	assert.True(t, r.Inside(-1, 0, -512))
	assert.False(t, r.Inside(0, 0, -1))

	require.NoError(t, r.SetBlock(stone, -1, 0, -1))

	var buf bytes.Buffer
	require.NoError(t, r.Save(&buf))
	back, err := ReadRegion(bytes.NewReader(buf.Bytes()), -1, -1)
	require.NoError(t, err)

	got, err := back.GetBlock(-1, 0, -1)
	require.NoError(t, err)
	assert.True(t, stone.Equal(got))
}

func TestRegionSetIfInside(t *testing.T) {
	r := NewRegion(0, 0)
	stone := BlockFromName("minecraft:stone")

	// Outside coordinates are skipped, not rejected.
	require.NoError(t, r.SetIfInside(stone, 5000, 64, 5000))
	assert.Empty(t, r.PopulatedChunks())

	require.NoError(t, r.SetIfInside(stone, 17, 64, 33))
	assert.Equal(t, [][2]int{{1, 2}}, r.PopulatedChunks())
}

func TestRegionAddChunk(t *testing.T) {
	r := NewRegion(0, 0)

	require.NoError(t, r.AddChunk(NewChunk(4, 9, DefaultVersion), false))
	assert.ErrorIs(t, r.AddChunk(NewChunk(4, 9, DefaultVersion), false), ErrChunkExists)
	assert.NoError(t, r.AddChunk(NewChunk(4, 9, DefaultVersion), true))

	assert.ErrorIs(t, r.AddChunk(NewChunk(40, 9, DefaultVersion), false), ErrOutOfBounds)
}

func TestRegionAddSection(t *testing.T) {
	r := NewRegion(0, 0)
	s := NewSection(DefaultVersion, 0)
	require.NoError(t, s.SetBlock(BlockFromName("minecraft:stone"), 1, 2, 3))

	require.NoError(t, r.AddSection(s, 7, 7, false))
	assert.ErrorIs(t, r.AddSection(NewSection(DefaultVersion, 0), 7, 7, false), ErrSectionExists)

	got, err := r.GetBlock(7*16+1, 2, 7*16+3)
	require.NoError(t, err)
	assert.Equal(t, "minecraft:stone", got.ID())
}

func TestRegionUntouchedChunksSavedVerbatim(t *testing.T) {
	r := NewRegion(0, 0)
	require.NoError(t, r.SetBlock(BlockFromName("minecraft:stone"), 0, 0, 0))
	require.NoError(t, r.SetBlock(BlockFromName("minecraft:glass"), 100, 0, 100))

	var first bytes.Buffer
	require.NoError(t, r.Save(&first))

	// Reload, touch nothing, save again: byte-identical output.
	back, err := ReadRegion(bytes.NewReader(first.Bytes()), 0, 0)
	require.NoError(t, err)
	var second bytes.Buffer
	require.NoError(t, back.Save(&second))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestReadRegionRejectsUnsupportedCompression(t *testing.T) {
	buf := make([]byte, headerSize+sectorSize)
	// Slot 0 points at sector 2, one sector long.
	buf[0], buf[1], buf[2], buf[3] = 0, 0, 2, 1
	// Payload: length 2, gzip scheme, one data byte.
	buf[headerSize] = 0
	buf[headerSize+3] = 2
	buf[headerSize+4] = compressionGzip

	_, err := ReadRegion(bytes.NewReader(buf), 0, 0)
	assert.ErrorIs(t, err, ErrUnsupportedCompression)
}

func TestReadRegionRejectsBadLength(t *testing.T) {
	buf := make([]byte, headerSize+sectorSize)
	buf[2], buf[3] = 2, 1
	// Claimed payload length runs past the end of the file.
	buf[headerSize], buf[headerSize+1], buf[headerSize+2], buf[headerSize+3] = 0, 1, 0, 0
	buf[headerSize+4] = compressionZlib

	_, err := ReadRegion(bytes.NewReader(buf), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidChunkLength)
}

func TestReadRegionEmptyFile(t *testing.T) {
	r, err := ReadRegion(bytes.NewReader(nil), 3, 4)
	require.NoError(t, err)
	assert.Empty(t, r.PopulatedChunks())
	assert.Equal(t, 3, r.X)
}

func TestReadRegionTruncatedHeader(t *testing.T) {
	_, err := ReadRegion(bytes.NewReader(make([]byte, 100)), 0, 0)
	assert.Error(t, err)
}
