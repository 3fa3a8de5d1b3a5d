package anvil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldRoundTrip(t *testing.T) {
	w := NewWorld()
	stone := BlockFromName("minecraft:stone")
	glass := BlockFromName("minecraft:glass")

	// Straddle a region boundary.
	require.NoError(t, w.SetBlock(stone, 511, 64, 0))
	require.NoError(t, w.SetBlock(glass, 512, 64, 0))
	require.NoError(t, w.SetBlock(stone, -1, -30, -1))
	assert.Len(t, w.Regions(), 3)

	dir := t.TempDir()
	require.NoError(t, w.Save(dir))

	for _, name := range []string{"r.0.0.mca", "r.1.0.mca", "r.-1.-1.mca"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Zero(t, info.Size()%sectorSize, name)
	}

	back, err := OpenWorld(dir)
	require.NoError(t, err)
	assert.Len(t, back.Regions(), 3)

	got, err := back.GetBlock(511, 64, 0)
	require.NoError(t, err)
	assert.True(t, stone.Equal(got))

	got, err = back.GetBlock(512, 64, 0)
	require.NoError(t, err)
	assert.True(t, glass.Equal(got))

	got, err = back.GetBlock(-1, -30, -1)
	require.NoError(t, err)
	assert.True(t, stone.Equal(got))

	// A region that was never written reads as air.
	got, err = back.GetBlock(10000, 64, 10000)
	require.NoError(t, err)
	assert.True(t, got.isAir())
}

func TestWorldBounds(t *testing.T) {
	w := NewWorld()
	_, err := w.GetBlock(0, -65, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.ErrorIs(t, w.SetBlock(Air(), 0, 320, 0), ErrOutOfBounds)
}

func TestWorldRegionLookup(t *testing.T) {
	w := NewWorld()
	assert.Nil(t, w.Region(0, 0, false))

	r := w.Region(-1, 600, true)
	require.NotNil(t, r)
	assert.Equal(t, -1, r.X)
	assert.Equal(t, 1, r.Z)

	// Same region comes back for any coordinate inside it.
	assert.Same(t, r, w.Region(-512, 1023, false))
}

func TestOpenWorldIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "level.dat"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	w, err := OpenWorld(dir)
	require.NoError(t, err)
	assert.Empty(t, w.Regions())
}
