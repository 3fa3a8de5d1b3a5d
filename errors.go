package anvil

import "errors"

var (
	// ErrOutOfBounds reports coordinates outside the addressed section,
	// chunk or region. Coordinates are never clamped.
	ErrOutOfBounds = errors.New("anvil: coordinates out of bounds")
	// ErrSectionExists reports an attempt to add a section at an occupied Y
	// without asking for replacement.
	ErrSectionExists = errors.New("anvil: section already exists")
	// ErrChunkExists reports an attempt to add a chunk to an occupied slot
	// without asking for replacement.
	ErrChunkExists = errors.New("anvil: chunk already exists")
	// ErrUnsupportedCompression reports a chunk payload stored with a
	// compression scheme other than zlib deflate.
	ErrUnsupportedCompression = errors.New("anvil: unsupported compression scheme")
	// ErrInvalidChunkLength reports a chunk payload that does not fit its
	// allocated sectors or the file.
	ErrInvalidChunkLength = errors.New("anvil: invalid chunk payload length")
)
