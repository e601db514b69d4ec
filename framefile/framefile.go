/*
Package framefile implements a decoder and encoder for sequences of quantized
frames.

The file starts with a 20 byte header of five big-endian 32-bit integers; the
magic number 0x564D4652 ("VMFR"), the format version, the number of frames and
the width and height shared by every frame. Each frame then repeats its own
width and height as two more 32-bit integers followed by one byte per cell
holding the palette index. Cells are written column by column, so for each x
from left to right every y from top to bottom.

There is no compression in the format itself, although files may be wrapped
in a zstd stream, see EncodeCompressed and NewReader.
*/
package framefile

import (
	"errors"
)

const (
	// Magic is the first four bytes of every frame file
	Magic = 0x564d4652
	// Version is the only format version understood
	Version = 1

	// HeaderSize is the size in bytes of the file header
	HeaderSize = 20
	// MinSize is the smallest number of bytes a frame file can be
	MinSize = 16

	frameHeaderSize = 8

	// Guard against allocating huge frames from a corrupt header
	maxCells = 1 << 26
)

var (
	// ErrInvalidFormat is returned when the magic number doesn't match
	ErrInvalidFormat = errors.New("framefile: invalid format")
	// ErrUnsupportedVersion is returned for any version other than Version
	ErrUnsupportedVersion = errors.New("framefile: unsupported version")
	// ErrDimensionMismatch is returned when a frame isn't the same size as
	// the file header says
	ErrDimensionMismatch = errors.New("framefile: dimension mismatch")
	// ErrTruncated is returned when the data ends early
	ErrTruncated = errors.New("framefile: not enough frame data")
	// ErrInvalidIndex is returned when encoding a cell that isn't a palette
	// index
	ErrInvalidIndex = errors.New("framefile: invalid palette index")
)

type header struct {
	Magic   uint32
	Version uint32
	Frames  uint32
	Width   uint32
	Height  uint32
}

type frameHeader struct {
	Width  uint32
	Height uint32
}

// Config describes a frame file without decoding the frames
type Config struct {
	Version int
	Frames  int
	Width   int
	Height  int
}
