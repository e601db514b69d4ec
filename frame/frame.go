/*
Package frame implements a single grid of palette indices.

Cells are stored column-major, the x coordinate is the outer loop and y the
inner loop, which matches the order cells are written to frame files.
*/
package frame

import (
	"errors"
	"image"

	"github.com/bodgit/concrete/palette"
)

var (
	// ErrInvalidDimensions is returned for a non-positive width or height
	ErrInvalidDimensions = errors.New("frame: invalid dimensions")
	// ErrCellOutOfRange is returned by Validate for a cell that isn't a
	// palette index
	ErrCellOutOfRange = errors.New("frame: cell out of range")
)

// Frame is one full grid of palette indices
type Frame struct {
	Width  int
	Height int
	Cells  []uint8
}

// New returns a frame of the given size with every cell set to index 0
func New(width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Frame{
		Width:  width,
		Height: height,
		Cells:  make([]uint8, width*height),
	}, nil
}

func (f *Frame) offset(x, y int) int {
	return x*f.Height + y
}

// At returns the palette index at x, y
func (f *Frame) At(x, y int) uint8 {
	return f.Cells[f.offset(x, y)]
}

// Set stores the palette index at x, y
func (f *Frame) Set(x, y int, index uint8) {
	f.Cells[f.offset(x, y)] = index
}

// Entry returns the palette entry at x, y
func (f *Frame) Entry(x, y int) palette.Entry {
	return palette.Lookup(int(f.At(x, y)))
}

// Clone returns a deep copy of the frame
func (f *Frame) Clone() *Frame {
	return &Frame{
		Width:  f.Width,
		Height: f.Height,
		Cells:  append([]uint8(nil), f.Cells...),
	}
}

// SameSize reports whether both frames have the same width and height
func (f *Frame) SameSize(o *Frame) bool {
	return f.Width == o.Width && f.Height == o.Height
}

// Equal reports whether both frames are the same size and every cell matches
func (f *Frame) Equal(o *Frame) bool {
	if o == nil || !f.SameSize(o) || len(f.Cells) != len(o.Cells) {
		return false
	}
	for i := range f.Cells {
		if f.Cells[i] != o.Cells[i] {
			return false
		}
	}
	return true
}

// Validate checks the dimensions agree with the cell storage and that every
// cell is a palette index
func (f *Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 || len(f.Cells) != f.Width*f.Height {
		return ErrInvalidDimensions
	}
	for _, c := range f.Cells {
		if c >= palette.Size {
			return ErrCellOutOfRange
		}
	}
	return nil
}

// Image renders the frame as a paletted image using the concrete palette
func (f *Frame) Image() *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, f.Width, f.Height), palette.Colors())
	for x := 0; x < f.Width; x++ {
		for y := 0; y < f.Height; y++ {
			c := f.At(x, y)
			if c >= palette.Size {
				c = 0
			}
			m.SetColorIndex(x, y, c)
		}
	}
	return m
}
