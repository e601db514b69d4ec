package framefile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bodgit/concrete/frame"
	"github.com/bodgit/concrete/palette"
)

type encoder struct {
	w *bufio.Writer
}

func (e *encoder) encode(frames []*frame.Frame, width, height int) error {
	h := header{
		Magic:   Magic,
		Version: Version,
		Frames:  uint32(len(frames)),
		Width:   uint32(width),
		Height:  uint32(height),
	}
	if err := binary.Write(e.w, binary.BigEndian, &h); err != nil {
		return err
	}

	for _, f := range frames {
		fh := frameHeader{
			Width:  uint32(f.Width),
			Height: uint32(f.Height),
		}
		if err := binary.Write(e.w, binary.BigEndian, &fh); err != nil {
			return err
		}
		// Cells are already stored column-major
		if _, err := e.w.Write(f.Cells); err != nil {
			return err
		}
	}

	return e.w.Flush()
}

func validate(frames []*frame.Frame, width, height int) error {
	// Same bounds the decoder enforces
	if width <= 0 || height <= 0 || uint64(width)*uint64(height) > maxCells {
		return fmt.Errorf("%w: %dx%d", frame.ErrInvalidDimensions, width, height)
	}
	for i, f := range frames {
		if f.Width != width || f.Height != height || len(f.Cells) != width*height {
			return fmt.Errorf("%w: frame %d is %dx%d, want %dx%d", ErrDimensionMismatch, i, f.Width, f.Height, width, height)
		}
		for _, c := range f.Cells {
			if c >= palette.Size {
				return fmt.Errorf("%w: frame %d has index %d", ErrInvalidIndex, i, c)
			}
		}
	}
	return nil
}

// Encode writes frames to w. Every frame must be width by height and only
// contain palette indices, otherwise nothing is written.
func Encode(w io.Writer, frames []*frame.Frame, width, height int) error {
	if err := validate(frames, width, height); err != nil {
		return err
	}

	e := encoder{w: bufio.NewWriter(w)}

	return e.encode(frames, width, height)
}
