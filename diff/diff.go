/*
Package diff tracks the previously rendered frame so that only the cells that
changed need to be written again.

An Engine starts empty. The first frame submitted produces a change for every
cell, after which only cells whose palette index differs from the previous
frame are reported. Reset returns the engine to the empty state so the next
frame is painted in full again.
*/
package diff

import (
	"errors"
	"fmt"

	"github.com/bodgit/concrete/frame"
	"github.com/bodgit/concrete/palette"
)

// ErrDimensionMismatch is returned when a frame is a different size to the
// previous one
var ErrDimensionMismatch = errors.New("diff: dimension mismatch")

// Change is a single cell that needs writing
type Change struct {
	X, Y  int
	Entry palette.Entry
}

// ChangeSet is the list of changed cells, ordered by x then y
type ChangeSet []Change

// Engine computes change sets between consecutive frames. It is not safe for
// concurrent use.
type Engine struct {
	previous *frame.Frame
}

// New returns an empty engine
func New() *Engine {
	return new(Engine)
}

// Primed reports whether the engine holds a previous frame
func (e *Engine) Primed() bool {
	return e.previous != nil
}

// Submit returns the cells of f that differ from the previously submitted
// frame, or every cell if there isn't one, and then remembers a copy of f.
// A frame of a different size to the previous one is rejected and the
// previous frame is kept.
func (e *Engine) Submit(f *frame.Frame) (ChangeSet, error) {
	if e.previous != nil && !e.previous.SameSize(f) {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrDimensionMismatch, f.Width, f.Height, e.previous.Width, e.previous.Height)
	}

	var changes ChangeSet
	if e.previous == nil {
		changes = make(ChangeSet, 0, f.Width*f.Height)
		for x := 0; x < f.Width; x++ {
			for y := 0; y < f.Height; y++ {
				changes = append(changes, Change{x, y, f.Entry(x, y)})
			}
		}
	} else {
		for x := 0; x < f.Width; x++ {
			for y := 0; y < f.Height; y++ {
				if c := f.At(x, y); c != e.previous.At(x, y) {
					changes = append(changes, Change{x, y, f.Entry(x, y)})
				}
			}
		}
	}

	e.previous = f.Clone()

	return changes, nil
}

// Reset forgets the previous frame
func (e *Engine) Reset() {
	e.previous = nil
}
