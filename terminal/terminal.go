/*
Package terminal implements a cell writer that draws frames in a terminal.

Each cell is drawn as two blank columns with the palette color as the
background so that cells come out roughly square.
*/
package terminal

import (
	"errors"

	"github.com/bodgit/concrete/palette"
	"github.com/gdamore/tcell/v2"
)

const cellWidth = 2

// ErrOutOfBounds is returned when drawing outside the frame
var ErrOutOfBounds = errors.New("terminal: cell out of bounds")

// Writer draws cells onto a tcell screen
type Writer struct {
	screen        tcell.Screen
	width, height int
	styles        [palette.Size]tcell.Style
}

// Style returns the style used to draw e
func Style(e palette.Entry) tcell.Style {
	return tcell.StyleDefault.Background(tcell.NewRGBColor(int32(e.R), int32(e.G), int32(e.B)))
}

// New returns a writer drawing a width by height frame onto screen, which
// must already be initialised
func New(screen tcell.Screen, width, height int) *Writer {
	w := &Writer{
		screen: screen,
		width:  width,
		height: height,
	}
	for _, e := range palette.All() {
		w.styles[e.Index] = Style(e)
	}
	return w
}

// SetCell draws e at x, y
func (w *Writer) SetCell(x, y int, e palette.Entry) error {
	if x < 0 || x >= w.width || y < 0 || y >= w.height {
		return ErrOutOfBounds
	}
	style := w.styles[palette.Lookup(int(e.Index)).Index]
	for i := 0; i < cellWidth; i++ {
		w.screen.SetContent(x*cellWidth+i, y, ' ', nil, style)
	}
	return nil
}

// Blank clears the whole screen
func (w *Writer) Blank() error {
	w.screen.Clear()
	return nil
}

// Flush shows any pending changes
func (w *Writer) Flush() error {
	w.screen.Show()
	return nil
}

// Fits reports whether the frame fits on the screen at its current size
func (w *Writer) Fits() bool {
	sw, sh := w.screen.Size()
	return w.width*cellWidth <= sw && w.height <= sh
}
