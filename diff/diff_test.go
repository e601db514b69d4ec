package diff

import (
	"testing"

	"github.com/bodgit/concrete/frame"
	"github.com/bodgit/concrete/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFrame(t *testing.T, width, height int, fill uint8) *frame.Frame {
	t.Helper()
	f, err := frame.New(width, height)
	require.NoError(t, err)
	for i := range f.Cells {
		f.Cells[i] = fill
	}
	return f
}

func TestFullPaint(t *testing.T) {
	e := New()
	assert.False(t, e.Primed())

	f := newFrame(t, 114, 64, palette.Cyan)
	changes, err := e.Submit(f)
	require.NoError(t, err)
	assert.Len(t, changes, 114*64)
	assert.True(t, e.Primed())

	assert.Equal(t, Change{0, 0, palette.Lookup(int(palette.Cyan))}, changes[0])
	assert.Equal(t, Change{0, 1, palette.Lookup(int(palette.Cyan))}, changes[1])
	assert.Equal(t, Change{113, 63, palette.Lookup(int(palette.Cyan))}, changes[len(changes)-1])
}

func TestIdempotent(t *testing.T) {
	e := New()
	f := newFrame(t, 8, 8, palette.Red)

	_, err := e.Submit(f)
	require.NoError(t, err)

	changes, err := e.Submit(f)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestSingleCell(t *testing.T) {
	e := New()
	f := newFrame(t, 8, 4, palette.Black)

	_, err := e.Submit(f)
	require.NoError(t, err)

	g := f.Clone()
	g.Set(5, 2, palette.Yellow)

	changes, err := e.Submit(g)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, 5, changes[0].X)
	assert.Equal(t, 2, changes[0].Y)
	assert.Equal(t, palette.Yellow, changes[0].Entry.Index)
	assert.Equal(t, "yellow_concrete", changes[0].Entry.Tag)
}

func TestNoAliasing(t *testing.T) {
	e := New()
	f := newFrame(t, 4, 4, palette.White)

	_, err := e.Submit(f)
	require.NoError(t, err)

	// Mutating the submitted frame must not change the engine's copy
	f.Set(1, 1, palette.Purple)

	changes, err := e.Submit(f)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, palette.Purple, changes[0].Entry.Index)
}

func TestReset(t *testing.T) {
	e := New()
	f := newFrame(t, 3, 3, palette.Green)

	_, err := e.Submit(f)
	require.NoError(t, err)

	e.Reset()
	assert.False(t, e.Primed())

	changes, err := e.Submit(f)
	require.NoError(t, err)
	assert.Len(t, changes, 9)
}

func TestDimensionMismatch(t *testing.T) {
	e := New()

	_, err := e.Submit(newFrame(t, 4, 4, palette.Gray))
	require.NoError(t, err)

	_, err = e.Submit(newFrame(t, 5, 4, palette.Gray))
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	// The previous frame is kept
	changes, err := e.Submit(newFrame(t, 4, 4, palette.Gray))
	require.NoError(t, err)
	assert.Empty(t, changes)
}
