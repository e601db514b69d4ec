package analysis

import (
	"image"
	"image/color"
	"testing"

	"github.com/bodgit/concrete/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := color.RGBA{R: 210, G: 60, B: 60, A: 0xff}
			if x == 0 {
				c = color.RGBA{R: 40, G: 40, B: 40, A: 0xff}
			}
			m.SetRGBA(x, y, c)
		}
	}

	matches, err := Fit(m, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, palette.Red, matches[0].Entry.Index)
	assert.LessOrEqual(t, matches[0].Distance, 9)
	assert.InDelta(t, 0.75, matches[0].Share, 1e-9)

	assert.Equal(t, palette.Black, matches[1].Entry.Index)
	assert.InDelta(t, 0.25, matches[1].Share, 1e-9)
}

func TestFitErrors(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 1, 1))

	_, err := Fit(m, 0)
	assert.ErrorIs(t, err, errInvalidCount)

	_, err = Fit(image.NewRGBA(image.Rectangle{}), 4)
	assert.ErrorIs(t, err, errEmptyImage)
}
