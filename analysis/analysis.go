/*
Package analysis reports how well the concrete palette covers the dominant
colors of an image. It does not influence quantization.
*/
package analysis

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/bodgit/concrete/palette"
	"github.com/bodgit/concrete/quantizer"
	"github.com/ericpauley/go-quantize/quantize"
)

var (
	errInvalidCount = errors.New("analysis: invalid color count")
	errEmptyImage   = errors.New("analysis: empty image")
)

// Match pairs a dominant image color with the closest palette entry
type Match struct {
	Color    color.RGBA
	Entry    palette.Entry
	Distance int
	// Share is the fraction of pixels closest to Color
	Share float64
}

// Fit reduces m to at most n colors with a median cut and returns each with
// its nearest palette entry, most common first.
func Fit(m image.Image, n int) ([]Match, error) {
	if n < 1 || n > 256 {
		return nil, errInvalidCount
	}

	b := m.Bounds()
	if b.Empty() {
		return nil, errEmptyImage
	}

	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, n), m)

	pm := image.NewPaletted(b, p)
	draw.Draw(pm, b, m, b.Min, draw.Src)

	counts := make([]int, len(p))
	for _, i := range pm.Pix {
		counts[i]++
	}
	total := float64(len(pm.Pix))

	matches := make([]Match, 0, len(p))
	for i, c := range p {
		if counts[i] == 0 {
			continue
		}
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		r, g, bl := int(rgba.R), int(rgba.G), int(rgba.B)
		e := palette.Lookup(int(quantizer.Nearest(r, g, bl)))
		matches = append(matches, Match{
			Color:    rgba,
			Entry:    e,
			Distance: quantizer.Distance(r, g, bl, int(e.R), int(e.G), int(e.B)),
			Share:    float64(counts[i]) / total,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Share > matches[j].Share
	})

	return matches, nil
}
