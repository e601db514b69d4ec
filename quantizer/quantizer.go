/*
Package quantizer maps arbitrary 24-bit RGB colors onto the concrete palette.

Every possible color is resolved ahead of time into a 16 MiB lookup table so
that quantizing a pixel is a single table read. The table is built at most
once per Table value, either explicitly with Initialize or on first use.

The distance metric weights the channels by how sensitive the eye is to them,
green highest and red lowest:

	2*(r-pr)^2 + 4*(g-pg)^2 + 3*(b-pb)^2

When two palette colors are equally close the one earliest in the palette
wins. Frame files produced by earlier builds rely on exactly this mapping.
*/
package quantizer

import (
	"image"
	"image/color"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/bodgit/concrete/frame"
	"github.com/bodgit/concrete/palette"
)

const (
	channels  = 256
	tableSize = channels * channels * channels
)

// Table is a precomputed RGB to palette index lookup table. The zero value is
// an unbuilt table ready to use, the same as New returns. A Table is safe for
// concurrent use and must not be copied.
type Table struct {
	once        sync.Once
	initialized atomic.Bool
	lut         []uint8
}

// New returns a table that will be built on first use
func New() *Table {
	return new(Table)
}

// Key returns the lookup table key for an RGB triple
func Key(r, g, b uint8) int {
	return int(r)<<16 | int(g)<<8 | int(b)
}

// Distance returns the weighted squared distance between two colors
func Distance(r1, g1, b1, r2, g2, b2 int) int {
	dr, dg, db := r1-r2, g1-g2, b1-b2
	return 2*dr*dr + 4*dg*dg + 3*db*db
}

// Nearest scans the palette for the closest entry without using the table
func Nearest(r, g, b int) uint8 {
	return nearest(r, g, b, palette.All())
}

func nearest(r, g, b int, entries []palette.Entry) uint8 {
	var closest uint8
	best := int(^uint(0) >> 1)
	for _, e := range entries {
		// Strictly less so earlier entries win a tie
		if d := Distance(r, g, b, int(e.R), int(e.G), int(e.B)); d < best {
			best, closest = d, e.Index
		}
	}
	return closest
}

func (t *Table) build() {
	lut := make([]uint8, tableSize)
	entries := palette.All()

	reds := make(chan int)
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for r := range reds {
				// Each worker owns a disjoint 64 KiB slice of the table
				slice := lut[r<<16 : (r+1)<<16]
				for g := 0; g < channels; g++ {
					for b := 0; b < channels; b++ {
						slice[g<<8|b] = nearest(r, g, b, entries)
					}
				}
			}
		}()
	}
	for r := 0; r < channels; r++ {
		reds <- r
	}
	close(reds)
	wg.Wait()

	t.lut = lut
	t.initialized.Store(true)
}

// Initialize builds the table. It is safe to call any number of times from
// any number of goroutines; the table is built once and every caller returns
// only after it is complete.
func (t *Table) Initialize() {
	t.once.Do(t.build)
}

// Initialized reports whether the table has been built
func (t *Table) Initialized() bool {
	return t.initialized.Load()
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 0xff:
		return 0xff
	}
	return uint8(v)
}

// Index returns the palette index nearest to r, g, b. Each channel is clamped
// to [0,255] first.
func (t *Table) Index(r, g, b int) uint8 {
	t.Initialize()
	return t.lut[Key(clamp(r), clamp(g), clamp(b))]
}

// Quantize returns the palette entry nearest to r, g, b. Each channel is
// clamped to [0,255] first.
func (t *Table) Quantize(r, g, b int) palette.Entry {
	return palette.Lookup(int(t.Index(r, g, b)))
}

// Frame quantizes every pixel of m into a new frame the size of m's bounds.
// Alpha is discarded.
func (t *Table) Frame(m image.Image) (*frame.Frame, error) {
	b := m.Bounds()
	f, err := frame.New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	t.Initialize()

	switch src := m.(type) {
	case *image.NRGBA:
		for x := 0; x < f.Width; x++ {
			for y := 0; y < f.Height; y++ {
				i := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				p := src.Pix[i : i+3 : i+3]
				f.Set(x, y, t.lut[Key(p[0], p[1], p[2])])
			}
		}
	default:
		for x := 0; x < f.Width; x++ {
			for y := 0; y < f.Height; y++ {
				c := color.NRGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				f.Set(x, y, t.lut[Key(c.R, c.G, c.B)])
			}
		}
	}

	return f, nil
}
