/*
Package palette implements the fixed sixteen color concrete palette.

The order of the entries is significant; the position of an entry is its index
and that index is what gets written to frame files, so it must never change
without bumping the frame file version.
*/
package palette

import (
	"errors"
	"image/color"
)

// Size is the number of colors in the palette
const Size = 16

// ErrIndexOutOfRange is returned by ByIndex for an index outside [0,Size)
var ErrIndexOutOfRange = errors.New("palette: index out of range")

// Entry is a single palette color along with its external render tag
type Entry struct {
	Index   uint8
	R, G, B uint8
	Tag     string
}

// RGBA implements the color.Color interface
func (e Entry) RGBA() (r, g, b, a uint32) {
	return color.RGBA{e.R, e.G, e.B, 0xff}.RGBA()
}

// Named indices, in palette order
const (
	White uint8 = iota
	Orange
	Magenta
	LightBlue
	Yellow
	Lime
	Pink
	Gray
	LightGray
	Cyan
	Purple
	Blue
	Brown
	Green
	Red
	Black
)

var entries = [Size]Entry{
	{White, 219, 219, 219, "white_concrete"},
	{Orange, 235, 120, 60, "orange_concrete"},
	{Magenta, 200, 80, 180, "magenta_concrete"},
	{LightBlue, 120, 200, 220, "light_blue_concrete"},
	{Yellow, 250, 220, 60, "yellow_concrete"},
	{Lime, 130, 220, 90, "lime_concrete"},
	{Pink, 230, 150, 170, "pink_concrete"},
	{Gray, 95, 95, 95, "gray_concrete"},
	{LightGray, 170, 170, 170, "light_gray_concrete"},
	{Cyan, 60, 180, 180, "cyan_concrete"},
	{Purple, 140, 70, 180, "purple_concrete"},
	{Blue, 60, 100, 220, "blue_concrete"},
	{Brown, 130, 90, 60, "brown_concrete"},
	{Green, 100, 160, 70, "green_concrete"},
	{Red, 210, 60, 60, "red_concrete"},
	{Black, 40, 40, 40, "black_concrete"},
}

// All returns every entry in palette order
func All() []Entry {
	all := make([]Entry, Size)
	copy(all, entries[:])
	return all
}

// ByIndex returns the entry at index i or ErrIndexOutOfRange
func ByIndex(i int) (Entry, error) {
	if i < 0 || i >= Size {
		return Entry{}, ErrIndexOutOfRange
	}
	return entries[i], nil
}

// Lookup returns the entry at index i, falling back to the first entry for
// any index outside the palette. Used when reading possibly corrupt data
// where one bad cell shouldn't abort the whole read.
func Lookup(i int) Entry {
	if i < 0 || i >= Size {
		return entries[0]
	}
	return entries[i]
}

// Colors returns the palette as a color.Palette so that frames can be drawn
// as *image.Paletted using the palette indices directly
func Colors() color.Palette {
	p := make(color.Palette, Size)
	for i, e := range entries {
		p[i] = color.RGBA{e.R, e.G, e.B, 0xff}
	}
	return p
}
