/*
Package source provides the frames fed into playback and processing.

A directory of numbered images (frame_00000.png, frame_00001.png, ...) is the
usual input; each image is scaled to the target size, optionally flipped
vertically and quantized onto the concrete palette. Already quantized frames
decoded from a frame file can be replayed with Frames.
*/
package source

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoding
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bodgit/concrete/frame"
	"github.com/bodgit/concrete/quantizer"
	"golang.org/x/image/draw"
)

// ErrNoFrames is returned for a directory without any images
var ErrNoFrames = errors.New("source: no frame images found")

const framePrefix = "frame_"

// Source yields frames in order, returning io.EOF after the last one
type Source interface {
	Next() (*frame.Frame, error)
	Len() int
	Close() error
}

// Scalers maps the scaler names accepted in configuration to their
// implementation
var Scalers = map[string]draw.Scaler{
	"nearest":  draw.NearestNeighbor,
	"bilinear": draw.ApproxBiLinear,
	"catmull":  draw.CatmullRom,
}

// Options control how images are turned into frames
type Options struct {
	Width  int
	Height int
	// Flip mirrors each image top to bottom
	Flip bool
	// Interval keeps every Nth image, values below 1 keep every image
	Interval int
	// Scaler resizes images that aren't already Width by Height, defaults
	// to nearest neighbour
	Scaler draw.Scaler
}

// Interval returns how many source frames to advance per output frame so
// that a sourceFPS sequence plays back at targetFPS. It is never less than 1.
func Interval(sourceFPS, targetFPS float64) int {
	if targetFPS <= 0 {
		return 1
	}
	if n := int(sourceFPS / targetFPS); n > 1 {
		return n
	}
	return 1
}

func frameNumber(file string) (int, bool) {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	n, err := strconv.Atoi(strings.TrimPrefix(name, framePrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

func isImage(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".png", ".gif", ".jpg", ".jpeg":
		return true
	}
	return false
}

// List returns the images in dir ordered by frame number, keeping every
// interval'th one. Images without a frame number sort after the numbered
// ones, by name.
func List(dir string, interval int) ([]string, error) {
	d, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	info, err := d.Stat()
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("source: %s is not a directory", dir)
	}

	names, err := d.Readdirnames(0)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, name := range names {
		// Ignore any hidden files, otherwise we end up fighting with things like Spotlight, etc.
		if name[0] == '.' || !isImage(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	sort.Slice(files, func(i, j int) bool {
		ni, oki := frameNumber(files[i])
		nj, okj := frameNumber(files[j])
		switch {
		case oki && okj && ni != nj:
			return ni < nj
		case oki != okj:
			return oki
		}
		return files[i] < files[j]
	})

	if interval > 1 {
		kept := files[:0]
		for i, file := range files {
			if i%interval == 0 {
				kept = append(kept, file)
			}
		}
		files = kept
	}

	if len(files) == 0 {
		return nil, ErrNoFrames
	}

	return files, nil
}

// Load decodes the named image file
func Load(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
	}
	return m, nil
}

// Prepare scales m to the target size and flips it if required. m is returned
// unchanged if there's nothing to do.
func (o Options) Prepare(m image.Image) image.Image {
	b := m.Bounds()

	if o.Width > 0 && o.Height > 0 && (b.Dx() != o.Width || b.Dy() != o.Height) {
		scaler := o.Scaler
		if scaler == nil {
			scaler = draw.NearestNeighbor
		}
		dst := image.NewNRGBA(image.Rect(0, 0, o.Width, o.Height))
		scaler.Scale(dst, dst.Bounds(), m, b, draw.Src, nil)
		m, b = dst, dst.Bounds()
	}

	if o.Flip {
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				dst.Set(x, b.Dy()-1-y, m.At(b.Min.X+x, b.Min.Y+y))
			}
		}
		m = dst
	}

	return m
}

// ImageDir is a Source reading numbered images from a directory
type ImageDir struct {
	files []string
	pos   int
	table *quantizer.Table
	opts  Options
}

// NewImageDir lists the images in dir. Images are only read as frames are
// requested.
func NewImageDir(dir string, table *quantizer.Table, opts Options) (*ImageDir, error) {
	files, err := List(dir, opts.Interval)
	if err != nil {
		return nil, err
	}
	return &ImageDir{
		files: files,
		table: table,
		opts:  opts,
	}, nil
}

// Next returns the next frame. A broken image returns an error but still
// counts as consumed so the following call moves on.
func (s *ImageDir) Next() (*frame.Frame, error) {
	if s.pos >= len(s.files) {
		return nil, io.EOF
	}
	file := s.files[s.pos]
	s.pos++

	m, err := Load(file)
	if err != nil {
		return nil, err
	}

	return s.table.Frame(s.opts.Prepare(m))
}

// Len returns the number of frames
func (s *ImageDir) Len() int {
	return len(s.files)
}

// Close implements the Source interface
func (s *ImageDir) Close() error {
	return nil
}

// Frames is a Source replaying already quantized frames
type Frames struct {
	frames []*frame.Frame
	pos    int
}

// NewFrames returns a Source over frames
func NewFrames(frames []*frame.Frame) *Frames {
	return &Frames{frames: frames}
}

// Next returns the next frame
func (s *Frames) Next() (*frame.Frame, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// Len returns the number of frames
func (s *Frames) Len() int {
	return len(s.frames)
}

// Close implements the Source interface
func (s *Frames) Close() error {
	return nil
}
