package framefile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bodgit/concrete/frame"
	"github.com/bodgit/concrete/palette"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}

type decoder struct {
	r io.Reader

	h header

	frames []*frame.Frame
}

func (d *decoder) readHeader() error {
	if err := binary.Read(d.r, binary.BigEndian, &d.h.Magic); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			// Too short to even hold the magic number
			return ErrInvalidFormat
		}
		return err
	}

	if d.h.Magic != Magic {
		return ErrInvalidFormat
	}

	if err := binary.Read(d.r, binary.BigEndian, &d.h.Version); err != nil {
		return truncated(err)
	}

	if d.h.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, d.h.Version)
	}

	for _, v := range []*uint32{&d.h.Frames, &d.h.Width, &d.h.Height} {
		if err := binary.Read(d.r, binary.BigEndian, v); err != nil {
			return truncated(err)
		}
	}

	if d.h.Frames > 0 {
		if d.h.Width == 0 || d.h.Height == 0 || uint64(d.h.Width)*uint64(d.h.Height) > maxCells {
			return fmt.Errorf("%w: bad dimensions %dx%d", ErrInvalidFormat, d.h.Width, d.h.Height)
		}
	}

	return nil
}

func (d *decoder) readFrame() (*frame.Frame, error) {
	var fh frameHeader
	if err := binary.Read(d.r, binary.BigEndian, &fh); err != nil {
		return nil, truncated(err)
	}

	if fh.Width != d.h.Width || fh.Height != d.h.Height {
		return nil, fmt.Errorf("%w: frame is %dx%d, file is %dx%d", ErrDimensionMismatch, fh.Width, fh.Height, d.h.Width, d.h.Height)
	}

	f, err := frame.New(int(fh.Width), int(fh.Height))
	if err != nil {
		return nil, err
	}

	if err := readFull(d.r, f.Cells); err != nil {
		return nil, truncated(err)
	}

	// A bad index becomes the first palette entry rather than failing
	for i, c := range f.Cells {
		f.Cells[i] = palette.Lookup(int(c)).Index
	}

	return f, nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readHeader(); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	// Don't trust the frame count for the initial allocation
	n := int(d.h.Frames)
	if n > 1024 {
		n = 1024
	}
	d.frames = make([]*frame.Frame, 0, n)

	for i := uint32(0); i < d.h.Frames; i++ {
		f, err := d.readFrame()
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		d.frames = append(d.frames, f)
	}

	return nil
}

// Decode reads a frame file from r and returns every frame in order. Any
// error, including running out of data part way through, fails the whole
// decode.
func Decode(r io.Reader) ([]*frame.Frame, error) {
	var d decoder
	if err := d.decode(bufio.NewReader(r), false); err != nil {
		return nil, err
	}
	return d.frames, nil
}

// DecodeConfig returns the header of a frame file without decoding any
// frames.
func DecodeConfig(r io.Reader) (Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return Config{}, err
	}
	return Config{
		Version: int(d.h.Version),
		Frames:  int(d.h.Frames),
		Width:   int(d.h.Width),
		Height:  int(d.h.Height),
	}, nil
}

// IsValid is a cheap check that r looks like a frame file; at least MinSize
// bytes must be available and the magic number must match. Nothing else is
// checked.
func IsValid(r io.Reader) bool {
	var b [MinSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false
	}
	return binary.BigEndian.Uint32(b[:4]) == Magic
}

// IsValidFile runs IsValid against the named file, which may be zstd
// compressed.
func IsValidFile(file string) bool {
	rc, err := Open(file)
	if err != nil {
		return false
	}
	defer rc.Close()

	return IsValid(rc)
}

// DecodeFile decodes the named frame file, which may be zstd compressed.
func DecodeFile(file string) ([]*frame.Frame, error) {
	rc, err := Open(file)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return Decode(rc)
}

// Open opens the named file for reading, transparently decompressing it if
// necessary.
func Open(file string) (io.ReadCloser, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	rc, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &fileReader{rc, f}, nil
}

type fileReader struct {
	io.ReadCloser
	f *os.File
}

func (r *fileReader) Close() error {
	return errors.Join(r.ReadCloser.Close(), r.f.Close())
}
