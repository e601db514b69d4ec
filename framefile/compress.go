package framefile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/bodgit/concrete/frame"
	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// EncodeCompressed is like Encode but wraps the output in a zstd stream.
func EncodeCompressed(w io.Writer, frames []*frame.Frame, width, height int) error {
	if err := validate(frames, width, height); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("zstd encode: %w", err)
	}

	e := encoder{w: bufio.NewWriter(enc)}
	if err := e.encode(frames, width, height); err != nil {
		enc.Close()
		return err
	}

	return enc.Close()
}

type zstdReader struct {
	*zstd.Decoder
}

func (r zstdReader) Close() error {
	r.Decoder.Close()
	return nil
}

// NewReader returns a reader over the raw frame file data in r, decompressing
// it first if it starts with a zstd frame.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)

	// A short read isn't an error here, the decoder will catch it
	if b, err := br.Peek(len(zstdMagic)); err != nil || !bytes.Equal(b, zstdMagic) {
		return io.NopCloser(br), nil
	}

	dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}

	return zstdReader{dec}, nil
}

// IsCompressed reports whether r starts with a zstd frame
func IsCompressed(r io.Reader) bool {
	b := make([]byte, len(zstdMagic))
	if _, err := io.ReadFull(r, b); err != nil {
		return false
	}
	return bytes.Equal(b, zstdMagic)
}
