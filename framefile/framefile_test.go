package framefile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/concrete/frame"
	"github.com/bodgit/concrete/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrames(t *testing.T, n, width, height int) []*frame.Frame {
	t.Helper()
	frames := make([]*frame.Frame, n)
	for i := range frames {
		f, err := frame.New(width, height)
		require.NoError(t, err)
		for j := range f.Cells {
			f.Cells[j] = uint8((i + j*7) % palette.Size)
		}
		frames[i] = f
	}
	return frames
}

func TestEncodeLayout(t *testing.T) {
	f, err := frame.New(2, 3)
	require.NoError(t, err)
	f.Set(0, 1, palette.Orange)
	f.Set(1, 0, palette.Black)

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, []*frame.Frame{f}, 2, 3))

	want := []byte{
		0x56, 0x4d, 0x46, 0x52, // magic
		0x00, 0x00, 0x00, 0x01, // version
		0x00, 0x00, 0x00, 0x01, // frames
		0x00, 0x00, 0x00, 0x02, // width
		0x00, 0x00, 0x00, 0x03, // height
		0x00, 0x00, 0x00, 0x02, // frame width
		0x00, 0x00, 0x00, 0x03, // frame height
		0x00, 0x01, 0x00, // x = 0
		0x0f, 0x00, 0x00, // x = 1
	}
	assert.Equal(t, want, b.Bytes())
}

func TestRoundTrip(t *testing.T) {
	tables := []struct {
		name          string
		frames        int
		width, height int
	}{
		{"empty", 0, 114, 64},
		{"single", 1, 114, 64},
		{"several", 5, 16, 9},
		{"one cell", 3, 1, 1},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			frames := testFrames(t, table.frames, table.width, table.height)

			b := new(bytes.Buffer)
			require.NoError(t, Encode(b, frames, table.width, table.height))
			assert.Equal(t, HeaderSize+table.frames*(frameHeaderSize+table.width*table.height), b.Len())

			decoded, err := Decode(bytes.NewReader(b.Bytes()))
			require.NoError(t, err)
			require.Len(t, decoded, len(frames))
			for i := range frames {
				assert.True(t, frames[i].Equal(decoded[i]), "frame %d", i)
			}
		})
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	frames := testFrames(t, 10, 114, 64)

	b := new(bytes.Buffer)
	require.NoError(t, EncodeCompressed(b, frames, 114, 64))
	assert.True(t, IsCompressed(bytes.NewReader(b.Bytes())))

	// Not a raw frame file
	assert.False(t, IsValid(bytes.NewReader(b.Bytes())))

	rc, err := NewReader(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	defer rc.Close()

	decoded, err := Decode(rc)
	require.NoError(t, err)
	require.Len(t, decoded, len(frames))
	for i := range frames {
		assert.True(t, frames[i].Equal(decoded[i]))
	}
}

func TestNewReaderRaw(t *testing.T) {
	frames := testFrames(t, 2, 4, 4)

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, frames, 4, 4))
	assert.False(t, IsCompressed(bytes.NewReader(b.Bytes())))

	rc, err := NewReader(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	defer rc.Close()

	assert.True(t, IsValid(rc))
}

func TestDecodeErrors(t *testing.T) {
	frames := testFrames(t, 2, 4, 4)
	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, frames, 4, 4))
	good := b.Bytes()

	corrupt := func(f func([]byte) []byte) []byte {
		return f(append([]byte(nil), good...))
	}

	tables := []struct {
		name string
		data []byte
		err  error
	}{
		{
			"bad magic",
			corrupt(func(b []byte) []byte { b[0] = 0; return b }),
			ErrInvalidFormat,
		},
		{
			"empty",
			[]byte{},
			ErrInvalidFormat,
		},
		{
			"version 2",
			corrupt(func(b []byte) []byte { b[7] = 2; return b }),
			ErrUnsupportedVersion,
		},
		{
			"truncated header",
			good[:12],
			ErrTruncated,
		},
		{
			"truncated frame",
			good[:len(good)-1],
			ErrTruncated,
		},
		{
			"missing frame",
			good[:HeaderSize+frameHeaderSize+16],
			ErrTruncated,
		},
		{
			"frame size mismatch",
			corrupt(func(b []byte) []byte { b[HeaderSize+3] = 5; return b }),
			ErrDimensionMismatch,
		},
		{
			"zero width",
			corrupt(func(b []byte) []byte { b[15] = 0; return b }),
			ErrInvalidFormat,
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			frames, err := Decode(bytes.NewReader(table.data))
			assert.ErrorIs(t, err, table.err)
			assert.Nil(t, frames)
		})
	}
}

func TestDecodeLenient(t *testing.T) {
	frames := testFrames(t, 1, 2, 2)
	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, frames, 2, 2))

	data := b.Bytes()
	data[HeaderSize+frameHeaderSize+1] = 0xff
	data[HeaderSize+frameHeaderSize+2] = 16

	decoded, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, palette.White, decoded[0].At(0, 1))
	assert.Equal(t, palette.White, decoded[0].At(1, 0))
	assert.Equal(t, frames[0].At(1, 1), decoded[0].At(1, 1))
}

func TestEncodeErrors(t *testing.T) {
	frames := testFrames(t, 2, 4, 4)

	err := Encode(new(bytes.Buffer), frames, 4, 5)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	bad := frames[1].Clone()
	bad.Cells[0] = palette.Size
	b := new(bytes.Buffer)
	err = Encode(b, []*frame.Frame{frames[0], bad}, 4, 4)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	assert.Zero(t, b.Len())

	err = Encode(new(bytes.Buffer), frames, 0, 0)
	assert.ErrorIs(t, err, frame.ErrInvalidDimensions)
}

func TestEncodeBounds(t *testing.T) {
	tables := []struct {
		name          string
		width, height int
	}{
		{"negative", -1, -1},
		{"zero width", 0, 64},
		{"zero height", 114, 0},
		{"too many cells", 8193, 8192},
		{"too wide", 1<<31 - 1, 1},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			b := new(bytes.Buffer)
			err := Encode(b, nil, table.width, table.height)
			assert.ErrorIs(t, err, frame.ErrInvalidDimensions)
			assert.Zero(t, b.Len())

			err = EncodeCompressed(new(bytes.Buffer), nil, table.width, table.height)
			assert.ErrorIs(t, err, frame.ErrInvalidDimensions)
		})
	}

	// The largest header the decoder accepts can still be written
	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, nil, 8192, 8192))
	c, err := DecodeConfig(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, Config{Version: 1, Frames: 0, Width: 8192, Height: 8192}, c)
}

func TestDecodeConfig(t *testing.T) {
	frames := testFrames(t, 3, 114, 64)
	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, frames, 114, 64))

	c, err := DecodeConfig(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, Config{Version: 1, Frames: 3, Width: 114, Height: 64}, c)

	_, err = DecodeConfig(bytes.NewReader([]byte("not a frame file at all")))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestIsValid(t *testing.T) {
	tables := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty", nil, false},
		{"magic only", []byte{0x56, 0x4d, 0x46, 0x52}, false},
		{"15 bytes", append([]byte{0x56, 0x4d, 0x46, 0x52}, make([]byte, 11)...), false},
		{"16 bytes", append([]byte{0x56, 0x4d, 0x46, 0x52}, make([]byte, 12)...), true},
		{"garbage after magic", append([]byte{0x56, 0x4d, 0x46, 0x52}, bytes.Repeat([]byte{0xff}, 100)...), true},
		{"wrong magic", bytes.Repeat([]byte{0x00}, 32), false},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.Equal(t, table.want, IsValid(bytes.NewReader(table.data)))
		})
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	frames := testFrames(t, 4, 8, 8)

	raw := filepath.Join(dir, "raw.vmfr")
	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, frames, 8, 8))
	require.NoError(t, os.WriteFile(raw, b.Bytes(), 0o644))

	compressed := filepath.Join(dir, "compressed.vmfr.zst")
	b.Reset()
	require.NoError(t, EncodeCompressed(b, frames, 8, 8))
	require.NoError(t, os.WriteFile(compressed, b.Bytes(), 0o644))

	short := filepath.Join(dir, "short.vmfr")
	require.NoError(t, os.WriteFile(short, []byte{0x56, 0x4d, 0x46, 0x52}, 0o644))

	assert.True(t, IsValidFile(raw))
	assert.True(t, IsValidFile(compressed))
	assert.False(t, IsValidFile(short))
	assert.False(t, IsValidFile(filepath.Join(dir, "missing.vmfr")))

	for _, file := range []string{raw, compressed} {
		decoded, err := DecodeFile(file)
		require.NoError(t, err)
		require.Len(t, decoded, len(frames))
		for i := range frames {
			assert.True(t, frames[i].Equal(decoded[i]))
		}
	}
}
