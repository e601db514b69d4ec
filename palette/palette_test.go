package palette

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, Size)

	tags := make(map[string]struct{})
	for i, e := range all {
		assert.Equal(t, uint8(i), e.Index)
		assert.NotEmpty(t, e.Tag)
		tags[e.Tag] = struct{}{}
	}
	assert.Len(t, tags, Size)

	assert.Equal(t, Entry{White, 219, 219, 219, "white_concrete"}, all[0])
	assert.Equal(t, Entry{Black, 40, 40, 40, "black_concrete"}, all[Size-1])

	// Modifying the returned slice must not affect the palette
	all[0].R = 0
	assert.Equal(t, uint8(219), All()[0].R)
}

func TestByIndex(t *testing.T) {
	tables := []struct {
		index int
		want  uint8
		err   error
	}{
		{0, White, nil},
		{7, Gray, nil},
		{15, Black, nil},
		{-1, 0, ErrIndexOutOfRange},
		{16, 0, ErrIndexOutOfRange},
		{255, 0, ErrIndexOutOfRange},
	}

	for _, table := range tables {
		e, err := ByIndex(table.index)
		if table.err != nil {
			assert.ErrorIs(t, err, table.err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, table.want, e.Index)
	}
}

func TestLookup(t *testing.T) {
	assert.Equal(t, Red, Lookup(int(Red)).Index)
	assert.Equal(t, White, Lookup(16).Index)
	assert.Equal(t, White, Lookup(200).Index)
	assert.Equal(t, White, Lookup(-3).Index)
}

func TestColors(t *testing.T) {
	p := Colors()
	require.Len(t, p, Size)
	assert.Equal(t, color.RGBA{60, 100, 220, 0xff}, p[Blue])

	// Exact palette colors map back to their own index
	for _, e := range All() {
		assert.Equal(t, int(e.Index), p.Index(e))
	}
}
