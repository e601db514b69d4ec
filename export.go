package concrete

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/bodgit/concrete/framefile"
)

// ExportPattern names the images written by Export
const ExportPattern = "frame_%05d.png"

// Export decodes the frame file and writes each frame into dir as a PNG
// image, returning the number of images written.
func (c *Concrete) Export(file, dir string) (int, error) {
	frames, err := framefile.DecodeFile(file)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	for i, fr := range frames {
		if err := writePNG(filepath.Join(dir, fmt.Sprintf(ExportPattern, i)), fr.Image()); err != nil {
			return i, err
		}
	}

	c.logger.Info().Str("file", file).Str("dir", dir).Int("frames", len(frames)).Msg("Exported")

	return len(frames), nil
}

func writePNG(file string, m image.Image) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, m); err != nil {
		return err
	}
	return f.Close()
}
