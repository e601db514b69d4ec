package concrete

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bodgit/concrete/catalog"
	"github.com/bodgit/concrete/frame"
	"github.com/bodgit/concrete/framefile"
	"github.com/bodgit/concrete/source"
)

// ProcessOptions control how a directory of images is processed
type ProcessOptions struct {
	source.Options
	// Name is recorded in the catalog, defaults to the directory name
	Name string
	// Compress wraps the frame file in zstd
	Compress bool
	// Workers is the number of quantizing goroutines, defaults to
	// GOMAXPROCS
	Workers int
}

type job struct {
	index int
	file  string
}

func findJobs(ctx context.Context, files []string) (<-chan job, <-chan error, error) {
	out := make(chan job)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for i, file := range files {
			select {
			case out <- job{i, file}:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()
	return out, errc, nil
}

func (c *Concrete) frameWorker(ctx context.Context, in <-chan job, opts source.Options, frames []*frame.Frame) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for j := range in {
			m, err := source.Load(j.file)
			if err != nil {
				errc <- err
				return
			}

			// Each job owns a distinct index so no locking is needed
			f, err := c.table.Frame(opts.Prepare(m))
			if err != nil {
				errc <- fmt.Errorf("%s: %w", filepath.Base(j.file), err)
				return
			}
			frames[j.index] = f

			c.logger.Debug().Str("file", j.file).Int("frame", j.index).Msg("Quantized")
		}
	}()
	return errc, nil
}

// Process converts the images in dir into a frame file written to out and,
// if there is a catalog, records it there.
func (c *Concrete) Process(ctx context.Context, dir, out string, opts ProcessOptions) (catalog.Video, error) {
	files, err := source.List(dir, opts.Interval)
	if err != nil {
		return catalog.Video{}, err
	}
	if len(files) == 0 {
		return catalog.Video{}, source.ErrNoFrames
	}

	if err := ctx.Err(); err != nil {
		return catalog.Video{}, err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	frames := make([]*frame.Frame, len(files))

	var errcList []<-chan error

	jobs, errc, err := findJobs(ctx, files)
	if err != nil {
		return catalog.Video{}, err
	}
	errcList = append(errcList, errc)

	n := opts.Workers
	if n < 1 {
		n = workers()
	}
	for i := 0; i < n; i++ {
		errc, err := c.frameWorker(ctx, jobs, opts.Options, frames)
		if err != nil {
			return catalog.Video{}, err
		}
		errcList = append(errcList, errc)
	}

	if err := waitForPipeline(errcList...); err != nil {
		return catalog.Video{}, err
	}

	width, height := frames[0].Width, frames[0].Height
	if err := writeFrames(out, frames, width, height, opts.Compress); err != nil {
		return catalog.Video{}, err
	}

	c.logger.Info().Str("file", out).Int("frames", len(frames)).Int("width", width).Int("height", height).Msg("Processed")

	abs, err := filepath.Abs(out)
	if err != nil {
		return catalog.Video{}, err
	}

	sha, err := sha1File(abs)
	if err != nil {
		return catalog.Video{}, err
	}

	v := catalog.Video{
		Name:       opts.Name,
		Path:       abs,
		SHA1:       sha,
		Frames:     len(frames),
		Width:      width,
		Height:     height,
		Compressed: opts.Compress,
	}
	if v.Name == "" {
		v.Name = filepath.Base(filepath.Clean(dir))
	}

	if c.db != nil {
		if err := c.db.Put(v); err != nil {
			return catalog.Video{}, err
		}
	}

	return v, nil
}

func writeFrames(file string, frames []*frame.Frame, width, height int, compress bool) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(file), "."+filepath.Base(file)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	defer f.Close()

	encode := framefile.Encode
	if compress {
		encode = framefile.EncodeCompressed
	}
	if err := encode(f, frames, width, height); err != nil {
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), file)
}
