package concrete

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/bodgit/concrete/catalog"
	"github.com/bodgit/concrete/framefile"
)

var errWalkCancelled = errors.New("concrete: walk cancelled")

func (c *Concrete) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file or is too small to be a frame file
			if !info.Mode().IsRegular() || info.Size() < framefile.MinSize {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errWalkCancelled
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (c *Concrete) scanFile(file string) error {
	if !framefile.IsValidFile(file) {
		return nil
	}

	rc, err := framefile.Open(file)
	if err != nil {
		return err
	}
	defer rc.Close()

	cfg, err := framefile.DecodeConfig(rc)
	if err != nil {
		c.logger.Warn().Str("file", file).Err(err).Msg("Skipping unreadable frame file")
		return nil
	}

	sha, err := sha1File(file)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	compressed := framefile.IsCompressed(f)
	f.Close()

	v := catalog.Video{
		Name:       strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)),
		Path:       file,
		SHA1:       sha,
		Frames:     cfg.Frames,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Compressed: compressed,
	}

	if existing, err := c.db.FindBySHA1(sha); err == nil && existing.Path == file {
		c.logger.Debug().Str("file", file).Str("name", existing.Name).Msg("Already cataloged")
		return nil
	} else if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return err
	}

	if err := c.db.Put(v); err != nil {
		return err
	}
	c.logger.Info().Str("file", file).Str("name", v.Name).Int("frames", v.Frames).Msg("Cataloged")

	return nil
}

func (c *Concrete) fileWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if err := c.scanFile(file); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func workers() int {
	return runtime.GOMAXPROCS(0)
}

// Scan walks path recording every frame file found in the catalog. Files
// already recorded at the same path with the same contents are left alone.
func (c *Concrete) Scan(path string) error {
	if c.db == nil {
		return errNoCatalog
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findFiles(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < workers(); i++ {
		errc, err := c.fileWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
