/*
Package player drives playback of a frame source onto a cell writer.

Only the cells that changed since the previous frame are written. Stopping
playback keeps what is currently drawn and the diff state, so resuming carries
on incrementally; clearing blanks the writer and forgets the previous frame so
the next frame is painted in full.
*/
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bodgit/concrete/diff"
	"github.com/bodgit/concrete/metrics"
	"github.com/bodgit/concrete/palette"
	"github.com/bodgit/concrete/source"
	"github.com/rs/zerolog"
)

// DefaultFPS is the playback rate used unless overridden
const DefaultFPS = 20

// ErrPlaying is returned by Run if playback is already running
var ErrPlaying = errors.New("player: already playing")

var errStopped = errors.New("player: stopped")

// CellWriter materialises palette entries at grid coordinates
type CellWriter interface {
	// SetCell draws e at x, y
	SetCell(x, y int, e palette.Entry) error
	// Blank empties every cell
	Blank() error
	// Flush makes any pending writes visible
	Flush() error
}

// Player plays one source onto one writer. Only one session should be active
// at a time.
type Player struct {
	source  source.Source
	writer  CellWriter
	engine  *diff.Engine
	fps     int
	logger  zerolog.Logger
	metrics *metrics.Playback

	mu      sync.Mutex
	playing bool
	stop    chan struct{}
	pos     int
}

// Option configures a Player
type Option func(*Player)

// WithFPS sets the playback rate
func WithFPS(fps int) Option {
	return func(p *Player) {
		if fps > 0 {
			p.fps = fps
		}
	}
}

// WithMetrics records playback counters
func WithMetrics(m *metrics.Playback) Option {
	return func(p *Player) {
		p.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Player) {
		p.logger = logger
	}
}

// New returns a stopped player
func New(src source.Source, w CellWriter, options ...Option) *Player {
	p := &Player{
		source: src,
		writer: w,
		engine: diff.New(),
		fps:    DefaultFPS,
		logger: zerolog.Nop(),
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Step renders the next frame, returning true once the source is exhausted.
// A frame that can't be read returns an error but is skipped, so the next
// call moves on.
func (p *Player) Step() (bool, error) {
	return p.step(nil)
}

// step renders the next frame unless stop, the channel of the session
// calling it, has been closed
func (p *Player) step(stop <-chan struct{}) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if stopped(stop) {
		return false, errStopped
	}

	f, err := p.source.Next()
	if err == io.EOF {
		return true, nil
	}
	p.pos++
	if err != nil {
		p.frameError()
		return false, fmt.Errorf("frame %d: %w", p.pos, err)
	}

	full := !p.engine.Primed()
	changes, err := p.engine.Submit(f)
	if err != nil {
		p.frameError()
		return false, fmt.Errorf("frame %d: %w", p.pos, err)
	}

	if err := p.write(changes); err != nil {
		// What's drawn no longer matches the diff state
		p.engine.Reset()
		p.frameError()
		return false, fmt.Errorf("frame %d: %w", p.pos, err)
	}

	if p.metrics != nil {
		p.metrics.Frame(len(f.Cells), len(changes), full)
	}

	p.logger.Debug().Int("frame", p.pos).Int("changed", len(changes)).Bool("full", full).Msg("Rendered frame")

	return false, nil
}

func (p *Player) write(changes diff.ChangeSet) error {
	for _, c := range changes {
		if err := p.writer.SetCell(c.X, c.Y, c.Entry); err != nil {
			return err
		}
	}
	return p.writer.Flush()
}

func (p *Player) frameError() {
	if p.metrics != nil {
		p.metrics.FrameErrors.Inc()
	}
}

// Run renders frames at the configured rate until the source is exhausted,
// Stop or Clear is called, or ctx is cancelled. The first frame is rendered
// immediately. Frames that fail are logged and skipped.
func (p *Player) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return ErrPlaying
	}
	p.playing = true
	stop := make(chan struct{})
	p.stop = stop
	p.mu.Unlock()

	p.logger.Info().Int("fps", p.fps).Int("frames", p.source.Len()).Int("position", p.Position()).Msg("Starting playback")

	ticker := time.NewTicker(time.Second / time.Duration(p.fps))
	defer ticker.Stop()

	for {
		done, err := p.step(stop)
		if err == errStopped {
			return nil
		}
		if err != nil {
			p.logger.Warn().Err(err).Msg("Skipping frame")
		}
		if done {
			p.end(stop)
			p.logger.Info().Int("frames", p.Position()).Msg("Playback complete")
			return nil
		}

		select {
		case <-ticker.C:
		case <-stop:
			return nil
		case <-ctx.Done():
			p.end(stop)
			return ctx.Err()
		}
	}
}

func stopped(stop <-chan struct{}) bool {
	if stop == nil {
		return false
	}
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

// end stops the session owning stop, leaving any later session alone
func (p *Player) end(stop chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing && p.stop == stop {
		p.playing = false
		close(stop)
	}
}

// Stop halts playback leaving the current picture and diff state intact.
// Calling it when not playing does nothing.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return
	}
	p.playing = false
	close(p.stop)
}

// Clear stops playback, blanks the writer and forgets the previous frame
func (p *Player) Clear() error {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.engine.Reset()
	if err := p.writer.Blank(); err != nil {
		return err
	}
	return p.writer.Flush()
}

// Playing reports whether Run is active
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Position returns the number of frames consumed from the source
func (p *Player) Position() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// Total returns the number of frames in the source
func (p *Player) Total() int {
	return p.source.Len()
}
