package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/bodgit/concrete"
	"github.com/bodgit/concrete/catalog"
	"github.com/bodgit/concrete/config"
	"github.com/bodgit/concrete/framefile"
	"github.com/bodgit/concrete/metrics"
	"github.com/bodgit/concrete/player"
	"github.com/bodgit/concrete/quantizer"
	"github.com/bodgit/concrete/source"
	"github.com/bodgit/concrete/terminal"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var errEmpty = errors.New("nothing to play")

func openSource(c *cli.Context, cfg config.Config, arg string, logger zerolog.Logger) (source.Source, int, int, error) {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		opts, err := sourceOptions(c, cfg)
		if err != nil {
			return nil, 0, 0, err
		}
		src, err := source.NewImageDir(arg, quantizer.New(), opts)
		if err != nil {
			return nil, 0, 0, err
		}
		if src.Len() == 0 {
			return nil, 0, 0, source.ErrNoFrames
		}
		return src, opts.Width, opts.Height, nil
	}

	db, err := catalog.Open(cfg.DB)
	if err != nil {
		return nil, 0, 0, err
	}
	defer db.Close()

	file, err := concrete.New(db, nil, logger).Resolve(arg)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s: %w", arg, err)
	}

	frames, err := framefile.DecodeFile(file)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s: %w", file, err)
	}
	if len(frames) == 0 {
		return nil, 0, 0, errEmpty
	}

	return source.NewFrames(frames), frames[0].Width, frames[0].Height, nil
}

func serveMetrics(addr string, m *metrics.Playback, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()
	return srv
}

func play(c *cli.Context, cfg config.Config, arg string) error {
	logger, closer, err := fileLogger(c.String("log"), c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer closer.Close()

	src, width, height, err := openSource(c, cfg, arg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	options := []player.Option{
		player.WithFPS(cfg.FPS),
		player.WithLogger(logger),
	}

	if addr := c.String("metrics"); addr != "" {
		m := metrics.NewPlayback()
		options = append(options, player.WithMetrics(m))
		srv := serveMetrics(addr, m, logger)
		defer srv.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	w := terminal.New(screen, width, height)
	if !w.Fits() {
		logger.Warn().Int("width", width).Int("height", height).Msg("Frame is larger than the terminal")
	}

	p := player.New(src, w, options...)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	start := func() {
		go func() {
			if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("Playback failed")
			}
		}()
	}

	quit := make(chan struct{})
	defer close(quit)

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	start()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
					p.Stop()
					return nil
				case ev.Rune() == 'c':
					if err := p.Clear(); err != nil {
						logger.Error().Err(err).Msg("Clear failed")
					}
				case ev.Rune() == ' ':
					if p.Playing() {
						p.Stop()
					} else if p.Position() < p.Total() {
						start()
					}
				}
			}
		}
	}
}
