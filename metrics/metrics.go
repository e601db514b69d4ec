/*
Package metrics exposes playback counters to Prometheus.

The counters make the effect of incremental rendering visible; the ratio of
skipped to written cells is the saving over repainting every frame.
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "concrete"

// Playback holds the counters for one playback session
type Playback struct {
	registry *prometheus.Registry

	FramesRendered prometheus.Counter
	CellsWritten   prometheus.Counter
	CellsSkipped   prometheus.Counter
	FrameErrors    prometheus.Counter
	FullPaints     prometheus.Counter
}

// NewPlayback creates and registers the playback counters on a private
// registry
func NewPlayback() *Playback {
	p := &Playback{
		registry: prometheus.NewRegistry(),
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Number of frames rendered.",
		}),
		CellsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_written_total",
			Help:      "Number of cells written to the cell writer.",
		}),
		CellsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_skipped_total",
			Help:      "Number of unchanged cells not written.",
		}),
		FrameErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_errors_total",
			Help:      "Number of frames that could not be read or rendered.",
		}),
		FullPaints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "full_paints_total",
			Help:      "Number of frames painted in full.",
		}),
	}

	p.registry.MustRegister(p.FramesRendered, p.CellsWritten, p.CellsSkipped, p.FrameErrors, p.FullPaints)

	return p
}

// Frame records a rendered frame of total cells of which written were
// written
func (p *Playback) Frame(total, written int, full bool) {
	p.FramesRendered.Inc()
	p.CellsWritten.Add(float64(written))
	p.CellsSkipped.Add(float64(total - written))
	if full {
		p.FullPaints.Inc()
	}
}

// Handler returns an HTTP handler serving the counters
func (p *Playback) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
