package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame(t *testing.T) {
	p := NewPlayback()

	p.Frame(100, 100, true)
	p.Frame(100, 20, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.FramesRendered))
	assert.Equal(t, 120.0, testutil.ToFloat64(p.CellsWritten))
	assert.Equal(t, 80.0, testutil.ToFloat64(p.CellsSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.FullPaints))
}

func TestHandler(t *testing.T) {
	p := NewPlayback()
	p.Frame(10, 3, false)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "concrete_cells_skipped_total 7")
}
