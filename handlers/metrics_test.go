package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotelines/metrics"
	"quotelines/testhelpers"
)

func TestHandleMetrics_CountsEditorCommands(t *testing.T) {
	f := newEditorFixture(t)
	promReg := prometheus.NewRegistry()
	f.reg.WithMetrics(metrics.NewEditorMetrics(promReg))
	q := testhelpers.CreateTestQuote(t, f.app, "Hall")

	f.call(t, HandleEditorState(f.reg), q.Id, "")
	rec, _ := f.call(t, HandleEditorRemove(f.reg), q.Id, `{"index":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	out := httptest.NewRecorder()
	require.NoError(t, HandleMetrics(promReg)(newRequestEvent(f.app, req, out)))

	body := out.Body.String()
	assert.Equal(t, http.StatusOK, out.Code)
	assert.Contains(t, body, `quote_editor_commands_total{command="state",outcome="ok"} 1`)
	assert.Contains(t, body, `quote_editor_commands_total{command="remove",outcome="rejected"} 1`)
	assert.True(t, strings.Contains(body, "quote_editor_sessions 1"), "one session open")
}
