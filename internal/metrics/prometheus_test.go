package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGetIsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}

func TestRuleCommandCounter(t *testing.T) {
	r := Get()
	before := testutil.ToFloat64(r.RuleCommands.WithLabelValues("add", Result(true)))
	r.RuleCommands.WithLabelValues("add", Result(true)).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(r.RuleCommands.WithLabelValues("add", "success")))
	assert.Equal(t, "failure", Result(false))
}

func TestHandlerServesMetrics(t *testing.T) {
	Get().PassesTotal.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "silencer_collection_passes_total")
}
