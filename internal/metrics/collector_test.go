package metrics_test

import (
	"crimereport/backend/internal/metrics"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsAndServes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.CaseSubmitted("police")
	c.CaseSubmitted("police")
	c.StatusChanged("resolved")
	c.MessageSent("citizen")
	c.MessagesMarkedRead(3)
	c.NotificationDropped("queue_full")
	c.ObserveHTTP(http.MethodGet, "/api/v1/cases", http.StatusOK, 15*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "crimereport_cases_submitted_total" {
			assert.Len(t, mf.GetMetric(), 1, "one series per department")
		}
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(body, `crimereport_cases_submitted_total{department="police"} 2`))
	assert.True(t, strings.Contains(body, "crimereport_messages_marked_read_total 3"))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *metrics.Collector
	assert.NotPanics(t, func() {
		c.CaseSubmitted("police")
		c.StatusChanged("closed")
		c.MessageSent("official")
		c.NotificationDelivered("new_message")
		c.SetQueueDepth(4)
		c.ObserveHTTP(http.MethodPost, "/x", http.StatusCreated, time.Second)
	})
}
