package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/reservations/id/665f1c0a2b3c4d5e6f708192/status", "/api/v1/reservations/id/:id/status"},
		{"/api/v1/availability/665f1c0a2b3c4d5e6f708192", "/api/v1/availability/:id"},
		{"/api/v1/units", "/api/v1/units"},
		{"/api/v1/units/id/not-an-id", "/api/v1/units/id/not-an-id"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RouteLabel(tt.path), tt.path)
	}
}

func TestCounters(t *testing.T) {
	m := New("test")

	m.ReservationEvent("room", "hold.created")
	m.ReservationEvent("room", "hold.created")
	m.OverlapConflict("vehicle")
	m.HoldConfirmExpired("room")
	m.KafkaMessage("publish", nil, time.Millisecond)
	m.KafkaMessage("publish", errors.New("broker down"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reservationEvents.WithLabelValues("room", "hold.created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.overlapConflicts.WithLabelValues("vehicle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.holdsExpired.WithLabelValues("room")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.kafkaMessages.WithLabelValues("publish", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.kafkaMessages.WithLabelValues("publish", "error")))
}

func TestHandlerExposesHTTPMetrics(t *testing.T) {
	m := New("test")
	m.ObserveHTTP(http.MethodPost, "/api/v1/holds", http.StatusCreated, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `staydesk_http_requests_total{method="POST",route="/api/v1/holds",service="test",status="201"} 1`), body)
}

func TestNewIsolatedRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New("a")
		New("a")
	})
}
