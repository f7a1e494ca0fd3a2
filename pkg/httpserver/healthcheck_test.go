package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/twofa/pkg/httpserver"
	"github.com/dmitrymomot/twofa/pkg/logger"
)

func TestHealthRoutes(t *testing.T) {
	t.Parallel()

	ok := httpserver.Check{Name: "memory", Ping: func(context.Context) error { return nil }}
	down := httpserver.Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}
	slow := httpserver.Check{Name: "pg", Ping: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	tests := []struct {
		name     string
		path     string
		checks   []httpserver.Check
		wantCode int
		wantBody string
	}{
		{"live", "/live", []httpserver.Check{down}, http.StatusOK, "ALIVE"},
		{"ready without checks", "/ready", nil, http.StatusOK, "READY"},
		{"ready", "/ready", []httpserver.Check{ok}, http.StatusOK, "READY"},
		{"dependency down", "/ready", []httpserver.Check{ok, down}, http.StatusServiceUnavailable, "NOT_READY"},
		{"dependency times out", "/ready", []httpserver.Check{slow}, http.StatusServiceUnavailable, "NOT_READY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := httpserver.HealthRoutes(logger.Nop(), 20*time.Millisecond, tt.checks...)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}
