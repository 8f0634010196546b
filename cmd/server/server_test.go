package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codr1/clubconnect/internal/config"
)

func TestRoutes(t *testing.T) {
	cfg, err := config.Parse([]byte("app:\n  name: clubconnect\n  port: 8080\n"))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	handler := newServer(cfg).Handler

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "create event needs trainer", method: http.MethodPost, path: "/api/v1/events", wantStatus: http.StatusUnauthorized},
		{name: "roster needs trainer", method: http.MethodGet, path: "/api/v1/players", wantStatus: http.StatusUnauthorized},
		{name: "page invite needs trainer", method: http.MethodPost, path: "/events/1/invites", wantStatus: http.StatusUnauthorized},
		{name: "dashboard needs trainer", method: http.MethodGet, path: "/api/v1/dashboard", wantStatus: http.StatusUnauthorized},
		{name: "wrong method", method: http.MethodPatch, path: "/api/v1/news", wantStatus: http.StatusMethodNotAllowed},
		{name: "unknown path", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader("")))
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Fatal("expected X-Request-ID header")
			}
		})
	}
}
