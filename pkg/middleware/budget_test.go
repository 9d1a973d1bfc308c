package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ganzorig/mishil/pkg/middleware"
)

func TestBudgetPassesFastHandlers(t *testing.T) {
	h := middleware.Budget(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Fast", "yes")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("done")) //nolint:errcheck
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if rec.Header().Get("X-Fast") != "yes" {
		t.Error("handler headers were not flushed")
	}
	if rec.Body.String() != "done" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestBudgetCutsOffSlowHandlers(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	h := middleware.Budget(20*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.Write([]byte("too late")) //nolint:errcheck
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "too late") {
		t.Error("slow handler output leaked to the client")
	}
}

func TestBudgetSkipsWebSocketUpgrades(t *testing.T) {
	ran := false
	h := middleware.Budget(time.Nanosecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusSwitchingProtocols)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/orders/live", nil)
	req.Header.Set("Upgrade", "websocket")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !ran {
		t.Fatal("upgrade request did not reach the handler")
	}
	if rec.Code != http.StatusSwitchingProtocols {
		t.Errorf("status = %d, want 101", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := middleware.RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
		r.RemoteAddr = "203.0.113.7:1234"
		return r
	}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req())
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req())
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}

	// A different IP has its own bucket.
	other := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
	other.RemoteAddr = "198.51.100.9:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("other ip: status = %d, want 200", rec.Code)
	}
}
