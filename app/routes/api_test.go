package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ganzorig/mishil/app/routes"
	"github.com/ganzorig/mishil/pkg/router"
)

// The health probe answers on both paths: /api/health for clients, bare
// /health for infrastructure probes. Neither touches the database.
func TestHealthServedUnderAPIPrefix(t *testing.T) {
	r := router.New()
	routes.RegisterAPI(r)

	for _, path := range []string{"/api/health", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, rec.Code)
		}
	}
}
