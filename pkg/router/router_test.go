package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ganzorig/mishil/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestNamedRoutes(t *testing.T) {
	r := router.New()
	r.Get("/products/{id}", "products.get", ok)

	path, found := r.Path("products.get")
	if !found {
		t.Fatal("named route not registered")
	}
	if path != "/products/{id}" {
		t.Errorf("path = %q", path)
	}

	url, err := r.URL("products.get", map[string]string{"id": "42"})
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if url != "/products/42" {
		t.Errorf("url = %q", url)
	}

	if _, err := r.URL("products.get", nil); err == nil {
		t.Error("expected error for missing params")
	}
	if _, err := r.URL("nope", nil); err == nil {
		t.Error("expected error for unknown route")
	}
}

func TestGroupPrefixes(t *testing.T) {
	r := router.New()
	api := r.Group("/api")
	admin := api.Group("/admin")
	admin.Get("/dashboard", "admin.dashboard", ok)

	path, _ := r.Path("admin.dashboard")
	if path != "/api/admin/dashboard" {
		t.Errorf("path = %q, want /api/admin/dashboard", path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestGroupMiddlewareApplies(t *testing.T) {
	var order []string
	mw := func(tag string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, tag)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := router.New()
	g := r.Group("/api", mw("group"))
	g.Get("/x", "x", ok, mw("route"))

	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	r.Handler().ServeHTTP(httptest.NewRecorder(), req)

	if len(order) != 2 || order[0] != "group" || order[1] != "route" {
		t.Errorf("middleware order = %v, want [group route]", order)
	}
}

func TestRoutesListing(t *testing.T) {
	r := router.New()
	r.Get("/a", "a", ok)
	r.Post("/b", "b", ok)
	r.Get("/unnamed", "", ok)

	infos := r.Routes()
	if len(infos) != 2 {
		t.Fatalf("Routes() = %d entries, want 2 (unnamed routes are not listed)", len(infos))
	}
}
