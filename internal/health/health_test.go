package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestHealthzAlwaysOK(t *testing.T) {
	h := New()
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Healthz status = %d, want %d", rec.Code, http.StatusOK)
	}
	var res struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Status != "ok" {
		t.Errorf("status = %q, want %q", res.Status, "ok")
	}
}

func TestReadyzAllPass(t *testing.T) {
	h := New(
		Checker{Name: "database", Check: func(context.Context) error { return nil }},
		Checker{Name: "provider", Check: func(context.Context) error { return nil }},
	)
	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Readyz status = %d, want %d", rec.Code, http.StatusOK)
	}
	var res struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Status != "ok" {
		t.Errorf("status = %q, want %q", res.Status, "ok")
	}
	if res.Checks["database"] != "ok" || res.Checks["provider"] != "ok" {
		t.Errorf("checks = %v, want all ok", res.Checks)
	}
}

func TestReadyzFailingCheck(t *testing.T) {
	h := New(
		Checker{Name: "database", Check: func(context.Context) error { return errors.New("connection refused") }},
		Checker{Name: "provider", Check: func(context.Context) error { return nil }},
	)
	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Readyz status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	var res struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Status != "fail" {
		t.Errorf("status = %q, want %q", res.Status, "fail")
	}
	if !strings.HasPrefix(res.Checks["database"], "fail: ") {
		t.Errorf("database check = %q, want fail prefix", res.Checks["database"])
	}
	if res.Checks["provider"] != "ok" {
		t.Errorf("provider check = %q, want %q", res.Checks["provider"], "ok")
	}
}

func TestReadyzAllCheckersRunDespiteFailure(t *testing.T) {
	ran := make(chan string, 3)
	mk := func(name string, err error) Checker {
		return Checker{Name: name, Check: func(context.Context) error {
			ran <- name
			return err
		}}
	}
	h := New(
		mk("a", errors.New("down")),
		mk("b", nil),
		mk("c", nil),
	)
	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	close(ran)
	var names []string
	for n := range ran {
		names = append(names, n)
	}
	if len(names) != 3 {
		t.Errorf("ran %d checkers, want 3: %v", len(names), names)
	}
}

func TestRegister(t *testing.T) {
	r := chi.NewRouter()
	New().Register(r)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
