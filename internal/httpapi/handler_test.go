package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/tealbot/teal/internal/observe"
	"github.com/tealbot/teal/internal/prompt"
	"github.com/tealbot/teal/internal/tell"
	"github.com/tealbot/teal/internal/tellctx"
	"github.com/tealbot/teal/internal/users"
	"github.com/tealbot/teal/pkg/provider/reply"
	providermock "github.com/tealbot/teal/pkg/provider/reply/mock"
	storemock "github.com/tealbot/teal/pkg/store/mock"
)

// newTestRouter wires a full router around mock collaborators.
func newTestRouter(t *testing.T, st *storemock.Store, p *providermock.Provider) http.Handler {
	t.Helper()
	m, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	asm := tellctx.NewAssembler(st, tell.TellsCollection, tellctx.Context{Mood: "neutral", Summary: "first conversation"})
	tells := tell.NewService(st, p, prompt.NewEngine(), asm, tell.WithMetrics(m))
	return New(tells, users.NewService(st), p, nil, m).Router()
}

func okProvider() *providermock.Provider {
	return &providermock.Provider{
		AskReply: &reply.StructuredReply{
			Answer: "That sounds like real progress.", Summary: "s", UserState: "u", Mood: "m",
		},
		GenerateText: "Hello and a very warm welcome!",
	}
}

func TestPostTell(t *testing.T) {
	st := &storemock.Store{}
	router := newTestRouter(t, st, okProvider())

	req := httptest.NewRequest(http.MethodPost, "/api/tell",
		strings.NewReader(`{"username":"ada","tell":"I got the job"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body)
	}
	var res map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["answer"] != "That sounds like real progress." {
		t.Errorf("answer = %q, want the provider's answer", res["answer"])
	}
	if len(st.PutCalls) != 1 {
		t.Errorf("Put called %d times, want 1", len(st.PutCalls))
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

func TestPostTellValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"blank username", `{"username":"   ","tell":"hi"}`},
		{"blank tell", `{"username":"ada","tell":"  "}`},
		{"malformed json", `{"username":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &storemock.Store{}
			router := newTestRouter(t, st, okProvider())

			req := httptest.NewRequest(http.MethodPost, "/api/tell", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if len(st.PutCalls) != 0 {
				t.Errorf("Put called %d times on invalid input, want 0", len(st.PutCalls))
			}
		})
	}
}

func TestPostTellExplicitContext(t *testing.T) {
	st := &storemock.Store{}
	p := okProvider()
	router := newTestRouter(t, st, p)

	body := `{"username":"ada","tell":"exam tomorrow","context":{"mood":"anxious","summary":"finals week"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/tell", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(st.ScanCalls) != 0 {
		t.Errorf("Scan called %d times with explicit context, want 0", len(st.ScanCalls))
	}
	if got := p.AskCalls[0].Prompt; !strings.Contains(got, "My current mood: anxious.") {
		t.Errorf("prompt does not carry the explicit context:\n%s", got)
	}
}

func TestPostTellCoreFailureIsGeneric500(t *testing.T) {
	st := &storemock.Store{}
	p := &providermock.Provider{AskErr: errors.New("quota exceeded: project 1234")}
	router := newTestRouter(t, st, p)

	req := httptest.NewRequest(http.MethodPost, "/api/tell",
		strings.NewReader(`{"username":"ada","tell":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "quota") {
		t.Errorf("response leaks provider error detail: %s", rec.Body)
	}
}

func TestPostUsers(t *testing.T) {
	st := &storemock.Store{}
	router := newTestRouter(t, st, okProvider())

	req := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader(`{"name":"John Doe","email":"john@example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	var u users.User
	if err := json.NewDecoder(rec.Body).Decode(&u); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if u.ID == "" || u.Name != "John Doe" || u.Email != "john@example.com" {
		t.Errorf("profile = %+v, want generated id and given fields", u)
	}
}

func TestPostUsersRequiresName(t *testing.T) {
	router := newTestRouter(t, &storemock.Store{}, okProvider())

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"email":"a@b.c"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetHello(t *testing.T) {
	p := okProvider()
	router := newTestRouter(t, &storemock.Store{}, p)

	req := httptest.NewRequest(http.MethodGet, "/api/hello?name=teal-lambda", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var res map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["body"] != "Hello and a very warm welcome!" {
		t.Errorf("body = %q, want the generated greeting", res["body"])
	}
	if len(p.GenerateCalls) != 1 {
		t.Fatalf("Generate called %d times, want 1", len(p.GenerateCalls))
	}
	if !strings.Contains(p.GenerateCalls[0].Prompt, "my name is teal-lambda") {
		t.Errorf("greeting prompt missing name: %q", p.GenerateCalls[0].Prompt)
	}
}

func TestGetHelloDefaultsToStranger(t *testing.T) {
	p := okProvider()
	router := newTestRouter(t, &storemock.Store{}, p)

	req := httptest.NewRequest(http.MethodGet, "/api/hello", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(p.GenerateCalls[0].Prompt, "my name is stranger") {
		t.Errorf("greeting prompt = %q, want stranger fallback", p.GenerateCalls[0].Prompt)
	}
}

func TestProbesAndMetricsMounted(t *testing.T) {
	router := newTestRouter(t, &storemock.Store{}, okProvider())

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
