package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/calebward/aurum/internal/aurum/authz"
	"github.com/calebward/aurum/internal/aurum/nlp"
	"github.com/calebward/aurum/internal/aurum/query"
	"github.com/calebward/aurum/internal/aurum/server"
)

const testSecret = "unit-test-secret"

// stubEngine records the last call and replies with a fixed response or error.
type stubEngine struct {
	resp      *query.QueryResponse
	err       error
	lastQuery string
	lastToken string
	lastUser  authz.UserContext
	calls     int
}

func (s *stubEngine) ProcessQuery(_ context.Context, queryText, authToken string, user authz.UserContext) (*query.QueryResponse, error) {
	s.calls++
	s.lastQuery = queryText
	s.lastToken = authToken
	s.lastUser = user
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newServer(engine *stubEngine) *server.Server {
	return server.New(server.Config{Addr: ":0", JWTSecret: testSecret}, engine)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func agentToken(t *testing.T) string {
	return signToken(t, jwt.MapClaims{
		"sub":            "agent-1",
		"email":          "eva@example.com",
		"role":           "agent",
		"email_verified": true,
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
}

func postQuery(srv *server.Server, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/assistant/query", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) query.QueryResponse {
	t.Helper()
	var resp query.QueryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return resp
}

func TestQuerySuccess(t *testing.T) {
	engine := &stubEngine{resp: &query.QueryResponse{
		NaturalLanguageResponse: "I found 2 clients.",
		QueryType:               "client",
		Results:                 []query.Row{{"id": "c1"}, {"id": "c2"}},
	}}
	srv := newServer(engine)
	token := agentToken(t)

	w := postQuery(srv, token, `{"query": "show my clients"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if resp.QueryType != "client" || len(resp.Results) != 2 {
		t.Errorf("response = %+v", resp)
	}
	if engine.lastQuery != "show my clients" {
		t.Errorf("engine got query %q", engine.lastQuery)
	}
	if engine.lastToken != token {
		t.Error("raw bearer token was not forwarded verbatim to the engine")
	}
	if engine.lastUser.UserID != "agent-1" || engine.lastUser.Role != authz.RoleAgent {
		t.Errorf("engine got user %+v", engine.lastUser)
	}
	if !engine.lastUser.EmailVerified {
		t.Error("email_verified claim was dropped")
	}
}

func TestQueryRequiresToken(t *testing.T) {
	engine := &stubEngine{}
	srv := newServer(engine)

	w := postQuery(srv, "", `{"query": "show my clients"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if engine.calls != 0 {
		t.Error("engine was called without authentication")
	}
	resp := decodeResponse(t, w)
	if resp.QueryType != query.QueryTypeError {
		t.Errorf("queryType = %q, want error", resp.QueryType)
	}
}

func TestQueryRejectsBadSignature(t *testing.T) {
	engine := &stubEngine{}
	srv := newServer(engine)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "agent-1", "role": "agent",
	}).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatal(err)
	}

	w := postQuery(srv, forged, `{"query": "hi"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if engine.calls != 0 {
		t.Error("engine was called with a forged token")
	}
}

func TestQueryRejectsUnknownRole(t *testing.T) {
	srv := newServer(&stubEngine{})
	token := signToken(t, jwt.MapClaims{"sub": "x", "role": "superuser"})

	w := postQuery(srv, token, `{"query": "hi"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestQueryRejectsMissingSubject(t *testing.T) {
	srv := newServer(&stubEngine{})
	token := signToken(t, jwt.MapClaims{"role": "agent"})

	w := postQuery(srv, token, `{"query": "hi"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestQueryBadBody(t *testing.T) {
	srv := newServer(&stubEngine{})

	w := postQuery(srv, agentToken(t), `{"query": `)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.QueryType != query.QueryTypeError {
		t.Errorf("queryType = %q, want error", resp.QueryType)
	}
}

func TestQueryOracleUnavailable(t *testing.T) {
	engine := &stubEngine{err: nlp.ErrUnavailable}
	srv := newServer(engine)

	w := postQuery(srv, agentToken(t), `{"query": "show my clients"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.QueryType != query.QueryTypeError {
		t.Errorf("queryType = %q, want error", resp.QueryType)
	}
	if resp.NaturalLanguageResponse == "" {
		t.Error("error response has no readable message")
	}
}

func TestQueryOracleRateLimited(t *testing.T) {
	engine := &stubEngine{err: nlp.ErrRateLimit}
	srv := newServer(engine)

	w := postQuery(srv, agentToken(t), `{"query": "show my clients"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.NaturalLanguageResponse != nlp.RateLimitMessage {
		t.Errorf("message = %q, want the polite rate-limit text", resp.NaturalLanguageResponse)
	}
}

func TestHealth(t *testing.T) {
	srv := newServer(&stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newServer(&stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "q_upstream-42")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "q_upstream-42" {
		t.Errorf("X-Request-Id = %q, want echo of inbound value", got)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	srv := newServer(&stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); !strings.HasPrefix(got, "q_") {
		t.Errorf("X-Request-Id = %q, want generated q_ id", got)
	}
}
