package directory_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calebward/aurum/internal/aurum/directory"
)

func newService(t *testing.T, handler http.Handler) *directory.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return directory.New(directory.Config{
		ClientsURL:      srv.URL,
		TransactionsURL: srv.URL,
		UsersURL:        srv.URL,
	})
}

func TestClientsPagedEnvelope(t *testing.T) {
	var gotAuth string
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{"content":[
			{"id":"c1","firstName":"John","lastName":"Doe","email":"jd@example.com","agentId":"a1"},
			{"id":"c2","firstName":"Ana"}
		]}}`))
	}))

	clients, desc, err := svc.Clients(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("Clients: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(clients) != 2 {
		t.Fatalf("len = %d, want 2", len(clients))
	}
	if clients[0].FullName() != "John Doe" {
		t.Errorf("FullName = %q", clients[0].FullName())
	}
	// Missing optional fields default to empty, not an error.
	if clients[1].LastName != "" || clients[1].Email != "" {
		t.Errorf("missing fields should default empty: %+v", clients[1])
	}
	if desc == "" {
		t.Error("descriptor should describe the fetch")
	}
}

func TestUsersFlatEnvelope(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"id":"u1","firstName":"Eva","lastName":"Long","role":"AGENT","active":true},
			{"id":"u2","firstName":"Max","lastName":"Webb","role":"admin"}
		]}`))
	}))

	users, _, err := svc.Users(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len = %d, want 2", len(users))
	}
	if users[0].RoleTag != "agent" {
		t.Errorf("RoleTag should be lower-cased, got %q", users[0].RoleTag)
	}
	if !users[0].Active || users[1].Active {
		t.Errorf("active decode wrong: %+v", users)
	}
}

func TestTransactionsScopedToIDSet(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("clientIds"); got != "c1,c2" {
			t.Errorf("clientIds = %q", got)
		}
		// Upstream misbehaves and returns a row outside the requested set.
		w.Write([]byte(`{"data":[
			{"id":"t1","clientId":"c1","type":"deposit","amount":120.5},
			{"id":"t2","clientId":"c9","type":"withdrawal","amount":10}
		]}`))
	}))

	txns, _, err := svc.Transactions(context.Background(), "tok", []string{"c1", "c2"})
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txns) != 1 || txns[0].ClientID != "c1" {
		t.Fatalf("out-of-scope rows must be dropped, got %+v", txns)
	}
	if txns[0].Amount != "120.5" {
		t.Errorf("numeric amount should decode to string, got %q", txns[0].Amount)
	}
}

func TestTransactionsEmptyIDSetSkipsFetch(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an empty id set")
	}))

	txns, desc, err := svc.Transactions(context.Background(), "tok", nil)
	if err != nil || len(txns) != 0 || desc != "" {
		t.Errorf("got %v, %q, %v", txns, desc, err)
	}
}

func TestFetchErrorStatus(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	if _, _, err := svc.Clients(context.Background(), "tok"); err == nil {
		t.Error("expected error for HTTP 500")
	}
}

func TestFetchMalformedEnvelope(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":"not a list"}`))
	}))
	if _, _, err := svc.Clients(context.Background(), "tok"); err == nil {
		t.Error("expected error for unrecognized payload shape")
	}
}

func TestFetchEmptyData(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	clients, _, err := svc.Clients(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Clients: %v", err)
	}
	if len(clients) != 0 {
		t.Errorf("len = %d, want 0", len(clients))
	}
}
