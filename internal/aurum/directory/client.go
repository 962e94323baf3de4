// Package directory holds the HTTP read clients for the three CRM data
// services: client records, transaction records, and the user directory.
//
// Each service already enforces row-level filtering by caller identity, so
// the clients here only forward the caller's bearer credential verbatim and
// decode what comes back. Payload tolerance is deliberate: upstream
// envelopes come in two shapes ({"data":{"content":[...]}} and
// {"data":[...]}) and optional fields may be missing; both decode without
// failing the request.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds every data-service round trip.
const DefaultTimeout = 10 * time.Second

// Config holds the three service base URLs.
type Config struct {
	// ClientsURL is the base URL of the client-records service.
	ClientsURL string

	// TransactionsURL is the base URL of the transaction-records service.
	TransactionsURL string

	// UsersURL is the base URL of the user-directory service.
	UsersURL string

	// Timeout bounds each request. Defaults to DefaultTimeout when zero.
	Timeout time.Duration
}

// Service issues authenticated reads against the CRM data services.
// It is safe for concurrent use.
type Service struct {
	cfg    Config
	client *http.Client
}

// New returns a Service for the given endpoints.
func New(cfg Config) *Service {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Clients fetches the caller's client records. The returned descriptor is a
// human-readable description of the fetch for the response's debug field.
func (s *Service) Clients(ctx context.Context, authToken string) ([]Client, string, error) {
	endpoint := s.cfg.ClientsURL + "/clients"
	rows, err := s.fetch(ctx, endpoint, authToken)
	if err != nil {
		return nil, "", err
	}

	clients := make([]Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, Client{
			ID:        str(row, "id"),
			FirstName: str(row, "firstName"),
			LastName:  str(row, "lastName"),
			Email:     str(row, "email"),
			Phone:     str(row, "phone"),
			AgentID:   str(row, "agentId"),
			Status:    str(row, "status"),
		})
	}
	return clients, "GET " + endpoint, nil
}

// Transactions fetches transactions scoped to the given client IDs. The
// caller is responsible for resolving its own client-id set first; passing
// an empty set returns no rows without a network call.
func (s *Service) Transactions(ctx context.Context, authToken string, clientIDs []string) ([]Transaction, string, error) {
	if len(clientIDs) == 0 {
		return nil, "", nil
	}

	endpoint := s.cfg.TransactionsURL + "/transactions?clientIds=" + url.QueryEscape(strings.Join(clientIDs, ","))
	rows, err := s.fetch(ctx, endpoint, authToken)
	if err != nil {
		return nil, "", err
	}

	idSet := make(map[string]struct{}, len(clientIDs))
	for _, id := range clientIDs {
		idSet[id] = struct{}{}
	}

	txns := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		txn := Transaction{
			ID:          str(row, "id"),
			ClientID:    str(row, "clientId"),
			Type:        str(row, "type"),
			Amount:      str(row, "amount"),
			Currency:    str(row, "currency"),
			Date:        str(row, "date"),
			Description: str(row, "description"),
		}
		// Re-check scoping locally; the id-set filter is a security
		// boundary, not a hint.
		if _, ok := idSet[txn.ClientID]; !ok {
			continue
		}
		txns = append(txns, txn)
	}
	return txns, "GET " + endpoint, nil
}

// Users fetches the user directory (agents and admins), row-filtered
// upstream by the caller's identity.
func (s *Service) Users(ctx context.Context, authToken string) ([]User, string, error) {
	endpoint := s.cfg.UsersURL + "/users"
	rows, err := s.fetch(ctx, endpoint, authToken)
	if err != nil {
		return nil, "", err
	}

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		users = append(users, User{
			ID:        str(row, "id"),
			FirstName: str(row, "firstName"),
			LastName:  str(row, "lastName"),
			Email:     str(row, "email"),
			Username:  str(row, "username"),
			RoleTag:   strings.ToLower(str(row, "role")),
			Active:    boolean(row, "active"),
		})
	}
	return users, "GET " + endpoint, nil
}

// fetch performs one authenticated GET and decodes the response envelope
// into flat rows.
func (s *Service) fetch(ctx context.Context, endpoint, authToken string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("directory: %s: HTTP %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("directory: read body: %w", err)
	}
	return decodeEnvelope(body)
}

// decodeEnvelope accepts both upstream response shapes:
//
//	{"data": {"content": [ ... ]}}   (paged services)
//	{"data": [ ... ]}                (flat services)
func decodeEnvelope(body []byte) ([]map[string]any, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("directory: decode envelope: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil, nil
	}

	var paged struct {
		Content []map[string]any `json:"content"`
	}
	if err := json.Unmarshal(envelope.Data, &paged); err == nil && paged.Content != nil {
		return paged.Content, nil
	}

	var flat []map[string]any
	if err := json.Unmarshal(envelope.Data, &flat); err == nil {
		return flat, nil
	}

	return nil, fmt.Errorf("directory: unrecognized data payload shape")
}

// str returns row[key] as a string, tolerating missing keys and non-string
// JSON scalars (numbers, bools).
func str(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// boolean returns row[key] as a bool, defaulting to false when absent or of
// an unexpected type.
func boolean(row map[string]any, key string) bool {
	if v, ok := row[key].(bool); ok {
		return v
	}
	return false
}
