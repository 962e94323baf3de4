package directory

import "strings"

// Client is one CRM client record as returned by the clients service.
// Optional upstream fields default to zero values rather than failing the
// fetch.
type Client struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	AgentID   string
	Status    string
}

// FullName joins the name parts for display and filter matching.
func (c Client) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// Transaction is one transaction record as returned by the transactions
// service.
type Transaction struct {
	ID          string
	ClientID    string
	Type        string
	Amount      string
	Currency    string
	Date        string
	Description string
}

// User is one directory record from the users service. RoleTag carries the
// upstream role marker ("agent" or "admin") used for in-memory filtering.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Username  string
	RoleTag   string
	Active    bool
}

// FullName joins the name parts for display and filter matching.
func (u User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}
