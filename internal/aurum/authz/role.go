// Package authz encodes which CRM role may ask which kind of question.
//
// The matrix is deliberately NOT a privilege hierarchy: an admin cannot see
// an agent's clients or transactions, and a root admin cannot see client or
// transaction data at all. Every check is a pure function of
// (role, category, scope); there is no session state and no memoization.
package authz

import (
	"fmt"
	"strings"
)

// Role is the closed set of CRM caller roles.
type Role string

const (
	// RoleAgent manages a book of clients and their transactions.
	RoleAgent Role = "agent"
	// RoleAdmin manages agents they created; no client or transaction data.
	RoleAdmin Role = "admin"
	// RoleRootAdmin manages the user directory; no client or transaction data.
	RoleRootAdmin Role = "root_admin"
)

// ParseRole maps a wire-format role string onto the closed Role set,
// tolerating the separator variants seen in upstream identity tokens.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "agent":
		return RoleAgent, nil
	case "admin":
		return RoleAdmin, nil
	case "root_admin", "root-admin", "rootadmin":
		return RoleRootAdmin, nil
	default:
		return "", fmt.Errorf("authz: unknown role %q", s)
	}
}

// UserContext identifies the authenticated caller for the lifetime of one
// request. It is supplied by the transport layer after token validation and
// is read-only inside the query pipeline.
type UserContext struct {
	UserID        string
	Email         string
	Username      string
	Role          Role
	EmailVerified bool
}
