package domain

import (
	"fmt"
	"strings"
)

type State int

const (
	// StateUnknown holds until the first restore attempt resolves.
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// UnresolvedUserID is the id of a user known only from a login response,
// which carries a username but no id. A profile fetch replaces it.
const UnresolvedUserID int64 = 0

type User struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func (u User) Resolved() bool {
	return u.ID != UnresolvedUserID
}

// Session is a snapshot of the client's belief about who is logged in.
// User and Token are set only in StateAuthenticated.
type Session struct {
	State State
	Token string
	User  User
}

func (s Session) Authenticated() bool {
	return s.State == StateAuthenticated
}

type LoginGrant struct {
	Token    string
	Username string
}

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

type Registration struct {
	Username string
	Email    string
	Password string
}

func (r Registration) Validate() error {
	if err := (Credentials{Username: r.Username, Password: r.Password}).Validate(); err != nil {
		return err
	}
	if email := strings.TrimSpace(r.Email); email != "" && !strings.Contains(email, "@") {
		return fmt.Errorf("email %q is not valid", email)
	}
	return nil
}

type RegisteredUser struct {
	ID       int64
	Username string
	Message  string
}
