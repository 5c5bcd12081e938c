package dto

type UserOutput struct {
	ID       int64
	Username string
	Email    string
	// Resolved is false while ID is still the post-login placeholder.
	Resolved bool
}

type SessionOutput struct {
	State         string
	Authenticated bool
	User          UserOutput
}

type LoginInput struct {
	Username string
	Password string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type RegisterOutput struct {
	UserID   int64
	Username string
	Message  string
}

// SessionOutput.State values.
const (
	StateUnknown       = "unknown"
	StateAnonymous     = "anonymous"
	StateAuthenticated = "authenticated"
)
