package transport

import (
	"errors"
	"fmt"
)

// Kind is the closed failure taxonomy every transport call funnels into.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthRequired
	KindAuthRejected
	KindNotFound
	KindServerError
	KindMalformedResponse
	KindTunnelBlocked
	KindNetworkUnreachable
)

func (k Kind) String() string {
	switch k {
	case KindAuthRequired:
		return "auth_required"
	case KindAuthRejected:
		return "auth_rejected"
	case KindNotFound:
		return "not_found"
	case KindServerError:
		return "server_error"
	case KindMalformedResponse:
		return "malformed_response"
	case KindTunnelBlocked:
		return "tunnel_blocked"
	case KindNetworkUnreachable:
		return "network_unreachable"
	default:
		return "unknown"
	}
}

const (
	msgAuthRequired = "Authentication required. Please login again."
	msgTunnel       = "Tunnel Connection Error: the tunnel in front of the server returned its warning page instead of the API response. Open the tunnel URL once in a browser or restart the tunnel."
	msgNetwork      = "Network Error: Unable to reach server. Verify the backend is running and the URL is correct."
	msgHTMLBody     = "Received HTML instead of JSON. The server URL might be incorrect or returning a dashboard page."
	msgInvalidBody  = "Server returned invalid response format"
)

// Error is the failure half of a request outcome.
type Error struct {
	Kind Kind
	// Status is the HTTP status code, zero when no response was received.
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Errors that did not come from this package are KindUnknown.
func KindOf(err error) Kind {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.Kind
	}
	return KindUnknown
}

func IsAuthRejected(err error) bool {
	return KindOf(err) == KindAuthRejected
}

// AuthRequired is the failure of a protected call attempted without a token.
func AuthRequired() *Error {
	return fail(KindAuthRequired, 0, msgAuthRequired)
}

func fail(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

func failWrap(kind Kind, status int, message string, err error) *Error {
	return &Error{Kind: kind, Status: status, Message: message, Err: err}
}

// kindForStatus maps a failure status onto the taxonomy.
func kindForStatus(status int) Kind {
	switch status {
	case 401:
		return KindAuthRejected
	case 404:
		return KindNotFound
	default:
		return KindServerError
	}
}

func statusFallback(status int, statusText string) string {
	return fmt.Sprintf("Error %d: %s", status, statusText)
}
