package gitlab

import "fmt"

// AuthError is returned when the admin credential is rejected (HTTP 401 or
// 403). It is distinct from transient transport failures so callers can
// report "credential invalid" instead of "network flake".
type AuthError struct {
	StatusCode int
	Endpoint   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("gitlab: authentication failed (status %d) on %s", e.StatusCode, e.Endpoint)
}

// TransportError covers network failures, timeouts and unexpected HTTP
// statuses. An empty result set is not an error.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gitlab: request to %s failed: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("gitlab: request to %s failed with status %d", e.Endpoint, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
