package sfrest

import (
	"errors"
	"fmt"
)

// ErrAuthenticationRequired is returned by every resource call made before
// Authenticate has stored a token. No request is sent in that case.
var ErrAuthenticationRequired = errors.New("authentication required")

// AuthError reports a token request that did not yield an access token.
type AuthError struct {
	StatusCode int
	Body       []byte
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed with status %d: %s", e.StatusCode, string(e.Body))
}

// DiscoveryError reports a failed API version discovery.
type DiscoveryError struct {
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("version discovery at %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("version discovery at %s failed with status %d: %s", e.URL, e.StatusCode, string(e.Body))
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
