package lowlevel

import (
	"errors"
	"fmt"

	"github.com/h44z/wg-portal-routeros/internal/domain"
)

var (
	ErrMixedContent = errors.New("Mixed Content: insecure http request blocked from secure origin")
	ErrCorsBlocked  = errors.New("blocked by CORS policy: no matching Access-Control-Allow-Origin header")
)

// TransportError is a failure that prevented a usable response.
type TransportError struct {
	Kind domain.OutcomeCategory
	Url  string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Url != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Url, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RelayError means the relay endpoint itself failed. No status of the target is available.
type RelayError struct {
	Endpoint string
	Status   int // status returned by the relay endpoint, 0 if it could not be reached
	// Detail is the error message the relay endpoint answered with, if any.
	Detail string
	Err    error
}

func (e *RelayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("relay %s failed with status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("relay %s failed: %v", e.Endpoint, e.Err)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}
