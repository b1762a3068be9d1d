package travel

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ProviderError reports a single provider's failure. A timeout is a failure
// of that provider only, never fatal for the turn.
type ProviderError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("provider %s timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// newProviderError wraps an error, detecting timeouts.
func newProviderError(provider string, err error) *ProviderError {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if !timeout && errors.As(err, &netErr) {
		timeout = netErr.Timeout()
	}
	return &ProviderError{Provider: provider, Timeout: timeout, Err: err}
}
