package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrMalformedResponse marks a collaborator reply whose body did not match
// the documented schema. Distinct from transport failures so the orchestrator
// never mistakes a contract drift for an outage.
var ErrMalformedResponse = errors.New("malformed collaborator response")

// HTTPError is a non-2xx reply from a collaborator.
type HTTPError struct {
	Service    string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Service, e.StatusCode)
}

// IsTimeout reports whether err is a deadline expiry, either from the
// per-call context or from the transport.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
