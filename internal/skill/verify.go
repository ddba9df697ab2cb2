package skill

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrApplicationMismatch rejects requests made for another skill.
	ErrApplicationMismatch = errors.New("request is for a different application")

	// ErrStaleRequest rejects requests whose timestamp is outside the tolerance.
	ErrStaleRequest = errors.New("request timestamp outside tolerance")
)

// Verifier checks an envelope before it is dispatched.
type Verifier struct {
	// ApplicationID, when set, must equal the envelope's application id.
	ApplicationID string

	// Tolerance bounds how far the request timestamp may be from now.
	// Zero disables the check.
	Tolerance time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Verify returns an error wrapping ErrInvalidRequest,
// ErrApplicationMismatch or ErrStaleRequest if env must be rejected.
func (v Verifier) Verify(env *RequestEnvelope) error {
	if env == nil || env.Request.Type == "" {
		return ErrInvalidRequest
	}

	if v.ApplicationID != "" {
		if got := env.ApplicationID(); got != v.ApplicationID {
			return fmt.Errorf("%w: %q", ErrApplicationMismatch, got)
		}
	}

	if v.Tolerance > 0 {
		ts, err := env.Request.Time()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStaleRequest, err)
		}
		now := time.Now
		if v.Now != nil {
			now = v.Now
		}
		if d := now().Sub(ts).Abs(); d > v.Tolerance {
			return fmt.Errorf("%w: off by %s", ErrStaleRequest, d.Round(time.Second))
		}
	}
	return nil
}
