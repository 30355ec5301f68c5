package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrAuth indicates the provider rejected the credentials (401/403).
type ErrAuth struct {
	Err error
}

func (e *ErrAuth) Error() string {
	return fmt.Sprintf("LLM credentials rejected: %v", e.Err)
}

func (e *ErrAuth) Unwrap() error { return e.Err }

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the LLM returned no usable text.
type ErrInvalidResponse struct {
	Err error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// Describe returns a short, user-facing explanation of err.
func Describe(err error) string {
	var (
		auth  *ErrAuth
		rate  *ErrRateLimit
		inv   *ErrInvalidResponse
		unavl *ErrProviderUnavailable
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &auth):
		return "The AI service rejected the API key. Check your credentials."
	case errors.As(err, &rate):
		return "The AI service is rate limiting requests. Wait a moment and try again."
	case errors.As(err, &inv):
		return "The AI service returned an empty or unusable reply. Try again."
	case errors.As(err, &unavl):
		return fmt.Sprintf("The AI service is unavailable: %v", unavl.Err)
	default:
		return fmt.Sprintf("Unexpected error: %v", err)
	}
}
