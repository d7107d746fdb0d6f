package gemini

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// Provider failure taxonomy. ErrRateLimited and ErrOverloaded wrap
// ErrUnavailable, so errors.Is(err, ErrUnavailable) holds for every
// provider failure while the request boundary can still distinguish
// rate limiting for its user-facing "system busy" response.
var (
	// ErrUnavailable indicates the embedding or generation capability
	// failed: network error, 5xx, or a malformed provider response.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrRateLimited indicates the provider rejected the call with
	// HTTP 429.
	ErrRateLimited = fmt.Errorf("%w: rate limited", ErrUnavailable)

	// ErrOverloaded indicates transient provider unavailability
	// (HTTP 503).
	ErrOverloaded = fmt.Errorf("%w: temporarily overloaded", ErrUnavailable)
)

// classify maps a raw SDK error onto the provider failure taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		case http.StatusServiceUnavailable:
			return fmt.Errorf("%w: %s", ErrOverloaded, apiErr.Message)
		}
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Retryable reports whether a provider failure is worth retrying:
// rate limiting and transient unavailability only. Everything else
// (auth failures, bad requests, malformed responses) fails fast.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrOverloaded)
}
