package serpapi

import "errors"

// Failure taxonomy for upstream fetches. The client never retries and
// never swallows these; callers decide retry policy and HTTP mapping.
var (
	// ErrAuthentication marks a bad or missing API credential.
	ErrAuthentication = errors.New("serpapi: authentication failed")

	// ErrRateLimit marks an upstream quota rejection. The caller should
	// back off; the client does not retry internally.
	ErrRateLimit = errors.New("serpapi: rate limit exceeded")

	// ErrNotFound marks a place identifier with no data.
	ErrNotFound = errors.New("serpapi: place not found")

	// ErrMalformedResponse marks a schema violation in a response that
	// otherwise succeeded at the transport level.
	ErrMalformedResponse = errors.New("serpapi: malformed response")

	// ErrNetwork marks a transport-level failure (DNS, connect, timeout,
	// or an upstream 5xx).
	ErrNetwork = errors.New("serpapi: network failure")
)
