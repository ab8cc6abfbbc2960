package embeddings

import "errors"

// ErrUnavailable is returned when the embedding provider call fails.
var ErrUnavailable = errors.New("embedding provider unavailable")
