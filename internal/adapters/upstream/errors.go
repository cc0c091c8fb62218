package upstream

import "errors"

// Sentinel kinds for client construction.
var (
	ErrInvalidBaseURL = errors.New("invalid upstream base url")
	ErrMissingAPIKey  = errors.New("missing upstream api key")
	ErrInvalidVersion = errors.New("invalid ratings api version")
)
