package fault

import "errors"

// Sentinel kinds. A *Error matches the sentinel of its Kind via errors.Is.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamBadResponse = errors.New("upstream bad response")
	ErrNotFound            = errors.New("not found")
	ErrTimeout             = errors.New("timeout")
	ErrInvalidArgument     = errors.New("invalid argument")
)

func sentinel(k Kind) error {
	switch k {
	case KindUpstreamUnavailable:
		return ErrUpstreamUnavailable
	case KindUpstreamBadResponse:
		return ErrUpstreamBadResponse
	case KindNotFound:
		return ErrNotFound
	case KindTimeout:
		return ErrTimeout
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return nil
	}
}
