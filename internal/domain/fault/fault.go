// Package fault defines the failure taxonomy shared by the rating, info and
// catalog services.
//
// Leaf clients classify transport and decoding problems into a *Error with a
// Kind; the HTTP layer maps kinds to status codes. Callers compare against
// the sentinel errors with errors.Is.
package fault

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUpstreamUnavailable
	KindUpstreamBadResponse
	KindNotFound
	KindTimeout
	KindInvalidArgument
)

// String returns the snake_case code used in error bodies and metric labels.
func (k Kind) String() string {
	switch k {
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindUpstreamBadResponse:
		return "upstream_bad_response"
	case KindNotFound:
		return "not_found"
	case KindTimeout:
		return "timeout"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "internal_error"
	}
}

// Retryable reports whether another attempt could succeed.
func (k Kind) Retryable() bool {
	return k == KindUpstreamUnavailable || k == KindTimeout
}

// Resource names used in errors.
const (
	ResourceUser  = "user"
	ResourceMovie = "movie"
)

// Error is a classified failure, optionally tied to the resource that caused it.
type Error struct {
	Kind     Kind
	Op       string // operation, e.g. "info.detail"
	Resource string // ResourceUser or ResourceMovie
	ID       string
	// Status is the upstream HTTP status for bad responses, 0 otherwise.
	Status int
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(strings.ReplaceAll(e.Kind.String(), "_", " "))
	if e.Resource != "" || e.ID != "" {
		fmt.Fprintf(&b, " (%s %s)", e.Resource, e.ID)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " status %d", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s := sentinel(e.Kind)
	return s != nil && target == s
}

// Retryable reports whether the failure is transient. 5xx responses count as
// transient; other bad responses do not.
func (e *Error) Retryable() bool {
	if e.Kind == KindUpstreamBadResponse {
		return e.Status >= 500
	}
	return e.Kind.Retryable()
}

// New builds a classified error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// For returns a copy of e bound to a resource id.
func (e *Error) For(resource, id string) *Error {
	c := *e
	c.Resource = resource
	c.ID = id
	return &c
}

// KindOf extracts the Kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Annotate ensures err carries resource and id. Unclassified errors become
// KindUnknown faults so the failing identifier is never lost.
func Annotate(err error, op, resource, id string) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		if fe.ID != "" {
			return err
		}
		return fe.For(resource, id)
	}
	kind := KindUnknown
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Op: op, Resource: resource, ID: id, Err: err}
}
