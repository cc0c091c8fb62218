// Package api declares the HTTP contracts of the three services and the
// route table helpers that register them.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/logger"
)

// Route is one entry of a service's route table.
type Route struct {
	Method  string
	Pattern string // ServeMux path pattern, may contain {wildcards}
	Name    string // metrics label
	Handler http.HandlerFunc
}

// Register attaches routes to mux. Every handler is wrapped with request id
// propagation, metrics and panic recovery, outermost first.
func Register(ctx context.Context, mux *http.ServeMux, routes []Route) {
	log := logger.Get().Named("api")
	for _, rt := range routes {
		pattern := rt.Pattern
		if rt.Method != "" {
			pattern = rt.Method + " " + rt.Pattern
		}
		h := RecoverMiddleware(rt.Handler, rt.Name)
		h = MetricsMiddleware(h, rt.Name)
		h = RequestIDMiddleware(h)
		mux.HandleFunc(pattern, h)
		log.Debug(ctx, "route registered", logger.String("pattern", pattern), logger.String("name", rt.Name))
	}
}

type errorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Resource string `json:"resource,omitempty"`
	ID       string `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as a structured body with the status its kind maps to.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Warn(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	writeJSON(w, status, body)
}

func errorBody(err error) (int, errorResponse) {
	kind := fault.KindOf(err)
	body := errorResponse{Code: kind.String(), Message: err.Error()}
	var fe *fault.Error
	if errors.As(err, &fe) {
		body.Resource = fe.Resource
		body.ID = fe.ID
	}
	return StatusFor(kind), body
}

// StatusFor maps a fault kind to its HTTP status.
func StatusFor(kind fault.Kind) int {
	switch kind {
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindInvalidArgument:
		return http.StatusBadRequest
	case fault.KindUpstreamUnavailable, fault.KindUpstreamBadResponse:
		return http.StatusBadGateway
	case fault.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// pathID parses the named path wildcard as an ID.
func pathID(r *http.Request, name, op, resource string) (model.ID, error) {
	raw := r.PathValue(name)
	id, err := model.ParseID(raw)
	if err != nil {
		return 0, fault.New(fault.KindInvalidArgument, op, err).For(resource, raw)
	}
	return id, nil
}
