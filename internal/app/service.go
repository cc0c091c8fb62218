// Package service wires the catalog, info and rating services from
// configuration. Each constructor builds the service's dependencies
// explicitly and returns its route table.
package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/marquee/internal/adapters/http/api"
	"github.com/okian/marquee/internal/adapters/http/swagger"
	"github.com/okian/marquee/internal/adapters/repository"
	"github.com/okian/marquee/internal/adapters/upstream"
	"github.com/okian/marquee/internal/config"
	"github.com/okian/marquee/internal/domain/catalog"
	"github.com/okian/marquee/internal/domain/movies"
	"github.com/okian/marquee/pkg/logger"
)

// Service names, also used as the metrics service label.
const (
	NameCatalog = "catalog"
	NameInfo    = "info"
	NameRating  = "rating"
)

// Builder constructs one service. The http.Client is owned by the process
// and shared by every outbound client the service creates.
type Builder func(ctx context.Context, cfg *config.Config, hc *http.Client) (*Service, error)

// Service is a fully wired service ready to be served.
type Service struct {
	name   string
	addr   string
	routes []api.Route
}

// Name returns the service name.
func (s *Service) Name() string { return s.name }

// Addr returns the configured listen address.
func (s *Service) Addr() string { return s.addr }

// Routes returns the service route table, ops and docs routes included.
func (s *Service) Routes() []api.Route { return s.routes }

// Handler registers the route table on a fresh mux.
func (s *Service) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	api.Register(ctx, mux, s.routes)
	return mux
}

// userAgent identifies the calling service to upstreams.
func userAgent(service string) string { return "marquee-" + service }

func newService(name, addr string, routes []api.Route) *Service {
	routes = append(routes, api.OpsRoutes(name)...)
	routes = append(routes, swagger.Routes()...)
	return &Service{name: name, addr: addr, routes: routes}
}

// NewRating builds the rating service over the in-memory store.
func NewRating(ctx context.Context, cfg *config.Config, _ *http.Client) (*Service, error) {
	store := repository.NewStaticStore(ctx,
		repository.WithFallback(cfg.RatingFallback),
		repository.WithDefaultMovieRating(cfg.RatingDefaultValue),
	)
	h, err := api.NewRatingsHandler(store, cfg.RatingDefaultVersion)
	if err != nil {
		return nil, fmt.Errorf("rating: %w", err)
	}
	logger.Get().Info(ctx, "rating service wired",
		logger.String("default_version", cfg.RatingDefaultVersion),
		logger.Bool("fallback", cfg.RatingFallback),
	)
	return newService(NameRating, cfg.RatingAddr, api.RatingRoutes(h)), nil
}

// NewInfo builds the info service over the configured detail provider.
func NewInfo(ctx context.Context, cfg *config.Config, hc *http.Client) (*Service, error) {
	var source api.DetailSource
	switch cfg.InfoProvider {
	case "local":
		source = movies.NewLocal(movies.WithStrict(cfg.InfoStrict))
	case "tmdb":
		c, err := upstream.New("tmdb", cfg.TMDBBaseURL,
			upstream.WithHTTPClient(hc),
			upstream.WithTimeout(cfg.TMDBTimeout),
			upstream.WithRateLimit(cfg.TMDBRateLimit, cfg.TMDBBurst),
			upstream.WithAttempts(cfg.TMDBAttempts),
			upstream.WithBackoff(cfg.TMDBRetryBackoff),
			upstream.WithUserAgent(userAgent(NameInfo)),
		)
		if err != nil {
			return nil, fmt.Errorf("info: %w", err)
		}
		tc, err := upstream.NewTMDBClient(c, cfg.TMDBAPIKey)
		if err != nil {
			return nil, fmt.Errorf("info: %w", err)
		}
		source = tc
	default:
		return nil, fmt.Errorf("info: %w: provider %q", config.ErrInvalidConfig, cfg.InfoProvider)
	}
	logger.Get().Info(ctx, "info service wired",
		logger.String("provider", cfg.InfoProvider),
		logger.Bool("strict", cfg.InfoStrict),
	)
	return newService(NameInfo, cfg.InfoAddr, api.InfoRoutes(api.NewMovieHandler(source))), nil
}

// NewCatalog builds the catalog service over remote rating and info clients.
func NewCatalog(ctx context.Context, cfg *config.Config, hc *http.Client) (*Service, error) {
	version, err := upstream.ParseAPIVersion(cfg.CatalogRatingsAPI)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	policy, err := catalog.ParsePolicy(cfg.CatalogFailurePolicy)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	ratingHTTP, err := upstream.New(NameRating, cfg.RatingURL,
		upstream.WithHTTPClient(hc),
		upstream.WithTimeout(cfg.CatalogUpstreamTimeout),
		upstream.WithUserAgent(userAgent(NameCatalog)),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: rating client: %w", err)
	}
	infoHTTP, err := upstream.New(NameInfo, cfg.InfoURL,
		upstream.WithHTTPClient(hc),
		upstream.WithTimeout(cfg.CatalogUpstreamTimeout),
		upstream.WithAttempts(cfg.CatalogDetailAttempts),
		upstream.WithBackoff(cfg.CatalogRetryBackoff),
		upstream.WithUserAgent(userAgent(NameCatalog)),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: info client: %w", err)
	}

	agg := catalog.New(
		upstream.NewRatingClient(ratingHTTP, version),
		upstream.NewInfoClient(infoHTTP),
		catalog.WithPolicy(policy),
		catalog.WithConcurrency(cfg.CatalogConcurrency),
		catalog.WithDescription(cfg.CatalogDescription),
	)
	logger.Get().Info(ctx, "catalog service wired",
		logger.String("aggregator", agg.String()),
		logger.String("rating_url", cfg.RatingURL),
		logger.String("info_url", cfg.InfoURL),
		logger.String("ratings_api", string(version)),
	)
	return newService(NameCatalog, cfg.CatalogAddr, api.CatalogRoutes(api.NewCatalogHandler(agg))), nil
}
