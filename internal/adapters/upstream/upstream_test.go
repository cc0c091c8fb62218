package upstream_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/marquee/internal/adapters/upstream"
	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newClient(t *testing.T, target, base string, opts ...upstream.Option) *upstream.Client {
	t.Helper()
	c, err := upstream.New(target, base, opts...)
	if err != nil {
		t.Fatalf("upstream.New: %v", err)
	}
	return c
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"", "localhost:8082", "://nope"} {
		if _, err := upstream.New("info", base); !errors.Is(err, upstream.ErrInvalidBaseURL) {
			t.Errorf("base %q: expected ErrInvalidBaseURL, got %v", base, err)
		}
	}
}

func TestRatingClient(t *testing.T) {
	Convey("Given a rating service", t, func() {
		var gotPath, gotRequestID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotRequestID = r.Header.Get(upstream.RequestIDHeader)
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/v1/ratings/users/99":
				_, _ = w.Write([]byte(`[{"movieId":123,"ratingValue":4.5},{"movieId":"456","ratingValue":3.8}]`))
			case "/v2/ratings/users/99":
				_, _ = w.Write([]byte(`{"userId":99,"ratings":[{"movieId":123,"ratingValue":4.5}]}`))
			case "/v2/ratings/users/5":
				_, _ = w.Write([]byte(`{"userId":6,"ratings":[]}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()
		ctx := logger.WithRequestID(context.Background(), "req-1")

		Convey("When requesting the v1 bare list", func() {
			rc := upstream.NewRatingClient(newClient(t, "rating", srv.URL), upstream.V1)
			ratings, err := rc.UserRatings(ctx, 99)

			Convey("Then ratings decode in order and the request id is forwarded", func() {
				So(err, ShouldBeNil)
				So(gotPath, ShouldEqual, "/v1/ratings/users/99")
				So(gotRequestID, ShouldEqual, "req-1")
				So(ratings, ShouldResemble, []model.Rating{{MovieID: 123, RatingValue: 4.5}, {MovieID: 456, RatingValue: 3.8}})
			})
		})

		Convey("When requesting the v2 envelope", func() {
			rc := upstream.NewRatingClient(newClient(t, "rating", srv.URL), upstream.V2)
			ratings, err := rc.UserRatings(ctx, 99)

			Convey("Then the envelope is unwrapped", func() {
				So(err, ShouldBeNil)
				So(ratings, ShouldResemble, []model.Rating{{MovieID: 123, RatingValue: 4.5}})
			})
		})

		Convey("When the envelope names another user", func() {
			rc := upstream.NewRatingClient(newClient(t, "rating", srv.URL), upstream.V2)
			_, err := rc.UserRatings(ctx, 5)

			Convey("Then it is a bad response", func() {
				So(errors.Is(err, fault.ErrUpstreamBadResponse), ShouldBeTrue)
			})
		})

		Convey("When the user is unknown", func() {
			rc := upstream.NewRatingClient(newClient(t, "rating", srv.URL), upstream.V2)
			_, err := rc.UserRatings(ctx, 1)

			Convey("Then it is a not-found fault naming the user", func() {
				So(errors.Is(err, fault.ErrNotFound), ShouldBeTrue)
				var fe *fault.Error
				So(errors.As(err, &fe), ShouldBeTrue)
				So(fe.Resource, ShouldEqual, fault.ResourceUser)
				So(fe.ID, ShouldEqual, "1")
			})
		})
	})
}

func TestParseAPIVersion(t *testing.T) {
	if v, err := upstream.ParseAPIVersion("v1"); err != nil || v != upstream.V1 {
		t.Errorf("expected v1, got %q, %v", v, err)
	}
	if _, err := upstream.ParseAPIVersion("v3"); !errors.Is(err, upstream.ErrInvalidVersion) {
		t.Errorf("expected ErrInvalidVersion, got %v", err)
	}
}

func TestInfoClient_Failures(t *testing.T) {
	Convey("Given an info service with scripted responses", t, func() {
		var hits atomic.Int32

		Convey("When it answers 500 once and then succeeds", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if hits.Add(1) == 1 {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				_, _ = w.Write([]byte(`{"id":"123","name":"Inception"}`))
			}))
			defer srv.Close()

			ic := upstream.NewInfoClient(newClient(t, "info", srv.URL,
				upstream.WithAttempts(2), upstream.WithBackoff(time.Millisecond)))
			d, err := ic.Detail(context.Background(), 123)

			Convey("Then the retry succeeds", func() {
				So(err, ShouldBeNil)
				So(d, ShouldResemble, model.ItemDetail{ID: 123, Name: "Inception"})
				So(hits.Load(), ShouldEqual, 2)
			})
		})

		Convey("When it answers 400", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusBadRequest)
			}))
			defer srv.Close()

			ic := upstream.NewInfoClient(newClient(t, "info", srv.URL,
				upstream.WithAttempts(3), upstream.WithBackoff(time.Millisecond)))
			_, err := ic.Detail(context.Background(), 123)

			Convey("Then it is a bad response and is not retried", func() {
				So(errors.Is(err, fault.ErrUpstreamBadResponse), ShouldBeTrue)
				var fe *fault.Error
				So(errors.As(err, &fe), ShouldBeTrue)
				So(fe.Status, ShouldEqual, http.StatusBadRequest)
				So(hits.Load(), ShouldEqual, 1)
			})
		})

		Convey("When it answers 404", func() {
			srv := httptest.NewServer(http.NotFoundHandler())
			defer srv.Close()

			_, err := upstream.NewInfoClient(newClient(t, "info", srv.URL)).Detail(context.Background(), 42)

			Convey("Then it is not found", func() {
				So(errors.Is(err, fault.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the body is not JSON", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			}))
			defer srv.Close()

			_, err := upstream.NewInfoClient(newClient(t, "info", srv.URL)).Detail(context.Background(), 42)

			Convey("Then it is a bad response", func() {
				So(errors.Is(err, fault.ErrUpstreamBadResponse), ShouldBeTrue)
			})
		})

		Convey("When the detail has no name", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"id":42}`))
			}))
			defer srv.Close()

			_, err := upstream.NewInfoClient(newClient(t, "info", srv.URL)).Detail(context.Background(), 42)

			Convey("Then it is a bad response", func() {
				So(errors.Is(err, fault.ErrUpstreamBadResponse), ShouldBeTrue)
			})
		})

		Convey("When the service is unreachable", func() {
			srv := httptest.NewServer(http.NotFoundHandler())
			base := srv.URL
			srv.Close()

			_, err := upstream.NewInfoClient(newClient(t, "info", base)).Detail(context.Background(), 123)

			Convey("Then it is upstream unavailable, not a crash", func() {
				So(errors.Is(err, fault.ErrUpstreamUnavailable), ShouldBeTrue)
			})
		})

		Convey("When the service is slower than the per-call timeout", func() {
			release := make(chan struct{})
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			defer srv.Close()
			defer close(release)

			_, err := upstream.NewInfoClient(newClient(t, "info", srv.URL,
				upstream.WithTimeout(20*time.Millisecond))).Detail(context.Background(), 123)

			Convey("Then it is a timeout", func() {
				So(errors.Is(err, fault.ErrTimeout), ShouldBeTrue)
			})
		})
	})
}

func TestClient_RateLimit(t *testing.T) {
	Convey("Given a client throttled by a token bucket", t, func() {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte(`{"id":123,"name":"Inception"}`))
		}))
		defer srv.Close()

		Convey("When two calls fit the budget only after a refill", func() {
			ic := upstream.NewInfoClient(newClient(t, "info", srv.URL, upstream.WithRateLimit(20, 1)))

			start := time.Now()
			_, err1 := ic.Detail(context.Background(), 123)
			_, err2 := ic.Detail(context.Background(), 123)
			elapsed := time.Since(start)

			Convey("Then both succeed and the second waits for a token", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(hits.Load(), ShouldEqual, 2)
				So(elapsed >= 40*time.Millisecond, ShouldBeTrue)
			})
		})

		Convey("When the next token arrives after the caller's deadline", func() {
			ic := upstream.NewInfoClient(newClient(t, "info", srv.URL, upstream.WithRateLimit(1, 1)))

			_, err := ic.Detail(context.Background(), 123)
			So(err, ShouldBeNil)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err = ic.Detail(ctx, 123)

			Convey("Then the call fails as a timeout without reaching the server", func() {
				So(errors.Is(err, fault.ErrTimeout), ShouldBeTrue)
				var fe *fault.Error
				So(errors.As(err, &fe), ShouldBeTrue)
				So(fe.Resource, ShouldEqual, fault.ResourceMovie)
				So(fe.ID, ShouldEqual, "123")
				So(hits.Load(), ShouldEqual, 1)
			})
		})
	})
}

func TestClient_UserAgent(t *testing.T) {
	var agent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.UserAgent())
		_, _ = w.Write([]byte(`{"id":1,"name":"Memento"}`))
	}))
	defer srv.Close()

	if _, err := upstream.NewInfoClient(newClient(t, "info", srv.URL)).Detail(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if got := agent.Load(); got != "marquee/info" {
		t.Errorf("default user agent = %q", got)
	}

	if _, err := upstream.NewInfoClient(newClient(t, "info", srv.URL, upstream.WithUserAgent("marquee-catalog"))).Detail(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if got := agent.Load(); got != "marquee-catalog" {
		t.Errorf("user agent = %q, want marquee-catalog", got)
	}
}

func TestTMDBClient(t *testing.T) {
	Convey("Given a movie database API", t, func() {
		var gotKey string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.URL.Query().Get("api_key")
			switch r.URL.Path {
			case "/3/movie/27205":
				_, _ = fmt.Fprint(w, `{"id":27205,"title":"Inception","overview":"A thief who steals secrets.","runtime":148}`)
			case "/3/movie/1":
				_, _ = fmt.Fprint(w, `{"id":1,"overview":"untitled"}`)
			case "/3/movie/2":
				_, _ = fmt.Fprint(w, `{"id":2,"title":`)
			default:
				w.WriteHeader(http.StatusUnauthorized)
			}
		}))
		defer srv.Close()

		tc, err := upstream.NewTMDBClient(newClient(t, "tmdb", srv.URL, upstream.WithRateLimit(1000, 10)), "secret-key")
		So(err, ShouldBeNil)

		Convey("When fetching a known movie", func() {
			d, err := tc.Detail(context.Background(), 27205)

			Convey("Then title and overview are mapped and the key is sent", func() {
				So(err, ShouldBeNil)
				So(gotKey, ShouldEqual, "secret-key")
				So(d, ShouldResemble, model.ItemDetail{ID: 27205, Name: "Inception", Description: "A thief who steals secrets."})
			})
		})

		Convey("When the movie has no title or the body is truncated", func() {
			_, err1 := tc.Detail(context.Background(), 1)
			_, err2 := tc.Detail(context.Background(), 2)

			Convey("Then both are bad responses", func() {
				So(errors.Is(err1, fault.ErrUpstreamBadResponse), ShouldBeTrue)
				So(errors.Is(err2, fault.ErrUpstreamBadResponse), ShouldBeTrue)
			})
		})

		Convey("When the API rejects the credential", func() {
			_, err := tc.Detail(context.Background(), 3)

			Convey("Then it is a bad response that does not leak the key", func() {
				So(errors.Is(err, fault.ErrUpstreamBadResponse), ShouldBeTrue)
				So(strings.Contains(err.Error(), "secret-key"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unreachable movie database", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		tc, err := upstream.NewTMDBClient(newClient(t, "tmdb", base), "secret-key")
		So(err, ShouldBeNil)
		_, err = tc.Detail(context.Background(), 123)

		So(errors.Is(err, fault.ErrUpstreamUnavailable), ShouldBeTrue)
		So(strings.Contains(err.Error(), "secret-key"), ShouldBeFalse)
	})

	Convey("Given no API key", t, func() {
		_, err := upstream.NewTMDBClient(newClient(t, "tmdb", upstream.DefaultTMDBBaseURL), "")
		So(errors.Is(err, upstream.ErrMissingAPIKey), ShouldBeTrue)
	})
}
