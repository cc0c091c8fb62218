package catalogcheck_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/marquee/internal/catalogcheck"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// ratingServer serves the v2 envelope with the same three ratings for
// every user.
func ratingServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			_, _ = fmt.Fprint(w, `{"status":"ok","service":"rating"}`)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/v2/ratings/users/")
		_, _ = fmt.Fprintf(w, `{"userId":%s,"ratings":[{"movieId":1,"ratingValue":4.5},{"movieId":2,"ratingValue":3.8}]}`, id)
	}))
}

func catalogServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			_, _ = fmt.Fprint(w, `{"status":"ok","service":"catalog"}`)
			return
		}
		_, _ = fmt.Fprint(w, body)
	}))
}

func TestRun(t *testing.T) {
	Convey("Given a rating service", t, func() {
		rating := ratingServer()
		defer rating.Close()

		cfg := &catalogcheck.Config{
			RatingURL: rating.URL,
			FirstUser: 1,
			Users:     10,
			Workers:   3,
			Timeout:   time.Second,
		}

		Convey("When the catalog agrees with the ratings", func() {
			cat := catalogServer(`[{"name":"A","description":"Description","score":4.5},{"name":"B","description":"Description","score":3.8}]`)
			defer cat.Close()
			cfg.CatalogURL = cat.URL

			stats, err := catalogcheck.Run(context.Background(), cfg)

			Convey("Then every user passes", func() {
				So(err, ShouldBeNil)
				So(stats.Checked, ShouldEqual, 10)
				So(stats.Passed, ShouldEqual, 10)
			})
		})

		Convey("When the catalog reorders entries", func() {
			cat := catalogServer(`[{"name":"B","description":"Description","score":3.8},{"name":"A","description":"Description","score":4.5}]`)
			defer cat.Close()
			cfg.CatalogURL = cat.URL

			stats, err := catalogcheck.Run(context.Background(), cfg)

			Convey("Then every user is a mismatch", func() {
				So(errors.Is(err, catalogcheck.ErrMismatch), ShouldBeTrue)
				So(stats.Mismatched, ShouldEqual, 10)
			})
		})

		Convey("When the catalog is down", func() {
			cat := catalogServer(`[]`)
			cfg.CatalogURL = cat.URL
			cat.Close()

			_, err := catalogcheck.Run(context.Background(), cfg)

			So(errors.Is(err, catalogcheck.ErrUnhealthy), ShouldBeTrue)
		})
	})
}

func TestVerify(t *testing.T) {
	ratings := []model.Rating{{MovieID: 1, RatingValue: 4.5}, {MovieID: 2, RatingValue: 3.8}}

	ok := []model.CatalogEntry{{Name: "A", Score: 4.5}, {Name: "B", Score: 3.8}}
	if err := catalogcheck.Verify(ratings, ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	marked := []model.CatalogEntry{{Name: "A", Score: 4.5}, {Score: 3.8, Error: &model.EntryError{Kind: "timeout", MovieID: 2}}}
	if err := catalogcheck.Verify(ratings, marked); err != nil {
		t.Fatalf("marked entries must pass: %v", err)
	}

	for name, entries := range map[string][]model.CatalogEntry{
		"short":    ok[:1],
		"unnamed":  {{Score: 4.5}, {Name: "B", Score: 3.8}},
		"reversed": {ok[1], ok[0]},
		"marked with wrong score": {ok[0], {Score: 1.0, Error: &model.EntryError{Kind: "timeout", MovieID: 2}}},
	} {
		if err := catalogcheck.Verify(ratings, entries); !errors.Is(err, catalogcheck.ErrMismatch) {
			t.Errorf("%s: expected ErrMismatch, got %v", name, err)
		}
	}
}
