package swagger_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/marquee/internal/adapters/http/api"
	"github.com/okian/marquee/internal/adapters/http/swagger"
	"github.com/okian/marquee/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerRoutes(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}
	convey.Convey("Given the documentation routes", t, func() {
		mux := http.NewServeMux()
		api.Register(context.Background(), mux, swagger.Routes())

		convey.Convey("Then it should serve /openapi.yaml", func() {
			req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/catalog/{userId}")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/v2/ratings/users/{userId}")
		})

		convey.Convey("And it should serve /api-docs", func() {
			req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, swagger.RedocScriptURL)
		})
	})
}
