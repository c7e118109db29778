package site

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a registered site", t, func() {
		mux := http.NewServeMux()
		Register(mux)

		serve := func(method, target string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, target, http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("Then / serves the calculator page", func() {
			w := serve(http.MethodGet, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, `id="score-form"`)
			So(w.Body.String(), ShouldContainSubstring, "Calculate Score")
		})

		Convey("And the script and stylesheet are served", func() {
			w := serve(http.MethodGet, "/app.js")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "/api/v1/calculations")

			w = serve(http.MethodGet, "/style.css")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/css")
		})

		Convey("And unknown assets are not found", func() {
			So(serve(http.MethodGet, "/some-asset").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And writes are refused", func() {
			w := serve(http.MethodPost, "/")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, "GET, HEAD")
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		Convey("Then registering panics", func() {
			So(func() { Register(nil) }, ShouldPanic)
		})
	})
}
