package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/lnkd/lnkd/internal/config"
	"github.com/lnkd/lnkd/internal/domain/score"
)

func execute(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	convey.Convey("Given the score command", t, func() {
		convey.Convey("When printing text", func() {
			out, err := execute("score", "--queens", "2", "--tango", "3", "--zip", "1.5", "--backtracks", "2", "-o", "text")

			convey.Convey("Then the breakdown line is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldEqual, "(2 × 1.5) + 3 + 1.5 + (2 × 3) = 13.5\n")
			})
		})

		convey.Convey("When printing JSON", func() {
			out, err := execute("score", "--queens", "10", "-o", "json")

			convey.Convey("Then the full result is encoded", func() {
				convey.So(err, convey.ShouldBeNil)
				var res score.Result
				convey.So(json.Unmarshal([]byte(out), &res), convey.ShouldBeNil)
				convey.So(res.Total, convey.ShouldEqual, 15.0)
				convey.So(res.Display, convey.ShouldEqual, "15.0")
				convey.So(len(res.Values.Fallbacks), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When printing the default table", func() {
			out, err := execute("score", "--queens", "2", "--tango", "abc", "--backtracks", "1")

			convey.Convey("Then each game has a row and fallbacks are noted", func() {
				convey.So(err, convey.ShouldBeNil)
				upper := strings.ToUpper(out)
				convey.So(upper, convey.ShouldContainSubstring, "GAME")
				convey.So(out, convey.ShouldContainSubstring, "Queens")
				convey.So(out, convey.ShouldContainSubstring, "(2 × 1.5)")
				convey.So(out, convey.ShouldContainSubstring, "(1 × 3)")
				convey.So(out, convey.ShouldContainSubstring, "6.0")
				convey.So(out, convey.ShouldContainSubstring, "note: tango_time was malformed, counted as 0")
				convey.So(out, convey.ShouldContainSubstring, "note: zip_time was empty, counted as 0")
			})
		})

		convey.Convey("When the output format is unknown", func() {
			_, err := execute("score", "-o", "xml")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "unknown output format")
		})

		convey.Convey("When given positional arguments", func() {
			_, err := execute("score", "12")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestVersionCommand(t *testing.T) {
	convey.Convey("Given the version command", t, func() {
		out, err := execute("version")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldEqual, "lnkd "+version+"\n")
	})
}

func TestRunServe(t *testing.T) {
	convey.Convey("Given a served configuration on a free port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.DisplayDelayMS = 0
		cfg.WorkerCount = 2

		ctx, cancel := context.WithCancel(context.Background())
		ready := make(chan string, 1)
		done := make(chan error, 1)
		go func() { done <- runServe(ctx, cfg, ready) }()

		var addr string
		select {
		case addr = <-ready:
		case <-time.After(5 * time.Second):
			cancel()
			convey.So("server did not start", convey.ShouldBeEmpty)
		}
		base := "http://" + addr

		get := func(path string) (int, string) {
			resp, err := http.Get(base + path)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()
			body, _ := io.ReadAll(resp.Body)
			return resp.StatusCode, string(body)
		}

		code, body := get("/healthz")
		convey.So(code, convey.ShouldEqual, http.StatusOK)
		convey.So(body, convey.ShouldContainSubstring, `"ok"`)

		code, body = get("/api/v1/score?queens=2&tango=3&zip=1.5&backtracks=2")
		convey.So(code, convey.ShouldEqual, http.StatusOK)
		convey.So(body, convey.ShouldContainSubstring, `"display":"13.5"`)

		code, body = get("/")
		convey.So(code, convey.ShouldEqual, http.StatusOK)
		convey.So(body, convey.ShouldContainSubstring, "score-form")

		code, _ = get("/openapi.yaml")
		convey.So(code, convey.ShouldEqual, http.StatusOK)

		code, body = get("/metrics")
		convey.So(code, convey.ShouldEqual, http.StatusOK)
		convey.So(body, convey.ShouldContainSubstring, "lnkd_calculator_worker_count")

		cancel()
		select {
		case err := <-done:
			convey.So(err, convey.ShouldBeNil)
		case <-time.After(5 * time.Second):
			convey.So("server did not stop", convey.ShouldBeEmpty)
		}
	})
}
