package logger

import (
	"bytes"
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the logger package", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf), WithFormat(FormatJSON)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Named("matcher").Info(ctx, "ranked", Int("candidates", 4), String("requester", "u1"), Bool("empty", false))

			Convey("Then the entry carries message, fields, name and source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, `"msg":"ranked"`)
				So(out, ShouldContainSubstring, `"candidates":4`)
				So(out, ShouldContainSubstring, `"logger":"matcher"`)
				So(out, ShouldContainSubstring, `logger_test.go`)
			})
		})

		Convey("When the level filters the entry", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown")

			Convey("Then only entries at or above the level are written", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "shown")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		for _, lvl := range []string{"debug", "INFO", "", "warn", "warning", "Error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}
