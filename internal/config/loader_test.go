package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/studybuddy/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DefaultLimit, convey.ShouldEqual, 3)
				convey.So(cfg.WeightDepartment, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("STUDYBUDDY_ADDR", ":8080")
			_ = os.Setenv("STUDYBUDDY_DEFAULT_LIMIT", "5")
			_ = os.Setenv("STUDYBUDDY_MAX_LIMIT", "20")
			_ = os.Setenv("STUDYBUDDY_WEIGHT_MENTOR", "2.5")
			_ = os.Setenv("STUDYBUDDY_EXCLUDE_REQUESTER", "false")
			_ = os.Setenv("STUDYBUDDY_STORE_METRICS", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DefaultLimit, convey.ShouldEqual, 5)
				convey.So(cfg.MaxLimit, convey.ShouldEqual, 20)
				convey.So(cfg.WeightMentor, convey.ShouldEqual, 2.5)
				convey.So(cfg.ExcludeRequester, convey.ShouldBeFalse)
				convey.So(cfg.StoreMetrics, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
store_driver: sqlite
sqlite_path: /tmp/buddies.db
default_limit: 4
weight_department: 5
weight_shared_interest: 0.5
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("STUDYBUDDY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/buddies.db")
				convey.So(cfg.DefaultLimit, convey.ShouldEqual, 4)
				convey.So(cfg.WeightDepartment, convey.ShouldEqual, 5)
				convey.So(cfg.WeightSharedInterest, convey.ShouldEqual, 0.5)
				convey.So(cfg.WeightYear, convey.ShouldEqual, 2)
				convey.So(cfg.MaxLimit, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
default_limit: 4
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("STUDYBUDDY_CONFIG", tmpFile)
			_ = os.Setenv("STUDYBUDDY_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DefaultLimit, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("STUDYBUDDY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("STUDYBUDDY_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("STUDYBUDDY_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("STUDYBUDDY_MAX_LIMIT", "lots")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a negative weight is configured", func() {
			_ = os.Setenv("STUDYBUDDY_WEIGHT_YEAR", "-2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"STUDYBUDDY_CONFIG",
		"STUDYBUDDY_ADDR",
		"STUDYBUDDY_DEFAULT_LIMIT",
		"STUDYBUDDY_MAX_LIMIT",
		"STUDYBUDDY_WEIGHT_MENTOR",
		"STUDYBUDDY_WEIGHT_YEAR",
		"STUDYBUDDY_EXCLUDE_REQUESTER",
		"STUDYBUDDY_STORE_METRICS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "studybuddy-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
