package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/studybuddy/internal/config"
	"github.com/okian/studybuddy/internal/domain/matching"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
			convey.So(cfg.DefaultLimit, convey.ShouldEqual, 3)
			convey.So(cfg.MaxLimit, convey.ShouldEqual, 50)
			convey.So(cfg.BatchConcurrency, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.ExcludeRequester, convey.ShouldBeTrue)
			convey.So(cfg.StoreMetrics, convey.ShouldBeTrue)
			convey.So(cfg.Weights(), convey.ShouldResemble, matching.DefaultWeights())
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid values", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "" },
			"unknown driver":    func(c *config.Config) { c.StoreDriver = "mongo" },
			"empty sqlite path": func(c *config.Config) { c.StoreDriver = "sqlite"; c.SQLitePath = "" },
			"negative default":  func(c *config.Config) { c.DefaultLimit = -1 },
			"zero max":          func(c *config.Config) { c.MaxLimit = 0 },
			"default over max":  func(c *config.Config) { c.DefaultLimit = 10; c.MaxLimit = 5 },
			"zero concurrency":  func(c *config.Config) { c.BatchConcurrency = 0 },
			"negative weight":   func(c *config.Config) { c.WeightMentor = -1 },
			"oversized weight":  func(c *config.Config) { c.WeightSharedClass = 1.7e308 },
		}

		for _, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		}
	})
}
