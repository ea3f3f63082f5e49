package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/legend/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ExplicitListThreshold, convey.ShouldEqual, 5)
			convey.So(cfg.SessionStore, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, time.Hour)
			convey.So(cfg.RosterCacheTTL(), convey.ShouldEqual, time.Hour)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.AllowedOrigins(), convey.ShouldBeEmpty)
			convey.So(cfg.RateLimitWindow(), convey.ShouldEqual, time.Minute)
		})

		convey.Convey("Then origins are split and trimmed", func() {
			cfg.CORSOrigins = " https://a.example , ,https://b.example"
			convey.So(cfg.AllowedOrigins(), convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
		})

		convey.Convey("Then a rate limit without a window is invalid", func() {
			cfg.RateLimitWindowS = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			cfg.RateLimitRequests = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.OutcomeWorkers, convey.ShouldEqual, 4)
				convey.So(cfg.RosterSource, convey.ShouldEqual, "data/players.json")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LEGEND_ADDR", ":8080")
			_ = os.Setenv("LEGEND_EXPLICIT_LIST_THRESHOLD", "3")
			_ = os.Setenv("LEGEND_SESSION_STORE", "Redis")
			_ = os.Setenv("LEGEND_REDIS_DB", "2")
			_ = os.Setenv("LEGEND_SESSION_TTL_S", "60")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ExplicitListThreshold, convey.ShouldEqual, 3)
				convey.So(cfg.SessionStore, convey.ShouldEqual, config.StoreRedis)
				convey.So(cfg.RedisDB, convey.ShouldEqual, 2)
				convey.So(cfg.SessionTTL(), convey.ShouldEqual, time.Minute)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
roster_source: "https://example.com/players.json"
outcome_workers: 8
max_top_limit: 25
log_format: json
`)
			_ = os.Setenv("LEGEND_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.RosterSource, convey.ShouldEqual, "https://example.com/players.json")
				convey.So(cfg.OutcomeWorkers, convey.ShouldEqual, 8)
				convey.So(cfg.MaxTopLimit, convey.ShouldEqual, 25)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})

			convey.Convey("And env vars take precedence over the file", func() {
				_ = os.Setenv("LEGEND_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.OutcomeWorkers, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("LEGEND_CONFIG", "/non/existent/file.yaml")
			_, err := config.Load(ctx)

			convey.Convey("Then it should fail to load", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a number does not parse", func() {
			_ = os.Setenv("LEGEND_OUTCOME_WORKERS", "many")
			_, err := config.Load(ctx)

			convey.Convey("Then it should fail to load", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = "" },
			"empty roster":       func(c *config.Config) { c.RosterSource = " " },
			"zero threshold":     func(c *config.Config) { c.ExplicitListThreshold = 0 },
			"unknown store":      func(c *config.Config) { c.SessionStore = "etcd" },
			"redis without addr": func(c *config.Config) { c.SessionStore = config.StoreRedis; c.RedisAddr = "" },
			"negative ttl":       func(c *config.Config) { c.SessionTTLSeconds = -1 },
			"no workers":         func(c *config.Config) { c.OutcomeWorkers = 0 },
			"zero top limit":     func(c *config.Config) { c.MaxTopLimit = 0 },
			"bad log format":     func(c *config.Config) { c.LogFormat = "xml" },
		}

		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				cfg := config.New()
				mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then an empty addr from env is rejected by Load", func() {
			clearConfigEnvVars()
			defer clearConfigEnvVars()
			_ = os.Setenv("LEGEND_ADDR", "")
			_, err := config.Load(context.Background())
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legend.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"LEGEND_CONFIG", "LEGEND_ADDR", "LEGEND_EXPLICIT_LIST_THRESHOLD", "LEGEND_SESSION_STORE",
		"LEGEND_REDIS_DB", "LEGEND_SESSION_TTL_S", "LEGEND_OUTCOME_WORKERS",
	} {
		_ = os.Unsetenv(key)
	}
}
