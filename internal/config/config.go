// Package config loads server settings from defaults, an optional dotenv
// file and the process environment, in increasing order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
)

// Environment keys
const (
	KeyEndpoint           = "STASH_ENDPOINT"
	KeyAPIKey             = "STASH_API_KEY"
	KeyConnectRetries     = "STASH_CONNECT_RETRIES"
	KeyConnectDelay       = "STASH_CONNECT_DELAY_SECONDS"
	KeyTimeout            = "STASH_TIMEOUT"
	KeyMaxConcurrent      = "STASH_MAX_CONCURRENT_REQUESTS"
	KeyRateLimit          = "STASH_RATE_LIMIT"
	KeyFavorites          = "FAVORITES"
	KeyPerformerCache     = "STASH_PERFORMER_CACHE_SIZE"
	KeyPerformersCache    = "STASH_PERFORMERS_LIST_CACHE_SIZE"
	KeyScenesCache        = "STASH_SCENES_CACHE_SIZE"
	KeyMaxBatchPerformers = "STASH_MAX_BATCH_PERFORMERS"
	KeyRatingExcellent    = "STASH_RATING_EXCELLENT"
	KeyRatingGood         = "STASH_RATING_GOOD"
	KeyRatingAverage      = "STASH_RATING_AVERAGE"
	KeyTransport          = "MCP_TRANSPORT"
	KeyHTTPAddr           = "MCP_HTTP_ADDR"
	KeyHTTPRateLimit      = "MCP_HTTP_RATE_LIMIT"
	KeyHTTPRateBurst      = "MCP_HTTP_RATE_BURST"
	KeyLogLevel           = "LOG_LEVEL"
	KeyOTelEnabled        = "OTEL_ENABLED"
	KeyOTLPEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	KeyOTelEnvironment    = "OTEL_ENVIRONMENT"
	KeyOTelSampleRate     = "OTEL_TRACES_SAMPLER_ARG"
)

const (
	DefaultEndpoint = "http://localhost:9999"
	DefaultEnvFile  = ".env"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

var defaults = map[string]any{
	KeyEndpoint:           DefaultEndpoint,
	KeyAPIKey:             "",
	KeyConnectRetries:     3,
	KeyConnectDelay:       1.5,
	KeyTimeout:            "30s",
	KeyMaxConcurrent:      5,
	KeyRateLimit:          0.0,
	KeyFavorites:          true,
	KeyPerformerCache:     256,
	KeyPerformersCache:    64,
	KeyScenesCache:        64,
	KeyMaxBatchPerformers: 10,
	KeyRatingExcellent:    90,
	KeyRatingGood:         70,
	KeyRatingAverage:      50,
	KeyTransport:          TransportStdio,
	KeyHTTPAddr:           ":9001",
	KeyHTTPRateLimit:      10.0,
	KeyHTTPRateBurst:      20,
	KeyLogLevel:           "info",
	KeyOTelEnabled:        false,
	KeyOTLPEndpoint:       "",
	KeyOTelEnvironment:    "development",
	KeyOTelSampleRate:     1.0,
}

// Ratings are the rating100 tier thresholds
type Ratings struct {
	Excellent int
	Good      int
	Average   int
}

// Tracing configures span export
type Tracing struct {
	Enabled      bool // OTEL_ENABLED, or implied by an OTLP endpoint
	OTLPEndpoint string
	Environment  string
	SampleRate   float64
}

// Config holds every server setting
type Config struct {
	Endpoint       string
	APIKey         string
	ConnectRetries int
	ConnectDelay   time.Duration
	Timeout        time.Duration
	MaxConcurrent  int
	RateLimit      float64 // outbound requests per second, 0 = unlimited

	FavoritesOnly bool

	PerformerCacheSize  int
	PerformersCacheSize int
	ScenesCacheSize     int
	MaxBatchPerformers  int

	Ratings Ratings

	Transport     string
	HTTPAddr      string
	HTTPRateLimit float64 // per client requests per second
	HTTPRateBurst int

	LogLevel string

	Tracing Tracing
}

// Load reads configuration. A missing envFile is ignored; an empty envFile
// skips the file entirely.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}

	cfg := &Config{
		Endpoint:            strings.TrimSpace(v.GetString(KeyEndpoint)),
		APIKey:              strings.TrimSpace(v.GetString(KeyAPIKey)),
		ConnectRetries:      intValue(v, KeyConnectRetries),
		ConnectDelay:        secondsValue(v, KeyConnectDelay),
		Timeout:             durationValue(v, KeyTimeout),
		MaxConcurrent:       intValue(v, KeyMaxConcurrent),
		RateLimit:           floatValue(v, KeyRateLimit),
		FavoritesOnly:       boolValue(v, KeyFavorites),
		PerformerCacheSize:  intValue(v, KeyPerformerCache),
		PerformersCacheSize: intValue(v, KeyPerformersCache),
		ScenesCacheSize:     intValue(v, KeyScenesCache),
		MaxBatchPerformers:  intValue(v, KeyMaxBatchPerformers),
		Ratings: Ratings{
			Excellent: intValue(v, KeyRatingExcellent),
			Good:      intValue(v, KeyRatingGood),
			Average:   intValue(v, KeyRatingAverage),
		},
		Transport:     strings.ToLower(strings.TrimSpace(v.GetString(KeyTransport))),
		HTTPAddr:      strings.TrimSpace(v.GetString(KeyHTTPAddr)),
		HTTPRateLimit: floatValue(v, KeyHTTPRateLimit),
		HTTPRateBurst: intValue(v, KeyHTTPRateBurst),
		LogLevel:      strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		Tracing: Tracing{
			OTLPEndpoint: strings.TrimSpace(v.GetString(KeyOTLPEndpoint)),
			Environment:  strings.TrimSpace(v.GetString(KeyOTelEnvironment)),
			SampleRate:   floatValue(v, KeyOTelSampleRate),
		},
	}
	cfg.Tracing.Enabled = boolValue(v, KeyOTelEnabled) || cfg.Tracing.OTLPEndpoint != ""
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.ConnectRetries < 1 {
		cfg.ConnectRetries = 1
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no sensible fallback
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return apierrors.NewValidationError(KeyAPIKey, "",
			"STASH_API_KEY is not set. Add it to the environment or the .env file")
	}
	r := c.Ratings
	if !(0 <= r.Average && r.Average < r.Good && r.Good < r.Excellent && r.Excellent <= 100) {
		return apierrors.NewValidationError("ratings",
			fmt.Sprintf("%d/%d/%d", r.Average, r.Good, r.Excellent),
			"rating thresholds must satisfy 0 <= average < good < excellent <= 100")
	}
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return apierrors.NewValidationError(KeyTransport, c.Transport, "transport must be stdio or http")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	return ParseLogLevel(c.LogLevel)
}

// ParseLogLevel maps debug, info, warn and error to slog levels
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Invalid values fall back to the default rather than failing startup.

func intValue(v *viper.Viper, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return defaults[key].(int)
	}
	return n
}

func floatValue(v *viper.Viper, key string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil || f < 0 {
		return defaults[key].(float64)
	}
	return f
}

// boolValue treats anything that is not a true value as false
func boolValue(v *viper.Viper, key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	return err == nil && b
}

func secondsValue(v *viper.Viper, key string) time.Duration {
	return time.Duration(floatValue(v, key) * float64(time.Second))
}

// durationValue accepts Go durations ("30s") or plain seconds ("30")
func durationValue(v *viper.Viper, key string) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
		return time.Duration(f * float64(time.Second))
	}
	d, _ := time.ParseDuration(defaults[key].(string))
	return d
}
