package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envPrefix is the prefix for all environment variable overrides.
const envPrefix = "POSTURECOACH"

// Duration wraps time.Duration so JSON configs can use strings like "10s".
type Duration time.Duration

// UnmarshalJSON accepts either a duration string or nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(time.Duration(v))
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}

// MarshalJSON renders the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Pipeline  PipelineConfig  `json:"pipeline"`
	Estimator EstimatorConfig `json:"estimator"`
	Auth      AuthConfig      `json:"auth"`
	Metrics   MetricsConfig   `json:"metrics"`
}

// ServerConfig defines the WebSocket/HTTP listener.
type ServerConfig struct {
	Port            int      `json:"port"`
	Path            string   `json:"path"` // WebSocket endpoint path
	AllowedOrigins  []string `json:"allowed_origins,omitempty"`
	ReadBufferSize  int      `json:"read_buffer_size,omitempty"`
	WriteBufferSize int      `json:"write_buffer_size,omitempty"`

	// Connection-accept rate limiting across all clients.
	AcceptRate  float64 `json:"accept_rate,omitempty"`
	AcceptBurst int     `json:"accept_burst,omitempty"`
}

// PipelineConfig defines the frame-processing knobs shared by all session
// loops. TargetFPS bounds pose-estimation cost per session; frames arriving
// faster are answered from the session's cached result.
type PipelineConfig struct {
	TargetFPS       float64 `json:"target_fps"`
	MaxFrameWidth   int     `json:"max_frame_width"` // 0 disables downscaling
	SkeletonDefault bool    `json:"skeleton_default"`
	VerboseDefault  bool    `json:"verbose_default"`
}

// EstimatorConfig points at the pose-estimation sidecar.
type EstimatorConfig struct {
	URL     string   `json:"url"`
	Timeout Duration `json:"timeout,omitempty"`
}

// AuthConfig defines the identity subsystem.
type AuthConfig struct {
	Enabled   bool     `json:"enabled"`
	DBPath    string   `json:"db_path,omitempty"`
	SecretEnv string   `json:"secret_env,omitempty"` // env var holding the JWT signing secret
	TokenTTL  Duration `json:"token_ttl,omitempty"`
}

// MetricsConfig defines the Prometheus metrics listener.
type MetricsConfig struct {
	Port int    `json:"port"`
	Path string `json:"path,omitempty"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Path:            "/ws/posture",
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			AcceptRate:      20,
			AcceptBurst:     10,
		},
		Pipeline: PipelineConfig{
			TargetFPS:       5,
			MaxFrameWidth:   640,
			SkeletonDefault: true,
			VerboseDefault:  false,
		},
		Estimator: EstimatorConfig{
			URL:     "http://localhost:9100/pose",
			Timeout: Duration(10 * time.Second),
		},
		Auth: AuthConfig{
			Enabled:   false,
			DBPath:    "posturecoach.db",
			SecretEnv: envPrefix + "_JWT_SECRET",
			TokenTTL:  Duration(60 * time.Minute),
		},
		Metrics: MetricsConfig{
			Port: 9090,
			Path: "/metrics",
		},
	}
}

// Load builds the configuration from defaults, the optional JSON file at
// path, and environment overrides. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies POSTURECOACH_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(envPrefix + "_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
	if val := os.Getenv(envPrefix + "_WS_PATH"); val != "" {
		cfg.Server.Path = val
	}
	if val := os.Getenv(envPrefix + "_ALLOWED_ORIGINS"); val != "" {
		cfg.Server.AllowedOrigins = strings.Split(val, ",")
	}
	if val := os.Getenv(envPrefix + "_TARGET_FPS"); val != "" {
		if fps, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Pipeline.TargetFPS = fps
		}
	}
	if val := os.Getenv(envPrefix + "_MAX_FRAME_WIDTH"); val != "" {
		if width, err := strconv.Atoi(val); err == nil {
			cfg.Pipeline.MaxFrameWidth = width
		}
	}
	if val := os.Getenv(envPrefix + "_ESTIMATOR_URL"); val != "" {
		cfg.Estimator.URL = val
	}
	if val := os.Getenv(envPrefix + "_AUTH_DB"); val != "" {
		cfg.Auth.DBPath = val
	}
	if val := os.Getenv(envPrefix + "_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Metrics.Port = port
		}
	}
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path %q must start with /", c.Server.Path)
	}
	if c.Server.AcceptRate < 0 {
		return errors.New("server.accept_rate cannot be negative")
	}

	if c.Pipeline.TargetFPS <= 0 {
		return fmt.Errorf("pipeline.target_fps must be positive, got %v", c.Pipeline.TargetFPS)
	}
	if c.Pipeline.MaxFrameWidth < 0 {
		return fmt.Errorf("pipeline.max_frame_width cannot be negative, got %d", c.Pipeline.MaxFrameWidth)
	}

	if c.Estimator.URL == "" {
		return errors.New("estimator.url is required")
	}
	if c.Estimator.Timeout < 0 {
		return errors.New("estimator.timeout cannot be negative")
	}

	if c.Auth.Enabled {
		if c.Auth.DBPath == "" {
			return errors.New("auth.db_path is required when auth is enabled")
		}
		if c.Auth.SecretEnv == "" {
			return errors.New("auth.secret_env is required when auth is enabled")
		}
		if c.Auth.TokenTTL <= 0 {
			return errors.New("auth.token_ttl must be positive when auth is enabled")
		}
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port %d out of range", c.Metrics.Port)
	}

	return nil
}

// String returns a JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
