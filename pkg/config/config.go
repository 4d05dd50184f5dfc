// Package config loads server and benchmark settings.
//
// Values are layered, lowest priority first: built-in defaults, an optional
// YAML file, then ROADGRAPH_* environment variables. The result is checked
// with struct-tag validation before it is returned.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environments.
const (
	Development = "development"
	Production  = "production"
)

// Config is the complete runtime configuration.
type Config struct {
	Environment string `yaml:"environment" validate:"oneof=development production"`
	Server      Server `yaml:"server"`
	Data        Data   `yaml:"data"`
	Bench       Bench  `yaml:"bench"`
}

// Server configures the HTTP adapter.
type Server struct {
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `yaml:"write_timeout" validate:"gt=0"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxConcurrent  int           `yaml:"max_concurrent" validate:"min=1"`
	CORSOrigins    []string      `yaml:"cors_origins" validate:"omitempty,dive,required"`
}

// Addr returns the listen address.
func (s Server) Addr() string { return fmt.Sprintf(":%d", s.Port) }

// Data says where the road graph comes from.
type Data struct {
	Dir              string `yaml:"dir" validate:"required"`
	Query            string `yaml:"query" validate:"required"`
	BBox             BBox   `yaml:"bbox"`
	LargestComponent bool   `yaml:"largest_component"`
}

// BBox is an optional bounding box; all zeros means unset.
type BBox struct {
	MinLat float64 `yaml:"min_lat" validate:"min=-90,max=90"`
	MaxLat float64 `yaml:"max_lat" validate:"min=-90,max=90,gtefield=MinLat"`
	MinLng float64 `yaml:"min_lng" validate:"min=-180,max=180"`
	MaxLng float64 `yaml:"max_lng" validate:"min=-180,max=180,gtefield=MinLng"`
}

// Bench configures the timing harness.
type Bench struct {
	Repetitions int `yaml:"repetitions" validate:"min=1"`
	Step        int `yaml:"step" validate:"min=1"`
	MaxSize     int `yaml:"max_size" validate:"min=2"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: Server{
			Port:           8080,
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   30 * time.Second,
			RequestTimeout: 5 * time.Second,
			MaxConcurrent:  runtime.NumCPU() * 2,
		},
		Data: Data{
			Dir:              "data",
			Query:            "San Juan de Lurigancho, Lima, Peru",
			LargestComponent: true,
		},
		Bench: Bench{
			Repetitions: 5,
			Step:        10,
			MaxSize:     100,
		},
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("ROADGRAPH_ENV"); ok {
		cfg.Environment = v
	}
	if v, ok := os.LookupEnv("ROADGRAPH_DATA_DIR"); ok {
		cfg.Data.Dir = v
	}
	if v, ok := os.LookupEnv("ROADGRAPH_QUERY"); ok {
		cfg.Data.Query = v
	}
	if v, ok := os.LookupEnv("ROADGRAPH_CORS_ORIGINS"); ok {
		cfg.Server.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Server.CORSOrigins = append(cfg.Server.CORSOrigins, o)
			}
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"ROADGRAPH_PORT", &cfg.Server.Port},
		{"ROADGRAPH_MAX_CONCURRENT", &cfg.Server.MaxConcurrent},
		{"ROADGRAPH_BENCH_REPETITIONS", &cfg.Bench.Repetitions},
	}
	for _, e := range ints {
		v, ok := os.LookupEnv(e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}

	if v, ok := os.LookupEnv("ROADGRAPH_LARGEST_COMPONENT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ROADGRAPH_LARGEST_COMPONENT: %w", err)
		}
		cfg.Data.LargestComponent = b
	}
	return nil
}
