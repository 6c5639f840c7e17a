package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/unitgrid/internal/runner"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SuitePath string // hcl files
	RunName   string

	Strategy      runner.Kind
	WorkerCount   int
	ForkThreshold int

	LogFormat       string
	LogLevel        string
	OutputFormat    string
	HealthcheckPort int
	MetricsEnabled  bool

	ReportURL     string
	ReportTimeout time.Duration
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error
	if cfg.SuitePath == "" {
		errs = append(errs, errors.New("SuitePath is a required configuration field and cannot be empty"))
	}
	if cfg.WorkerCount < 0 {
		errs = append(errs, fmt.Errorf("WorkerCount must not be negative, got %d", cfg.WorkerCount))
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("HealthcheckPort %d is out of range", cfg.HealthcheckPort))
	}
	if cfg.MetricsEnabled && cfg.HealthcheckPort == 0 {
		errs = append(errs, errors.New("metrics are served on the health check server and need HealthcheckPort"))
	}
	switch cfg.OutputFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("OutputFormat must be 'text' or 'json', got %q", cfg.OutputFormat))
	}
	if cfg.ReportURL != "" {
		if u, err := url.Parse(cfg.ReportURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("ReportURL %q is not an absolute URL", cfg.ReportURL))
		}
	}
	if cfg.ReportTimeout < 0 {
		errs = append(errs, fmt.Errorf("ReportTimeout must not be negative, got %s", cfg.ReportTimeout))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "text"
	}
	return &cfg, nil
}
