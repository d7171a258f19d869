package config

import (
	"fmt"
	"strings"
)

// Defaults for the analysis surface. The percentile cutoff is set low on
// purpose so the curves focus on the interesting part of the distribution.
const (
	DefaultMaxPercentile = 97.5
	DefaultPlotPoints    = 500
	SignificantFigures   = 3
)

// Config holds one analysis run's settings.
type Config struct {
	InputFile     string        `mapstructure:"input"`
	Metric        string        `mapstructure:"metric"`
	MaxPercentile float64       `mapstructure:"threshold"`
	PlotPoints    int           `mapstructure:"plotsize"`
	Baseplot      bool          `mapstructure:"baseplot"`
	Percentiles   bool          `mapstructure:"percentiles"`
	Stability     bool          `mapstructure:"stability"`
	Inspect       bool          `mapstructure:"inspect"`
	PlotRoot      string        `mapstructure:"plot"`
	DumpRoot      string        `mapstructure:"dump"`
	ExportLog     string        `mapstructure:"export_log"`
	View          bool          `mapstructure:"view"`
	Force         bool          `mapstructure:"force"`
	Raw           bool          `mapstructure:"raw"`
	JSONOutput    bool          `mapstructure:"json_output"`
	ConfigFile    string        `mapstructure:"-"`
	Tracing       TracingConfig `mapstructure:"tracing"`
}

// TracingConfig controls OpenTelemetry span export for the pipeline phases.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Enabled reports whether span export was requested.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// WantsAnalysis reports whether at least one analysis task was requested.
func (c Config) WantsAnalysis() bool {
	return c.Baseplot || c.Percentiles || c.Stability
}

// WantsOutput reports whether at least one output mode was requested.
func (c Config) WantsOutput() bool {
	return c.PlotRoot != "" || c.DumpRoot != "" || c.ExportLog != "" || c.View || c.JSONOutput
}

// ValidationError aggregates every configuration issue found in one pass.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

// Issues returns the individual validation problems.
func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks the configuration for consistency, collecting every issue
// rather than stopping at the first.
func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.InputFile) == "" {
		issues = append(issues, "input log file is required (use --help for usage information)")
	}
	if c.MaxPercentile <= 0 || c.MaxPercentile > 100 {
		issues = append(issues, "threshold must be a percentile in (0, 100]")
	}
	if c.PlotPoints < 1 {
		issues = append(issues, "plotsize must be >= 1")
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	if t.SampleRate < 0 || t.SampleRate > 1.0 {
		issues = append(issues, fmt.Sprintf("tracing sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing protocol %q is not supported", t.Protocol))
	}
	return issues
}
