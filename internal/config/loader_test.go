package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		input interface{}
		want  string
	}{
		{"hello", "hello"},
		{123, "123"},
		{true, "true"},
		{nil, ""},
		{[]byte("bytes"), "bytes"},
	}

	for _, tt := range tests {
		got, err := asString(tt.input)
		if err != nil {
			t.Errorf("asString(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asString(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAsFloat64(t *testing.T) {
	tests := []struct {
		input interface{}
		want  float64
	}{
		{97.5, 97.5},
		{float32(2.5), 2.5},
		{50, 50.0},
		{"12.25", 12.25},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asFloat64(tt.input)
		if err != nil {
			t.Errorf("asFloat64(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asFloat64(%v) = %g, want %g", tt.input, got, tt.want)
		}
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		input interface{}
		want  bool
	}{
		{true, true},
		{"true", true},
		{"1", true},
		{false, false},
		{"false", false},
		{nil, false},
	}

	for _, tt := range tests {
		got, err := asBool(tt.input)
		if err != nil {
			t.Errorf("asBool(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asBool(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestApplyConfigSettings(t *testing.T) {
	cfg := &Config{MaxPercentile: DefaultMaxPercentile, PlotPoints: DefaultPlotPoints}
	settings := map[string]interface{}{
		"input":     "latency.log",
		"metric":    "read",
		"threshold": 99.0,
		"plotsize":  250,
		"baseplot":  true,
		"stability": "true",
		"dump":      "out/run1",
		"tracing": map[string]interface{}{
			"endpoint":    "localhost:4317",
			"protocol":    "grpc",
			"sample_rate": 0.5,
		},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.InputFile != "latency.log" || cfg.Metric != "read" {
		t.Errorf("input/metric not applied: %+v", cfg)
	}
	if cfg.MaxPercentile != 99.0 || cfg.PlotPoints != 250 {
		t.Errorf("numeric settings not applied: %+v", cfg)
	}
	if !cfg.Baseplot || !cfg.Stability || cfg.Percentiles {
		t.Errorf("analysis toggles wrong: %+v", cfg)
	}
	if cfg.DumpRoot != "out/run1" {
		t.Errorf("expected dump root out/run1, got %q", cfg.DumpRoot)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" || cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("tracing settings wrong: %+v", cfg.Tracing)
	}
}

func TestLoaderFlagsOnly(t *testing.T) {
	cfg, err := NewLoader().Load([]string{
		"-b", "-s", "--metric", "write", "-t", "99.9", "-z", "100",
		"--dump", "out/data", "latency.log",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.InputFile != "latency.log" {
		t.Errorf("expected positional input, got %q", cfg.InputFile)
	}
	if cfg.Metric != "write" {
		t.Errorf("expected metric write, got %q", cfg.Metric)
	}
	if cfg.MaxPercentile != 99.9 || cfg.PlotPoints != 100 {
		t.Errorf("numeric flags not applied: %+v", cfg)
	}
	if !cfg.Baseplot || !cfg.Stability || cfg.Percentiles {
		t.Errorf("analysis flags wrong: %+v", cfg)
	}
	if cfg.DumpRoot != "out/data" {
		t.Errorf("expected dump root out/data, got %q", cfg.DumpRoot)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoaderDefaults(t *testing.T) {
	cfg, err := NewLoader().Load([]string{"latency.log"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxPercentile != DefaultMaxPercentile {
		t.Errorf("expected default threshold %g, got %g", DefaultMaxPercentile, cfg.MaxPercentile)
	}
	if cfg.PlotPoints != DefaultPlotPoints {
		t.Errorf("expected default plotsize %d, got %d", DefaultPlotPoints, cfg.PlotPoints)
	}
	if cfg.Tracing.Protocol != "grpc" || cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("expected tracing defaults, got %+v", cfg.Tracing)
	}
	if cfg.WantsAnalysis() {
		t.Error("expected no analysis requested by default")
	}
}

func TestLoaderConfigFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	fixture, err := yaml.Marshal(map[string]interface{}{
		"input":     "latency.log",
		"metric":    "read",
		"threshold": 90.0,
		"baseplot":  true,
		"tracing": map[string]interface{}{
			"endpoint": "collector:4317",
			"protocol": "http",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, fixture, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().Load([]string{"--config", path, "-t", "99.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.InputFile != "latency.log" || cfg.Metric != "read" {
		t.Errorf("config file settings not applied: %+v", cfg)
	}
	if cfg.MaxPercentile != 99.0 {
		t.Errorf("flag should override config file threshold, got %g", cfg.MaxPercentile)
	}
	if !cfg.Baseplot {
		t.Error("expected baseplot from config file")
	}
	if cfg.Tracing.Endpoint != "collector:4317" || cfg.Tracing.Protocol != "http" {
		t.Errorf("tracing not applied: %+v", cfg.Tracing)
	}
}

func TestLoaderNoArgsRequestsHelp(t *testing.T) {
	_, err := NewLoader().Load(nil)
	if !errors.Is(err, ErrHelpRequested) {
		t.Errorf("expected ErrHelpRequested, got %v", err)
	}
}

func TestLoaderRejectsExtraPositionals(t *testing.T) {
	_, err := NewLoader().Load([]string{"one.log", "two.log"})
	if err == nil {
		t.Error("expected an error for multiple input files")
	}
}

func TestValidateCollectsIssues(t *testing.T) {
	cfg := Config{
		MaxPercentile: 150,
		PlotPoints:    0,
		Tracing:       TracingConfig{SampleRate: 2.0, Protocol: "carrier-pigeon"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Issues()) != 5 {
		t.Errorf("expected 5 issues, got %d: %v", len(verr.Issues()), verr.Issues())
	}
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	cfg := Config{
		InputFile:     "latency.log",
		MaxPercentile: DefaultMaxPercentile,
		PlotPoints:    DefaultPlotPoints,
		Baseplot:      true,
		Tracing:       TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
