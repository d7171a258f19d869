package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a
// Config. The input log file is the single positional argument.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		MaxPercentile: DefaultMaxPercentile,
		PlotPoints:    DefaultPlotPoints,
		ConfigFile:    configPath,
		Tracing:       TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	if positional := flagSet.Args(); len(positional) > 0 {
		if len(positional) > 1 {
			return nil, fmt.Errorf("expected a single input log file, got %d arguments", len(positional))
		}
		cfg.InputFile = strings.TrimSpace(positional[0])
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "input", "filename"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
		cfg.InputFile = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "metric"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("metric: %w", err)
		}
		cfg.Metric = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "threshold", "max_percentile", "max-percentile"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("threshold: %w", err)
		}
		cfg.MaxPercentile = val
	}

	if raw, ok := lookupSetting(settings, "plotsize", "plot_points", "plot-points"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("plotsize: %w", err)
		}
		cfg.PlotPoints = val
	}

	if raw, ok := lookupSetting(settings, "baseplot"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("baseplot: %w", err)
		}
		cfg.Baseplot = val
	}

	if raw, ok := lookupSetting(settings, "percentiles"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("percentiles: %w", err)
		}
		cfg.Percentiles = val
	}

	if raw, ok := lookupSetting(settings, "stability"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("stability: %w", err)
		}
		cfg.Stability = val
	}

	if raw, ok := lookupSetting(settings, "inspect"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("inspect: %w", err)
		}
		cfg.Inspect = val
	}

	if raw, ok := lookupSetting(settings, "plot"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		cfg.PlotRoot = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "dump"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("dump: %w", err)
		}
		cfg.DumpRoot = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "exportlog", "export_log", "export-log"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("exportLog: %w", err)
		}
		cfg.ExportLog = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "view"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("view: %w", err)
		}
		cfg.View = val
	}

	if raw, ok := lookupSetting(settings, "force"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("force: %w", err)
		}
		cfg.Force = val
	}

	if raw, ok := lookupSetting(settings, "raw"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("raw: %w", err)
		}
		cfg.Raw = val
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("jsonOutput: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracing(raw)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		if tracing.Protocol == "" {
			tracing.Protocol = cfg.Tracing.Protocol
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseTracing(value interface{}) (TracingConfig, error) {
	tracing := TracingConfig{SampleRate: 1.0}
	if value == nil {
		return tracing, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}
	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tracing.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(entry, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		tracing.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tracing.Insecure = val
	}
	if raw, ok := lookupSetting(entry, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
		tracing.SampleRate = val
	}
	return tracing, nil
}
