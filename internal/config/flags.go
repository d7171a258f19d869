package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hdrscope [flags] LOGFILE",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Analysis tasks
	flags.StringP("metric", "m", "", "Work on the specified metric tag (interactive choice if not provided)")
	flags.Float64P("threshold", "t", DefaultMaxPercentile, "Percentile at which to stop collecting distributions")
	flags.IntP("plotsize", "z", DefaultPlotPoints, "Number of points in the resulting curves")
	flags.BoolP("baseplot", "b", false, "Create the standard distribution curve")
	flags.BoolP("percentiles", "c", false, "Create the percentile analysis")
	flags.BoolP("stability", "s", false, "Perform stability analysis (per-slice curves)")
	flags.BoolP("inspect", "i", false, "Print a detailed input breakdown")

	// Output control
	flags.StringP("plot", "p", "", "Create HTML chart reports with the given file root")
	flags.StringP("dump", "d", "", "Dump curves to tab-separated data files with the given file root")
	flags.String("export-log", "", "Write the aggregated histogram back out as a histogram log")
	flags.Bool("view", false, "Render the computed curves in a terminal viewer")
	flags.BoolP("force", "f", false, "Overwrite existing output file(s) if necessary")
	flags.BoolP("raw", "r", false, "Keep raw values found in histograms (no unit conversion)")
	flags.Bool("json-output", false, "Emit a JSON summary of the analysis")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing
	flags.String("tracing-endpoint", "", "OTLP endpoint for pipeline span export (empty disables tracing)")
	flags.String("tracing-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.String("tracing-service-name", "", "Service name reported on exported spans")
	flags.Bool("tracing-insecure", false, "Skip TLS verification for the OTLP endpoint")
	flags.Float64("tracing-sample-rate", 1.0, "Span sampling rate between 0.0 and 1.0")
}

// PrintHelp writes the command usage to standard output.
func PrintHelp() {
	displayHelp(newFlagCommand())
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("metric") {
		val, err := fs.GetString("metric")
		if err != nil {
			return err
		}
		cfg.Metric = strings.TrimSpace(val)
	}
	if fs.Changed("threshold") {
		val, err := fs.GetFloat64("threshold")
		if err != nil {
			return err
		}
		cfg.MaxPercentile = val
	}
	if fs.Changed("plotsize") {
		val, err := fs.GetInt("plotsize")
		if err != nil {
			return err
		}
		cfg.PlotPoints = val
	}
	if fs.Changed("baseplot") {
		val, err := fs.GetBool("baseplot")
		if err != nil {
			return err
		}
		cfg.Baseplot = val
	}
	if fs.Changed("percentiles") {
		val, err := fs.GetBool("percentiles")
		if err != nil {
			return err
		}
		cfg.Percentiles = val
	}
	if fs.Changed("stability") {
		val, err := fs.GetBool("stability")
		if err != nil {
			return err
		}
		cfg.Stability = val
	}
	if fs.Changed("inspect") {
		val, err := fs.GetBool("inspect")
		if err != nil {
			return err
		}
		cfg.Inspect = val
	}
	if fs.Changed("plot") {
		val, err := fs.GetString("plot")
		if err != nil {
			return err
		}
		cfg.PlotRoot = strings.TrimSpace(val)
	}
	if fs.Changed("dump") {
		val, err := fs.GetString("dump")
		if err != nil {
			return err
		}
		cfg.DumpRoot = strings.TrimSpace(val)
	}
	if fs.Changed("export-log") {
		val, err := fs.GetString("export-log")
		if err != nil {
			return err
		}
		cfg.ExportLog = strings.TrimSpace(val)
	}
	if fs.Changed("view") {
		val, err := fs.GetBool("view")
		if err != nil {
			return err
		}
		cfg.View = val
	}
	if fs.Changed("force") {
		val, err := fs.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = val
	}
	if fs.Changed("raw") {
		val, err := fs.GetBool("raw")
		if err != nil {
			return err
		}
		cfg.Raw = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}

	return nil
}
