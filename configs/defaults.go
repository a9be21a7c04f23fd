package configs

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// setDefaults sets default configuration values for all components
func setDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("verbose") {
		v.Set("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "table")
	}
	if !v.IsSet("data_dir") {
		home, _ := os.UserHomeDir()
		v.Set("data_dir", filepath.Join(home, ".local", "share", "esa"))
	}

	// Ingestion defaults
	if !v.IsSet("ingest.max_interval_std_dev") {
		v.Set("ingest.max_interval_std_dev", 1e-6)
	}
	if !v.IsSet("ingest.remove_trigger_offset") {
		v.Set("ingest.remove_trigger_offset", true)
	}
	if !v.IsSet("ingest.extract_dir") {
		v.Set("ingest.extract_dir", "tmp")
	}

	// Analysis defaults
	if !v.IsSet("analysis.theta") {
		v.Set("analysis.theta", 0.0)
	}
	if !v.IsSet("analysis.normalize_ipsa") {
		v.Set("analysis.normalize_ipsa", true)
	}
	if !v.IsSet("analysis.max_concurrent") {
		v.Set("analysis.max_concurrent", 4)
	}

	// Calibration defaults (identity)
	if !v.IsSet("calibration.gain") {
		v.Set("calibration.gain", 1.0)
	}
	if !v.IsSet("calibration.offset") {
		v.Set("calibration.offset", 0.0)
	}

	// Output defaults
	if !v.IsSet("output.precision") {
		v.Set("output.precision", 3)
	}
	if !v.IsSet("output.include_metadata") {
		v.Set("output.include_metadata", true)
	}
	if !v.IsSet("output.max_bins") {
		v.Set("output.max_bins", 20)
	}
}
