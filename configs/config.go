package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`
	DataDir      string `mapstructure:"data_dir"`

	// Recording ingestion
	Ingest IngestConfig `mapstructure:"ingest"`

	// Analysis settings
	Analysis AnalysisConfig `mapstructure:"analysis"`

	// Probe calibration
	Calibration CalibrationConfig `mapstructure:"calibration"`

	// Output formatting
	Output OutputConfig `mapstructure:"output"`
}

// IngestConfig contains recording ingestion settings
type IngestConfig struct {
	// MaxIntervalStdDev is the sampling-interval consistency threshold in ms.
	MaxIntervalStdDev   float64 `mapstructure:"max_interval_std_dev"`
	RemoveTriggerOffset bool    `mapstructure:"remove_trigger_offset"`
	// ExtractDir is where measurement archives are unpacked.
	ExtractDir string `mapstructure:"extract_dir"`
}

// AnalysisConfig contains diagnostic technique settings
type AnalysisConfig struct {
	// Theta is the Park rotation angle in radians.
	Theta float64 `mapstructure:"theta"`
	// NormalizeIPSA converts IPSA spectra to peak-normalized decibels.
	NormalizeIPSA bool `mapstructure:"normalize_ipsa"`
	MaxConcurrent int  `mapstructure:"max_concurrent"`
}

// CalibrationConfig contains the affine probe calibration
type CalibrationConfig struct {
	Gain   float64 `mapstructure:"gain"`
	Offset float64 `mapstructure:"offset"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Precision       int  `mapstructure:"precision"`
	IncludeMetadata bool `mapstructure:"include_metadata"`
	// MaxBins caps how many spectrum bins table output prints.
	MaxBins int `mapstructure:"max_bins"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	setDefaults(viper.GetViper())

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Ingest.MaxIntervalStdDev <= 0 {
		return fmt.Errorf("sampling interval threshold must be positive")
	}

	if config.Analysis.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrency must be positive")
	}

	if config.Calibration.Gain == 0 {
		return fmt.Errorf("calibration gain must be non-zero")
	}

	if config.Output.Precision < 0 {
		return fmt.Errorf("output precision cannot be negative")
	}

	return nil
}
