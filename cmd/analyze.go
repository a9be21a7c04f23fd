package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/esalab/esa/configs"
	"github.com/esalab/esa/internal/analysis"
	"github.com/esalab/esa/internal/ingest"
	"github.com/esalab/esa/pkg/logging"
)

var (
	azTechniques []string
	azCurrent    string
	azVoltage    string
	azPhases     []string
	azPair       []string
	azTheta      float64
	azGain       float64
	azOffset     float64
	azNoNorm     bool
	azStartMs    float64
	azEndMs      float64
	azTimeout    time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [recording.csv]",
	Short: "Run diagnostic techniques against a recording",
	Long: `Load a PicoScope CSV recording and run the requested diagnostic
techniques against its channels.

Examples:
  esa analyze motor.csv --technique mcsa --current A
  esa analyze motor.csv --technique epva --phases A,B,C
  esa analyze motor.csv --technique ipsa --voltage D --current A
  esa analyze motor.csv --technique correlation --pair A,B`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringSliceVarP(&azTechniques, "technique", "t", []string{analysis.TechniqueMCSA},
		"techniques to run (mcsa, csa, vsa, epva, ipsa, rms, cepstrum, correlation, unbalance)")
	analyzeCmd.Flags().StringVar(&azCurrent, "current", "A",
		"channel carrying the phase current")
	analyzeCmd.Flags().StringVar(&azVoltage, "voltage", "D",
		"channel carrying the line-to-line voltage")
	analyzeCmd.Flags().StringSliceVar(&azPhases, "phases", []string{"A", "B", "C"},
		"three phase-current channels for epva")
	analyzeCmd.Flags().StringSliceVar(&azPair, "pair", nil,
		"two channels for correlation")
	analyzeCmd.Flags().Float64Var(&azTheta, "theta", 0,
		"Park rotation angle in radians")
	analyzeCmd.Flags().Float64Var(&azGain, "gain", 1,
		"probe calibration gain")
	analyzeCmd.Flags().Float64Var(&azOffset, "offset", 0,
		"probe calibration offset")
	analyzeCmd.Flags().BoolVar(&azNoNorm, "no-normalize", false,
		"disable peak-normalized decibel conversion for ipsa")
	analyzeCmd.Flags().Float64Var(&azStartMs, "start-ms", 0,
		"analyze from this time (ms)")
	analyzeCmd.Flags().Float64Var(&azEndMs, "end-ms", 0,
		"analyze up to this time (ms, 0 = end of recording)")
	analyzeCmd.Flags().DurationVar(&azTimeout, "timeout", 2*time.Minute,
		"timeout for the analysis run")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return err
	}
	if err := configs.ValidateConfig(config); err != nil {
		return err
	}

	logger := logging.WithFields(logging.Fields{
		"command": "analyze",
	})

	loader := ingest.NewLoader(ingest.LoaderConfig{
		MaxIntervalStdDev:   config.Ingest.MaxIntervalStdDev,
		RemoveTriggerOffset: config.Ingest.RemoveTriggerOffset,
	})

	rec, err := loader.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load recording: %w", err)
	}

	if azStartMs > 0 || azEndMs > 0 {
		end := azEndMs
		if end <= 0 {
			end = float64(rec.Samples()) / rec.SampleRate * 1000
		}
		rec = rec.Slice(azStartMs, end)
	}

	// Explicit flags win over the config file
	theta, gain, offset := config.Analysis.Theta, config.Calibration.Gain, config.Calibration.Offset
	if cmd.Flags().Changed("theta") {
		theta = azTheta
	}
	if cmd.Flags().Changed("gain") {
		gain = azGain
	}
	if cmd.Flags().Changed("offset") {
		offset = azOffset
	}

	engine := analysis.NewEngine(&analysis.EngineConfig{
		Theta:         theta,
		Gain:          gain,
		Offset:        offset,
		NormalizeIPSA: !azNoNorm && config.Analysis.NormalizeIPSA,
		MaxConcurrent: config.Analysis.MaxConcurrent,
		Logger:        logger,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), azTimeout)
	defer cancel()

	result, err := engine.Analyze(ctx, rec, &analysis.Request{
		Techniques: azTechniques,
		Current:    azCurrent,
		Voltage:    azVoltage,
		Phases:     azPhases,
		Pair:       azPair,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	return writeResult(cmd.OutOrStdout(), result, config)
}
