package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esalab/esa/configs"
	"github.com/esalab/esa/internal/analysis"
	"github.com/esalab/esa/internal/ingest"
	"github.com/esalab/esa/pkg/logging"
)

var (
	inExtract    string
	inExtractDir string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [recording.csv]",
	Short: "Inspect a recording without analyzing it",
	Long: `Load a PicoScope CSV recording, infer its sampling frequency and print
per-channel summary statistics. Useful for verifying a capture before running
the diagnostic techniques.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&inExtract, "extract", "",
		"measurement zip archive to unpack before inspection")
	ingestCmd.Flags().StringVar(&inExtractDir, "extract-dir", "",
		"destination directory for --extract (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return err
	}
	if err := configs.ValidateConfig(config); err != nil {
		return err
	}

	logger := logging.WithFields(logging.Fields{
		"command": "ingest",
	})

	if inExtract != "" {
		dest := inExtractDir
		if dest == "" {
			dest = config.Ingest.ExtractDir
		}
		if err := ingest.ExtractArchive(inExtract, dest); err != nil {
			return fmt.Errorf("failed to extract archive: %w", err)
		}
		logger.Info("extracted measurement archive", logging.Fields{
			"archive": inExtract,
			"dest":    dest,
		})
		if len(args) == 0 {
			return nil
		}
	}

	if len(args) == 0 {
		return fmt.Errorf("no recording given (and no --extract archive)")
	}

	loader := ingest.NewLoader(ingest.LoaderConfig{
		MaxIntervalStdDev:   config.Ingest.MaxIntervalStdDev,
		RemoveTriggerOffset: config.Ingest.RemoveTriggerOffset,
	})

	rec, err := loader.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load recording: %w", err)
	}

	engine := analysis.NewEngine(&analysis.EngineConfig{Logger: logger})

	return writeInspection(cmd.OutOrStdout(), rec, engine.Stats(rec), config)
}
