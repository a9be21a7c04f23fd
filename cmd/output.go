package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/esalab/esa/configs"
	"github.com/esalab/esa/internal/analysis"
	"github.com/esalab/esa/internal/ingest"
)

// writeResult renders an analysis result in the configured output format
func writeResult(w io.Writer, result *analysis.RecordingResult, config *configs.Config) error {
	switch viper.GetString("output_format") {
	case "json":
		return writeJSON(w, result)
	case "yaml":
		return writeYAML(w, result)
	default:
		return writeResultTable(w, result, config)
	}
}

// writeInspection renders recording metadata and channel statistics
func writeInspection(w io.Writer, rec *ingest.Recording, stats []analysis.ChannelStats, config *configs.Config) error {
	payload := struct {
		Recording *ingest.Recording       `json:"recording" yaml:"recording"`
		Channels  []analysis.ChannelStats `json:"channel_stats" yaml:"channel_stats"`
	}{rec, stats}

	switch viper.GetString("output_format") {
	case "json":
		return writeJSON(w, payload)
	case "yaml":
		return writeYAML(w, payload)
	default:
		return writeInspectionTable(w, rec, stats, config)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	// Round-trip through JSON so the yaml encoder honors the same field
	// selection as the JSON output.
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(generic)
}

func writeResultTable(w io.Writer, result *analysis.RecordingResult, config *configs.Config) error {
	p := message.NewPrinter(language.English)
	prec := config.Output.Precision

	p.Fprintf(w, "Recording: %s (%d samples @ %.0f Hz", result.Recording, result.Samples, result.SampleRate)
	if !result.ConsistentSampling {
		p.Fprintf(w, ", INCONSISTENT SAMPLING")
	}
	p.Fprintf(w, ")\n\n")

	for _, tr := range result.Results {
		p.Fprintf(w, "== %s %v (%.2fms)\n", tr.Technique, tr.Channels, float64(tr.Duration.Microseconds())/1000)

		switch {
		case tr.Error != nil:
			p.Fprintf(w, "   error: %s\n", tr.ErrorMsg)
		case tr.Scalar != nil:
			p.Fprintf(w, "   value: %.*f\n", prec, *tr.Scalar)
		case tr.Spectrum != nil:
			writePeaks(w, p, tr.Spectrum.Frequency, tr.Spectrum.Power, "Hz", prec, config.Output.MaxBins)
		case tr.Cepstrum != nil:
			writePeaks(w, p, tr.Cepstrum.Quefrency, tr.Cepstrum.Power, "s", prec, config.Output.MaxBins)
		}
		p.Fprintf(w, "\n")
	}

	p.Fprintf(w, "%d succeeded, %d failed in %s\n", result.Succeeded, result.Failed, result.TotalDuration)
	return nil
}

// writePeaks prints the dominant bins of a spectrum-like axis/value pair,
// strongest first. Non-finite values are skipped so a normalized decibel
// spectrum with -Inf bins still renders.
func writePeaks(w io.Writer, p *message.Printer, axis, values []float64, unit string, prec, maxBins int) {
	type bin struct {
		axis  float64
		value float64
	}

	bins := make([]bin, 0, len(values))
	for i, v := range values {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			bins = append(bins, bin{axis[i], v})
		}
	}

	// Selection by value, largest first
	for i := 0; i < len(bins) && i < maxBins; i++ {
		best := i
		for j := i + 1; j < len(bins); j++ {
			if bins[j].value > bins[best].value {
				best = j
			}
		}
		bins[i], bins[best] = bins[best], bins[i]
		p.Fprintf(w, "   %12.*f %s  %.*g\n", prec, bins[i].axis, unit, prec+3, bins[i].value)
	}
}

func writeInspectionTable(w io.Writer, rec *ingest.Recording, stats []analysis.ChannelStats, config *configs.Config) error {
	p := message.NewPrinter(language.English)
	prec := config.Output.Precision

	p.Fprintf(w, "Recording: %s\n", rec.Name)
	p.Fprintf(w, "Samples:   %d\n", rec.Samples())
	p.Fprintf(w, "Rate:      %.0f Hz (consistent sampling: %v)\n", rec.SampleRate, rec.ConsistentSampling)
	if rec.TriggerOffsetMs != 0 {
		p.Fprintf(w, "Trigger:   %.*f ms offset removed\n", prec, rec.TriggerOffsetMs)
	}
	p.Fprintf(w, "\n%-8s %10s %12s %12s %12s %12s\n", "Channel", "Samples", "Mean", "Min", "Max", "RMS")

	for _, s := range stats {
		p.Fprintf(w, "%-8s %10d %12.*f %12.*f %12.*f %12.*f\n",
			s.Channel, s.Samples, prec, s.Mean, prec, s.Min, prec, s.Max, prec, s.RMS)
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return nil
}
