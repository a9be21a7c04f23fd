// Package ingest loads PicoScope CSV exports into evenly sampled recordings
// for the analysis pipeline. It verifies sampling-interval consistency and
// reports the inferred sampling frequency alongside the channel data.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/esalab/esa/pkg/logging"
)

// channelNames labels the data columns after the time column, matching the
// scope's channel lettering.
var channelNames = []string{"A", "B", "C", "D", "E", "F", "G"}

// LoaderConfig controls CSV parsing and sampling validation
type LoaderConfig struct {
	// MaxIntervalStdDev is the largest tolerated standard deviation of the
	// inter-sample intervals (in ms) before the recording is flagged as
	// inconsistently sampled.
	MaxIntervalStdDev float64
	// RemoveTriggerOffset shifts the time axis so the first sample is t=0.
	// Pre-trigger captures otherwise start at a negative timestamp.
	RemoveTriggerOffset bool
}

// DefaultLoaderConfig returns the loader defaults
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		MaxIntervalStdDev:   1e-6,
		RemoveTriggerOffset: true,
	}
}

// Loader reads PicoScope CSV exports
type Loader struct {
	config LoaderConfig
	logger logging.Logger
}

// NewLoader creates a loader with the given configuration
func NewLoader(config LoaderConfig) *Loader {
	return &Loader{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "pico_loader",
		}),
	}
}

// Load reads a PicoScope CSV export from disk. The expected layout is a name
// row, a units row, a blank row and then `;`-separated data rows using `,` as
// the decimal point:
//
//	Tid;Kanal A;Kanal B
//	(ms);(mV);(mV)
//
//	-200,00016156;0,20752580;0,10341221
//
// Clipped samples exported as the infinity glyph are mapped to +-1.0, the
// scope's full-scale normalized value.
func (l *Loader) Load(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewIngestError(path, ErrCodeOpen, "failed to open recording", err)
	}
	defer f.Close()

	rec, err := l.parse(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	l.logger.Info("loaded recording", logging.Fields{
		"file":        path,
		"samples":     rec.Samples(),
		"channels":    len(rec.ChannelOrder),
		"sample_rate": rec.SampleRate,
		"consistent":  rec.ConsistentSampling,
	})

	return rec, nil
}

// parse reads the CSV stream and assembles the recording
func (l *Loader) parse(r io.Reader, name string) (*Recording, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, NewIngestError(name, ErrCodeParse, "failed to parse CSV", err)
	}

	// Record 0 carries channel names, record 1 units. The blank separator
	// row never shows up here: the csv reader drops empty lines, so data
	// starts at record 2.
	var data [][]string
	for i, row := range rows {
		if i < 2 {
			continue
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		data = append(data, row)
	}

	if len(data) < 2 {
		return nil, NewIngestError(name, ErrCodeTooShort,
			fmt.Sprintf("recording has %d samples, need at least 2", len(data)), nil)
	}

	columns := len(data[0])
	if columns < 2 {
		return nil, NewIngestError(name, ErrCodeFormat, "recording has no data channels", nil)
	}
	if columns-1 > len(channelNames) {
		columns = len(channelNames) + 1
	}

	timeMs := make([]float64, 0, len(data))
	channels := make(map[string][]float64, columns-1)
	order := make([]string, 0, columns-1)
	for c := 0; c < columns-1; c++ {
		order = append(order, channelNames[c])
		channels[channelNames[c]] = make([]float64, 0, len(data))
	}

	for i, row := range data {
		if len(row) < columns {
			return nil, NewIngestError(name, ErrCodeFormat,
				fmt.Sprintf("row %d has %d fields, expected %d", i+4, len(row), columns), nil)
		}

		t, err := parseSample(row[0])
		if err != nil {
			return nil, NewIngestError(name, ErrCodeParse,
				fmt.Sprintf("bad timestamp in row %d", i+4), err)
		}
		timeMs = append(timeMs, t)

		for c := 1; c < columns; c++ {
			v, err := parseSample(row[c])
			if err != nil {
				return nil, NewIngestError(name, ErrCodeParse,
					fmt.Sprintf("bad sample in row %d column %d", i+4, c), err)
			}
			ch := channelNames[c-1]
			channels[ch] = append(channels[ch], v)
		}
	}

	rec := &Recording{
		Name:         name,
		TimeMs:       timeMs,
		Channels:     channels,
		ChannelOrder: order,
	}

	if l.config.RemoveTriggerOffset {
		rec.TriggerOffsetMs = timeMs[0]
		for i := range rec.TimeMs {
			rec.TimeMs[i] -= rec.TriggerOffsetMs
		}
	}

	fs, consistent, err := InferSampleRate(rec.TimeMs, l.config.MaxIntervalStdDev)
	if err != nil {
		return nil, NewIngestError(name, ErrCodeFormat, "sampling rate inference failed", err)
	}
	rec.SampleRate = fs
	rec.ConsistentSampling = consistent

	if !consistent {
		l.logger.Warn("inconsistent sampling intervals, FFT results will be inaccurate", logging.Fields{
			"file": name,
		})
	}

	return rec, nil
}

// parseSample converts a scope sample field to a float. The exported decimal
// point is a comma; clipped samples appear as the infinity glyph.
func parseSample(field string) (float64, error) {
	s := strings.TrimSpace(field)
	switch s {
	case "∞":
		return 1.0, nil
	case "-∞":
		return -1.0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
