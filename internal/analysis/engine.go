// Package analysis composes ingestion and the ESA techniques into a
// recording-level diagnostic engine. Every technique run is an independent
// pure transform, so the engine fans them out over a bounded set of workers.
package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/esalab/esa/internal/ingest"
	"github.com/esalab/esa/pkg/esa"
	"github.com/esalab/esa/pkg/esa/frame"
	"github.com/esalab/esa/pkg/logging"
)

// Request names the techniques to run and the channels they read
type Request struct {
	Techniques []string `json:"techniques"`
	// Current is the channel carrying the phase current used by single-signal
	// techniques (mcsa, csa, rms, cepstrum variants, ipsa).
	Current string `json:"current"`
	// Voltage is the line-to-line voltage channel (vsa, ipsa).
	Voltage string `json:"voltage"`
	// Phases are the three phase-current channels feeding the Park transform
	// for epva, in A/B/C order.
	Phases []string `json:"phases"`
	// Pair are the two channels to correlate.
	Pair []string `json:"pair"`
}

// EngineConfig contains configuration for the analysis engine
type EngineConfig struct {
	// Theta is the Park rotation angle in radians.
	Theta float64
	// Gain and Offset define the probe calibration applied to every channel
	// before analysis. Gain 1 and offset 0 leave the data untouched.
	Gain   float64
	Offset float64
	// NormalizeIPSA converts the IPSA spectrum to peak-normalized decibels.
	NormalizeIPSA bool
	// MaxConcurrent bounds the technique fan-out.
	MaxConcurrent int
	Logger        logging.Logger
}

// Engine runs diagnostic techniques against loaded recordings
type Engine struct {
	analyzer      *esa.Analyzer
	logger        logging.Logger
	theta         float64
	gain          float64
	offset        float64
	normalizeIPSA bool
	maxConcurrent int
}

// NewEngine creates a new analysis engine
func NewEngine(config *EngineConfig) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	gain := config.Gain
	if gain == 0 {
		gain = 1
	}

	return &Engine{
		analyzer:      esa.NewAnalyzer(),
		logger:        logger,
		theta:         config.Theta,
		gain:          gain,
		offset:        config.Offset,
		normalizeIPSA: config.NormalizeIPSA,
		maxConcurrent: maxConcurrent,
	}
}

// Analyze runs the requested techniques against the recording and collects
// per-technique results. Individual technique failures do not abort the run;
// they are recorded on the result.
func (e *Engine) Analyze(ctx context.Context, rec *ingest.Recording, req *Request) (*RecordingResult, error) {
	if rec == nil || rec.Samples() == 0 {
		return nil, fmt.Errorf("analyze: empty recording")
	}
	if len(req.Techniques) == 0 {
		return nil, fmt.Errorf("analyze: no techniques requested")
	}

	logger := e.logger.WithFields(logging.Fields{
		"recording":   rec.Name,
		"sample_rate": rec.SampleRate,
		"techniques":  len(req.Techniques),
	})
	logger.Info("starting analysis")

	start := time.Now()

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.maxConcurrent)
	resultChan := make(chan *TechniqueResult, len(req.Techniques))

	for _, technique := range req.Techniques {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				resultChan <- &TechniqueResult{
					Technique: name,
					Error:     ctx.Err(),
					ErrorMsg:  ctx.Err().Error(),
				}
				return
			}

			resultChan <- e.runTechnique(rec, req, name)
		}(technique)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	result := &RecordingResult{
		Recording:          rec.Name,
		SampleRate:         rec.SampleRate,
		Samples:            rec.Samples(),
		ConsistentSampling: rec.ConsistentSampling,
	}

	for tr := range resultChan {
		result.Results = append(result.Results, tr)
		if tr.Error != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	result.TotalDuration = time.Since(start)

	logger.Info("analysis completed", logging.Fields{
		"succeeded":   result.Succeeded,
		"failed":      result.Failed,
		"duration_ms": result.TotalDuration.Milliseconds(),
	})

	return result, nil
}

// runTechnique executes a single named technique
func (e *Engine) runTechnique(rec *ingest.Recording, req *Request, name string) *TechniqueResult {
	result := &TechniqueResult{Technique: name}
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)
		if result.Error != nil {
			result.ErrorMsg = result.Error.Error()
		}
	}()

	fs := rec.SampleRate

	switch name {
	case TechniqueMCSA, TechniqueCSA:
		signal, err := e.channel(rec, req.Current)
		if err != nil {
			result.Error = err
			return result
		}
		result.Channels = []string{req.Current}
		result.Spectrum, result.Error = e.analyzer.MCSA(signal, fs)

	case TechniqueVSA:
		signal, err := e.channel(rec, req.Voltage)
		if err != nil {
			result.Error = err
			return result
		}
		result.Channels = []string{req.Voltage}
		result.Spectrum, result.Error = e.analyzer.VSA(signal, fs)

	case TechniqueEPVA:
		if len(req.Phases) != 3 {
			result.Error = fmt.Errorf("epva needs exactly 3 phase channels, got %d", len(req.Phases))
			return result
		}
		ia, err := e.channel(rec, req.Phases[0])
		if err != nil {
			result.Error = err
			return result
		}
		ib, err := e.channel(rec, req.Phases[1])
		if err != nil {
			result.Error = err
			return result
		}
		ic, err := e.channel(rec, req.Phases[2])
		if err != nil {
			result.Error = err
			return result
		}
		id, iq, err := frame.DQ(ia, ib, ic)
		if err != nil {
			result.Error = err
			return result
		}
		result.Channels = append([]string(nil), req.Phases...)
		result.Spectrum, result.Error = e.analyzer.EPVA(id, iq, fs)

	case TechniqueIPSA:
		vll, err := e.channel(rec, req.Voltage)
		if err != nil {
			result.Error = err
			return result
		}
		il, err := e.channel(rec, req.Current)
		if err != nil {
			result.Error = err
			return result
		}
		result.Channels = []string{req.Voltage, req.Current}
		result.Spectrum, result.Error = e.analyzer.IPSA(vll, il, fs, e.normalizeIPSA)

	case TechniqueRMS:
		signal, err := e.channel(rec, req.Current)
		if err != nil {
			result.Error = err
			return result
		}
		result.Channels = []string{req.Current}
		rms := e.analyzer.Spectral().RMS(signal)
		result.Scalar = &rms

	case TechniqueCepstrum, TechniquePowerCepstrum:
		signal, err := e.channel(rec, req.Current)
		if err != nil {
			result.Error = err
			return result
		}
		result.Channels = []string{req.Current}
		result.Cepstrum, result.Error = e.analyzer.Spectral().PowerCepstrum(signal, fs)

	case TechniqueUnbalance:
		if len(req.Phases) != 3 {
			result.Error = fmt.Errorf("unbalance needs exactly 3 phase channels, got %d", len(req.Phases))
			return result
		}
		ia, err := e.channel(rec, req.Phases[0])
		if err != nil {
			result.Error = err
			return result
		}
		ib, err := e.channel(rec, req.Phases[1])
		if err != nil {
			result.Error = err
			return result
		}
		ic, err := e.channel(rec, req.Phases[2])
		if err != nil {
			result.Error = err
			return result
		}
		// RMS of the zero-sequence component; vanishes for a balanced machine.
		_, _, i0, err := frame.DQ0(ia, ib, ic, e.theta)
		if err != nil {
			result.Error = err
			return result
		}
		result.Channels = append([]string(nil), req.Phases...)
		rms := e.analyzer.Spectral().RMS(i0)
		result.Scalar = &rms

	case TechniqueCorrelation:
		if len(req.Pair) != 2 {
			result.Error = fmt.Errorf("correlation needs exactly 2 channels, got %d", len(req.Pair))
			return result
		}
		x, err := e.channel(rec, req.Pair[0])
		if err != nil {
			result.Error = err
			return result
		}
		y, err := e.channel(rec, req.Pair[1])
		if err != nil {
			result.Error = err
			return result
		}
		result.Channels = append([]string(nil), req.Pair...)
		r, err := e.analyzer.Correlation(x, y)
		if err != nil {
			result.Error = err
			return result
		}
		result.Scalar = &r

	default:
		result.Error = fmt.Errorf("unknown technique %q", name)
	}

	return result
}

// channel fetches a channel and applies the configured calibration
func (e *Engine) channel(rec *ingest.Recording, name string) ([]float64, error) {
	if name == "" {
		return nil, fmt.Errorf("no channel configured")
	}
	signal := rec.Channel(name)
	if signal == nil {
		return nil, fmt.Errorf("recording has no channel %q", name)
	}
	if e.gain == 1 && e.offset == 0 {
		return signal, nil
	}
	return e.analyzer.ApplyCalibration(signal, e.gain, e.offset), nil
}

// Stats computes summary statistics for every channel of a recording
func (e *Engine) Stats(rec *ingest.Recording) []ChannelStats {
	stats := make([]ChannelStats, 0, len(rec.ChannelOrder))
	for _, name := range rec.ChannelOrder {
		samples := rec.Channel(name)
		if len(samples) == 0 {
			continue
		}
		stats = append(stats, ChannelStats{
			Channel: name,
			Samples: len(samples),
			Mean:    stat.Mean(samples, nil),
			Min:     floats.Min(samples),
			Max:     floats.Max(samples),
			RMS:     e.analyzer.Spectral().RMS(samples),
		})
	}
	return stats
}
