package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRecording renders a minimal PicoScope CSV export: name row, units row,
// blank row, then `;`-separated samples with comma decimal points.
func writeRecording(t *testing.T, rows []string) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("Tid;Kanal A;Kanal B\n")
	sb.WriteString("(ms);(mV);(mV)\n")
	sb.WriteString("\n")
	for _, row := range rows {
		sb.WriteString(row + "\n")
	}

	path := filepath.Join(t.TempDir(), "motor.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func evenRows(n int, startMs, stepMs float64) []string {
	rows := make([]string, n)
	for i := range rows {
		ts := startMs + float64(i)*stepMs
		rows[i] = fmt.Sprintf("%s;%s;%s",
			comma(ts), comma(float64(i)*0.5), comma(-float64(i)*0.25))
	}
	return rows
}

func comma(v float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.8f", v), ".", ",")
}

func TestLoadRecording(t *testing.T) {
	loader := NewLoader(DefaultLoaderConfig())

	// 1 ms spacing -> 1 kHz
	path := writeRecording(t, evenRows(100, 0, 1))
	rec, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "motor.csv", rec.Name)
	assert.Equal(t, 100, rec.Samples())
	assert.Equal(t, []string{"A", "B"}, rec.ChannelOrder)
	assert.InDelta(t, 1000.0, rec.SampleRate, 1e-9)
	assert.True(t, rec.ConsistentSampling)

	require.Len(t, rec.Channel("A"), 100)
	assert.InDelta(t, 0.5, rec.Channel("A")[1], 1e-9)
	assert.InDelta(t, -0.25, rec.Channel("B")[1], 1e-9)
	assert.Nil(t, rec.Channel("C"))
}

func TestLoadKeepsFirstSample(t *testing.T) {
	loader := NewLoader(DefaultLoaderConfig())

	path := writeRecording(t, evenRows(10, 0, 1))
	rec, err := loader.Load(path)
	require.NoError(t, err)

	// Data starts right after the two header rows; the first sample must
	// survive parsing.
	require.Equal(t, 10, rec.Samples())
	assert.InDelta(t, 0.0, rec.Channel("A")[0], 1e-9)
	assert.InDelta(t, 0.5, rec.Channel("A")[1], 1e-9)

	// Some exports omit the blank separator row; the result is identical
	// because the csv reader drops empty lines either way.
	noBlank := "Tid;Kanal A;Kanal B\n(ms);(mV);(mV)\n" +
		strings.Join(evenRows(10, 0, 1), "\n") + "\n"
	p2 := filepath.Join(t.TempDir(), "motor.csv")
	require.NoError(t, os.WriteFile(p2, []byte(noBlank), 0o644))
	rec2, err := loader.Load(p2)
	require.NoError(t, err)
	assert.Equal(t, rec.Channel("A"), rec2.Channel("A"))
	assert.Equal(t, rec.TimeMs, rec2.TimeMs)
}

func TestLoadRemovesTriggerOffset(t *testing.T) {
	loader := NewLoader(DefaultLoaderConfig())

	// Pre-trigger capture starting at -200 ms
	path := writeRecording(t, evenRows(50, -200, 0.5))
	rec, err := loader.Load(path)
	require.NoError(t, err)

	assert.InDelta(t, -200.0, rec.TriggerOffsetMs, 1e-6)
	assert.InDelta(t, 0.0, rec.TimeMs[0], 1e-9)
	assert.InDelta(t, 2000.0, rec.SampleRate, 1e-9)
}

func TestLoadKeepsTriggerOffsetWhenDisabled(t *testing.T) {
	config := DefaultLoaderConfig()
	config.RemoveTriggerOffset = false
	loader := NewLoader(config)

	path := writeRecording(t, evenRows(10, -200, 1))
	rec, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.0, rec.TriggerOffsetMs)
	assert.InDelta(t, -200.0, rec.TimeMs[0], 1e-9)
}

func TestLoadMapsClippedSamples(t *testing.T) {
	loader := NewLoader(DefaultLoaderConfig())

	path := writeRecording(t, []string{
		"0,0;∞;-∞",
		"1,0;0,25;0,5",
		"2,0;-∞;∞",
	})
	rec, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 0.25, -1}, rec.Channel("A"))
	assert.Equal(t, []float64{-1, 0.5, 1}, rec.Channel("B"))
}

func TestLoadFlagsInconsistentSampling(t *testing.T) {
	loader := NewLoader(DefaultLoaderConfig())

	path := writeRecording(t, []string{
		"0,0;1,0;1,0",
		"1,0;1,0;1,0",
		"2,5;1,0;1,0", // jittered interval
		"3,5;1,0;1,0",
	})
	rec, err := loader.Load(path)
	require.NoError(t, err)

	assert.False(t, rec.ConsistentSampling)
}

func TestLoadErrors(t *testing.T) {
	loader := NewLoader(DefaultLoaderConfig())

	_, err := loader.Load(filepath.Join(t.TempDir(), "missing.csv"))
	var ingestErr *IngestError
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, ErrCodeOpen, ingestErr.Code)

	_, err = loader.Load(writeRecording(t, []string{"0,0;1,0;1,0"}))
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, ErrCodeTooShort, ingestErr.Code)

	_, err = loader.Load(writeRecording(t, []string{
		"0,0;1,0;1,0",
		"1,0;abc;1,0",
	}))
	require.ErrorAs(t, err, &ingestErr)
	assert.Equal(t, ErrCodeParse, ingestErr.Code)
}

func TestInferSampleRate(t *testing.T) {
	fs, consistent, err := InferSampleRate([]float64{0, 0.1, 0.2, 0.3}, 1e-6)
	require.NoError(t, err)
	assert.InDelta(t, 10000.0, fs, 1e-9)
	assert.True(t, consistent)

	_, _, err = InferSampleRate([]float64{0}, 1e-6)
	assert.ErrorIs(t, err, ErrNotEnoughSamples)

	_, _, err = InferSampleRate([]float64{5, 5, 5}, 1e-6)
	assert.Error(t, err, "zero mean interval has no sampling rate")
}

func TestSlice(t *testing.T) {
	loader := NewLoader(DefaultLoaderConfig())

	path := writeRecording(t, evenRows(100, 0, 1)) // 1 kHz, 100 ms
	rec, err := loader.Load(path)
	require.NoError(t, err)

	sub := rec.Slice(20, 50)
	assert.Equal(t, 30, sub.Samples())
	assert.InDelta(t, rec.Channel("A")[20], sub.Channel("A")[0], 1e-12)
	assert.Equal(t, rec.SampleRate, sub.SampleRate)

	// Clamping
	sub = rec.Slice(-10, 1e6)
	assert.Equal(t, 100, sub.Samples())

	// Mutating the slice leaves the original untouched
	sub.Channel("A")[0] = 999
	assert.NotEqual(t, 999.0, rec.Channel("A")[0])
}
