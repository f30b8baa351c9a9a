package collector

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/brinkflair/brink_flair_exporter/config"
)

type fakeReader struct {
	mu     sync.Mutex
	values map[string]int64
	fail   map[string]error
	reads  []string
}

func (f *fakeReader) Read(reg config.Register) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, reg.Name)
	if err := f.fail[reg.Name]; err != nil {
		return 0, err
	}
	return f.values[reg.Name], nil
}

type recordingSink struct {
	passes [][]Reading
}

func (s *recordingSink) Emit(readings []Reading) {
	s.passes = append(s.passes, readings)
}

func TestDeviceSourceScrape(t *testing.T) {
	registers := config.DefaultRegisters()
	reader := &fakeReader{values: map[string]int64{
		"brink_flair_power_level":         2,
		"brink_flair_outside_temperature": 183,
	}}
	sink := &recordingSink{}
	metrics := NewScrapeMetrics(nil)

	s := NewDeviceSource(reader, registers, metrics, log.NewNopLogger(), sink)
	readings, err := s.Scrape()
	require.NoError(t, err)
	require.Len(t, readings, len(registers))

	for i, r := range readings {
		require.Equal(t, registers[i].Name, r.Register.Name)
		require.Equal(t, registers[i].Name, reader.reads[i])
	}
	require.Equal(t, 18.3, readings[1].Value)

	require.Len(t, sink.passes, 1)
	require.Equal(t, readings, sink.passes[0])
	require.Equal(t, 0.0, testutil.ToFloat64(metrics.Errors))
}

func TestDeviceSourceScrapeError(t *testing.T) {
	registers := config.DefaultRegisters()
	timeout := errors.New("serial: timeout")
	reader := &fakeReader{fail: map[string]error{"brink_flair_exhaust_temperature": timeout}}
	sink := &recordingSink{}
	metrics := NewScrapeMetrics(nil)

	s := NewDeviceSource(reader, registers, metrics, log.NewNopLogger(), sink)
	readings, err := s.Scrape()
	require.ErrorIs(t, err, timeout)
	require.Nil(t, readings)

	// Reads stop at the failing register.
	require.Equal(t, "brink_flair_exhaust_temperature", reader.reads[len(reader.reads)-1])
	require.Len(t, reader.reads, 4)
	require.Empty(t, sink.passes)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Errors))
}

func TestDeviceSourceIdempotent(t *testing.T) {
	reader := &fakeReader{values: map[string]int64{"brink_flair_ntc1_temperature": 201}}
	s := NewDeviceSource(reader, config.DefaultRegisters(), nil, log.NewNopLogger())

	first, err := s.Scrape()
	require.NoError(t, err)
	second, err := s.Scrape()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDeviceSourceLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	timeout := errors.New("serial: timeout")
	reader := &fakeReader{fail: map[string]error{"brink_flair_filter_age": timeout}}
	s := NewDeviceSource(reader, config.DefaultRegisters(), nil, log.NewLogfmtLogger(&buf))

	_, err := s.Scrape()
	require.ErrorIs(t, err, timeout)
	require.Equal(t, 1, strings.Count(buf.String(), "scrape failed"))
	require.Contains(t, buf.String(), "level=error")

	// Repeats within the window are suppressed.
	_, err = s.Scrape()
	require.ErrorIs(t, err, timeout)
	require.Equal(t, 1, strings.Count(buf.String(), "scrape failed"))
}
