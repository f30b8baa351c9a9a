// Copyright 2019 Richard Hartmann
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package collector

import (
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/brinkflair/brink_flair_exporter/config"
	"github.com/brinkflair/brink_flair_exporter/glog"
)

// errorWindow suppresses repeated scrape errors in the log.
const errorWindow = time.Minute

// Source produces one full pass over the register map.
type Source interface {
	Scrape() ([]Reading, error)
}

// RegisterReader reads the raw value of a single register.
type RegisterReader interface {
	Read(reg config.Register) (int64, error)
}

// Sink receives every successful pass.
type Sink interface {
	Emit(readings []Reading)
}

// ScrapeMetrics describes the device passes themselves.
type ScrapeMetrics struct {
	Duration prometheus.Histogram
	Errors   prometheus.Counter
}

// NewScrapeMetrics creates the scrape metrics and registers them with reg
// unless reg is nil.
func NewScrapeMetrics(reg prometheus.Registerer) *ScrapeMetrics {
	f := promauto.With(reg)
	return &ScrapeMetrics{
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "brink_flair_exporter_scrape_duration_seconds",
			Help:    "Duration of a full pass over the register map.",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10},
		}),
		Errors: f.NewCounter(prometheus.CounterOpts{
			Name: "brink_flair_exporter_scrape_errors_total",
			Help: "Number of passes over the register map that failed.",
		}),
	}
}

// DeviceSource reads the register map from the device, one register at a
// time and in order. The first failing register fails the whole pass. Failed
// passes are logged here, and only here.
type DeviceSource struct {
	mu        sync.Mutex
	reader    RegisterReader
	registers []config.Register
	sinks     []Sink
	metrics   *ScrapeMetrics
	logger    log.Logger
	errLog    *glog.ErrorLogger
}

// NewDeviceSource returns a Source reading registers through r.
func NewDeviceSource(r RegisterReader, registers []config.Register, metrics *ScrapeMetrics, logger log.Logger, sinks ...Sink) *DeviceSource {
	if metrics == nil {
		metrics = NewScrapeMetrics(nil)
	}
	return &DeviceSource{
		reader:    r,
		registers: registers,
		sinks:     sinks,
		metrics:   metrics,
		logger:    logger,
		errLog:    glog.New(logger, errorWindow),
	}
}

// Scrape implements Source. Passes never overlap.
func (s *DeviceSource) Scrape() ([]Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		s.metrics.Duration.Observe(time.Since(start).Seconds())
	}()

	readings := make([]Reading, 0, len(s.registers))
	for _, reg := range s.registers {
		raw, err := s.reader.Read(reg)
		if err != nil {
			s.metrics.Errors.Inc()
			s.errLog.Error("scrape failed", err)
			return nil, err
		}
		readings = append(readings, Convert(reg, raw))
	}

	level.Debug(s.logger).Log("msg", "scraped device", "registers", len(readings), "duration", time.Since(start))

	for _, sink := range s.sinks {
		sink.Emit(readings)
	}

	return readings, nil
}
