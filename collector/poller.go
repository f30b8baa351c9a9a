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
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrNoData is returned by the Poller until the first pass completed.
var ErrNoData = errors.New("no data polled yet")

// Poller scrapes a Source on a fixed interval and serves the result of the
// last pass, trading freshness for a bounded load on the serial line.
type Poller struct {
	source   Source
	interval time.Duration

	mu       sync.RWMutex
	readings []Reading
	err      error
	updated  time.Time
}

// NewPoller returns a Poller for source. Call Run to start polling.
func NewPoller(source Source, interval time.Duration) *Poller {
	return &Poller{
		source:   source,
		interval: interval,
		err:      ErrNoData,
	}
}

// Run polls until ctx is cancelled. The first pass happens immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	readings, err := p.source.Scrape()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.err = err
		return
	}
	p.readings = readings
	p.err = nil
	p.updated = time.Now()
}

// Scrape implements Source. It returns the readings of the last pass, or the
// error of the last pass if it failed.
func (p *Poller) Scrape() ([]Reading, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.err != nil {
		return nil, p.err
	}
	out := make([]Reading, len(p.readings))
	copy(out, p.readings)
	return out, nil
}

// Updated returns the time of the last successful pass.
func (p *Poller) Updated() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updated
}

// LastPollGauge returns a gauge reporting the unix time of the last
// successful pass, 0 before the first one.
func (p *Poller) LastPollGauge() prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "brink_flair_exporter_last_poll_timestamp_seconds",
		Help: "Unix time of the last successful poll of the ventilation unit.",
	}, func() float64 {
		t := p.Updated()
		if t.IsZero() {
			return 0
		}
		return float64(t.UnixNano()) / 1e9
	})
}
