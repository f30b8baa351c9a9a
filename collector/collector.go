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

// Package collector turns register readings of a Brink Flair into
// Prometheus gauges.
package collector

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/brinkflair/brink_flair_exporter/config"
)

// LabelName is the single label carried by every gauge. Its value is the
// configured device name.
const LabelName = "name"

var scrapeErrorDesc = prometheus.NewDesc(
	"brink_flair_scrape_error",
	"Failed to scrape the ventilation unit.",
	nil, nil,
)

// Collector implements prometheus.Collector with one gauge per register.
type Collector struct {
	source Source
	descs  map[string]*prometheus.Desc
	order  []*prometheus.Desc
}

// NewCollector returns a Collector exposing registers as read from source.
func NewCollector(registers []config.Register, device string, source Source) *Collector {
	c := &Collector{
		source: source,
		descs:  make(map[string]*prometheus.Desc, len(registers)),
		order:  make([]*prometheus.Desc, 0, len(registers)),
	}
	for _, r := range registers {
		d := prometheus.NewDesc(r.Name, r.Help, nil, prometheus.Labels{LabelName: device})
		c.descs[r.Name] = d
		c.order = append(c.order, d)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.order {
		ch <- d
	}
}

// Collect implements prometheus.Collector. A failed pass yields an invalid
// metric so the whole scrape fails instead of exposing a partial set. The
// source logs the failure.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	readings, err := c.source.Scrape()
	if err != nil {
		ch <- prometheus.NewInvalidMetric(scrapeErrorDesc, err)
		return
	}

	for _, r := range readings {
		d, ok := c.descs[r.Register.Name]
		if !ok {
			ch <- prometheus.NewInvalidMetric(scrapeErrorDesc, fmt.Errorf("unexpected register %q", r.Register.Name))
			continue
		}
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, r.Value)
	}
}
