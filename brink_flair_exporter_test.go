package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brinkflair/brink_flair_exporter/collector"
	"github.com/brinkflair/brink_flair_exporter/config"
)

type stubReader struct {
	values map[config.RegisterAddr]int64
	err    error
}

func (s stubReader) Read(reg config.Register) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.values[reg.Address], nil
}

func TestRouter(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		reader stubReader
		code   int
		body   []string
	}{
		{
			name: "device metrics",
			path: "/metrics",
			reader: stubReader{values: map[config.RegisterAddr]int64{
				8001: 2,
				4036: 183,
				6100: 1,
			}},
			code: http.StatusOK,
			body: []string{
				`brink_flair_power_level{name="flair"} 2`,
				`brink_flair_outside_temperature{name="flair"} 18.3`,
				`brink_flair_bypass_mode{name="flair"} 1`,
			},
		},
		{
			// A failing read fails the whole scrape.
			name:   "device unreachable",
			path:   "/metrics",
			reader: stubReader{err: errors.New("serial: timeout")},
			code:   http.StatusInternalServerError,
			body:   []string{"serial: timeout"},
		},
		{
			name:   "telemetry",
			path:   "/telemetry",
			reader: stubReader{},
			code:   http.StatusOK,
			body:   []string{"brink_flair_exporter_scrape_errors_total"},
		},
		{
			name:   "landing page",
			path:   "/",
			reader: stubReader{},
			code:   http.StatusOK,
			body:   []string{"Brink Flair Exporter", "/metrics", "/telemetry"},
		},
		{
			name:   "unknown path",
			path:   "/modbus",
			reader: stubReader{},
			code:   http.StatusNotFound,
		},
	}

	for _, loopTest := range tests {
		test := loopTest

		t.Run(test.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			telemetry := prometheus.NewRegistry()
			src := collector.NewDeviceSource(test.reader, cfg.Registers, collector.NewScrapeMetrics(telemetry), log.NewNopLogger())

			device := prometheus.NewRegistry()
			device.MustRegister(collector.NewCollector(cfg.Registers, cfg.Device.Name, src))

			router, err := newRouter(device, telemetry, "/metrics", "/telemetry", log.NewNopLogger())
			if err != nil {
				t.Fatal(err)
			}

			req, err := http.NewRequest("GET", test.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			if status := rr.Code; status != test.code {
				t.Errorf(
					"handler returned wrong status code: got %v want %v, body: '%v'",
					status, test.code, rr.Body.String(),
				)
			}
			for _, b := range test.body {
				if !strings.Contains(rr.Body.String(), b) {
					t.Errorf("expected body to contain %q, got '%v'", b, rr.Body.String())
				}
			}
		})
	}
}

func TestOverridesApply(t *testing.T) {
	c := config.DefaultConfig()
	overrides{}.apply(&c)
	if c.Device != config.DefaultConfig().Device {
		t.Fatalf("expected empty overrides to keep defaults, got %+v", c.Device)
	}

	overrides{
		port:       "127.0.0.1:1502",
		slaveID:    1,
		timeout:    2 * time.Second,
		deviceName: "attic",
	}.apply(&c)

	want := config.Device{Name: "attic", Port: "127.0.0.1:1502", SlaveID: 1, Timeout: 2000}
	if c.Device != want {
		t.Fatalf("expected %+v but got %+v", want, c.Device)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected overridden config to be valid: %v", err)
	}
}
