package collector

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/brinkflair/brink_flair_exporter/config"
)

func newTestCollector(reader *fakeReader) *Collector {
	regs := config.DefaultRegisters()
	src := NewDeviceSource(reader, regs, nil, log.NewNopLogger())
	return NewCollector(regs, "flair", src)
}

func TestCollectorGauges(t *testing.T) {
	c := newTestCollector(&fakeReader{values: map[string]int64{
		"brink_flair_power_level":         2,
		"brink_flair_outside_temperature": 183,
		"brink_flair_bypass_mode":         1,
	}})

	expected := `
# HELP brink_flair_power_level The desired air flow rate (0 holiday, 1 low, 2 normal, 3 high)
# TYPE brink_flair_power_level gauge
brink_flair_power_level{name="flair"} 2
# HELP brink_flair_outside_temperature Temperature sensor supply fan
# TYPE brink_flair_outside_temperature gauge
brink_flair_outside_temperature{name="flair"} 18.3
# HELP brink_flair_bypass_mode Bypass mode (0: automatic, 1: closed, 2: open)
# TYPE brink_flair_bypass_mode gauge
brink_flair_bypass_mode{name="flair"} 1
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"brink_flair_power_level", "brink_flair_outside_temperature", "brink_flair_bypass_mode")
	if err != nil {
		t.Fatal(err)
	}
}

func TestCollectorOneGaugePerRegister(t *testing.T) {
	c := newTestCollector(&fakeReader{})

	for i := 0; i < 2; i++ {
		if n := testutil.CollectAndCount(c); n != len(config.DefaultRegisters()) {
			t.Fatalf("expected %v metrics but got %v", len(config.DefaultRegisters()), n)
		}
	}
}

func TestCollectorUnknownEnum(t *testing.T) {
	c := newTestCollector(&fakeReader{values: map[string]int64{"brink_flair_filter_status": 9}})

	expected := `
# HELP brink_flair_filter_status Filter status (0: clean, 1: dirty)
# TYPE brink_flair_filter_status gauge
brink_flair_filter_status{name="flair"} 9
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "brink_flair_filter_status"); err != nil {
		t.Fatal(err)
	}
}

func TestCollectorScrapeFailure(t *testing.T) {
	c := newTestCollector(&fakeReader{fail: map[string]error{
		"brink_flair_filter_age": errors.New("modbus: response data size '0' does not match count '2'"),
	}})

	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(c)

	if _, err := reg.Gather(); err == nil {
		t.Fatal("expected gather to fail")
	}

	rr := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %v but got %v", http.StatusInternalServerError, rr.Code)
	}
	if strings.Contains(rr.Body.String(), "brink_flair_power_level{") {
		t.Fatal("expected no partial metrics on failure")
	}
}
