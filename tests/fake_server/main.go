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

// Command fake_server serves the Brink Flair register map over Modbus TCP so
// the exporter can be run without a ventilation unit:
//
//	go run ./tests/fake_server &
//	brink_flair_exporter --modbus.port=127.0.0.1:1502
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/tbrandon/mbserver"

	"github.com/brinkflair/brink_flair_exporter/config"
)

// values holds raw register contents of a unit running at normal level on a
// mild day.
var values = map[string]int16{
	"brink_flair_power_level":             2,
	"brink_flair_outside_temperature":     183,
	"brink_flair_outside_humidity":        61,
	"brink_flair_exhaust_temperature":     -12,
	"brink_flair_exhaust_humidity":        48,
	"brink_flair_ntc1_temperature":        205,
	"brink_flair_ntc2_temperature":        197,
	"brink_flair_rht_humidity":            52,
	"brink_flair_inlet_pressure":          463,
	"brink_flair_outlet_pressure":         512,
	"brink_flair_inlet_air_volume_set":    150,
	"brink_flair_inlet_air_volume_value":  148,
	"brink_flair_output_air_volume_set":   150,
	"brink_flair_output_air_volume_value": 151,
	"brink_flair_bypass_mode":             1,
	"brink_flair_bypass_state":            2,
	"brink_flair_filter_status":           0,
	"brink_flair_filter_age":              2184,
}

func main() {
	address := kingpin.Flag("listen-address", "Address to serve Modbus TCP on.").Default("127.0.0.1:1502").String()
	kingpin.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	serv := mbserver.NewServer()
	for _, r := range config.DefaultRegisters() {
		v := uint16(values[r.Name])
		switch r.FunctionCode {
		case config.ReadHoldingRegisters:
			serv.HoldingRegisters[r.Address] = v
		case config.ReadInputRegisters:
			serv.InputRegisters[r.Address] = v
		}
	}

	if err := serv.ListenTCP(*address); err != nil {
		level.Error(logger).Log("msg", "Error listening", "err", err)
		os.Exit(1)
	}
	defer serv.Close()

	level.Info(logger).Log("msg", "Listening", "address", *address)

	// The register banks are shared with the server goroutines and stay
	// fixed while it runs.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
