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

package config

const (
	// DefaultPort is the USB RS485 adapter the unit is usually wired to.
	DefaultPort = "/dev/ttyUSB0"
	// DefaultSlaveID is the factory Modbus address of a Flair unit.
	DefaultSlaveID = 20
	// DefaultTimeout is the per request timeout in milliseconds.
	DefaultTimeout = 500
	// DefaultDeviceName is the value of the name label on every gauge.
	DefaultDeviceName = "flair"
)

var ten = 10.0

// DefaultConfig returns the configuration used when no file is given. The
// serial line settings are left to the goburrow/serial defaults (19200 baud,
// 8 data bits, even parity, 1 stop bit), which match the Flair.
func DefaultConfig() Config {
	return Config{
		Device: Device{
			Name:    DefaultDeviceName,
			Port:    DefaultPort,
			SlaveID: DefaultSlaveID,
			Timeout: DefaultTimeout,
		},
		Registers: DefaultRegisters(),
	}
}

// DefaultRegisters returns the Brink Flair register map in scrape order.
func DefaultRegisters() []Register {
	return []Register{
		{
			Name:         "brink_flair_power_level",
			Help:         "The desired air flow rate (0 holiday, 1 low, 2 normal, 3 high)",
			Address:      8001,
			FunctionCode: ReadHoldingRegisters,
			Enum:         map[int64]string{0: "holiday", 1: "low", 2: "normal", 3: "high"},
		},
		{
			Name:         "brink_flair_outside_temperature",
			Help:         "Temperature sensor supply fan",
			Address:      4036,
			FunctionCode: ReadInputRegisters,
			Signed:       true,
			Divisor:      &ten,
			Unit:         "C",
		},
		{
			Name:         "brink_flair_outside_humidity",
			Help:         "Fan inlet sensor rel. humidity",
			Address:      4037,
			FunctionCode: ReadInputRegisters,
			Signed:       true,
			Unit:         "%",
		},
		{
			Name:         "brink_flair_exhaust_temperature",
			Help:         "Exhaust temperature",
			Address:      4046,
			FunctionCode: ReadInputRegisters,
			Signed:       true,
			Divisor:      &ten,
			Unit:         "C",
		},
		{
			Name:         "brink_flair_exhaust_humidity",
			Help:         "Exhaust humidity",
			Address:      4047,
			FunctionCode: ReadInputRegisters,
			Signed:       true,
			Unit:         "%",
		},
		{
			Name:         "brink_flair_ntc1_temperature",
			Help:         "NTC1 temperature",
			Address:      4081,
			FunctionCode: ReadInputRegisters,
			Signed:       true,
			Divisor:      &ten,
			Unit:         "C",
		},
		{
			Name:         "brink_flair_ntc2_temperature",
			Help:         "NTC2 temperature",
			Address:      4082,
			FunctionCode: ReadInputRegisters,
			Signed:       true,
			Divisor:      &ten,
			Unit:         "C",
		},
		{
			Name:         "brink_flair_rht_humidity",
			Help:         "RHT humidity",
			Address:      4083,
			FunctionCode: ReadInputRegisters,
			Signed:       true,
			Unit:         "%",
		},
		{
			Name:         "brink_flair_inlet_pressure",
			Help:         "Inlet pressure",
			Address:      4023,
			FunctionCode: ReadInputRegisters,
			Divisor:      &ten,
			Unit:         "Pa",
		},
		{
			Name:         "brink_flair_outlet_pressure",
			Help:         "Outlet pressure",
			Address:      4024,
			FunctionCode: ReadInputRegisters,
			Divisor:      &ten,
			Unit:         "Pa",
		},
		{
			Name:         "brink_flair_inlet_air_volume_set",
			Help:         "Inlet air volume set",
			Address:      4031,
			FunctionCode: ReadInputRegisters,
			Unit:         "m3",
		},
		{
			Name:         "brink_flair_inlet_air_volume_value",
			Help:         "Inlet air volume value",
			Address:      4032,
			FunctionCode: ReadInputRegisters,
			Unit:         "m3",
		},
		{
			Name:         "brink_flair_output_air_volume_set",
			Help:         "Outlet air volume set",
			Address:      4041,
			FunctionCode: ReadInputRegisters,
			Unit:         "m3",
		},
		{
			Name:         "brink_flair_output_air_volume_value",
			Help:         "Outlet air volume value",
			Address:      4042,
			FunctionCode: ReadInputRegisters,
			Unit:         "m3",
		},
		{
			Name:         "brink_flair_bypass_mode",
			Help:         "Bypass mode (0: automatic, 1: closed, 2: open)",
			Address:      6100,
			FunctionCode: ReadHoldingRegisters,
			Enum:         map[int64]string{0: "automatic", 1: "closed", 2: "open"},
		},
		{
			Name:         "brink_flair_bypass_state",
			Help:         "Bypass state (0: initialize, 1: open, 2: closed, 3: open, 4: closed, 255: error)",
			Address:      4050,
			FunctionCode: ReadInputRegisters,
			Enum:         map[int64]string{0: "initialize", 1: "open", 2: "closed", 3: "open", 4: "closed", 255: "error"},
		},
		{
			Name:         "brink_flair_filter_status",
			Help:         "Filter status (0: clean, 1: dirty)",
			Address:      4100,
			FunctionCode: ReadInputRegisters,
			Enum:         map[int64]string{0: "clean", 1: "dirty"},
		},
		{
			Name:         "brink_flair_filter_age",
			Help:         "Filters used in hours",
			Address:      4115,
			FunctionCode: ReadInputRegisters,
			Unit:         "hours",
		},
	}
}
