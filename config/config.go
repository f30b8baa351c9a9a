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

import (
	"fmt"
	"math"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/prometheus/common/model"
)

// Config represents the configuration of the Flair exporter.
type Config struct {
	Device    Device     `yaml:"device"`
	Registers []Register `yaml:"registers"`
}

// Validate semantically validates the given config.
func (c *Config) Validate() error {
	var err error

	if devErr := c.Device.validate(); devErr != nil {
		err = multierror.Append(err, devErr)
	}

	if len(c.Registers) == 0 {
		err = multierror.Append(err, fmt.Errorf("no register definitions found"))
	}

	names := make(map[string]struct{}, len(c.Registers))
	locations := make(map[string]string, len(c.Registers))
	for _, r := range c.Registers {
		if regErr := r.validate(); regErr != nil {
			err = multierror.Append(err, regErr)
			continue
		}
		if _, ok := names[r.Name]; ok {
			err = multierror.Append(err, fmt.Errorf("duplicate register name %q", r.Name))
		}
		names[r.Name] = struct{}{}

		loc := r.Location()
		if other, ok := locations[loc]; ok {
			err = multierror.Append(err, fmt.Errorf("registers %q and %q both read %s", other, r.Name, loc))
		}
		locations[loc] = r.Name
	}

	return err
}

// Device defines the connection parameters of the ventilation unit.
// Parity Values => N (None), E (Even), O (Odd)
//
// Timeout is in milliseconds. Zero values fall back to the goburrow/serial
// defaults: Baudrate: 19200, Databits: 8, Parity: E, Stopbits: 1
type Device struct {
	Name     string `yaml:"name"`
	Port     string `yaml:"port"`
	SlaveID  byte   `yaml:"slaveId"`
	Timeout  int    `yaml:"timeout"`
	Baudrate int    `yaml:"baudrate"`
	Databits int    `yaml:"databits"`
	Stopbits int    `yaml:"stopbits"`
	Parity   string `yaml:"parity"`
}

// Protocol returns the protocol implied by the device port.
func (d *Device) Protocol() (ModbusProtocol, error) {
	return CheckPortTarget(d.Port)
}

// validate tries to find inconsistencies in the parameters of a device.
func (d *Device) validate() error {
	var err error

	if !model.LabelValue(d.Name).IsValid() || d.Name == "" {
		err = multierror.Append(err, fmt.Errorf("invalid device name %q", d.Name))
	}

	// 0 is the broadcast address and 248-255 are reserved.
	if d.SlaveID == 0 || d.SlaveID > 247 {
		err = multierror.Append(err, fmt.Errorf("invalid slave id %d in device \"%s\"", d.SlaveID, d.Name))
	}

	if d.Timeout < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid negative timeout in device \"%s\"", d.Name))
	}

	protocol, protocolErr := d.Protocol()
	if protocolErr != nil {
		return multierror.Append(err, protocolErr)
	}

	switch protocol {
	case ModbusProtocolSerial:
		if d.Baudrate < 0 || d.Stopbits < 0 || d.Databits < 0 {
			newErr := fmt.Errorf("invalid negative value in device \"%s\"", d.Name)
			err = multierror.Append(err, newErr)
		}
		// Data bits: default, 5, 6, 7 or 8
		if d.Databits != 0 && (d.Databits < 5 || d.Databits > 8) {
			newErr := fmt.Errorf("invalid data bits value in device \"%s\"", d.Name)
			err = multierror.Append(err, newErr)
		}
		// Stop bits: default, 1 or 2
		if d.Stopbits > 2 {
			newErr := fmt.Errorf("invalid stop bits value in device \"%s\"", d.Name)
			err = multierror.Append(err, newErr)
		}
		// Parity: N (None), E (Even), O (Odd)
		if d.Parity != "N" && d.Parity != "E" && d.Parity != "O" &&
			d.Parity != "" {
			newErr := fmt.Errorf("invalid parity value in device \"%s\" "+
				"N (None), E (Even), O (Odd)", d.Name)
			err = multierror.Append(err, newErr)
		}
	// checking the absence of specific parameters for a serial connection
	case ModbusProtocolTCPIP:
		if d.Parity != "" || d.Stopbits != 0 || d.Databits != 0 || d.Baudrate != 0 {
			newErr := fmt.Errorf("invalid argument in device %s, TCP targets don't "+
				"use Parity, Stopbits, Databits or Baudrate", d.Name)
			err = multierror.Append(err, newErr)
		}
	}

	return err
}

// RegisterAddr is the zero based address of a register on the wire.
type RegisterAddr uint16

// FunctionCode is the Modbus function used to read a register.
type FunctionCode uint8

const (
	// ReadHoldingRegisters reads the read/write settings block (8001, 6100).
	ReadHoldingRegisters FunctionCode = 3
	// ReadInputRegisters reads the read-only measurement block (40xx, 41xx).
	ReadInputRegisters FunctionCode = 4
)

func (f FunctionCode) validate() error {
	switch f {
	case ReadHoldingRegisters, ReadInputRegisters:
		return nil
	}
	return fmt.Errorf("expected function code %d or %d but got '%d'",
		ReadHoldingRegisters, ReadInputRegisters, f)
}

// Register defines how a single 16 bit Modbus register is read and turned
// into a gauge.
type Register struct {
	// Name of the metric in the Prometheus output format.
	Name string `yaml:"name"`

	// Help text of the metric in the Prometheus output format.
	Help string `yaml:"help"`

	Address RegisterAddr `yaml:"address"`

	FunctionCode FunctionCode `yaml:"functionCode"`

	// Decimals shifts the decimal point of the raw value to the left.
	Decimals int `yaml:"decimals"`

	// Signed interprets the register as two's complement int16.
	Signed bool `yaml:"signed"`

	// Divisor is applied on top of Decimals.
	Divisor *float64 `yaml:"divisor,omitempty"`

	// Unit is only used for console output.
	Unit string `yaml:"unit,omitempty"`

	// Enum maps raw values to states. It is only used for console output,
	// the gauge carries the raw value.
	Enum map[int64]string `yaml:"enum,omitempty"`
}

// Scale returns the number the raw register value is divided by.
func (r *Register) Scale() float64 {
	s := math.Pow10(r.Decimals)
	if r.Divisor != nil {
		s *= *r.Divisor
	}
	return s
}

// Location returns a unique, human readable identifier of the register on
// the device.
func (r *Register) Location() string {
	return fmt.Sprintf("fc%d/%d", r.FunctionCode, r.Address)
}

// validate semantically validates the given register definition.
func (r *Register) validate() error {
	if !model.IsValidMetricName(model.LabelValue(r.Name)) {
		return fmt.Errorf("invalid metric name %q", r.Name)
	}

	if err := r.FunctionCode.validate(); err != nil {
		return fmt.Errorf("invalid register definition %v: %v", r.Name, err)
	}

	if r.Decimals < 0 || r.Decimals > 4 {
		return fmt.Errorf("invalid register definition %v: decimals must be between 0 and 4", r.Name)
	}

	if r.Divisor != nil && *r.Divisor == 0.0 {
		return fmt.Errorf("invalid register definition %v: divisor cannot be 0", r.Name)
	}

	if r.Enum != nil && (r.Divisor != nil || r.Decimals != 0) {
		return fmt.Errorf("invalid register definition %v: enum cannot be scaled", r.Name)
	}

	return nil
}

// ModbusProtocol specifies the protocol used to retrieve modbus data.
type ModbusProtocol string

const (
	// ModbusProtocolTCPIP represents modbus via TCP/IP.
	ModbusProtocolTCPIP = "tcp/ip"
	// ModbusProtocolSerial represents modbus via Serial.
	ModbusProtocolSerial = "serial"
)

// ModbusProtocolValidationError is returned on invalid or unsupported modbus
// protocol specifications.
type ModbusProtocolValidationError struct {
	e string
}

// Error implements the Golang error interface.
func (e *ModbusProtocolValidationError) Error() string {
	return e.e
}
