// Copyright 2017 Alejandro Sirgo Rica
//
// This file is part of Modbus_exporter.
//
//     Modbus_exporter is free software: you can redistribute it and/or modify
//     it under the terms of the GNU General Public License as published by
//     the Free Software Foundation, either version 3 of the License, or
//     (at your option) any later version.
//
//     Modbus_exporter is distributed in the hope that it will be useful,
//     but WITHOUT ANY WARRANTY; without even the implied warranty of
//     MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//     GNU General Public License for more details.
//
//     You should have received a copy of the GNU General Public License
//     along with Modbus_exporter.  If not, see <http://www.gnu.org/licenses/>.

// Package modbus contains all the modbus related components
package modbus

import (
	"encoding/binary"
	"fmt"
	stdlog "log"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/goburrow/modbus"

	"github.com/brinkflair/brink_flair_exporter/config"
)

// Handler is the subset of the goburrow client handlers the reader needs to
// own a connection.
type Handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// Reader owns the connection to the ventilation unit and reads single
// registers from it. Modbus RTU is half-duplex, so every transaction holds
// the reader lock.
type Reader struct {
	mu      sync.Mutex
	handler Handler
	client  modbus.Client
}

// NewReader opens the connection described by d. Frames are logged at debug
// level.
func NewReader(d config.Device, logger log.Logger) (*Reader, error) {
	protocol, err := d.Protocol()
	if err != nil {
		return nil, err
	}

	frameLogger := stdlog.New(log.NewStdlibAdapter(level.Debug(log.With(logger, "component", "transport"))), "", 0)

	var handler Handler
	switch protocol {
	case config.ModbusProtocolTCPIP:
		h := modbus.NewTCPClientHandler(d.Port)
		if d.Timeout != 0 {
			h.Timeout = time.Duration(d.Timeout) * time.Millisecond
		}
		h.SlaveId = d.SlaveID
		h.Logger = frameLogger
		handler = h
	case config.ModbusProtocolSerial:
		h := modbus.NewRTUClientHandler(d.Port)
		if d.Baudrate != 0 {
			h.BaudRate = d.Baudrate
		}
		if d.Databits != 0 {
			h.DataBits = d.Databits
		}
		if d.Parity != "" {
			h.Parity = d.Parity
		}
		if d.Stopbits != 0 {
			h.StopBits = d.Stopbits
		}
		if d.Timeout != 0 {
			h.Timeout = time.Duration(d.Timeout) * time.Millisecond
		}
		h.SlaveId = d.SlaveID
		h.Logger = frameLogger
		handler = h
	default:
		return nil, fmt.Errorf("unsupported protocol %q", protocol)
	}

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("unable to connect with device %s via %s: %w", d.Name, d.Port, err)
	}

	return newReader(handler, modbus.NewClient(handler)), nil
}

func newReader(h Handler, c modbus.Client) *Reader {
	return &Reader{handler: h, client: c}
}

// Close closes the connection.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handler == nil {
		return nil
	}
	return r.handler.Close()
}

// modbus read function type
type modbusFunc func(address, quantity uint16) ([]byte, error)

// Read reads the given register and returns its raw integer value, sign
// extended for signed registers. Transport errors are returned as is, the
// reader does not retry.
func (r *Reader) Read(reg config.Register) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var f modbusFunc
	switch reg.FunctionCode {
	case config.ReadHoldingRegisters:
		f = r.client.ReadHoldingRegisters
	case config.ReadInputRegisters:
		f = r.client.ReadInputRegisters
	default:
		return 0, fmt.Errorf("invalid function code %d for %s", reg.FunctionCode, reg.Name)
	}

	b, err := f(uint16(reg.Address), 1)
	if err != nil {
		return 0, fmt.Errorf("can't read %s at %s: %w", reg.Name, reg.Location(), err)
	}

	v, err := parseRegister(reg, b)
	if err != nil {
		return 0, fmt.Errorf("can't parse %s at %s: %w", reg.Name, reg.Location(), err)
	}
	return v, nil
}

// InsufficientRegistersError is returned in parseRegister() whenever not
// enough bytes are provided for a register.
type InsufficientRegistersError struct {
	e string
}

// Error implements the Golang error interface.
func (e *InsufficientRegistersError) Error() string {
	return fmt.Sprintf("insufficient amount of registers provided: %v", e.e)
}

// parseRegister interprets the first two bytes of rawData in network order.
func parseRegister(reg config.Register, rawData []byte) (int64, error) {
	if len(rawData) < 2 {
		return 0, &InsufficientRegistersError{fmt.Sprintf("expected at least 1, got %v bytes", len(rawData))}
	}

	i := binary.BigEndian.Uint16(rawData)
	if reg.Signed {
		return int64(int16(i)), nil
	}
	return int64(i), nil
}
