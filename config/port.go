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
	"net"
	"strconv"
	"strings"
)

var serialPrefix = [...]string{"/dev/ttyACM", "/dev/ttyUSB", "/dev/ttyS", "/dev/ttyAMA"}

// CheckPortTarget identifies the protocol needed to reach the given port.
// Serial device paths map to RTU, host:port pairs to Modbus TCP, e.g. a
// serial gateway or the fake server under tests/.
func CheckPortTarget(port string) (ModbusProtocol, error) {
	for _, prefix := range serialPrefix {
		if !strings.HasPrefix(port, prefix) || len(port) == len(prefix) {
			continue
		}
		if v, err := strconv.Atoi(port[len(prefix):]); err == nil && v >= 0 {
			return ModbusProtocolSerial, nil
		}
	}

	// /dev/serial/by-id links are stable across reboots.
	if strings.HasPrefix(port, "/dev/serial/by-id/") && len(port) > len("/dev/serial/by-id/") {
		return ModbusProtocolSerial, nil
	}

	host, p, err := net.SplitHostPort(port)
	if err == nil {
		if _, err := strconv.ParseUint(p, 10, 16); err != nil {
			return "", &ModbusProtocolValidationError{fmt.Sprintf("invalid port number in %q", port)}
		}
		if net.ParseIP(host) != nil || host == "localhost" {
			return ModbusProtocolTCPIP, nil
		}
	}

	return "", &ModbusProtocolValidationError{fmt.Sprintf("unable to identify protocol of port %q", port)}
}
