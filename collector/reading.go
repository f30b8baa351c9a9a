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
	"fmt"
	"strconv"

	"github.com/brinkflair/brink_flair_exporter/config"
)

// Reading is a single converted register value.
type Reading struct {
	Register config.Register
	Raw      int64
	Value    float64
	// Label is the decoded state of enum registers, empty otherwise.
	Label string
}

// Convert turns a raw register value into a Reading.
func Convert(reg config.Register, raw int64) Reading {
	r := Reading{
		Register: reg,
		Raw:      raw,
		Value:    float64(raw) / reg.Scale(),
	}
	if reg.Enum != nil {
		r.Label = Label(reg, raw)
	}
	return r
}

// Label returns the state name of raw. Values missing from the enum are
// reported as unknown(raw) so that an unexpected device state still yields
// a valid gauge.
func Label(reg config.Register, raw int64) string {
	if l, ok := reg.Enum[raw]; ok {
		return l
	}
	return fmt.Sprintf("unknown(%d)", raw)
}

// String formats the reading for console output, e.g.
// "brink_flair_power_level: 2 (normal)" or
// "brink_flair_outside_temperature: 18.3 C".
func (r Reading) String() string {
	v := strconv.FormatFloat(r.Value, 'f', -1, 64)
	switch {
	case r.Register.Enum != nil:
		return fmt.Sprintf("%s: %s (%s)", r.Register.Name, v, r.Label)
	case r.Register.Unit != "":
		return fmt.Sprintf("%s: %s %s", r.Register.Name, v, r.Register.Unit)
	default:
		return fmt.Sprintf("%s: %s", r.Register.Name, v)
	}
}
