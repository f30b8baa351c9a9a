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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), c)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestLoadConfigDeviceOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flair.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
device:
  name: attic
  port: /dev/ttyAMA0
  timeout: 1000
`), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	require.Equal(t, "attic", c.Device.Name)
	require.Equal(t, "/dev/ttyAMA0", c.Device.Port)
	require.Equal(t, 1000, c.Device.Timeout)
	require.Equal(t, byte(DefaultSlaveID), c.Device.SlaveID)
	require.Equal(t, DefaultRegisters(), c.Registers)
}

func TestParseConfigRegisters(t *testing.T) {
	c, err := parseConfig(DefaultConfig(), []byte(`
registers:
  - name: brink_flair_preheater_state
    help: Preheater state
    address: 4060
    functionCode: 4
    enum:
      0: initialize
      1: inactive
      2: active
      3: test mode
  - name: brink_flair_flow_rate_low
    help: Flow rate level 1
    address: 6001
    functionCode: 3
    unit: m3
`))
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	require.Len(t, c.Registers, 2)

	pre := c.Registers[0]
	require.Equal(t, RegisterAddr(4060), pre.Address)
	require.Equal(t, ReadInputRegisters, pre.FunctionCode)
	require.Equal(t, "test mode", pre.Enum[3])

	require.Equal(t, "m3", c.Registers[1].Unit)
}

func TestParseConfigUnknownField(t *testing.T) {
	_, err := parseConfig(DefaultConfig(), []byte("device:\n  baud: 9600\n"))
	require.Error(t, err)
}
