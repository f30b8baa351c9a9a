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

// Package config contains all the configuration related components
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// LoadConfig unmarshals the given configuration file on top of
// DefaultConfig. An empty path returns the defaults. A registers list in the
// file replaces the default register map as a whole.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	return parseConfig(c, b)
}

func parseConfig(c Config, b []byte) (Config, error) {
	if err := yaml.UnmarshalStrict(b, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %v", err)
	}

	return c, nil
}
