// Copyright 2025 The OpenCohort Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads runtime settings from the environment, with an
// optional YAML file as the base layer.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the settings the CLI and embedding hosts need.
type Config struct {
	DataDir  string `yaml:"data_dir" env:"MOCKDB_DATA_DIR" env-default:"./data"`
	InMemory bool   `yaml:"in_memory" env:"MOCKDB_IN_MEMORY" env-default:"false"`
	LogLevel string `yaml:"log_level" env:"MOCKDB_LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from the given YAML file (skipped when path
// is empty) and overlays environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}
