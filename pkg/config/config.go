// Copyright 2025 CardinalHQ, Inc
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

package config

import (
	"log/slog"
	"maps"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBins    = 5
	DefaultDigits  = 4
	DefaultTimeout = 5 * time.Second
)

// Config describes one generation request. Files are merged in order, with
// later files overriding earlier ones.
type Config struct {
	Seed            uint64          `mapstructure:"seed" yaml:"seed" json:"seed"`
	SampleSize      int             `mapstructure:"n" yaml:"n" json:"n"`
	Bins            int             `mapstructure:"bins" yaml:"bins" json:"bins"`
	Digits          *int            `mapstructure:"digits" yaml:"digits" json:"digits"`
	Cumulative      bool            `mapstructure:"cumulative" yaml:"cumulative" json:"cumulative"`
	Distribution    map[string]any  `mapstructure:"distribution" yaml:"distribution" json:"distribution"`
	Chart           string          `mapstructure:"chart" yaml:"chart" json:"chart"`
	Output          string          `mapstructure:"output" yaml:"output" json:"output"`
	Metrics         map[string]any  `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
	OTLPDestination OTLPDestination `mapstructure:"otlpDestination" yaml:"otlpDestination" json:"otlpDestination"`
}

type OTLPDestination struct {
	Endpoint string            `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	Headers  map[string]string `mapstructure:"headers" yaml:"headers" json:"headers"`
	Timeout  time.Duration     `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// DigitsOrDefault returns the configured rounding precision, or
// DefaultDigits when none was set.
func (c *Config) DigitsOrDefault() int {
	if c.Digits == nil {
		return DefaultDigits
	}
	return *c.Digits
}

func NewConfig() *Config {
	return &Config{
		Bins: DefaultBins,
		OTLPDestination: OTLPDestination{
			Timeout: DefaultTimeout,
		},
	}
}

func LoadConfigs(fnames []string) (*Config, error) {
	merged := NewConfig()
	for _, fname := range fnames {
		slog.Info("Loading config", "file", fname)
		config, err := loadConfig(fname)
		if err != nil {
			return nil, err
		}
		merge(merged, config)
	}
	return merged, nil
}

func merge(merged, config *Config) {
	if config.Seed != 0 {
		merged.Seed = config.Seed
	}
	if config.SampleSize != 0 {
		merged.SampleSize = config.SampleSize
	}
	if config.Bins != 0 {
		merged.Bins = config.Bins
	}
	if config.Digits != nil {
		d := *config.Digits
		merged.Digits = &d
	}
	if config.Cumulative {
		merged.Cumulative = true
	}
	if config.Chart != "" {
		merged.Chart = config.Chart
	}
	if config.Output != "" {
		merged.Output = config.Output
	}
	if config.Distribution != nil {
		// A later distribution block replaces the earlier one wholesale,
		// so parameters of different distributions never mix.
		merged.Distribution = maps.Clone(config.Distribution)
	}
	if config.Metrics != nil {
		merged.Metrics = maps.Clone(config.Metrics)
	}
	if config.OTLPDestination.Timeout != 0 {
		merged.OTLPDestination.Timeout = config.OTLPDestination.Timeout
	}
	if config.OTLPDestination.Endpoint != "" {
		merged.OTLPDestination.Endpoint = config.OTLPDestination.Endpoint
	}
	if config.OTLPDestination.Headers != nil {
		if merged.OTLPDestination.Headers == nil {
			merged.OTLPDestination.Headers = make(map[string]string)
		}
		maps.Copy(merged.OTLPDestination.Headers, config.OTLPDestination.Headers)
	}
}

func loadConfig(fname string) (*Config, error) {
	var config Config
	if err := LoadYAML(fname, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func LoadYAML(fname string, config *Config) error {
	b, err := os.ReadFile(fname)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, config)
}

func MarshalYAML(config *Config) ([]byte, error) {
	b, err := yaml.Marshal(config)
	if err != nil {
		return nil, err
	}
	return b, nil
}
