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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(body), 0o600))
	return fname
}

func TestLoadConfigsMerges(t *testing.T) {
	base := writeFile(t, "base.yaml", `
seed: 11
n: 1000
bins: 10
distribution:
  type: uniform
  min: 0
  max: 10
otlpDestination:
  endpoint: http://localhost:4318
  headers:
    a: "1"
`)
	override := writeFile(t, "override.yaml", `
n: 500
digits: 2
distribution:
  type: exponential
  lambda: 2
otlpDestination:
  timeout: 10s
  headers:
    b: "2"
`)

	cfg, err := LoadConfigs([]string{base, override})
	require.NoError(t, err)

	assert.Equal(t, uint64(11), cfg.Seed)
	assert.Equal(t, 500, cfg.SampleSize)
	assert.Equal(t, 10, cfg.Bins)
	assert.Equal(t, 2, cfg.DigitsOrDefault())
	assert.Equal(t, map[string]any{"type": "exponential", "lambda": 2}, cfg.Distribution)
	assert.Equal(t, "http://localhost:4318", cfg.OTLPDestination.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.OTLPDestination.Timeout)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, cfg.OTLPDestination.Headers)
}

func TestLoadConfigsDefaults(t *testing.T) {
	fname := writeFile(t, "empty.yaml", "n: 3\n")
	cfg, err := LoadConfigs([]string{fname})
	require.NoError(t, err)

	assert.Equal(t, DefaultBins, cfg.Bins)
	assert.Equal(t, DefaultDigits, cfg.DigitsOrDefault())
	assert.Equal(t, DefaultTimeout, cfg.OTLPDestination.Timeout)
	assert.Nil(t, cfg.Distribution)
}

func TestLoadConfigsMissingFile(t *testing.T) {
	_, err := LoadConfigs([]string{filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestMarshalYAMLRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.SampleSize = 42
	cfg.Seed = 7
	digits := 0
	cfg.Digits = &digits
	cfg.Distribution = map[string]any{"type": "exponential", "lambda": 2.5}
	cfg.OTLPDestination.Headers = map[string]string{"x-api-key": "k"}

	b, err := MarshalYAML(cfg)
	require.NoError(t, err)
	fname := writeFile(t, "dump.yaml", string(b))

	var got Config
	require.NoError(t, LoadYAML(fname, &got))
	assert.Equal(t, 42, got.SampleSize)
	assert.Equal(t, uint64(7), got.Seed)
	assert.Equal(t, DefaultBins, got.Bins)
	require.NotNil(t, got.Digits)
	assert.Equal(t, 0, got.DigitsOrDefault())
	assert.Equal(t, "exponential", got.Distribution["type"])
	assert.Equal(t, 2.5, got.Distribution["lambda"])
	assert.Equal(t, DefaultTimeout, got.OTLPDestination.Timeout)
	assert.Equal(t, "k", got.OTLPDestination.Headers["x-api-key"])
}

func TestJSONDecodeRejectsUnknownFields(t *testing.T) {
	var target struct {
		Values []float64 `json:"values"`
	}
	err := JSONDecode(strings.NewReader(`{"values":[1,2],"extra":true}`), &target)
	assert.Error(t, err)

	err = JSONDecode(strings.NewReader(`{"values":[1,2]}`), &target)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, target.Values)
}

func TestNewMapstructureDecoderRejectsUnused(t *testing.T) {
	var target struct {
		Min float64 `mapstructure:"min"`
	}
	decoder, err := NewMapstructureDecoder(&target)
	require.NoError(t, err)
	assert.Error(t, decoder.Decode(map[string]any{"min": 1, "mxa": 2}))
}

func TestWriteJSONThenLoadJSON(t *testing.T) {
	type payload struct {
		Values []float64 `json:"values"`
		Digits int       `json:"digits"`
	}
	fname := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, WriteJSON(fname, payload{Values: []float64{1.25, -3}, Digits: 2}))

	var got payload
	require.NoError(t, LoadJSON(fname, &got))
	assert.Equal(t, []float64{1.25, -3}, got.Values)
	assert.Equal(t, 2, got.Digits)

	assert.Error(t, LoadJSON(filepath.Join(t.TempDir(), "missing.json"), &got))
}
