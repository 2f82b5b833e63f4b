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

package sample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/varigen/pkg/brokenwing"
	"github.com/cardinalhq/varigen/pkg/generator"
	"github.com/cardinalhq/varigen/pkg/state"
)

// countingSource counts draws so tests can check that failed requests
// consume none.
type countingSource struct {
	rs    *state.RunState
	draws int
}

func (c *countingSource) Uniform() float64 {
	c.draws++
	return c.rs.Uniform()
}

// brokenGenerator reports a validation error regardless of parameters.
type brokenGenerator struct {
	generator.Generator
}

func (brokenGenerator) Validate() error {
	return brokenwing.NewParameterError("lambda", "must be greater than 0, got %v", -1)
}

func isRounded(v float64, digits int) bool {
	p := math.Pow10(digits)
	return math.Abs(v*p-math.Round(v*p)) < 1e-6
}

func TestGenerateLengthAndRounding(t *testing.T) {
	g, err := generator.NewExponential(0.75)
	require.NoError(t, err)

	for _, n := range []int{1, 2, 17, 1000, MaxSampleSize - 1} {
		s, err := Generate(n, g, state.NewRunState(uint64(n)))
		require.NoError(t, err)
		require.Equal(t, n, s.Len())
		assert.Equal(t, DefaultDigits, s.Digits)
		assert.Equal(t, "exponential(lambda=0.75)", s.Distribution)
		for _, v := range s.Values {
			if !isRounded(v, DefaultDigits) {
				t.Fatalf("value %v is not rounded to %d digits", v, DefaultDigits)
			}
		}
	}
}

func TestGenerateWithDigits(t *testing.T) {
	g, err := generator.NewNormalBoxMuller(0, 1)
	require.NoError(t, err)
	s, err := Generate(500, g, state.NewRunState(3), WithDigits(1))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Digits)
	for _, v := range s.Values {
		assert.True(t, isRounded(v, 1), "value %v", v)
	}
}

func TestGenerateInvalidRequests(t *testing.T) {
	uniform, err := generator.NewUniform(0, 1)
	require.NoError(t, err)

	tests := []struct {
		name    string
		n       int
		g       generator.Generator
		opts    []Option
		wantErr []error
	}{
		{"zero size", 0, uniform, nil, []error{brokenwing.ErrInvalidSampleSize}},
		{"negative size", -5, uniform, nil, []error{brokenwing.ErrInvalidSampleSize}},
		{"size at limit", MaxSampleSize, uniform, nil, []error{brokenwing.ErrInvalidSampleSize}},
		{"bad digits", 10, uniform, []Option{WithDigits(11)}, []error{brokenwing.ErrInvalidParameter}},
		{"nil generator", 10, nil, nil, []error{brokenwing.ErrInvalidParameter}},
		{"bad parameter", 10, brokenGenerator{}, nil, []error{brokenwing.ErrInvalidParameter}},
		{
			"size and parameter",
			0, brokenGenerator{}, nil,
			[]error{brokenwing.ErrInvalidSampleSize, brokenwing.ErrInvalidParameter},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSource{rs: state.NewRunState(1)}
			s, err := Generate(tt.n, tt.g, src, tt.opts...)
			assert.Nil(t, s)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
			assert.Zero(t, src.draws, "no randomness may be consumed")
		})
	}
}

func TestGenerateUniformStaysInRange(t *testing.T) {
	g, err := generator.NewUniform(0, 10)
	require.NoError(t, err)
	s, err := Generate(1000, g, state.NewRunState(1000))
	require.NoError(t, err)
	require.Equal(t, 1000, s.Len())
	for _, v := range s.Values {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 10.0)
	}
}

func TestGenerateUniformNeverRoundsOntoMax(t *testing.T) {
	g, err := generator.NewUniform(0, 10)
	require.NoError(t, err)
	// 0.999996 * 10 would round to 10.0000 at four digits.
	src := generator.SourceFunc(func() float64 { return 0.999996 })
	s, err := Generate(3, g, src)
	require.NoError(t, err)
	for _, v := range s.Values {
		assert.Equal(t, 9.9999, v)
	}
}

func TestGenerateExponentialConcreteDraw(t *testing.T) {
	g, err := generator.NewExponential(2)
	require.NoError(t, err)
	src := generator.SourceFunc(func() float64 { return 0.5 })
	s, err := Generate(1, g, src)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3466}, s.Values)
}

func TestGenerateIsReproducible(t *testing.T) {
	g, err := generator.NewNormalCLT(5, 1)
	require.NoError(t, err)
	a, err := Generate(200, g, state.NewRunState(17))
	require.NoError(t, err)
	b, err := Generate(200, g, state.NewRunState(17))
	require.NoError(t, err)
	assert.Equal(t, a.Values, b.Values)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c, err := Generate(200, g, state.NewRunState(18))
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.2346, Round(1.23456, 4))
	assert.Equal(t, -1.2346, Round(-1.23456, 4))
	assert.Equal(t, 2.0, Round(1.5, 0))
	assert.Equal(t, 0.0, Round(-0.00001, 4))
	assert.False(t, math.Signbit(Round(-0.00001, 4)))
	assert.Equal(t, 1e305, Round(1e305, 4))
	assert.Equal(t, 1.7e-5, Round(1.7e-5, 10))
}

func TestSampleValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       *Sample
		wantErr error
	}{
		{"valid", FromValues([]float64{1, 2}, 4), nil},
		{"empty", FromValues(nil, 4), brokenwing.ErrInvalidSampleSize},
		{"too large", FromValues(make([]float64, MaxSampleSize), 4), brokenwing.ErrInvalidSampleSize},
		{"negative digits", FromValues([]float64{1}, -1), brokenwing.ErrInvalidParameter},
		{"too many digits", FromValues([]float64{1}, 300), brokenwing.ErrInvalidParameter},
		{"infinite value", FromValues([]float64{1, math.Inf(1)}, 4), brokenwing.ErrInvalidParameter},
		{"nan value", FromValues([]float64{math.NaN()}, 4), brokenwing.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFromValuesCopies(t *testing.T) {
	in := []float64{1, 2, 3}
	s := FromValues(in, 4)
	in[0] = 99
	assert.Equal(t, []float64{1, 2, 3}, s.Values)
}

func TestSummarize(t *testing.T) {
	_, err := Summarize(&Sample{})
	assert.ErrorIs(t, err, brokenwing.ErrEmptySample)

	sum, err := Summarize(FromValues([]float64{5}, 4))
	require.NoError(t, err)
	assert.Equal(t, Summary{N: 1, Mean: 5, Min: 5, Max: 5}, sum)

	sum, err = Summarize(FromValues([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 4))
	require.NoError(t, err)
	assert.Equal(t, 8, sum.N)
	assert.InDelta(t, 5.0, sum.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), sum.StdDev, 1e-12)
	assert.Equal(t, 2.0, sum.Min)
	assert.Equal(t, 9.0, sum.Max)
}

func TestSummarizeExtremeValues(t *testing.T) {
	sum, err := Summarize(FromValues([]float64{-1e308, 1e308}, 4))
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum.Mean)
	assert.False(t, math.IsInf(sum.StdDev, 0))
	assert.InEpsilon(t, math.Sqrt2*1e308, sum.StdDev, 1e-12)
}
