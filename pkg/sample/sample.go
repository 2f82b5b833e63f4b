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
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/cardinalhq/varigen/pkg/brokenwing"
	"github.com/cardinalhq/varigen/pkg/generator"
)

const (
	// MaxSampleSize is the exclusive upper bound on n.
	MaxSampleSize = 1_000_000
	DefaultDigits = 4
	MaxDigits     = 10
)

// Sample is an ordered sequence of rounded variates. The order is the
// generation order and carries no further meaning.
type Sample struct {
	Values       []float64 `json:"values"`
	Digits       int       `json:"digits"`
	Distribution string    `json:"distribution,omitempty"`
	Seed         uint64    `json:"seed,omitempty"`
}

func (s *Sample) Len() int {
	return len(s.Values)
}

// Validate checks a sample that did not come from Generate, such as one
// loaded from a file, against the same bounds.
func (s *Sample) Validate() error {
	var result *multierror.Error
	result = multierror.Append(result, Validate(s.Len(), WithDigits(s.Digits)))
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			result = multierror.Append(result,
				brokenwing.NewParameterError("values", "value %d is not finite: %v", i, v))
			break
		}
	}
	return result.ErrorOrNil()
}

// Fingerprint hashes the values in order. Two samples with the same
// fingerprint hold the same numbers.
func (s *Sample) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, v := range s.Values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

type options struct {
	digits int
}

type Option func(*options)

// WithDigits sets the number of decimal digits kept after rounding.
func WithDigits(d int) Option {
	return func(o *options) {
		o.digits = d
	}
}

// Validate checks a request for n values at the digits set by opts.
func Validate(n int, opts ...Option) error {
	o := newOptions(opts)
	var result *multierror.Error
	if n <= 0 || n >= MaxSampleSize {
		result = multierror.Append(result, brokenwing.NewSampleSizeError(n, MaxSampleSize))
	}
	if o.digits < 0 || o.digits > MaxDigits {
		result = multierror.Append(result,
			brokenwing.NewParameterError("digits", "must be between 0 and %d, got %d", MaxDigits, o.digits))
	}
	return result.ErrorOrNil()
}

func newOptions(opts []Option) options {
	o := options{digits: DefaultDigits}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Generate draws n variates from g, rounding each to the configured number
// of digits. Every parameter is validated before the first draw, so a
// failed request consumes no randomness and returns no partial sample.
func Generate(n int, g generator.Generator, src generator.Source, opts ...Option) (*Sample, error) {
	o := newOptions(opts)

	var result *multierror.Error
	result = multierror.Append(result, Validate(n, opts...))
	if g == nil {
		result = multierror.Append(result,
			brokenwing.NewParameterError("distribution", "no generator given"))
	} else if err := g.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	round := rounder(o.digits)
	if b, ok := g.(generator.Bounded); ok {
		low, high := b.Support()
		round = boundedRounder(o.digits, low, high)
	}

	values := make([]float64, n)
	for i := range values {
		values[i] = round(g.Next(src))
	}

	return &Sample{
		Values:       values,
		Digits:       o.digits,
		Distribution: g.Describe(),
	}, nil
}

// FromValues wraps already generated values, e.g. loaded from a file.
func FromValues(values []float64, digits int) *Sample {
	return &Sample{
		Values: slices.Clone(values),
		Digits: digits,
	}
}

// Round rounds v half away from zero to the given number of decimal digits.
func Round(v float64, digits int) float64 {
	return rounder(digits)(v)
}

func rounder(digits int) func(float64) float64 {
	return func(v float64) float64 {
		r := scalar.Round(v, digits)
		if r == 0 {
			// fold -0 into 0
			return 0
		}
		return r
	}
}

// boundedRounder keeps rounded values inside [low, high) when the rounding
// grid allows it: a value that would round onto or past high is truncated
// instead, and one that would round below low is rounded up.
func boundedRounder(digits int, low, high float64) func(float64) float64 {
	p := math.Pow10(digits)
	round := rounder(digits)
	return func(v float64) float64 {
		r := round(v)
		if r >= high {
			if f := math.Floor(v*p) / p; f >= low && f < high {
				return f
			}
		}
		if r < low {
			if c := math.Ceil(v*p) / p; c >= low && c < high {
				return c
			}
		}
		return r
	}
}
