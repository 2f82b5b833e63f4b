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

// Package generator turns uniform draws on (0,1) into variates of a target
// distribution.
package generator

import (
	"fmt"
	"math"

	"github.com/cardinalhq/varigen/pkg/brokenwing"
)

// Source yields independent uniform draws on the open interval (0,1).
type Source interface {
	Uniform() float64
}

// SourceFunc adapts a plain function to a Source.
type SourceFunc func() float64

func (f SourceFunc) Uniform() float64 {
	return f()
}

// Generator produces one variate per call to Next. Implementations hold no
// state beyond their parameters; all randomness comes from the Source.
type Generator interface {
	// Validate checks the distribution parameters. It never consumes
	// randomness.
	Validate() error
	// Next returns one variate. Parameters must have been validated.
	Next(src Source) float64
	// Describe returns a short human-readable name including parameters.
	Describe() string
	// Type returns the spec type name, e.g. "uniform".
	Type() string
	// Theoretical returns the moments of the target distribution.
	Theoretical() Moments
}

// Bounded is implemented by generators whose support has a finite upper
// bound that is excluded from the result range.
type Bounded interface {
	Support() (low, high float64)
}

// Moments are the mean and standard deviation of a distribution.
type Moments struct {
	Mean   float64
	StdDev float64
}

type GeneratorSpec struct {
	Type string `mapstructure:"type" yaml:"type" json:"type"`
}

const (
	TypeUniform     = "uniform"
	TypeExponential = "exponential"
	TypeNormal      = "normal"
)

// CreateGenerator builds a Generator from a decoded spec map. The "type"
// key selects the distribution; remaining keys are its parameters.
// The returned generator has already been validated.
func CreateGenerator(spec map[string]any) (Generator, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: missing distribution spec", brokenwing.ErrUnknownDistribution)
	}
	typeAny, ok := spec["type"]
	if !ok {
		return nil, fmt.Errorf("%w: missing type in distribution spec", brokenwing.ErrUnknownDistribution)
	}
	distType, ok := typeAny.(string)
	if !ok {
		return nil, fmt.Errorf("%w: type in distribution spec is not a string", brokenwing.ErrUnknownDistribution)
	}

	var g Generator
	var err error
	switch distType {
	case TypeUniform:
		g, err = newUniformFromSpec(spec)
	case TypeExponential:
		g, err = newExponentialFromSpec(spec)
	case TypeNormal:
		g, err = newNormalFromSpec(spec)
	default:
		return nil, fmt.Errorf("%w: %q", brokenwing.ErrUnknownDistribution, distType)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Upper bounds on the magnitude of the standard transforms for any float64
// draw in (0,1). 1-U is never below 2^-53, so -ln(1-U) < 37, and U1 is
// never below the smallest denormal, so sqrt(-2 ln U1) < 39.
const (
	maxExponentialDraw = 37
	maxBoxMullerZ      = 39
)

// checkReach rejects parameters whose extreme output is not a finite
// float64.
func checkReach(field string, reach float64) error {
	if math.IsInf(reach, 0) || math.IsNaN(reach) {
		return brokenwing.NewParameterError(field, "produces values outside the float64 range")
	}
	return nil
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return brokenwing.NewParameterError(field, "must be a finite number, got %v", v)
	}
	return nil
}
