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

package generator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cardinalhq/varigen/pkg/brokenwing"
)

// ExponentialSpec describes a negative exponential distribution with rate
// Lambda (mean 1/Lambda).
type ExponentialSpec struct {
	GeneratorSpec `mapstructure:",squash"`

	Lambda float64 `mapstructure:"lambda" yaml:"lambda" json:"lambda"`
}

type Exponential struct {
	spec ExponentialSpec
}

var _ Generator = (*Exponential)(nil)

func NewExponential(lambda float64) (*Exponential, error) {
	e := &Exponential{spec: ExponentialSpec{
		GeneratorSpec: GeneratorSpec{Type: TypeExponential},
		Lambda:        lambda,
	}}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func newExponentialFromSpec(is map[string]any) (*Exponential, error) {
	spec := ExponentialSpec{}
	if err := decodeSpec(TypeExponential, is, &spec); err != nil {
		return nil, err
	}
	return NewExponential(spec.Lambda)
}

func (e *Exponential) Validate() error {
	if err := checkFinite("lambda", e.spec.Lambda); err != nil {
		return err
	}
	if e.spec.Lambda <= 0 {
		return brokenwing.NewParameterError("lambda", "must be greater than 0, got %v", e.spec.Lambda)
	}
	return checkReach("lambda", maxExponentialDraw/e.spec.Lambda)
}

// Next applies the inverse CDF, -ln(1-U)/lambda. U >= 1 would take the
// logarithm of zero and is redrawn.
func (e *Exponential) Next(src Source) float64 {
	for {
		u := src.Uniform()
		if u < 1 {
			return -math.Log(1-u) / e.spec.Lambda
		}
	}
}

func (e *Exponential) Type() string {
	return TypeExponential
}

func (e *Exponential) Describe() string {
	return fmt.Sprintf("exponential(lambda=%g)", e.spec.Lambda)
}

func (e *Exponential) Theoretical() Moments {
	d := distuv.Exponential{Rate: e.spec.Lambda}
	return Moments{Mean: d.Mean(), StdDev: d.StdDev()}
}
