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

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cardinalhq/varigen/pkg/brokenwing"
	"github.com/cardinalhq/varigen/pkg/config"
)

// UniformSpec describes a continuous uniform distribution on [Min, Max).
type UniformSpec struct {
	GeneratorSpec `mapstructure:",squash"`

	Min float64 `mapstructure:"min" yaml:"min" json:"min"`
	Max float64 `mapstructure:"max" yaml:"max" json:"max"`
}

type Uniform struct {
	spec UniformSpec
}

var (
	_ Generator = (*Uniform)(nil)
	_ Bounded   = (*Uniform)(nil)
)

func NewUniform(min, max float64) (*Uniform, error) {
	u := &Uniform{spec: UniformSpec{
		GeneratorSpec: GeneratorSpec{Type: TypeUniform},
		Min:           min,
		Max:           max,
	}}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func newUniformFromSpec(is map[string]any) (*Uniform, error) {
	spec := UniformSpec{}
	if err := decodeSpec(TypeUniform, is, &spec); err != nil {
		return nil, err
	}
	return NewUniform(spec.Min, spec.Max)
}

func (u *Uniform) Validate() error {
	var result *multierror.Error
	if err := checkFinite("min", u.spec.Min); err != nil {
		result = multierror.Append(result, err)
	}
	if err := checkFinite("max", u.spec.Max); err != nil {
		result = multierror.Append(result, err)
	}
	if result == nil && u.spec.Min >= u.spec.Max {
		result = multierror.Append(result,
			brokenwing.NewParameterError("min", "must be less than max (%v >= %v)", u.spec.Min, u.spec.Max))
	}
	if result == nil {
		if err := checkReach("max", u.spec.Max-u.spec.Min); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Next returns min + U*(max-min). A draw that rounds up to max is redrawn
// so the result stays in [min, max).
func (u *Uniform) Next(src Source) float64 {
	span := u.spec.Max - u.spec.Min
	for {
		v := u.spec.Min + src.Uniform()*span
		if v < u.spec.Max {
			return v
		}
	}
}

func (u *Uniform) Support() (float64, float64) {
	return u.spec.Min, u.spec.Max
}

func (u *Uniform) Type() string {
	return TypeUniform
}

func (u *Uniform) Describe() string {
	return fmt.Sprintf("uniform(min=%g, max=%g)", u.spec.Min, u.spec.Max)
}

func (u *Uniform) Theoretical() Moments {
	d := distuv.Uniform{Min: u.spec.Min, Max: u.spec.Max}
	return Moments{Mean: d.Mean(), StdDev: d.StdDev()}
}

func decodeSpec(name string, is map[string]any, target any) error {
	decoder, err := config.NewMapstructureDecoder(target)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(is); err != nil {
		return &brokenwing.DecodeError{Name: name, Err: err}
	}
	return nil
}
