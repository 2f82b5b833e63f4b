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
	"slices"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cardinalhq/varigen/pkg/brokenwing"
)

const (
	MethodBoxMuller = "boxMuller"
	MethodCLT       = "clt"

	// cltTerms is the number of uniforms summed by the CLT method. Twelve
	// makes the variance of the sum exactly 1.
	cltTerms = 12
)

var validNormalMethods = []string{MethodBoxMuller, MethodCLT}

// NormalSpec describes a normal distribution N(Mu, Sigma²). Method selects
// the sampling algorithm, "boxMuller" (the default) or "clt".
type NormalSpec struct {
	GeneratorSpec `mapstructure:",squash"`

	Mu     float64 `mapstructure:"mu" yaml:"mu" json:"mu"`
	Sigma  float64 `mapstructure:"sigma" yaml:"sigma" json:"sigma"`
	Method string  `mapstructure:"method" yaml:"method" json:"method"`
}

func (s NormalSpec) validate() error {
	var result *multierror.Error
	if err := checkFinite("mu", s.Mu); err != nil {
		result = multierror.Append(result, err)
	}
	if err := checkFinite("sigma", s.Sigma); err != nil {
		result = multierror.Append(result, err)
	} else if s.Sigma <= 0 {
		result = multierror.Append(result,
			brokenwing.NewParameterError("sigma", "must be greater than 0, got %v", s.Sigma))
	}
	if !slices.Contains(validNormalMethods, s.Method) {
		result = multierror.Append(result,
			brokenwing.NewParameterError("method", "must be one of %v, got %q", validNormalMethods, s.Method))
	}
	if result == nil {
		maxZ := float64(maxBoxMullerZ)
		if s.Method == MethodCLT {
			maxZ = cltTerms / 2
		}
		if err := checkReach("sigma", math.Abs(s.Mu)+s.Sigma*maxZ); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (s NormalSpec) theoretical() Moments {
	d := distuv.Normal{Mu: s.Mu, Sigma: s.Sigma}
	return Moments{Mean: d.Mean(), StdDev: d.StdDev()}
}

func newNormalFromSpec(is map[string]any) (Generator, error) {
	spec := NormalSpec{Method: MethodBoxMuller}
	if err := decodeSpec(TypeNormal, is, &spec); err != nil {
		return nil, err
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	switch spec.Method {
	case MethodCLT:
		return NewNormalCLT(spec.Mu, spec.Sigma)
	default:
		return NewNormalBoxMuller(spec.Mu, spec.Sigma)
	}
}

// NormalBoxMuller samples N(mu, sigma²) exactly with the Box-Muller
// transform, using the cosine branch:
//
//	Z = sqrt(-2 ln U1) * cos(2π U2)
//
// Each variate consumes two draws; the sine twin is discarded so that
// every call is independent of the previous one.
type NormalBoxMuller struct {
	spec NormalSpec
}

var _ Generator = (*NormalBoxMuller)(nil)

func NewNormalBoxMuller(mu, sigma float64) (*NormalBoxMuller, error) {
	n := &NormalBoxMuller{spec: NormalSpec{
		GeneratorSpec: GeneratorSpec{Type: TypeNormal},
		Mu:            mu,
		Sigma:         sigma,
		Method:        MethodBoxMuller,
	}}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *NormalBoxMuller) Validate() error {
	return n.spec.validate()
}

func (n *NormalBoxMuller) Next(src Source) float64 {
	u1 := src.Uniform()
	for u1 <= 0 {
		u1 = src.Uniform()
	}
	u2 := src.Uniform()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return n.spec.Mu + n.spec.Sigma*z
}

func (n *NormalBoxMuller) Type() string {
	return TypeNormal
}

func (n *NormalBoxMuller) Describe() string {
	return fmt.Sprintf("normal(mu=%g, sigma=%g, method=%s)", n.spec.Mu, n.spec.Sigma, MethodBoxMuller)
}

func (n *NormalBoxMuller) Theoretical() Moments {
	return n.spec.theoretical()
}

// NormalCLT approximates N(mu, sigma²) by the Central Limit Theorem:
//
//	Z = U1 + U2 + ... + U12 - 6
//
// Z has mean 0 and variance 1 but is not normal. Its support is bounded to
// [-6, 6], so results never leave mu ± 6·sigma, and the tails are lighter
// than a true normal's. Use NormalBoxMuller when tail behavior matters.
type NormalCLT struct {
	spec NormalSpec
}

var _ Generator = (*NormalCLT)(nil)

func NewNormalCLT(mu, sigma float64) (*NormalCLT, error) {
	n := &NormalCLT{spec: NormalSpec{
		GeneratorSpec: GeneratorSpec{Type: TypeNormal},
		Mu:            mu,
		Sigma:         sigma,
		Method:        MethodCLT,
	}}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *NormalCLT) Validate() error {
	return n.spec.validate()
}

func (n *NormalCLT) Next(src Source) float64 {
	sum := 0.0
	for range cltTerms {
		sum += src.Uniform()
	}
	return n.spec.Mu + n.spec.Sigma*(sum-cltTerms/2)
}

func (n *NormalCLT) Type() string {
	return TypeNormal
}

func (n *NormalCLT) Describe() string {
	return fmt.Sprintf("normal(mu=%g, sigma=%g, method=%s)", n.spec.Mu, n.spec.Sigma, MethodCLT)
}

func (n *NormalCLT) Theoretical() Moments {
	return n.spec.theoretical()
}
