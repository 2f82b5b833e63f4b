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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cardinalhq/varigen/pkg/brokenwing"
)

// Summary holds descriptive statistics of a sample. StdDev is the unbiased
// sample standard deviation and is zero for a single value.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func Summarize(s *Sample) (Summary, error) {
	if s == nil || s.Len() == 0 {
		return Summary{}, brokenwing.ErrEmptySample
	}
	sum := Summary{
		N:   s.Len(),
		Min: floats.Min(s.Values),
		Max: floats.Max(s.Values),
	}
	if s.Len() == 1 {
		sum.Mean = s.Values[0]
		return sum, nil
	}
	sum.Mean, sum.StdDev = stat.MeanStdDev(s.Values, nil)
	if math.IsInf(sum.Mean, 0) || math.IsInf(sum.StdDev, 0) {
		// Sums or squares overflowed; summarize the values scaled into
		// [-1, 1] and scale the result back.
		scale := max(math.Abs(sum.Min), math.Abs(sum.Max))
		scaled := make([]float64, s.Len())
		for i, v := range s.Values {
			scaled[i] = v / scale
		}
		mean, std := stat.MeanStdDev(scaled, nil)
		sum.Mean, sum.StdDev = mean*scale, std*scale
	}
	return sum, nil
}
