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

// Package freqtable reduces a sample to an equal-width binned frequency
// table.
//
// The k bins span the observed range [min, max]. Every bin is half-open,
// [edge_i, edge_i+1), except the last, which is closed so that the maximum
// value is counted. When all values are equal the range has zero width; the
// table then falls back to a single unit-wide interval per bin starting at
// the common value, with every count in bin 0, and is flagged Degenerate.
//
// Edges are always strictly increasing. When the nominal width is finer
// than the spacing of float64 values around min, each edge advances to the
// next representable value instead and the grid may extend past max. Near
// the top of the float64 range the grid is laid out downward from max.
package freqtable

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/cardinalhq/varigen/pkg/brokenwing"
	"github.com/cardinalhq/varigen/pkg/sample"
)

// ValidBinCounts lists the accepted interval counts.
var ValidBinCounts = []int{5, 10, 15, 20, 25}

// degenerateWidth is the bin width used when the sample has no spread.
const degenerateWidth = 1.0

// FrequencyTable is a read-only summary of a sample. It is never mutated;
// Rebin returns a new table.
type FrequencyTable struct {
	sample *sample.Sample

	// Edges holds K+1 strictly increasing bin boundaries.
	Edges []float64
	// Counts holds the number of values in each of the K bins.
	Counts []int
	// Cumulative is the running sum of Counts; its last element is N.
	Cumulative []int
	// Relative is Counts[i]/N.
	Relative []float64
	// Labels are "[lower, upper)" with two decimals.
	Labels []string

	K          int
	N          int
	Width      float64
	Degenerate bool
}

// Bin is one row of a frequency table.
type Bin struct {
	Index      int
	Lower      float64
	Upper      float64
	Label      string
	Count      int
	Cumulative int
	Relative   float64
}

// ValidateBinCount reports whether k is an accepted interval count.
func ValidateBinCount(k int) error {
	if !slices.Contains(ValidBinCounts, k) {
		return brokenwing.NewBinCountError(k, ValidBinCounts)
	}
	return nil
}

// Build bins s into k equal-width intervals.
func Build(s *sample.Sample, k int) (*FrequencyTable, error) {
	if err := ValidateBinCount(k); err != nil {
		return nil, err
	}
	if s == nil || s.Len() == 0 {
		return nil, brokenwing.ErrEmptySample
	}

	low := floats.Min(s.Values)
	high := floats.Max(s.Values)

	t := &FrequencyTable{
		sample: s,
		K:      k,
		N:      s.Len(),
	}

	t.Width = (high - low) / float64(k)
	if math.IsInf(t.Width, 0) {
		t.Width = high/float64(k) - low/float64(k)
	}
	if t.Width <= 0 || math.IsNaN(t.Width) {
		t.Degenerate = true
		t.Width = degenerateWidth
		high = low + degenerateWidth*float64(k)
	}

	t.Edges = layoutEdges(low, high, t.Width, k)
	if math.IsInf(t.Edges[k], 0) {
		// No room above low; lay the grid out downward so that it ends at
		// the sample maximum instead.
		top := floats.Max(s.Values)
		mirrored := layoutEdges(-top, -low, t.Width, k)
		for i := range t.Edges {
			t.Edges[i] = -mirrored[k-i]
		}
	}
	if w := (t.Edges[k] - t.Edges[0]) / float64(k); w > t.Width && !math.IsInf(w, 0) {
		// The width was below the spacing of floats near low.
		t.Width = w
	}

	t.Counts = make([]int, k)
	for _, v := range s.Values {
		t.Counts[t.Bin(v)]++
	}

	t.Cumulative = make([]int, k)
	t.Relative = make([]float64, k)
	t.Labels = make([]string, k)
	running := 0
	for i, c := range t.Counts {
		running += c
		t.Cumulative[i] = running
		t.Relative[i] = float64(c) / float64(t.N)
		t.Labels[i] = formatLabel(t.Edges[i], t.Edges[i+1])
	}

	return t, nil
}

// Rebin builds a new table over the same sample with k intervals. The
// sample itself is not touched.
func (t *FrequencyTable) Rebin(k int) (*FrequencyTable, error) {
	return Build(t.sample, k)
}

// Warning reports conditions that did not prevent building the table but
// that callers may want to surface, currently only a degenerate sample.
func (t *FrequencyTable) Warning() error {
	if t.Degenerate {
		return fmt.Errorf("%w: all %d values equal %v", brokenwing.ErrDegenerateSample, t.N, t.sample.Values[0])
	}
	return nil
}

// Sample returns the sample the table was built from.
func (t *FrequencyTable) Sample() *sample.Sample {
	return t.sample
}

// Bin returns the index of the bin that v falls into. Values outside the
// table's range are clamped into the first or last bin.
func (t *FrequencyTable) Bin(v float64) int {
	idx := 0
	switch f := (v - t.Edges[0]) / t.Width; {
	case math.IsNaN(f) || f < 0:
	case f >= float64(t.K):
		idx = t.K - 1
	default:
		idx = int(f)
	}

	// Floating-point division can disagree with the stored edges; the
	// edges are authoritative.
	for idx < t.K-1 && v >= t.Edges[idx+1] {
		idx++
	}
	for idx > 0 && v < t.Edges[idx] {
		idx--
	}
	return idx
}

// Bins returns the table as rows.
func (t *FrequencyTable) Bins() []Bin {
	bins := make([]Bin, t.K)
	for i := range bins {
		bins[i] = Bin{
			Index:      i,
			Lower:      t.Edges[i],
			Upper:      t.Edges[i+1],
			Label:      t.Labels[i],
			Count:      t.Counts[i],
			Cumulative: t.Cumulative[i],
			Relative:   t.Relative[i],
		}
	}
	return bins
}

// layoutEdges returns k+1 strictly increasing edges from low to high with
// nominal spacing w. Where w is smaller than the spacing of float64 values,
// an edge steps to the next representable value instead, so the last edge
// can end up above high.
func layoutEdges(low, high, w float64, k int) []float64 {
	edges := make([]float64, k+1)
	for i := range edges {
		e := low + float64(i)*w
		if math.IsInf(e, 0) {
			f := float64(i) / float64(k)
			e = low*(1-f) + high*f
		}
		if i == k {
			e = high
		}
		if i > 0 && e <= edges[i-1] {
			e = math.Nextafter(edges[i-1], math.Inf(1))
		}
		edges[i] = e
	}
	return edges
}

func formatLabel(lower, upper float64) string {
	return fmt.Sprintf("[%.2f, %.2f)", lower, upper)
}
