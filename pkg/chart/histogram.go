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

package chart

import (
	"fmt"
	"image/color"
	"path/filepath"
	"slices"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cardinalhq/varigen/pkg/freqtable"
)

const (
	DefaultWidth  = 7 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

var supportedFormats = []string{".png", ".svg", ".pdf", ".jpg", ".jpeg"}

// barColor matches a 0.7 alpha blue bar.
var barColor = color.NRGBA{R: 31, G: 119, B: 180, A: 178}

// NewHistogramPlot draws the bars of ft exactly at its edges, so the chart
// and the printed table always agree. Each bar gets a legend entry with its
// interval label.
func NewHistogramPlot(ft *freqtable.FrequencyTable, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Value"
	p.Y.Label.Text = "Frequency"
	p.Legend.Top = true

	for _, b := range ft.Bins() {
		h := &plotter.Histogram{
			Bins: []plotter.HistogramBin{{
				Min:    b.Lower,
				Max:    b.Upper,
				Weight: float64(b.Count),
			}},
			Width:     b.Upper - b.Lower,
			FillColor: barColor,
			LineStyle: plotter.DefaultLineStyle,
		}
		p.Add(h)
		p.Legend.Add(b.Label, h)
	}
	return p, nil
}

// SaveHistogram renders ft to fname. The image format follows the file
// extension.
func SaveHistogram(ft *freqtable.FrequencyTable, title, fname string) error {
	ext := strings.ToLower(filepath.Ext(fname))
	if !slices.Contains(supportedFormats, ext) {
		return fmt.Errorf("unsupported chart format %q, want one of %v", ext, supportedFormats)
	}
	p, err := NewHistogramPlot(ft, title)
	if err != nil {
		return err
	}
	if err := p.Save(DefaultWidth, DefaultHeight, fname); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}
