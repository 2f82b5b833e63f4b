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

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/cardinalhq/varigen/pkg/freqtable"
	"github.com/cardinalhq/varigen/pkg/generator"
	"github.com/cardinalhq/varigen/pkg/sample"
)

// WriteSummary prints the observed statistics next to the theoretical
// moments of the distribution the sample was drawn from.
func WriteSummary(w io.Writer, distribution string, sum sample.Summary, theory generator.Moments) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Statistic", "Sample", "Theoretical"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetCaption(true, distribution)
	table.Append([]string{"n", strconv.Itoa(sum.N), ""})
	table.Append([]string{"mean", formatFloat(sum.Mean), formatFloat(theory.Mean)})
	table.Append([]string{"std dev", formatFloat(sum.StdDev), formatFloat(theory.StdDev)})
	table.Append([]string{"min", formatFloat(sum.Min), ""})
	table.Append([]string{"max", formatFloat(sum.Max), ""})
	table.Render()
}

// WriteFrequencyTable prints one row per interval. The cumulative column
// is only shown when asked for.
func WriteFrequencyTable(w io.Writer, ft *freqtable.FrequencyTable, cumulative bool) {
	header := []string{"#", "Interval", "Frequency", "Relative"}
	if cumulative {
		header = append(header, "Cumulative")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, b := range ft.Bins() {
		row := []string{
			strconv.Itoa(b.Index + 1),
			b.Label,
			strconv.Itoa(b.Count),
			strconv.FormatFloat(b.Relative, 'f', 4, 64),
		}
		if cumulative {
			row = append(row, strconv.Itoa(b.Cumulative))
		}
		table.Append(row)
	}
	footer := []string{"", "Total", strconv.Itoa(ft.N), strconv.FormatFloat(1, 'f', 4, 64)}
	if cumulative {
		footer = append(footer, "")
	}
	table.SetFooter(footer)
	table.Render()
}

// WriteValues prints the raw sample as tab-separated index/value lines, the
// same shape a spreadsheet paste expects. With decimalComma the decimal
// point is written as a comma.
func WriteValues(w io.Writer, s *sample.Sample, decimalComma bool) error {
	if _, err := fmt.Fprintln(w, "#\tValue"); err != nil {
		return err
	}
	for i, v := range s.Values {
		text := strconv.FormatFloat(v, 'f', s.Digits, 64)
		if decimalComma {
			text = strings.Replace(text, ".", ",", 1)
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\n", i, text); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
