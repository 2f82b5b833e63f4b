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

package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/varigen/pkg/config"
	"github.com/cardinalhq/varigen/pkg/report"
	"github.com/cardinalhq/varigen/pkg/sample"
)

type tableOptions struct {
	bins         int
	cumulative   bool
	values       bool
	decimalComma bool
	chart        string
}

func newTableCommand() *cobra.Command {
	opts := &tableOptions{}

	cmd := &cobra.Command{
		Use:   "table SAMPLE_FILE",
		Short: "Print the frequency table of a saved sample",
		Long: `Table re-bins a sample written by "generate --out" without drawing
new values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s sample.Sample
			if err := config.LoadJSON(args[0], &s); err != nil {
				return fmt.Errorf("error loading sample: %w", err)
			}
			if err := s.Validate(); err != nil {
				return fmt.Errorf("invalid sample in %s: %w", args[0], err)
			}
			slog.Info("Loaded sample",
				slog.String("file", args[0]),
				slog.String("distribution", s.Distribution),
				slog.Int("n", s.Len()),
				slog.Uint64("seed", s.Seed),
				slog.String("fingerprint", fmt.Sprintf("%016x", s.Fingerprint())))

			ft, err := buildTable(&s, opts.bins)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report.WriteFrequencyTable(out, ft, opts.cumulative)
			if opts.values {
				if err := report.WriteValues(out, &s, opts.decimalComma); err != nil {
					return err
				}
			}
			title := s.Distribution
			if title == "" {
				title = args[0]
			}
			return exportTable(ft, opts.chart, title)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.bins, "bins", "k", config.DefaultBins, "number of intervals: 5, 10, 15, 20 or 25")
	f.BoolVar(&opts.cumulative, "cumulative", false, "show cumulative counts")
	f.BoolVar(&opts.values, "values", false, "print the sample values")
	f.BoolVar(&opts.decimalComma, "decimal-comma", false, "print values with a decimal comma")
	f.StringVar(&opts.chart, "chart", "", "save a histogram image (.png, .svg, .pdf, .jpg)")

	return cmd
}
