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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/cardinalhq/varigen/pkg/chart"
	"github.com/cardinalhq/varigen/pkg/config"
	"github.com/cardinalhq/varigen/pkg/freqtable"
	"github.com/cardinalhq/varigen/pkg/generator"
	"github.com/cardinalhq/varigen/pkg/metricemitter"
	"github.com/cardinalhq/varigen/pkg/metricproducer"
	"github.com/cardinalhq/varigen/pkg/report"
	"github.com/cardinalhq/varigen/pkg/sample"
	"github.com/cardinalhq/varigen/pkg/state"
)

var distributionParams = map[string][]string{
	generator.TypeUniform:     {"min", "max"},
	generator.TypeExponential: {"lambda"},
	generator.TypeNormal:      {"mu", "sigma", "method"},
}

type generateOptions struct {
	configs      []string
	dist         string
	min          float64
	max          float64
	lambda       float64
	mu           float64
	sigma        float64
	method       string
	n            int
	bins         int
	digits       int
	seed         uint64
	cumulative   bool
	values       bool
	decimalComma bool
	output       string
	chart        string
	otlpEndpoint string
	debugMetrics bool
	dumpConfig   bool
}

func newGenerateCommand() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a sample and print its frequency table",
		Long: `Generate draws n values from the chosen distribution, rounds them and
prints a summary and an equal-width frequency table. Parameters come from
config files (merged in order) and are overridden by flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfigs(opts.configs)
			if err != nil {
				return fmt.Errorf("error loading config files: %w", err)
			}
			applyGenerateFlags(cmd, opts, cfg)
			if opts.dumpConfig {
				return dumpConfig(cmd.OutOrStdout(), cfg)
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), opts, cfg)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.configs, "config", nil, "request config files, merged in order")
	f.StringVar(&opts.dist, "dist", "", "distribution: uniform, exponential or normal")
	f.Float64Var(&opts.min, "min", 0, "uniform lower bound")
	f.Float64Var(&opts.max, "max", 1, "uniform upper bound (exclusive)")
	f.Float64Var(&opts.lambda, "lambda", 1, "exponential rate")
	f.Float64Var(&opts.mu, "mu", 0, "normal mean")
	f.Float64Var(&opts.sigma, "sigma", 1, "normal standard deviation")
	f.StringVar(&opts.method, "method", generator.MethodBoxMuller, "normal method: boxMuller or clt")
	f.IntVarP(&opts.n, "size", "n", 0, "sample size, 1 to 999999")
	f.IntVarP(&opts.bins, "bins", "k", config.DefaultBins, "number of intervals: 5, 10, 15, 20 or 25")
	f.IntVar(&opts.digits, "ndigits", sample.DefaultDigits, "decimal digits kept per value")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed, 0 picks one from the clock")
	f.BoolVar(&opts.cumulative, "cumulative", false, "show cumulative counts")
	f.BoolVar(&opts.values, "values", false, "print the generated values")
	f.BoolVar(&opts.decimalComma, "decimal-comma", false, "print values with a decimal comma")
	f.StringVarP(&opts.output, "out", "o", "", "write the sample as JSON to this file")
	f.StringVar(&opts.chart, "chart", "", "save a histogram image (.png, .svg, .pdf, .jpg)")
	f.StringVar(&opts.otlpEndpoint, "otlp-endpoint", "", "send the table as OTLP metrics to this endpoint")
	f.BoolVar(&opts.debugMetrics, "debug-metrics", false, "print the metrics as JSON")
	f.BoolVar(&opts.dumpConfig, "dump-config", false, "print the merged request as YAML and exit")

	return cmd
}

// applyGenerateFlags overlays the flags the user actually set onto cfg.
func applyGenerateFlags(cmd *cobra.Command, opts *generateOptions, cfg *config.Config) {
	f := cmd.Flags()

	values := map[string]any{
		"min":    opts.min,
		"max":    opts.max,
		"lambda": opts.lambda,
		"mu":     opts.mu,
		"sigma":  opts.sigma,
		"method": opts.method,
	}

	dist := maps.Clone(cfg.Distribution)
	if dist == nil {
		dist = map[string]any{}
	}
	if f.Changed("dist") {
		if t, _ := dist["type"].(string); t != opts.dist {
			// A new distribution starts from the flag defaults of its own
			// parameters; values from the file belong to the old one.
			dist = map[string]any{"type": opts.dist}
			for _, key := range distributionParams[opts.dist] {
				dist[key] = values[key]
			}
		}
	}
	for key, v := range values {
		if f.Changed(key) {
			dist[key] = v
		}
	}
	cfg.Distribution = dist

	if f.Changed("size") {
		cfg.SampleSize = opts.n
	}
	if f.Changed("bins") {
		cfg.Bins = opts.bins
	}
	if f.Changed("ndigits") {
		d := opts.digits
		cfg.Digits = &d
	}
	if f.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if opts.cumulative {
		cfg.Cumulative = true
	}
	if opts.output != "" {
		cfg.Output = opts.output
	}
	if opts.chart != "" {
		cfg.Chart = opts.chart
	}
	if opts.otlpEndpoint != "" {
		cfg.OTLPDestination.Endpoint = opts.otlpEndpoint
	}
}

func runGenerate(ctx context.Context, out io.Writer, opts *generateOptions, cfg *config.Config) error {
	if len(cfg.Distribution) == 0 {
		return errors.New("no distribution given, use --dist or a config file")
	}
	// Everything is checked before the first draw, and all problems are
	// reported together.
	var result *multierror.Error
	g, err := generator.CreateGenerator(cfg.Distribution)
	result = multierror.Append(result, err)
	result = multierror.Append(result, sample.Validate(cfg.SampleSize, sample.WithDigits(cfg.DigitsOrDefault())))
	result = multierror.Append(result, freqtable.ValidateBinCount(cfg.Bins))
	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	rs := state.NewRunState(cfg.Seed)
	s, err := sample.Generate(cfg.SampleSize, g, rs, sample.WithDigits(cfg.DigitsOrDefault()))
	if err != nil {
		return err
	}
	s.Seed = rs.Seed
	slog.Info("Generated sample",
		slog.String("distribution", s.Distribution),
		slog.Int("n", s.Len()),
		slog.Uint64("seed", s.Seed),
		slog.String("fingerprint", fmt.Sprintf("%016x", s.Fingerprint())))

	ft, err := buildTable(s, cfg.Bins)
	if err != nil {
		return err
	}

	sum, err := sample.Summarize(s)
	if err != nil {
		return err
	}
	report.WriteSummary(out, g.Describe(), sum, g.Theoretical())
	report.WriteFrequencyTable(out, ft, cfg.Cumulative)
	if opts.values {
		if err := report.WriteValues(out, s, opts.decimalComma); err != nil {
			return err
		}
	}

	if err := exportTable(ft, cfg.Chart, g.Describe()); err != nil {
		return err
	}

	if cfg.Output != "" {
		if err := config.WriteJSON(cfg.Output, s); err != nil {
			return fmt.Errorf("failed to write sample: %w", err)
		}
		slog.Info("Wrote sample", slog.String("file", cfg.Output))
	}

	return emitMetrics(ctx, out, opts.debugMetrics, cfg, rs, g.Describe(), ft)
}

// buildTable computes the one frequency table every output of a request
// is rendered from.
func buildTable(s *sample.Sample, k int) (*freqtable.FrequencyTable, error) {
	ft, err := freqtable.Build(s, k)
	if err != nil {
		return nil, err
	}
	if warn := ft.Warning(); warn != nil {
		slog.Warn("Frequency table is degenerate", slog.String("reason", warn.Error()))
	}
	slog.Debug("Built frequency table", slog.Int("k", ft.K), slog.Float64("width", ft.Width))
	return ft, nil
}

func exportTable(ft *freqtable.FrequencyTable, fname, title string) error {
	if fname == "" {
		return nil
	}
	if err := chart.SaveHistogram(ft, title, fname); err != nil {
		return err
	}
	slog.Info("Saved histogram", slog.String("file", fname))
	return nil
}

func dumpConfig(out io.Writer, cfg *config.Config) error {
	b, err := config.MarshalYAML(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = out.Write(b)
	return err
}

func emitMetrics(ctx context.Context, out io.Writer, debug bool, cfg *config.Config, rs *state.RunState, distribution string, ft *freqtable.FrequencyTable) error {
	var emitters []metricemitter.Emitter
	if debug {
		emitters = append(emitters, metricemitter.NewDebugMetricEmitter(out))
	}
	if cfg.OTLPDestination.Endpoint != "" {
		client := &http.Client{Timeout: cfg.OTLPDestination.Timeout}
		e, err := metricemitter.NewOTLPMetricEmitter(client, cfg.OTLPDestination.Endpoint, cfg.OTLPDestination.Headers)
		if err != nil {
			return err
		}
		emitters = append(emitters, e)
	}
	if len(emitters) == 0 {
		return nil
	}

	spec := maps.Clone(cfg.Metrics)
	if cfg.Cumulative {
		if spec == nil {
			spec = map[string]any{}
		}
		spec["cumulative"] = true
	}
	producer, err := metricproducer.NewFrequencyTableProducer(spec)
	if err != nil {
		return err
	}
	md, err := producer.BuildMetrics(rs, distribution, ft)
	if err != nil {
		return err
	}
	for _, e := range emitters {
		if err := e.Emit(ctx, rs, md); err != nil {
			return fmt.Errorf("error emitting metrics: %w", err)
		}
	}
	slog.Info("Emitted metrics", slog.Int("datapoints", md.DataPointCount()))
	return nil
}
