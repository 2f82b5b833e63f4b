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

// Package metricproducer turns a sample summary and its frequency table
// into OpenTelemetry gauge metrics.
package metricproducer

import (
	"fmt"
	"maps"

	"github.com/cardinalhq/oteltools/signalbuilder"
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/pmetric"

	"github.com/cardinalhq/varigen/pkg/brokenwing"
	"github.com/cardinalhq/varigen/pkg/config"
	"github.com/cardinalhq/varigen/pkg/freqtable"
	"github.com/cardinalhq/varigen/pkg/sample"
	"github.com/cardinalhq/varigen/pkg/state"
)

const DefaultPrefix = "varigen"

type Attributes struct {
	Resource  map[string]any `mapstructure:"resource,omitempty" yaml:"resource,omitempty" json:"resource,omitempty"`
	Scope     map[string]any `mapstructure:"scope,omitempty" yaml:"scope,omitempty" json:"scope,omitempty"`
	Datapoint map[string]any `mapstructure:"datapoint,omitempty" yaml:"datapoint,omitempty" json:"datapoint,omitempty"`
}

type MetricProducerSpec struct {
	Prefix     string     `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
	Attributes Attributes `mapstructure:"attributes" yaml:"attributes" json:"attributes"`
	Cumulative bool       `mapstructure:"cumulative" yaml:"cumulative" json:"cumulative"`
}

// FrequencyTableProducer emits the summary statistics of a sample and one
// datapoint per frequency table bin.
type FrequencyTableProducer struct {
	spec MetricProducerSpec
}

func NewFrequencyTableProducer(is map[string]any) (*FrequencyTableProducer, error) {
	spec := MetricProducerSpec{Prefix: DefaultPrefix}
	decoder, err := config.NewMapstructureDecoder(&spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(is); err != nil {
		return nil, &brokenwing.DecodeError{Name: "metrics", Err: err}
	}
	if spec.Prefix == "" {
		spec.Prefix = DefaultPrefix
	}
	return &FrequencyTableProducer{spec: spec}, nil
}

func (p *FrequencyTableProducer) name(suffix string) string {
	return p.spec.Prefix + "." + suffix
}

// Emit adds the metrics for one generation request to mb.
func (p *FrequencyTableProducer) Emit(rs *state.RunState, distribution string, ft *freqtable.FrequencyTable, mb *signalbuilder.MetricsBuilder) error {
	sum, err := sample.Summarize(ft.Sample())
	if err != nil {
		return err
	}

	resource := maps.Clone(p.spec.Attributes.Resource)
	if resource == nil {
		resource = map[string]any{}
	}
	resource["distribution"] = distribution
	rattr := pcommon.NewMap()
	if err := rattr.FromRaw(resource); err != nil {
		return fmt.Errorf("failed to create resource attributes: %w", err)
	}
	r := mb.Resource(rattr)

	sattr := pcommon.NewMap()
	if err := sattr.FromRaw(p.spec.Attributes.Scope); err != nil {
		return fmt.Errorf("failed to create scope attributes: %w", err)
	}
	s := r.Scope(sattr)

	ts := pcommon.NewTimestampFromTime(rs.Wallclock)
	gauge := func(suffix, unit string, attrs map[string]any, value float64) error {
		mm, err := s.Metric(p.name(suffix), unit, pmetric.MetricTypeGauge)
		if err != nil {
			return fmt.Errorf("failed to create metric: %w", err)
		}

		dattr := pcommon.NewMap()
		if err := dattr.FromRaw(attrs); err != nil {
			return fmt.Errorf("failed to create datapoint attributes: %w", err)
		}

		dp, _, _ := mm.Datapoint(dattr, ts)
		dp.SetDoubleValue(value)
		return nil
	}

	gauges := []struct {
		suffix string
		value  float64
	}{
		{"sample.count", float64(sum.N)},
		{"sample.mean", sum.Mean},
		{"sample.stddev", sum.StdDev},
		{"sample.min", sum.Min},
		{"sample.max", sum.Max},
	}
	for _, g := range gauges {
		if err := gauge(g.suffix, "1", p.spec.Attributes.Datapoint, g.value); err != nil {
			return err
		}
	}

	for _, b := range ft.Bins() {
		dattr := maps.Clone(p.spec.Attributes.Datapoint)
		if dattr == nil {
			dattr = map[string]any{}
		}
		dattr["bin.index"] = int64(b.Index)
		dattr["bin.label"] = b.Label
		dattr["bin.lower"] = b.Lower
		dattr["bin.upper"] = b.Upper
		if err := gauge("bin.count", "{value}", dattr, float64(b.Count)); err != nil {
			return err
		}
		if p.spec.Cumulative {
			if err := gauge("bin.cumulative", "{value}", dattr, float64(b.Cumulative)); err != nil {
				return err
			}
		}
	}

	return nil
}

// BuildMetrics is a convenience wrapper that emits into a fresh builder.
func (p *FrequencyTableProducer) BuildMetrics(rs *state.RunState, distribution string, ft *freqtable.FrequencyTable) (pmetric.Metrics, error) {
	mb := signalbuilder.NewMetricsBuilder()
	if err := p.Emit(rs, distribution, ft, mb); err != nil {
		return pmetric.NewMetrics(), err
	}
	return mb.Build(), nil
}
