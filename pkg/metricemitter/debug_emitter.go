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

package metricemitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/collector/pdata/pmetric"

	"github.com/cardinalhq/varigen/pkg/state"
)

// DebugMetricEmitter writes one JSON line per Emit, wrapping the OTLP JSON
// payload with the seed that produced it.
type DebugMetricEmitter struct {
	out io.Writer
}

func NewDebugMetricEmitter(out io.Writer) *DebugMetricEmitter {
	return &DebugMetricEmitter{
		out: out,
	}
}

type DebugMessage struct {
	Seed     uint64    `json:"seed"`
	Walltime time.Time `json:"walltime"`
	Metrics  any       `json:"metrics"`
}

func (e *DebugMetricEmitter) Emit(_ context.Context, rs *state.RunState, md pmetric.Metrics) error {
	if md.DataPointCount() == 0 {
		return nil
	}

	marshaller := pmetric.JSONMarshaler{}

	msgBody, err := marshaller.MarshalMetrics(md)
	if err != nil {
		return fmt.Errorf("failed to marshal otel metric payload: %w", err)
	}

	var anyBody any
	if err := json.Unmarshal(msgBody, &anyBody); err != nil {
		return fmt.Errorf("failed to unmarshal otel metric payload: %w", err)
	}

	msg := DebugMessage{
		Seed:     rs.Seed,
		Walltime: rs.Wallclock,
		Metrics:  anyBody,
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	if _, err := e.out.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}

	return nil
}
