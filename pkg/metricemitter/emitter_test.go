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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/pmetric"
	"go.opentelemetry.io/collector/pdata/pmetric/pmetricotlp"

	"github.com/cardinalhq/varigen/pkg/state"
)

func testMetrics() pmetric.Metrics {
	md := pmetric.NewMetrics()
	m := md.ResourceMetrics().AppendEmpty().ScopeMetrics().AppendEmpty().Metrics().AppendEmpty()
	m.SetName("varigen.sample.count")
	m.SetEmptyGauge().DataPoints().AppendEmpty().SetDoubleValue(42)
	return md
}

func TestDebugMetricEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := NewDebugMetricEmitter(&buf)
	rs := state.NewRunState(7)

	require.NoError(t, e.Emit(context.Background(), rs, testMetrics()))

	var msg map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &msg))
	assert.Equal(t, 7.0, msg["seed"])
	assert.Contains(t, buf.String(), "varigen.sample.count")
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
}

func TestDebugMetricEmitterSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	e := NewDebugMetricEmitter(&buf)
	require.NoError(t, e.Emit(context.Background(), state.NewRunState(1), pmetric.NewMetrics()))
	assert.Zero(t, buf.Len())
}

func TestOTLPMetricEmitter(t *testing.T) {
	var (
		gotPath    string
		gotHeader  string
		gotType    string
		gotMetrics pmetric.Metrics
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Get("X-Api-Key")
		gotType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		req := pmetricotlp.NewExportRequest()
		if err := req.UnmarshalProto(body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotMetrics = req.Metrics()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e, err := NewOTLPMetricEmitter(srv.Client(), srv.URL+"/", map[string]string{"X-Api-Key": "secret"})
	require.NoError(t, err)
	require.NoError(t, e.Emit(context.Background(), state.NewRunState(1), testMetrics()))

	assert.Equal(t, "/v1/metrics", gotPath)
	assert.Equal(t, "secret", gotHeader)
	assert.Equal(t, "application/x-protobuf", gotType)
	assert.Equal(t, 1, gotMetrics.DataPointCount())
}

func TestOTLPMetricEmitterErrors(t *testing.T) {
	_, err := NewOTLPMetricEmitter(nil, "", nil)
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e, err := NewOTLPMetricEmitter(srv.Client(), srv.URL, nil)
	require.NoError(t, err)
	err = e.Emit(context.Background(), state.NewRunState(1), testMetrics())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
