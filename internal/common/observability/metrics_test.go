package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"article-pipeline/internal/common/logger"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStage_ExportsThroughRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	o := New(Options{ServiceName: "test", Registerer: reg}, logger.NewTestLogger(t))
	defer o.Shutdown(context.Background())

	o.RecordStage(context.Background(), "completion", 120*time.Millisecond, nil)
	o.RecordStage(context.Background(), "extraction", time.Millisecond, errors.New("boom"))

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "pipeline_stage_duration")
	assert.Contains(t, joined, "pipeline_stage_failures")
}

func TestTracing_WritesSpans(t *testing.T) {
	var buf bytes.Buffer
	o := New(Options{
		ServiceName:    "test",
		TracingEnabled: true,
		Registerer:     promclient.NewRegistry(),
		TraceWriter:    &buf,
	}, logger.NewTestLogger(t))

	_, span := o.Tracer().Start(context.Background(), "generate")
	span.End()
	o.Shutdown(context.Background())

	assert.Contains(t, buf.String(), "generate")
}

func TestNilObservability(t *testing.T) {
	var o *Observability
	assert.NotNil(t, o.Tracer())
	assert.NotPanics(t, func() {
		o.RecordStage(context.Background(), "x", time.Second, nil)
		o.Shutdown(context.Background())
	})
}
