package observability

import (
	"context"
	"io"
	"os"
	"time"

	"article-pipeline/internal/common/logger"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	ServiceName    string
	TracingEnabled bool
	// Registerer receives the OTel Prometheus exporter. Nil means the
	// default registry.
	Registerer promclient.Registerer
	// TraceWriter receives exported spans. Nil means stdout.
	TraceWriter io.Writer
}

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	stageDuration  otelmetric.Float64Histogram
	stageFailures  otelmetric.Int64Counter
}

func New(opts Options, log logger.Logger) *Observability {
	if opts.ServiceName == "" {
		opts.ServiceName = "article-pipeline"
	}
	o := &Observability{}

	var exporterOpts []prometheus.Option
	if opts.Registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(opts.Registerer))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err.Error()})
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)

		meter := o.meterProvider.Meter(opts.ServiceName)
		o.stageDuration, _ = meter.Float64Histogram(
			"pipeline.stage.duration",
			otelmetric.WithDescription("Duration of a pipeline stage"),
			otelmetric.WithUnit("ms"),
		)
		o.stageFailures, _ = meter.Int64Counter(
			"pipeline.stage.failures",
			otelmetric.WithDescription("Number of failed pipeline stages"),
		)
	}

	if opts.TracingEnabled {
		o.tracerProvider = newTracerProvider(opts, log)
		otel.SetTracerProvider(o.tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		o.tracer = o.tracerProvider.Tracer(opts.ServiceName)
	} else {
		o.tracer = otel.GetTracerProvider().Tracer(opts.ServiceName)
	}

	return o
}

func newTracerProvider(opts Options, log logger.Logger) *sdktrace.TracerProvider {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String(opts.ServiceName)),
	)
	if err != nil {
		log.Warn("otel resource init failed", map[string]interface{}{"error": err.Error()})
	}

	w := opts.TraceWriter
	if w == nil {
		w = os.Stdout
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		log.Warn("otel exporter init failed", map[string]interface{}{"error": err.Error()})
		return sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
}

// Tracer never returns nil; a zero Observability yields a no-op tracer.
func (o *Observability) Tracer() trace.Tracer {
	if o == nil || o.tracer == nil {
		return otel.GetTracerProvider().Tracer("article-pipeline")
	}
	return o.tracer
}

func (o *Observability) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("stage", stage))
	if o.stageDuration != nil {
		o.stageDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
	if err != nil && o.stageFailures != nil {
		o.stageFailures.Add(ctx, 1, attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}
