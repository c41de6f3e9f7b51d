package infra

import (
	"context"
	"os"

	"github.com/umalmyha/customers-mvc/internal/config"
	"github.com/umalmyha/customers-mvc/pkg/tracing"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Tracer builds tracer with exporter selected in configuration
func Tracer(ctx context.Context, cfg config.TracingCfg) (tracing.Tracer, error) {
	var exporter trace.SpanExporter
	var err error

	switch cfg.Exporter {
	case config.TracingExporterStdout:
		exporter, err = tracing.NewConsoleExporter(os.Stdout)
	case config.TracingExporterOtlp:
		exporter, err = tracing.NewOtlpExporter(ctx, cfg.OtlpEndpoint)
	}
	if err != nil {
		return nil, err
	}

	return tracing.NewTracer(cfg.ServiceName, exporter), nil
}
