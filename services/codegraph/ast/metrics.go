// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for AST parsing.
var (
	tracer = otel.Tracer("codegraph.ast")
	meter  = otel.Meter("codegraph.ast")
)

// Metrics for parse operations.
var (
	parseLatency       metric.Float64Histogram
	parseTotal         metric.Int64Counter
	parseErrors        metric.Int64Counter
	functionsExtracted metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"codegraph_parse_duration_seconds",
			metric.WithDescription("Duration of source parse operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"codegraph_parse_total",
			metric.WithDescription("Total number of parse operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseErrors, err = meter.Int64Counter(
			"codegraph_parse_errors_total",
			metric.WithDescription("Total number of failed parse operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		functionsExtracted, err = meter.Int64Histogram(
			"codegraph_functions_extracted",
			metric.WithDescription("Number of functions extracted per parse"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordParseMetrics records metrics for one parse operation.
func recordParseMetrics(ctx context.Context, duration time.Duration, functionCount int, success bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(
		attribute.String("language", "python"),
		attribute.Bool("success", success),
	)

	parseLatency.Record(ctx, duration.Seconds(), attrs)
	parseTotal.Add(ctx, 1, attrs)

	if success {
		functionsExtracted.Record(ctx, int64(functionCount),
			metric.WithAttributes(attribute.String("language", "python")),
		)
	} else {
		parseErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("language", "python")),
		)
	}
}

// startParseSpan creates a span for a parse operation. The caller
// must call span.End().
func startParseSpan(ctx context.Context, filePath string, contentSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Parser.Parse",
		trace.WithAttributes(
			attribute.String("ast.language", "python"),
			attribute.String("ast.file", filePath),
			attribute.Int("ast.content_size", contentSize),
		),
	)
}

// setParseSpanResult sets the result attributes on a parse span.
func setParseSpanResult(span trace.Span, functionCount, classCount, importCount int) {
	span.SetAttributes(
		attribute.Int("ast.function_count", functionCount),
		attribute.Int("ast.class_count", classCount),
		attribute.Int("ast.import_count", importCount),
	)
}
