package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "lexforge"

// Metrics holds the orchestration metric instruments.
type Metrics struct {
	QueriesStarted   metric.Int64Counter
	QueriesCompleted metric.Int64Counter
	QueriesFailed    metric.Int64Counter
	EngineFailures   metric.Int64Counter
	EngineDuration   metric.Float64Histogram
	QueryDuration    metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.QueriesStarted, err = meter.Int64Counter("lexforge.queries.started",
		metric.WithDescription("Number of queries started"))
	if err != nil {
		return nil, err
	}

	m.QueriesCompleted, err = meter.Int64Counter("lexforge.queries.completed",
		metric.WithDescription("Number of queries completed"))
	if err != nil {
		return nil, err
	}

	m.QueriesFailed, err = meter.Int64Counter("lexforge.queries.failed",
		metric.WithDescription("Number of queries that failed before execution"))
	if err != nil {
		return nil, err
	}

	m.EngineFailures, err = meter.Int64Counter("lexforge.engine.failures",
		metric.WithDescription("Number of failed engine executions"))
	if err != nil {
		return nil, err
	}

	m.EngineDuration, err = meter.Float64Histogram("lexforge.engine.duration_seconds",
		metric.WithDescription("Engine execution duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.QueryDuration, err = meter.Float64Histogram("lexforge.query.duration_seconds",
		metric.WithDescription("Wall-clock query duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
