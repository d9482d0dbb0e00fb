package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/recipebook"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Identity metrics
	AuthAttemptsTotal       metric.Int64Counter
	AuthFailuresTotal       metric.Int64Counter
	IdentityRequestDuration metric.Float64Histogram

	// Session lifecycle metrics
	LogoutsTotal         metric.Int64Counter
	SessionRestoresTotal metric.Int64Counter
	StaleResultsTotal    metric.Int64Counter

	// Recipe sync metrics
	RecipeSyncTotal       metric.Int64Counter
	RecipeSyncErrorsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics(otel.GetMeterProvider().Meter(meterName))
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics(meter metric.Meter) *Metrics {
	m := &Metrics{}

	m.AuthAttemptsTotal, _ = meter.Int64Counter(
		"recipebook.auth.attempts.total",
		metric.WithDescription("Total number of sign-up and sign-in attempts"),
		metric.WithUnit("{attempt}"),
	)

	m.AuthFailuresTotal, _ = meter.Int64Counter(
		"recipebook.auth.failures.total",
		metric.WithDescription("Total number of failed sign-up and sign-in attempts"),
		metric.WithUnit("{attempt}"),
	)

	m.IdentityRequestDuration, _ = meter.Float64Histogram(
		"recipebook.identity.request.duration",
		metric.WithDescription("Duration of identity service requests"),
		metric.WithUnit("ms"),
	)

	m.LogoutsTotal, _ = meter.Int64Counter(
		"recipebook.session.logouts.total",
		metric.WithDescription("Total number of logouts, by reason"),
		metric.WithUnit("{logout}"),
	)

	m.SessionRestoresTotal, _ = meter.Int64Counter(
		"recipebook.session.restores.total",
		metric.WithDescription("Total number of sessions restored from local storage"),
		metric.WithUnit("{session}"),
	)

	m.StaleResultsTotal, _ = meter.Int64Counter(
		"recipebook.session.stale_results.total",
		metric.WithDescription("Total number of identity results discarded because a logout happened first"),
		metric.WithUnit("{result}"),
	)

	m.RecipeSyncTotal, _ = meter.Int64Counter(
		"recipebook.recipes.sync.total",
		metric.WithDescription("Total number of recipe fetch and store operations"),
		metric.WithUnit("{operation}"),
	)

	m.RecipeSyncErrorsTotal, _ = meter.Int64Counter(
		"recipebook.recipes.sync.errors.total",
		metric.WithDescription("Total number of failed recipe fetch and store operations"),
		metric.WithUnit("{error}"),
	)

	return m
}
