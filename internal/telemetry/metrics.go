package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/medmatch"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Identity metrics
	AccountsCreatedTotal metric.Int64Counter
	RoleSetsTotal        metric.Int64Counter
	AuthFailuresTotal    metric.Int64Counter
	AuthzDenialsTotal    metric.Int64Counter

	// Marketplace metrics
	PositionsCreatedTotal      metric.Int64Counter
	ApplicationsSubmittedTotal metric.Int64Counter
	ApplicationsReviewedTotal  metric.Int64Counter

	// Document metrics
	DocumentsUploadedTotal   metric.Int64Counter
	DocumentsDownloadedTotal metric.Int64Counter
	DocumentUploadBytes      metric.Int64Histogram
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	// Identity metrics
	m.AccountsCreatedTotal, _ = meter.Int64Counter(
		"medmatch.accounts.created.total",
		metric.WithDescription("Total number of accounts created on first contact"),
		metric.WithUnit("{account}"),
	)

	m.RoleSetsTotal, _ = meter.Int64Counter(
		"medmatch.accounts.role_sets.total",
		metric.WithDescription("Total number of successful one-time role assignments"),
		metric.WithUnit("{assignment}"),
	)

	m.AuthFailuresTotal, _ = meter.Int64Counter(
		"medmatch.auth.failures.total",
		metric.WithDescription("Total number of rejected credentials"),
		metric.WithUnit("{failure}"),
	)

	m.AuthzDenialsTotal, _ = meter.Int64Counter(
		"medmatch.authz.denials.total",
		metric.WithDescription("Total number of role or scope policy denials"),
		metric.WithUnit("{denial}"),
	)

	// Marketplace metrics
	m.PositionsCreatedTotal, _ = meter.Int64Counter(
		"medmatch.positions.created.total",
		metric.WithDescription("Total number of positions created"),
		metric.WithUnit("{position}"),
	)

	m.ApplicationsSubmittedTotal, _ = meter.Int64Counter(
		"medmatch.applications.submitted.total",
		metric.WithDescription("Total number of applications submitted"),
		metric.WithUnit("{application}"),
	)

	m.ApplicationsReviewedTotal, _ = meter.Int64Counter(
		"medmatch.applications.reviewed.total",
		metric.WithDescription("Total number of review decisions recorded"),
		metric.WithUnit("{decision}"),
	)

	// Document metrics
	m.DocumentsUploadedTotal, _ = meter.Int64Counter(
		"medmatch.documents.uploaded.total",
		metric.WithDescription("Total number of documents uploaded"),
		metric.WithUnit("{document}"),
	)

	m.DocumentsDownloadedTotal, _ = meter.Int64Counter(
		"medmatch.documents.downloaded.total",
		metric.WithDescription("Total number of document content downloads"),
		metric.WithUnit("{download}"),
	)

	m.DocumentUploadBytes, _ = meter.Int64Histogram(
		"medmatch.documents.upload.bytes",
		metric.WithDescription("Size distribution of uploaded documents"),
		metric.WithUnit("By"),
	)

	return m
}
