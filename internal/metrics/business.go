package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Login outcomes reported by RecordLoginAttempt.
const (
	LoginOutcomeSuccess            = "success"
	LoginOutcomeInvalidCredentials = "invalid_credentials"
	LoginOutcomeLocked             = "locked"
	LoginOutcomeInactive           = "inactive"
	LoginOutcomeError              = "error"
)

// BusinessMetrics records auth operations, login outcomes and permission decisions.
type BusinessMetrics interface {
	// RecordOperation counts one use case call, e.g. ("auth", "user_unlock", "error").
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration observes the latency of one use case call in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordLoginAttempt counts a password login by outcome. A rising "locked" rate is
	// the signal for credential stuffing against known accounts.
	RecordLoginAttempt(ctx context.Context, outcome string)

	// RecordPermissionDecision counts one allow or deny of a "resource:action" permission.
	RecordPermissionDecision(ctx context.Context, permission string, allowed bool)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	loginCounter     metric.Int64Counter
	decisionCounter  metric.Int64Counter
}

// NewBusinessMetrics creates the instruments under namespace, e.g. "screening_login_attempts_total".
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of auth use case operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of auth use case operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	loginCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_login_attempts_total", namespace),
		metric.WithDescription("Password login attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login attempt counter: %w", err)
	}

	decisionCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_permission_decisions_total", namespace),
		metric.WithDescription("Permission checks by permission and decision"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create permission decision counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		loginCounter:     loginCounter,
		decisionCounter:  decisionCounter,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordLoginAttempt(ctx context.Context, outcome string) {
	b.loginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (b *businessMetrics) RecordPermissionDecision(ctx context.Context, permission string, allowed bool) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	b.decisionCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("permission", permission),
			attribute.String("decision", decision),
		),
	)
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordLoginAttempt(ctx context.Context, outcome string) {}

func (n *NoOpBusinessMetrics) RecordPermissionDecision(ctx context.Context, permission string, allowed bool) {
}
