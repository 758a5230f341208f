package telemetry

import (
	"context"
	"errors"

	"github.com/househero/backend/internal/domain/payment"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PaymentMetrics counts escrow state transitions
type PaymentMetrics struct {
	transitions  metric.Int64Counter
	autoReleases metric.Int64Counter
}

// NewPaymentMetrics registers the payment instruments on meter
func NewPaymentMetrics(meter metric.Meter) (*PaymentMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewPaymentMetrics: meter cannot be nil")
	}
	transitions, err := meter.Int64Counter("homeswift.payment.transitions",
		metric.WithDescription("Payment status transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}
	autoReleases, err := meter.Int64Counter("homeswift.payment.auto_releases",
		metric.WithDescription("Escrowed payments released without an admin"),
		metric.WithUnit("{payment}"),
	)
	if err != nil {
		return nil, err
	}
	return &PaymentMetrics{transitions: transitions, autoReleases: autoReleases}, nil
}

// RecordTransition counts one status change
func (m *PaymentMetrics) RecordTransition(ctx context.Context, from, to payment.Status, automatic bool) {
	attrs := metric.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
		attribute.Bool("automatic", automatic),
	)
	m.transitions.Add(ctx, 1, attrs)
	if automatic && to == payment.StatusReleased {
		m.autoReleases.Add(ctx, 1)
	}
}
