package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
type BusinessMetrics struct {
	// Checkout funnel
	OrdersValidated       *prometheus.CounterVec
	PaymentIntentsCreated prometheus.Counter
	CashOrdersPlaced      *prometheus.CounterVec

	// Webhooks
	WebhookReceived  *prometheus.CounterVec
	WebhookProcessed *prometheus.CounterVec
	WebhookIgnored   *prometheus.CounterVec
	WebhookFailed    *prometheus.CounterVec

	// Finalization
	OrdersFinalized *prometheus.CounterVec
	OrderValue      prometheus.Histogram
	InvoicesCreated prometheus.Counter
	InvoicesFailed  prometheus.Counter
	EmailSent       *prometheus.CounterVec
	EmailFailed     *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers all business metrics.
// Pass prometheus.DefaultRegisterer in production; tests use their
// own registry so repeated construction never collides.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "vinohrad"
	}

	subsystem := "business"
	factory := promauto.With(reg)

	return &BusinessMetrics{
		OrdersValidated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_validated_total",
				Help:      "Total order validation attempts",
			},
			[]string{"result"}, // result: accepted, rejected
		),
		PaymentIntentsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payment_intents_created_total",
				Help:      "Total card payment intents created",
			},
		),
		CashOrdersPlaced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cash_orders_placed_total",
				Help:      "Total orders placed with cash-like payment methods",
			},
			[]string{"payment_method"},
		),
		WebhookReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_received_total",
				Help:      "Total webhook events received",
			},
			[]string{"event_type"},
		),
		WebhookProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_processed_total",
				Help:      "Total webhook events that finalized an order",
			},
			[]string{"event_type"},
		),
		WebhookIgnored: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_ignored_total",
				Help:      "Total webhook events acknowledged without action",
			},
			[]string{"event_type", "reason"}, // reason: unhandled_type, duplicate, not_final, ...
		),
		WebhookFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "webhook_failed_total",
				Help:      "Total webhook events that could not be processed",
			},
			[]string{"event_type", "reason"},
		),
		OrdersFinalized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_finalized_total",
				Help:      "Total orders finalized",
			},
			[]string{"payment_method"},
		),
		OrderValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_eur",
				Help:      "Finalized order totals in EUR",
				Buckets:   []float64{10, 25, 50, 100, 200, 500, 1000},
			},
		),
		InvoicesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invoices_created_total",
				Help:      "Total invoices issued",
			},
		),
		InvoicesFailed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invoices_failed_total",
				Help:      "Total invoice attempts that failed",
			},
		),
		EmailSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "email_sent_total",
				Help:      "Total order emails delivered",
			},
			[]string{"kind"}, // kind: admin, customer
		),
		EmailFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "email_failed_total",
				Help:      "Total order emails that failed to send",
			},
			[]string{"kind"},
		),
	}
}
