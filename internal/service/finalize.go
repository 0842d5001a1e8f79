package service

import (
	"context"
	"log/slog"

	"github.com/vinohrad/shop/internal/domain"
	"github.com/vinohrad/shop/internal/invoicing"
	"github.com/vinohrad/shop/internal/telemetry"
)

// Finalizer completes a paid (or cash) order: it issues the invoice,
// then dispatches the emails. Both steps are best-effort; a finalized
// order is returned even when every side effect failed, because the
// payment has already been taken and there is nothing left to refuse.
//
// Invoicing runs strictly before the emails so the customer
// confirmation can carry the invoice PDF.
type Finalizer struct {
	invoicing  *invoicing.Service
	dispatcher *Dispatcher
	metrics    *telemetry.BusinessMetrics
	logger     *slog.Logger
}

// NewFinalizer creates an order finalizer.
func NewFinalizer(invoicingSvc *invoicing.Service, dispatcher *Dispatcher, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *Finalizer {
	return &Finalizer{
		invoicing:  invoicingSvc,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Finalize runs the post-payment side effects for a validated order.
func (f *Finalizer) Finalize(ctx context.Context, order *domain.ValidatedOrder) *domain.FinalizedOrder {
	invoiceID := f.invoicing.EnsureInvoice(ctx, order)
	if invoiceID == "" {
		f.metrics.InvoicesFailed.Inc()
	} else {
		f.metrics.InvoicesCreated.Inc()
	}

	sent := f.dispatcher.Notify(ctx, order, invoiceID)

	f.metrics.OrdersFinalized.WithLabelValues(order.PaymentMethodID).Inc()
	total, _ := order.Total().Float64()
	f.metrics.OrderValue.Observe(total)

	f.logger.Info("order finalized",
		"order_id", order.OrderID,
		"payment_method", order.PaymentMethodID,
		"total", order.Total().StringFixed(2),
		"invoice_id", invoiceID,
		"admin_email_sent", sent.Admin,
		"customer_email_sent", sent.Customer)

	return &domain.FinalizedOrder{
		Order:      *order,
		InvoiceID:  invoiceID,
		EmailsSent: sent,
	}
}
