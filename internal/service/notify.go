package service

import (
	"context"
	"log/slog"

	"github.com/vinohrad/shop/internal/domain"
	"github.com/vinohrad/shop/internal/email"
	"github.com/vinohrad/shop/internal/invoicing"
	"github.com/vinohrad/shop/internal/settings"
	"github.com/vinohrad/shop/internal/telemetry"
)

// Dispatcher sends the order emails after finalization. The admin
// notification and the customer confirmation are independent failure
// domains: either can fail without suppressing the other, and neither
// failure surfaces to the caller beyond the EmailsSent flags.
type Dispatcher struct {
	email     *email.Service
	invoicing *invoicing.Service
	settings  settings.Store
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(emailSvc *email.Service, invoicingSvc *invoicing.Service, set settings.Store, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		email:     emailSvc,
		invoicing: invoicingSvc,
		settings:  set,
		metrics:   metrics,
		logger:    logger,
	}
}

// Notify sends the admin and customer emails for a finalized order.
// invoiceID may be empty when invoicing failed; the customer email is
// then sent without an attachment.
func (d *Dispatcher) Notify(ctx context.Context, order *domain.ValidatedOrder, invoiceID string) domain.EmailsSent {
	var sent domain.EmailsSent

	methodName := d.paymentMethodName(order)

	if err := d.email.SendAdminNotification(ctx, order, methodName); err != nil {
		d.metrics.EmailFailed.WithLabelValues("admin").Inc()
		d.logger.Error("admin notification failed",
			"order_id", order.OrderID,
			"error", err)
	} else {
		sent.Admin = true
		d.metrics.EmailSent.WithLabelValues("admin").Inc()
	}

	attachment := d.invoiceAttachment(ctx, order, invoiceID)
	if err := d.email.SendOrderConfirmation(ctx, order, methodName, attachment); err != nil {
		d.metrics.EmailFailed.WithLabelValues("customer").Inc()
		d.logger.Error("customer confirmation failed",
			"order_id", order.OrderID,
			"email", order.CustomerEmail(),
			"error", err)
	} else {
		sent.Customer = true
		d.metrics.EmailSent.WithLabelValues("customer").Inc()
	}

	return sent
}

// invoiceAttachment fetches the invoice PDF for the customer email.
// Any failure is logged and the email goes out without it.
func (d *Dispatcher) invoiceAttachment(ctx context.Context, order *domain.ValidatedOrder, invoiceID string) *email.Attachment {
	if invoiceID == "" {
		return nil
	}
	pdf, err := d.invoicing.InvoicePDF(ctx, invoiceID)
	if err != nil {
		d.logger.Error("invoice pdf fetch failed",
			"order_id", order.OrderID,
			"invoice_id", invoiceID,
			"error", err)
		return nil
	}
	return &email.Attachment{
		Filename:    "faktura-" + order.OrderID + ".pdf",
		ContentType: "application/pdf",
		Content:     pdf,
	}
}

// paymentMethodName resolves the localized display name of the
// order's payment method, falling back to the raw ID.
func (d *Dispatcher) paymentMethodName(order *domain.ValidatedOrder) string {
	method, err := d.settings.PaymentMethod(order.PaymentMethodID)
	if err != nil {
		d.logger.Warn("payment method lookup failed for email",
			"payment_method_id", order.PaymentMethodID,
			"error", err)
		return order.PaymentMethodID
	}
	return method.DisplayName(order.Locale)
}
