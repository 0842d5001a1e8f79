package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vinohrad/shop/internal/billing"
	"github.com/vinohrad/shop/internal/dedup"
	"github.com/vinohrad/shop/internal/domain"
	"github.com/vinohrad/shop/internal/handler"
	"github.com/vinohrad/shop/internal/service"
	"github.com/vinohrad/shop/internal/telemetry"
)

// StripeWebhookConfig contains configuration for webhook handling.
type StripeWebhookConfig struct {
	// WebhookSecret is the signing secret from the gateway dashboard.
	WebhookSecret string

	// SkipSignatureVerification disables signature checks for local
	// testing against replayed payloads. It is ignored unless
	// Environment is a non-production value; a misdeployed flag must
	// never open the endpoint in production.
	SkipSignatureVerification bool

	// Environment is the runtime environment name ("production",
	// "staging", "development").
	Environment string

	// RefetchAttempts bounds how many times a succeeded event's
	// payment intent is re-read while waiting for the captured amount
	// to appear. Zero uses the default.
	RefetchAttempts uint64

	// RefetchDelay is the fixed delay between re-reads. Zero uses the
	// default.
	RefetchDelay time.Duration
}

const (
	defaultRefetchAttempts = 5
	defaultRefetchDelay    = 2 * time.Second
)

// StripeHandler handles gateway webhook events. The only event that
// finalizes an order is payment_intent.succeeded; charge.succeeded
// fires for the same payment and would double-finalize if handled.
type StripeHandler struct {
	provider  billing.Provider
	finalizer *service.Finalizer
	dedup     dedup.Store
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
	config    StripeWebhookConfig
}

// NewStripeHandler creates a webhook handler.
func NewStripeHandler(provider billing.Provider, finalizer *service.Finalizer, dedupStore dedup.Store, metrics *telemetry.BusinessMetrics, logger *slog.Logger, config StripeWebhookConfig) *StripeHandler {
	if config.RefetchAttempts == 0 {
		config.RefetchAttempts = defaultRefetchAttempts
	}
	if config.RefetchDelay == 0 {
		config.RefetchDelay = defaultRefetchDelay
	}
	return &StripeHandler{
		provider:  provider,
		finalizer: finalizer,
		dedup:     dedupStore,
		metrics:   metrics,
		logger:    logger,
		config:    config,
	}
}

// stripeEvent is the slice of the event envelope this handler needs.
type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// HandleWebhook processes incoming gateway webhook events.
//
// Once the request is authenticated, the response is always 200: the
// gateway retries non-2xx deliveries, and a retry cannot fix a
// payload we already failed to process. Failures are logged and
// counted instead.
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("webhook body read failed", "error", err)
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Error reading request body"))
		return
	}

	// The signature covers the exact raw bytes; payload must not be
	// re-serialized before verification.
	// A rejected signature is a malformed delivery as far as the
	// gateway is concerned: respond 400 so it retries with a valid one.
	if err := h.verifySignature(payload, r.Header.Get("Stripe-Signature")); err != nil {
		h.logger.Warn("webhook signature rejected", "error", err)
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Invalid signature"))
		return
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Error("webhook payload parse failed", "error", err)
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Invalid JSON"))
		return
	}

	h.metrics.WebhookReceived.WithLabelValues(event.Type).Inc()
	h.logger.Info("webhook event received",
		"event_id", event.ID,
		"event_type", event.Type)

	switch event.Type {
	case "payment_intent.succeeded":
		h.handlePaymentIntentSucceeded(r.Context(), event)

	case "payment_intent.payment_failed":
		h.handlePaymentIntentFailed(event)

	default:
		// charge.succeeded lands here too: it reports the same payment
		// as payment_intent.succeeded and must stay unhandled.
		h.metrics.WebhookIgnored.WithLabelValues(event.Type, "unhandled_type").Inc()
		h.logger.Debug("webhook event ignored", "event_type", event.Type)
	}

	handler.JSONResponse(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *StripeHandler) verifySignature(payload []byte, signature string) error {
	if h.config.SkipSignatureVerification && h.config.Environment != "production" {
		h.logger.Warn("webhook signature verification skipped",
			"environment", h.config.Environment)
		return nil
	}
	if signature == "" {
		return fmt.Errorf("missing Stripe-Signature header")
	}
	return h.provider.VerifyWebhookSignature(payload, signature, h.config.WebhookSecret)
}

// handlePaymentIntentSucceeded finalizes the order carried in the
// payment intent metadata.
func (h *StripeHandler) handlePaymentIntentSucceeded(ctx context.Context, event stripeEvent) {
	const eventType = "payment_intent.succeeded"

	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Object, &ref); err != nil || ref.ID == "" {
		h.metrics.WebhookFailed.WithLabelValues(eventType, "bad_payload").Inc()
		h.logger.Error("payment intent reference missing from event",
			"event_id", event.ID, "error", err)
		return
	}

	// Dedup is keyed by the payment intent, not the event: the gateway
	// may emit distinct events for the same payment.
	seen, err := h.dedup.Seen(ctx, ref.ID)
	if err != nil {
		h.logger.Error("dedup lookup failed, continuing",
			"payment_intent_id", ref.ID, "error", err)
	}
	if seen {
		h.metrics.WebhookIgnored.WithLabelValues(eventType, "duplicate").Inc()
		h.logger.Info("payment already processed, skipping",
			"payment_intent_id", ref.ID)
		return
	}

	// The event payload can race the capture. Re-read the intent from
	// the API until the captured amount shows up.
	intent, err := h.refetchIntent(ctx, ref.ID)
	if err != nil {
		h.metrics.WebhookFailed.WithLabelValues(eventType, "refetch_failed").Inc()
		h.logger.Error("payment intent re-read failed",
			"payment_intent_id", ref.ID, "error", err)
		return
	}

	if intent.Status != billing.StatusSucceeded || intent.AmountReceivedCents == 0 {
		h.metrics.WebhookIgnored.WithLabelValues(eventType, "not_final").Inc()
		h.logger.Warn("payment intent not final, leaving for gateway retry",
			"payment_intent_id", intent.ID,
			"status", intent.Status,
			"amount_received_cents", intent.AmountReceivedCents)
		return
	}

	order, encoding, err := billing.DecodeOrderMetadata(intent.Metadata)
	if err != nil {
		// The money is captured but the order cannot be reconstructed.
		// This needs a human.
		h.metrics.WebhookFailed.WithLabelValues(eventType, "metadata_decode").Inc()
		h.logger.Error("CRITICAL: paid intent carries undecodable order metadata",
			"payment_intent_id", intent.ID,
			"amount_received_cents", intent.AmountReceivedCents,
			"error", err)
		return
	}

	h.logger.Info("payment confirmed, finalizing order",
		"payment_intent_id", intent.ID,
		"order_id", order.OrderID,
		"metadata_encoding", encoding.String(),
		"amount_received_cents", intent.AmountReceivedCents)

	finalized := h.finalizer.Finalize(ctx, order)

	if err := h.dedup.Mark(ctx, intent.ID); err != nil {
		h.logger.Error("dedup mark failed",
			"payment_intent_id", intent.ID, "error", err)
	}

	h.metrics.WebhookProcessed.WithLabelValues(eventType).Inc()
	h.logger.Info("order finalized from webhook",
		"order_id", finalized.Order.OrderID,
		"invoice_id", finalized.InvoiceID)
}

// refetchIntent re-reads the payment intent with a bounded
// fixed-delay retry, retrying both transport errors and intents whose
// capture has not settled yet.
func (h *StripeHandler) refetchIntent(ctx context.Context, id string) (*billing.PaymentIntent, error) {
	var intent *billing.PaymentIntent

	backoff := retry.WithMaxRetries(h.config.RefetchAttempts, retry.NewConstant(h.config.RefetchDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		pi, err := h.provider.GetPaymentIntent(ctx, id)
		if err != nil {
			return retry.RetryableError(err)
		}
		intent = pi
		if pi.Status != billing.StatusSucceeded || pi.AmountReceivedCents == 0 {
			return retry.RetryableError(fmt.Errorf("intent %s not settled: status=%s amount_received=%d",
				id, pi.Status, pi.AmountReceivedCents))
		}
		return nil
	})

	// A settled read beats a retryable error from the last attempt.
	if intent != nil {
		return intent, nil
	}
	return nil, err
}

// handlePaymentIntentFailed only records the failure; the customer
// retries from the storefront and no order exists yet.
func (h *StripeHandler) handlePaymentIntentFailed(event stripeEvent) {
	var pi struct {
		ID               string `json:"id"`
		LastPaymentError struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"last_payment_error"`
	}
	if err := json.Unmarshal(event.Data.Object, &pi); err != nil {
		h.logger.Error("failed payment event parse error", "event_id", event.ID, "error", err)
		return
	}

	h.metrics.WebhookIgnored.WithLabelValues("payment_intent.payment_failed", "no_action").Inc()
	h.logger.Info("payment failed",
		"payment_intent_id", pi.ID,
		"error_code", pi.LastPaymentError.Code,
		"error_message", pi.LastPaymentError.Message)
}
