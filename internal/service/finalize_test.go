package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinohrad/shop/internal/email"
	"github.com/vinohrad/shop/internal/invoicing"
)

func finalizeOrder(t *testing.T, h *checkoutHarness) {
	t.Helper()
	v := NewValidator(testCatalog(t), testSettings(), testLogger())
	req := testRequest()
	req.PaymentMethodID = "cod"
	order, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	h.finalizer.Finalize(context.Background(), order)
}

func TestFinalize(t *testing.T) {
	t.Run("happy path issues invoice and both emails", func(t *testing.T) {
		h := newCheckoutHarness(t)
		finalizeOrder(t, h)

		assert.Equal(t, 1, h.invoicing.CallCount("CreateInvoice"))
		require.Len(t, h.sender.Sent, 2)

		// Admin first, then customer with the invoice attached.
		assert.Equal(t, []string{"admin@vinohrad.sk"}, h.sender.Sent[0].To)
		assert.Equal(t, []string{"jana@example.sk"}, h.sender.Sent[1].To)
		assert.Len(t, h.sender.Sent[1].Attachments, 1)
		assert.Equal(t, "application/pdf", h.sender.Sent[1].Attachments[0].ContentType)
	})

	t.Run("invoice failure does not block emails", func(t *testing.T) {
		h := newCheckoutHarness(t)
		h.invoicing.CreateInvoiceFunc = func(ctx context.Context, params invoicing.CreateInvoiceParams) (*invoicing.Invoice, error) {
			return nil, errors.New("bookkeeping down")
		}

		finalizeOrder(t, h)

		require.Len(t, h.sender.Sent, 2)
		assert.Empty(t, h.sender.Sent[1].Attachments)
	})

	t.Run("pdf fetch failure drops attachment only", func(t *testing.T) {
		h := newCheckoutHarness(t)
		h.invoicing.GetInvoicePDFFunc = func(ctx context.Context, invoiceID string) ([]byte, error) {
			return nil, errors.New("render timeout")
		}

		finalizeOrder(t, h)

		require.Len(t, h.sender.Sent, 2)
		assert.Empty(t, h.sender.Sent[1].Attachments)
	})

	t.Run("admin email failure does not suppress customer email", func(t *testing.T) {
		h := newCheckoutHarness(t)
		h.sender.SendFunc = func(ctx context.Context, e *email.Email) (string, error) {
			if e.To[0] == "admin@vinohrad.sk" {
				return "", errors.New("mailbox full")
			}
			h.sender.Sent = append(h.sender.Sent, e)
			return "msg_1", nil
		}

		finalizeOrder(t, h)

		require.Len(t, h.sender.Sent, 1)
		assert.Equal(t, []string{"jana@example.sk"}, h.sender.Sent[0].To)
	})

	t.Run("finalized order reports email outcomes", func(t *testing.T) {
		h := newCheckoutHarness(t)
		h.sender.SendFunc = func(ctx context.Context, e *email.Email) (string, error) {
			return "", errors.New("smtp refused")
		}

		v := NewValidator(testCatalog(t), testSettings(), testLogger())
		req := testRequest()
		req.PaymentMethodID = "cod"
		order, err := v.Validate(context.Background(), req)
		require.NoError(t, err)

		finalized := h.finalizer.Finalize(context.Background(), order)
		assert.False(t, finalized.EmailsSent.Admin)
		assert.False(t, finalized.EmailsSent.Customer)
		assert.NotEmpty(t, finalized.InvoiceID)
	})
}
