package invoicing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinohrad/shop/internal/domain"
)

func testOrder() *domain.ValidatedOrder {
	return &domain.ValidatedOrder{
		OrderID: "ord_abc123",
		CartItems: []domain.CartItem{
			{ProductID: "frankovka-2022", Title: "Frankovka modrá 2022", UnitPrice: decimal.NewFromFloat(8.90), Quantity: 2},
			{ProductID: "rizling-2023", Title: "Rizling rýnsky 2023", UnitPrice: decimal.NewFromFloat(11.50), Quantity: 1},
		},
		BillingForm: domain.AddressForm{
			FirstName:  "Jana",
			LastName:   "Nováková",
			Country:    "SK",
			City:       "Bratislava",
			Address1:   "Hlavná 1",
			PostalCode: "81101",
			Phone:      "+421900111222",
			Email:      "jana@example.sk",
		},
		ShippingForm: domain.AddressForm{
			FirstName:  "Jana",
			LastName:   "Nováková",
			Country:    "SK",
			City:       "Bratislava",
			Address1:   "Hlavná 1",
			PostalCode: "81101",
			Phone:      "+421900111222",
			Email:      "jana@example.sk",
		},
		Shipping: domain.ShippingSnapshot{
			MethodID: "courier",
			Name:     "Kuriér",
			Price:    decimal.NewFromFloat(4.90),
		},
		PaymentMethodID: "card",
		Locale:          "sk",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsureInvoice(t *testing.T) {
	t.Run("creates invoice with contact and line items", func(t *testing.T) {
		mock := NewMockClient()
		svc := NewService(mock, testLogger())

		invoiceID := svc.EnsureInvoice(context.Background(), testOrder())

		require.NotEmpty(t, invoiceID)
		assert.Equal(t, 1, mock.CallCount("CreateContact"))
		assert.Equal(t, 1, mock.CallCount("CreateInvoice"))

		inv := mock.Invoices[invoiceID]
		require.NotNil(t, inv)
		assert.Equal(t, "ord_abc123", inv.OrderID)
		// 2x8.90 + 11.50 + 4.90 shipping
		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromFloat(34.20)),
			"total was %s", inv.TotalAmount)
	})

	t.Run("second call reuses the existing invoice", func(t *testing.T) {
		mock := NewMockClient()
		svc := NewService(mock, testLogger())
		order := testOrder()

		first := svc.EnsureInvoice(context.Background(), order)
		second := svc.EnsureInvoice(context.Background(), order)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, mock.CallCount("CreateInvoice"))
	})

	t.Run("refreshes an existing contact instead of duplicating", func(t *testing.T) {
		mock := NewMockClient()
		existing, err := mock.CreateContact(context.Background(), ContactParams{
			Name:  "Jana Stará",
			Email: "jana@example.sk",
			City:  "Košice",
		})
		require.NoError(t, err)
		mock.CallLog = nil

		svc := NewService(mock, testLogger())
		invoiceID := svc.EnsureInvoice(context.Background(), testOrder())

		require.NotEmpty(t, invoiceID)
		assert.Equal(t, 0, mock.CallCount("CreateContact"))
		assert.Equal(t, 1, mock.CallCount("UpdateContact"))
		assert.Equal(t, "Bratislava", mock.Contacts[existing.ID].City)
		assert.Equal(t, "Jana Nováková", mock.Contacts[existing.ID].Name)
	})

	t.Run("company order uses company name and tax identifiers", func(t *testing.T) {
		mock := NewMockClient()
		svc := NewService(mock, testLogger())

		order := testOrder()
		order.BillingForm.IsCompany = true
		order.BillingForm.CompanyName = "Vinárstvo Malé Karpaty s.r.o."
		order.BillingForm.CompanyICO = "12345678"
		order.BillingForm.CompanyDIC = "2020123456"
		order.BillingForm.CompanyICDPH = "SK2020123456"

		invoiceID := svc.EnsureInvoice(context.Background(), order)
		require.NotEmpty(t, invoiceID)

		var contact *Contact
		for _, c := range mock.Contacts {
			contact = c
		}
		require.NotNil(t, contact)
		assert.Equal(t, "Vinárstvo Malé Karpaty s.r.o.", contact.Name)
		assert.Equal(t, "12345678", contact.ICO)
		assert.Equal(t, "SK2020123456", contact.ICDPH)
	})

	t.Run("free shipping produces no shipping line", func(t *testing.T) {
		mock := NewMockClient()
		var captured CreateInvoiceParams
		mock.CreateInvoiceFunc = func(ctx context.Context, params CreateInvoiceParams) (*Invoice, error) {
			captured = params
			return &Invoice{ID: "inv_1", OrderID: params.OrderID}, nil
		}
		svc := NewService(mock, testLogger())

		order := testOrder()
		order.Shipping = domain.ShippingSnapshot{MethodID: "pickup", Name: "Osobný odber", Price: decimal.Zero}

		svc.EnsureInvoice(context.Background(), order)

		assert.Len(t, captured.Items, 2)
	})

	t.Run("returns empty string when creation fails", func(t *testing.T) {
		mock := NewMockClient()
		mock.CreateInvoiceFunc = func(ctx context.Context, params CreateInvoiceParams) (*Invoice, error) {
			return nil, errors.New("service unavailable")
		}
		svc := NewService(mock, testLogger())

		invoiceID := svc.EnsureInvoice(context.Background(), testOrder())
		assert.Empty(t, invoiceID)
	})

	t.Run("returns empty string when contact upsert fails", func(t *testing.T) {
		mock := NewMockClient()
		mock.GetContactByEmailFunc = func(ctx context.Context, email string) (*Contact, error) {
			return nil, errors.New("timeout")
		}
		svc := NewService(mock, testLogger())

		invoiceID := svc.EnsureInvoice(context.Background(), testOrder())
		assert.Empty(t, invoiceID)
		assert.Equal(t, 0, mock.CallCount("CreateInvoice"))
	})
}
