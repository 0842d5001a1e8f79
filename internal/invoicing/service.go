package invoicing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vinohrad/shop/internal/domain"
)

// Service issues invoices for finalized orders. Invoicing is a
// best-effort side effect of order finalization: every failure is
// logged and swallowed so a bookkeeping outage never blocks a paid
// order from completing.
type Service struct {
	client Client
	logger *slog.Logger
}

// NewService creates an invoicing service.
func NewService(client Client, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// EnsureInvoice makes sure exactly one invoice exists for the order
// and returns its ID, or "" when invoicing failed. An existing
// invoice tagged with the order ID is reused rather than duplicated,
// which keeps webhook retries from issuing a second document.
func (s *Service) EnsureInvoice(ctx context.Context, order *domain.ValidatedOrder) string {
	existing, err := s.client.FindInvoiceByOrderID(ctx, order.OrderID)
	if err != nil {
		s.logger.Error("invoice lookup failed",
			"order_id", order.OrderID,
			"error", err)
		return ""
	}
	if existing != nil {
		s.logger.Info("invoice already exists",
			"order_id", order.OrderID,
			"invoice_id", existing.ID)
		return existing.ID
	}

	contact, err := s.ensureContact(ctx, order)
	if err != nil {
		s.logger.Error("invoice contact upsert failed",
			"order_id", order.OrderID,
			"email", order.CustomerEmail(),
			"error", err)
		return ""
	}

	items := invoiceItems(order)
	invoice, err := s.client.CreateInvoice(ctx, CreateInvoiceParams{
		OrderID:   order.OrderID,
		ContactID: contact.ID,
		Currency:  "EUR",
		Items:     items,
		Comment:   fmt.Sprintf("Objednávka %s", order.OrderID),
	})
	if err != nil {
		s.logger.Error("invoice creation failed",
			"order_id", order.OrderID,
			"contact_id", contact.ID,
			"error", err)
		return ""
	}

	s.logger.Info("invoice created",
		"order_id", order.OrderID,
		"invoice_id", invoice.ID,
		"invoice_number", invoice.Number,
		"total", invoice.TotalAmount.StringFixed(2))
	return invoice.ID
}

// InvoicePDF downloads the rendered PDF for an invoice.
func (s *Service) InvoicePDF(ctx context.Context, invoiceID string) ([]byte, error) {
	return s.client.GetInvoicePDF(ctx, invoiceID)
}

// ensureContact finds or creates the billing contact and refreshes
// its address from the order's billing form. The latest order wins;
// there is no merge.
func (s *Service) ensureContact(ctx context.Context, order *domain.ValidatedOrder) (*Contact, error) {
	params := contactParams(order)

	contact, err := s.client.GetContactByEmail(ctx, params.Email)
	if err != nil {
		return nil, fmt.Errorf("find contact: %w", err)
	}
	if contact == nil {
		contact, err = s.client.CreateContact(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("create contact: %w", err)
		}
		return contact, nil
	}

	contact, err = s.client.UpdateContact(ctx, contact.ID, params)
	if err != nil {
		return nil, fmt.Errorf("update contact %d: %w", contact.ID, err)
	}
	return contact, nil
}

func contactParams(order *domain.ValidatedOrder) ContactParams {
	billing := order.BillingForm

	name := billing.FullName()
	if billing.IsCompany && billing.CompanyName != "" {
		name = billing.CompanyName
	}

	address := billing.Address1
	if billing.Address2 != "" {
		address = strings.TrimSpace(address + " " + billing.Address2)
	}

	params := ContactParams{
		Name:       name,
		Email:      order.CustomerEmail(),
		Phone:      billing.Phone,
		Address:    address,
		City:       billing.City,
		PostalCode: billing.PostalCode,
		Country:    billing.Country,
	}
	if billing.IsCompany {
		params.ICO = billing.CompanyICO
		params.DIC = billing.CompanyDIC
		params.ICDPH = billing.CompanyICDPH
	}
	return params
}

func invoiceItems(order *domain.ValidatedOrder) []LineItem {
	items := make([]LineItem, 0, len(order.CartItems)+1)
	for _, item := range order.CartItems {
		items = append(items, LineItem{
			Description: item.Title,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	if order.Shipping.Price.IsPositive() {
		items = append(items, LineItem{
			Description: order.Shipping.Name,
			Quantity:    1,
			UnitPrice:   order.Shipping.Price,
		})
	}
	return items
}
