package email

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/vinohrad/shop/internal/domain"
)

// Service composes and sends order emails.
type Service struct {
	sender       Sender
	fromAddress  string
	fromName     string
	adminAddress string
}

// NewService creates a new email service.
func NewService(sender Sender, fromAddress, fromName, adminAddress string) *Service {
	return &Service{
		sender:       sender,
		fromAddress:  fromAddress,
		fromName:     fromName,
		adminAddress: adminAddress,
	}
}

// SendOrderConfirmation sends the customer-facing confirmation in the
// order's locale. The invoice attachment is optional.
func (s *Service) SendOrderConfirmation(ctx context.Context, order *domain.ValidatedOrder, paymentMethodName string, attachment *Attachment) error {
	data := OrderEmailData{Order: order, PaymentMethodName: paymentMethodName}

	body, err := renderCustomerBody(order.Locale, data)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation: %w", err)
	}

	email := &Email{
		To:       []string{order.CustomerEmail()},
		From:     fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress),
		ReplyTo:  s.adminAddress,
		Subject:  customerSubject(order.Locale, order.OrderID),
		TextBody: body,
	}
	if attachment != nil {
		email.Attachments = []Attachment{*attachment}
	}

	if _, err := s.sender.Send(ctx, email); err != nil {
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}
	return nil
}

// SendAdminNotification sends the new-order alert to the shop staff.
func (s *Service) SendAdminNotification(ctx context.Context, order *domain.ValidatedOrder, paymentMethodName string) error {
	data := OrderEmailData{Order: order, PaymentMethodName: paymentMethodName}

	var buf bytes.Buffer
	if err := adminTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render admin notification: %w", err)
	}

	email := &Email{
		To:       []string{s.adminAddress},
		From:     fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress),
		ReplyTo:  order.CustomerEmail(),
		Subject:  adminSubject(order.OrderID),
		TextBody: buf.String(),
	}

	if _, err := s.sender.Send(ctx, email); err != nil {
		return fmt.Errorf("failed to send admin notification: %w", err)
	}
	return nil
}

func renderCustomerBody(locale string, data OrderEmailData) (string, error) {
	tmpl, ok := customerTemplates[strings.ToLower(locale)]
	if !ok {
		tmpl = customerTemplates["sk"]
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
