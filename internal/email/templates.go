package email

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/vinohrad/shop/internal/domain"
)

// OrderEmailData carries everything the order email templates need.
// PaymentMethodName is the already-localized display name of the
// payment method the customer chose.
type OrderEmailData struct {
	Order             *domain.ValidatedOrder
	PaymentMethodName string
}

// Template helpers exposed as methods so the templates stay flat.

func (d OrderEmailData) CustomerName() string {
	return d.Order.BillingForm.FullName()
}

func (d OrderEmailData) Subtotal() string {
	return eur(d.Order.Subtotal())
}

func (d OrderEmailData) ShippingPrice() string {
	return eur(d.Order.Shipping.Price)
}

func (d OrderEmailData) Total() string {
	return eur(d.Order.Total())
}

func (d OrderEmailData) Lines() []orderEmailLine {
	lines := make([]orderEmailLine, len(d.Order.CartItems))
	for i, item := range d.Order.CartItems {
		lines[i] = orderEmailLine{
			Title:    item.Title,
			Quantity: item.Quantity,
			Total:    eur(item.LineTotal()),
		}
	}
	return lines
}

type orderEmailLine struct {
	Title    string
	Quantity int32
	Total    string
}

func eur(amount decimal.Decimal) string {
	return amount.StringFixed(2) + " €"
}

// customerSubject returns the confirmation subject in the order's
// locale, falling back to Slovak.
func customerSubject(locale, orderID string) string {
	switch strings.ToLower(locale) {
	case "en":
		return fmt.Sprintf("Order confirmation %s", orderID)
	default:
		return fmt.Sprintf("Potvrdenie objednávky %s", orderID)
	}
}

// adminSubject is always Slovak; the shop staff reads it.
func adminSubject(orderID string) string {
	return fmt.Sprintf("Nová objednávka %s", orderID)
}

var customerTemplates = map[string]*template.Template{
	"sk": template.Must(template.New("customer_sk").Parse(customerBodySK)),
	"en": template.Must(template.New("customer_en").Parse(customerBodyEN)),
}

var adminTemplate = template.Must(template.New("admin").Parse(adminBody))

const customerBodySK = `Dobrý deň, {{.CustomerName}},

ďakujeme za Vašu objednávku {{.Order.OrderID}}.

Položky:
{{range .Lines}}  {{.Title}} × {{.Quantity}} — {{.Total}}
{{end}}
Medzisúčet: {{.Subtotal}}
Doprava ({{.Order.Shipping.Name}}): {{.ShippingPrice}}
Spolu: {{.Total}}

Spôsob platby: {{.PaymentMethodName}}

S pozdravom,
Vinohrad
`

const customerBodyEN = `Hello {{.CustomerName}},

thank you for your order {{.Order.OrderID}}.

Items:
{{range .Lines}}  {{.Title}} × {{.Quantity}} — {{.Total}}
{{end}}
Subtotal: {{.Subtotal}}
Shipping ({{.Order.Shipping.Name}}): {{.ShippingPrice}}
Total: {{.Total}}

Payment method: {{.PaymentMethodName}}

Best regards,
Vinohrad
`

const adminBody = `Nová objednávka {{.Order.OrderID}}

Zákazník: {{.CustomerName}}
Email: {{.Order.CustomerEmail}}
Telefón: {{.Order.BillingForm.Phone}}

Položky:
{{range .Lines}}  {{.Title}} × {{.Quantity}} — {{.Total}}
{{end}}
Medzisúčet: {{.Subtotal}}
Doprava ({{.Order.Shipping.Name}}): {{.ShippingPrice}}
Spolu: {{.Total}}

Spôsob platby: {{.PaymentMethodName}}
Doručenie: {{.Order.ShippingForm.Address1}}, {{.Order.ShippingForm.PostalCode}} {{.Order.ShippingForm.City}}, {{.Order.ShippingForm.Country}}
{{if .Order.BillingForm.IsCompany}}Firma: {{.Order.BillingForm.CompanyName}} (IČO {{.Order.BillingForm.CompanyICO}})
{{end}}`
