package service

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vinohrad/shop/internal/catalog"
	"github.com/vinohrad/shop/internal/domain"
	"github.com/vinohrad/shop/internal/settings"
)

// defaultLocale is used when a request carries no locale.
const defaultLocale = "sk"

// Validator checks untrusted order requests against the catalog and
// shop settings. Every client-asserted price and method reference is
// re-verified server-side; nothing from the request is trusted.
//
// Validation collects every failure before rejecting, so the
// storefront can show the customer the complete list at once. It has
// no side effects: no gateway, invoice or email calls happen here.
type Validator struct {
	catalog  catalog.Store
	settings settings.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates an order validator.
func NewValidator(cat catalog.Store, set settings.Store, logger *slog.Logger) *Validator {
	v := validator.New()

	// Report rejections under the JSON field names the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &Validator{
		catalog:  cat,
		settings: set,
		validate: v,
		logger:   logger,
	}
}

// Validate confirms an order request against the authoritative
// stores and returns the trusted snapshot. On failure it returns a
// *domain.RejectionError listing every offending field.
func (v *Validator) Validate(ctx context.Context, req *domain.OrderRequest) (*domain.ValidatedOrder, error) {
	const op = "service.Validator.Validate"

	rej := &domain.RejectionError{Op: op}

	v.checkForms(req, rej)
	v.checkItems(req, rej)
	shipping := v.checkShipping(req, rej)
	payment := v.checkPayment(req, rej)

	if rej.Any() {
		v.logger.Info("order rejected",
			"order_id", req.OrderID,
			"rejections", len(rej.Rejections))
		return nil, rej
	}

	locale := strings.ToLower(req.Locale)
	if locale == "" {
		locale = defaultLocale
	}

	order := &domain.ValidatedOrder{
		OrderID:         req.OrderID,
		CartItems:       req.CartItems,
		ShippingForm:    req.ShippingForm,
		BillingForm:     req.BillingForm,
		Shipping: domain.ShippingSnapshot{
			MethodID: shipping.ID,
			Name:     shipping.Name,
			Price:    shipping.Price,
		},
		PaymentMethodID: payment.ID,
		Locale:          locale,
		ValidatedAt:     time.Now(),
	}
	return order, nil
}

// checkForms runs the struct-level field validation over the request
// and its nested address forms.
func (v *Validator) checkForms(req *domain.OrderRequest, rej *domain.RejectionError) {
	if err := v.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				rej.Add(trimNamespace(fe.Namespace()), "failed %s validation", fe.Tag())
			}
		} else {
			rej.Add("request", "malformed request: %v", err)
		}
	}

	if !v.countryAllowed(req.ShippingForm.Country) {
		rej.Add("shippingForm.country", "shipping to %q is not available", req.ShippingForm.Country)
	}
}

// checkItems verifies every cart line against the catalog. The
// client-asserted unit price must exactly match the catalog's current
// price (the sale price when one is active); a stale storefront cache
// is the client's problem, not a reason to charge the wrong amount.
func (v *Validator) checkItems(req *domain.OrderRequest, rej *domain.RejectionError) {
	for i, item := range req.CartItems {
		field := itemField(i)

		product, err := v.catalog.Lookup(item.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				rej.Add(field+".productId", "product %q does not exist", item.ProductID)
			} else {
				rej.Add(field+".productId", "product %q could not be verified", item.ProductID)
				v.logger.Error("catalog lookup failed",
					"product_id", item.ProductID, "error", err)
			}
			continue
		}

		if !item.UnitPrice.Equal(product.CurrentPrice()) {
			rej.Add(field+".unitPrice", "price %s does not match the listed price %s",
				item.UnitPrice.StringFixed(2), product.CurrentPrice().StringFixed(2))
		}
	}
}

// checkShipping resolves the shipping method. The returned snapshot is
// the authoritative record; nil when rejected.
func (v *Validator) checkShipping(req *domain.OrderRequest, rej *domain.RejectionError) *settings.ShippingMethod {
	if req.ShippingMethodID == "" {
		return nil
	}
	method, err := v.settings.ShippingMethod(req.ShippingMethodID)
	if err != nil {
		if errors.Is(err, settings.ErrShippingMethodNotFound) {
			rej.Add("shippingMethodId", "shipping method %q does not exist", req.ShippingMethodID)
		} else {
			rej.Add("shippingMethodId", "shipping method %q could not be verified", req.ShippingMethodID)
			v.logger.Error("shipping method lookup failed",
				"shipping_method_id", req.ShippingMethodID, "error", err)
		}
		return nil
	}
	return method
}

// checkPayment resolves the payment method and requires it to be
// enabled. Nil when rejected.
func (v *Validator) checkPayment(req *domain.OrderRequest, rej *domain.RejectionError) *settings.PaymentMethod {
	if req.PaymentMethodID == "" {
		return nil
	}
	method, err := v.settings.PaymentMethod(req.PaymentMethodID)
	if err != nil {
		if errors.Is(err, settings.ErrPaymentMethodNotFound) {
			rej.Add("paymentMethodId", "payment method %q does not exist", req.PaymentMethodID)
		} else {
			rej.Add("paymentMethodId", "payment method %q could not be verified", req.PaymentMethodID)
			v.logger.Error("payment method lookup failed",
				"payment_method_id", req.PaymentMethodID, "error", err)
		}
		return nil
	}
	if !method.Enabled {
		rej.Add("paymentMethodId", "payment method %q is not available", req.PaymentMethodID)
		return nil
	}
	return method
}

func (v *Validator) countryAllowed(country string) bool {
	if country == "" {
		// Already rejected by the required check.
		return true
	}
	for _, c := range v.settings.Countries() {
		if strings.EqualFold(c, country) {
			return true
		}
	}
	return false
}

func itemField(i int) string {
	return "cartItems[" + strconv.Itoa(i) + "]"
}

// trimNamespace strips the leading struct name from a validator
// namespace, turning "OrderRequest.cartItems[2].unitPrice" into
// "cartItems[2].unitPrice".
func trimNamespace(ns string) string {
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}
