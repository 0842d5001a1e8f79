package billing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vinohrad/shop/internal/domain"
)

// Gateway metadata carries the validated order through the payment
// intent so the webhook handler can reconstruct it without a database.
// Values are plain strings capped at 500 characters, which forces the
// flattening below.
//
// Two encodings exist in the wild:
//
//   - CompactV2: cart items and each address as one JSON blob under the
//     "items", "billing" and "shipping" keys.
//   - FlatV1: addresses exploded into "billing_first_name"-style keys.
//
// The encoder writes both so that intents created by this version stay
// readable by the previous deployment during rollout. The decoder
// prefers CompactV2 and falls back to FlatV1.

// MetadataEncoding identifies which shape a metadata map carried.
type MetadataEncoding int

const (
	// EncodingCompactV2 is the JSON-blob encoding.
	EncodingCompactV2 MetadataEncoding = iota

	// EncodingFlatV1 is the legacy flat-key encoding.
	EncodingFlatV1
)

// String implements fmt.Stringer for log output.
func (e MetadataEncoding) String() string {
	switch e {
	case EncodingCompactV2:
		return "compact_v2"
	case EncodingFlatV1:
		return "flat_v1"
	default:
		return "unknown"
	}
}

const (
	metaOrderID         = "order_id"
	metaItems           = "items"
	metaBilling         = "billing"
	metaShipping        = "shipping"
	metaShipMethodID    = "shipping_method_id"
	metaShipMethodName  = "shipping_method_name"
	metaShipPrice       = "shipping_price"
	metaPaymentMethodID = "payment_method_id"
	metaLocale          = "locale"
)

// compactItem keeps the items blob short; metadata values are capped.
type compactItem struct {
	ID    string `json:"id"`
	Title string `json:"t"`
	Price string `json:"p"`
	Qty   int32  `json:"q"`
}

// EncodeOrderMetadata flattens a validated order into gateway metadata.
func EncodeOrderMetadata(order *domain.ValidatedOrder) (map[string]string, error) {
	items := make([]compactItem, len(order.CartItems))
	for i, it := range order.CartItems {
		items[i] = compactItem{
			ID:    it.ProductID,
			Title: it.Title,
			Price: it.UnitPrice.String(),
			Qty:   it.Quantity,
		}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart items: %w", err)
	}

	billingJSON, err := json.Marshal(order.BillingForm)
	if err != nil {
		return nil, fmt.Errorf("encode billing address: %w", err)
	}
	shippingJSON, err := json.Marshal(order.ShippingForm)
	if err != nil {
		return nil, fmt.Errorf("encode shipping address: %w", err)
	}

	md := map[string]string{
		metaOrderID:         order.OrderID,
		metaItems:           string(itemsJSON),
		metaBilling:         string(billingJSON),
		metaShipping:        string(shippingJSON),
		metaShipMethodID:    order.Shipping.MethodID,
		metaShipMethodName:  order.Shipping.Name,
		metaShipPrice:       order.Shipping.Price.String(),
		metaPaymentMethodID: order.PaymentMethodID,
		metaLocale:          order.Locale,
	}

	// Legacy mirror for readers that predate the JSON-blob shape.
	writeFlatAddress(md, "billing", order.BillingForm)
	writeFlatAddress(md, "shipping", order.ShippingForm)

	return md, nil
}

// DecodeOrderMetadata reconstructs a validated order from gateway
// metadata, trying CompactV2 first and falling back to FlatV1.
func DecodeOrderMetadata(md map[string]string) (*domain.ValidatedOrder, MetadataEncoding, error) {
	if md[metaOrderID] == "" {
		return nil, 0, fmt.Errorf("metadata missing %s", metaOrderID)
	}

	items, err := decodeItems(md[metaItems])
	if err != nil {
		return nil, 0, err
	}

	shipPrice, err := decimal.NewFromString(md[metaShipPrice])
	if err != nil {
		return nil, 0, fmt.Errorf("parse %s %q: %w", metaShipPrice, md[metaShipPrice], err)
	}

	order := &domain.ValidatedOrder{
		OrderID:   md[metaOrderID],
		CartItems: items,
		Shipping: domain.ShippingSnapshot{
			MethodID: md[metaShipMethodID],
			Name:     md[metaShipMethodName],
			Price:    shipPrice,
		},
		PaymentMethodID: md[metaPaymentMethodID],
		Locale:          md[metaLocale],
	}

	encoding := EncodingCompactV2
	if md[metaBilling] != "" && md[metaShipping] != "" {
		if err := json.Unmarshal([]byte(md[metaBilling]), &order.BillingForm); err != nil {
			return nil, 0, fmt.Errorf("decode billing address: %w", err)
		}
		if err := json.Unmarshal([]byte(md[metaShipping]), &order.ShippingForm); err != nil {
			return nil, 0, fmt.Errorf("decode shipping address: %w", err)
		}
	} else {
		encoding = EncodingFlatV1
		order.BillingForm = readFlatAddress(md, "billing")
		order.ShippingForm = readFlatAddress(md, "shipping")
	}

	return order, encoding, nil
}

func decodeItems(raw string) ([]domain.CartItem, error) {
	if raw == "" {
		return nil, fmt.Errorf("metadata missing %s", metaItems)
	}
	var compact []compactItem
	if err := json.Unmarshal([]byte(raw), &compact); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	items := make([]domain.CartItem, len(compact))
	for i, c := range compact {
		price, err := decimal.NewFromString(c.Price)
		if err != nil {
			return nil, fmt.Errorf("parse item price %q: %w", c.Price, err)
		}
		items[i] = domain.CartItem{
			ProductID: c.ID,
			Title:     c.Title,
			UnitPrice: price,
			Quantity:  c.Qty,
		}
	}
	return items, nil
}

func writeFlatAddress(md map[string]string, prefix string, a domain.AddressForm) {
	md[prefix+"_first_name"] = a.FirstName
	md[prefix+"_last_name"] = a.LastName
	md[prefix+"_country"] = a.Country
	md[prefix+"_city"] = a.City
	md[prefix+"_address1"] = a.Address1
	md[prefix+"_address2"] = a.Address2
	md[prefix+"_postal_code"] = a.PostalCode
	md[prefix+"_phone"] = a.Phone
	md[prefix+"_email"] = a.Email
	if a.IsCompany {
		md[prefix+"_company"] = "1"
		md[prefix+"_company_name"] = a.CompanyName
		md[prefix+"_company_ico"] = a.CompanyICO
		md[prefix+"_company_dic"] = a.CompanyDIC
		md[prefix+"_company_icdph"] = a.CompanyICDPH
	}
}

func readFlatAddress(md map[string]string, prefix string) domain.AddressForm {
	return domain.AddressForm{
		FirstName:    md[prefix+"_first_name"],
		LastName:     md[prefix+"_last_name"],
		Country:      md[prefix+"_country"],
		City:         md[prefix+"_city"],
		Address1:     md[prefix+"_address1"],
		Address2:     md[prefix+"_address2"],
		PostalCode:   md[prefix+"_postal_code"],
		Phone:        md[prefix+"_phone"],
		Email:        md[prefix+"_email"],
		IsCompany:    md[prefix+"_company"] == "1",
		CompanyName:  md[prefix+"_company_name"],
		CompanyICO:   md[prefix+"_company_ico"],
		CompanyDIC:   md[prefix+"_company_dic"],
		CompanyICDPH: md[prefix+"_company_icdph"],
	}
}
