package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinohrad/shop/internal/domain"
)

func metadataOrder() *domain.ValidatedOrder {
	return &domain.ValidatedOrder{
		OrderID: "ord_meta1",
		CartItems: []domain.CartItem{
			{ProductID: "frankovka-2022", Title: "Frankovka modrá 2022", UnitPrice: decimal.NewFromFloat(8.90), Quantity: 2},
			{ProductID: "rizling-2023", Title: "Rizling rýnsky 2023", UnitPrice: decimal.NewFromFloat(11.50), Quantity: 1},
		},
		BillingForm: domain.AddressForm{
			FirstName: "Jana", LastName: "Nováková", Country: "SK", City: "Bratislava",
			Address1: "Hlavná 1", PostalCode: "81101", Phone: "+421900111222", Email: "jana@example.sk",
			IsCompany: true, CompanyName: "Vinári s.r.o.", CompanyICO: "12345678",
		},
		ShippingForm: domain.AddressForm{
			FirstName: "Jana", LastName: "Nováková", Country: "SK", City: "Bratislava",
			Address1: "Hlavná 1", PostalCode: "81101", Phone: "+421900111222", Email: "jana@example.sk",
		},
		Shipping: domain.ShippingSnapshot{
			MethodID: "courier", Name: "Kuriér", Price: decimal.NewFromFloat(4.90),
		},
		PaymentMethodID: "card",
		Locale:          "sk",
	}
}

func TestOrderMetadataRoundTrip(t *testing.T) {
	order := metadataOrder()

	md, err := EncodeOrderMetadata(order)
	require.NoError(t, err)

	decoded, encoding, err := DecodeOrderMetadata(md)
	require.NoError(t, err)

	assert.Equal(t, EncodingCompactV2, encoding)
	assert.Equal(t, order.OrderID, decoded.OrderID)
	require.Len(t, decoded.CartItems, 2)
	assert.True(t, decoded.CartItems[0].UnitPrice.Equal(decimal.NewFromFloat(8.90)))
	assert.Equal(t, int32(2), decoded.CartItems[0].Quantity)
	assert.Equal(t, order.BillingForm, decoded.BillingForm)
	assert.True(t, decoded.Shipping.Price.Equal(decimal.NewFromFloat(4.90)))
	assert.True(t, decoded.Total().Equal(order.Total()))
}

func TestDecodeFlatV1Fallback(t *testing.T) {
	order := metadataOrder()

	md, err := EncodeOrderMetadata(order)
	require.NoError(t, err)

	// Strip the JSON address blobs; only the flat mirror remains.
	delete(md, metaBilling)
	delete(md, metaShipping)

	decoded, encoding, err := DecodeOrderMetadata(md)
	require.NoError(t, err)

	assert.Equal(t, EncodingFlatV1, encoding)
	assert.Equal(t, order.BillingForm, decoded.BillingForm)
	assert.Equal(t, order.ShippingForm, decoded.ShippingForm)
	assert.True(t, decoded.BillingForm.IsCompany)
}

func TestDecodeRejectsIncompleteMetadata(t *testing.T) {
	t.Run("missing order id", func(t *testing.T) {
		_, _, err := DecodeOrderMetadata(map[string]string{"unrelated": "junk"})
		assert.Error(t, err)
	})

	t.Run("missing items", func(t *testing.T) {
		md, err := EncodeOrderMetadata(metadataOrder())
		require.NoError(t, err)
		delete(md, metaItems)

		_, _, err = DecodeOrderMetadata(md)
		assert.Error(t, err)
	})
}

func TestMetadataValueLimits(t *testing.T) {
	// Gateway metadata values are capped at 500 characters; the
	// compact item encoding has to stay under that for real carts.
	order := metadataOrder()
	md, err := EncodeOrderMetadata(order)
	require.NoError(t, err)

	for key, value := range md {
		assert.LessOrEqual(t, len(value), 500, "metadata value %q too long", key)
	}
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(2270), Cents(decimal.NewFromFloat(22.70)))
	assert.Equal(t, int64(0), Cents(decimal.Zero))
	assert.Equal(t, int64(499), Cents(decimal.NewFromFloat(4.99)))
}
