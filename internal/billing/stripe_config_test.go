package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripeConfigIsTestMode(t *testing.T) {
	test := StripeConfig{APIKey: "sk_test_abc", WebhookSecret: "whsec_x"}
	live := StripeConfig{APIKey: "sk_live_abc", WebhookSecret: "whsec_x"}

	assert.True(t, test.IsTestMode())
	assert.False(t, live.IsTestMode())
}

func TestStripeConfigValidate(t *testing.T) {
	cfg := StripeConfig{APIKey: "sk_test_abc", WebhookSecret: "whsec_x"}
	assert.NoError(t, cfg.Validate())

	missingKey := StripeConfig{WebhookSecret: "whsec_x"}
	assert.Error(t, missingKey.Validate())

	missingSecret := StripeConfig{APIKey: "sk_test_abc"}
	assert.Error(t, missingSecret.Validate())
}
