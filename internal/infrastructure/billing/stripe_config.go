package billing

import (
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
)

// StripeConfig holds configuration for the hosted checkout integration
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string `json:"secret_key" mapstructure:"secret_key"`

	// WebhookSecret is the secret for verifying webhook signatures
	WebhookSecret string `json:"webhook_secret" mapstructure:"webhook_secret"`

	// IsTestMode indicates if using Stripe test mode
	IsTestMode bool `json:"is_test_mode" mapstructure:"is_test_mode"`

	// Currency is the ISO 4217 currency code quotes are charged in (e.g., "usd")
	Currency string `json:"currency" mapstructure:"currency"`

	// PublicBaseURL is the externally reachable base URL used to build
	// the success and cancel redirect targets for checkout sessions
	PublicBaseURL string `json:"public_base_url" mapstructure:"public_base_url"`
}

// Validate checks the config is complete and the key matches the mode,
// so a live key can never slip into a test deployment unnoticed.
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}

	wantPrefix := "sk_live"
	if c.IsTestMode {
		wantPrefix = "sk_test"
	}
	if len(c.SecretKey) > len(wantPrefix) && !strings.HasPrefix(c.SecretKey, wantPrefix) {
		return fmt.Errorf("stripe: secret key does not match mode, expected %s key", wantPrefix)
	}

	if c.Currency == "" {
		return fmt.Errorf("stripe: currency is required")
	}
	if c.PublicBaseURL == "" {
		return fmt.Errorf("stripe: public base URL is required")
	}
	return nil
}

// InitStripeClient points the global Stripe client at the configured key.
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
}
