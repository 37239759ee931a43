package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// StripeAdapter implements hosted checkout operations against Stripe
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Initialize Stripe client
	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// CreateCheckoutSession provisions a Stripe Checkout Session for the
// chosen quote option. The quote is only marked accepted after this
// succeeds, so a provider failure leaves the quote untouched.
func (a *StripeAdapter) CreateCheckoutSession(ctx context.Context, input CreateCheckoutSessionInput) (*CheckoutSession, error) {
	a.logger.Debug("Creating Stripe checkout session",
		zap.String("quote_id", input.QuoteID.String()),
		zap.String("option_id", input.OptionID.String()))

	// Major units -> minor units, rounded to the nearest integer
	unitAmount := input.Price.Mul(decimalHundred).Round(0).IntPart()

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(a.config.Currency),
					UnitAmount: stripe.Int64(unitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%s - %s", input.BusinessName, input.OptionTitle)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(input.CustomerEmail),
		SuccessURL:    stripe.String(fmt.Sprintf("%s/api/v1/public/payment/success?quote_id=%s&session_id={CHECKOUT_SESSION_ID}", a.config.PublicBaseURL, input.QuoteID)),
		CancelURL:     stripe.String(fmt.Sprintf("%s/api/v1/public/quotes/%s", a.config.PublicBaseURL, input.UniqueLinkID)),
	}
	params.Context = ctx

	params.Metadata = map[string]string{
		MetadataQuoteID:  input.QuoteID.String(),
		MetadataOptionID: input.OptionID.String(),
		MetadataOwnerID:  input.OwnerID.String(),
	}

	sess, err := session.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe checkout session",
			zap.String("quote_id", input.QuoteID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	a.logger.Info("Created Stripe checkout session",
		zap.String("quote_id", input.QuoteID.String()),
		zap.String("session_id", sess.ID))

	return &CheckoutSession{
		ID:  sess.ID,
		URL: sess.URL,
	}, nil
}

// GetCheckoutSession retrieves a session from Stripe. Used for the
// server-to-server payment verification on the success redirect.
func (a *StripeAdapter) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSessionStatus, error) {
	a.logger.Debug("Getting Stripe checkout session", zap.String("session_id", sessionID))

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		a.logger.Error("Failed to get Stripe checkout session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to get checkout session: %w", err)
	}

	return &CheckoutSessionStatus{
		ID:       sess.ID,
		Paid:     sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: sess.Metadata,
	}, nil
}

// ParseWebhookEvent verifies the Stripe-Signature header against the
// configured webhook secret and decodes the event payload. For
// checkout.session.completed events the returned status carries the
// session's payment state and metadata.
func (a *StripeAdapter) ParseWebhookEvent(payload []byte, signature string) (string, *CheckoutSessionStatus, error) {
	event, err := webhook.ConstructEvent(payload, signature, a.config.WebhookSecret)
	if err != nil {
		a.logger.Warn("Rejected Stripe webhook with invalid signature", zap.Error(err))
		return "", nil, fmt.Errorf("stripe: webhook signature verification failed: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		return string(event.Type), nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return string(event.Type), nil, fmt.Errorf("stripe: failed to decode checkout session event: %w", err)
	}

	return string(event.Type), &CheckoutSessionStatus{
		ID:       sess.ID,
		Paid:     sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: sess.Metadata,
	}, nil
}
