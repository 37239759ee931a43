package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCheckoutSessionInput contains everything needed to provision a
// hosted checkout page for one accepted quote option
type CreateCheckoutSessionInput struct {
	QuoteID       uuid.UUID
	OptionID      uuid.UUID
	OwnerID       uuid.UUID
	UniqueLinkID  uuid.UUID
	BusinessName  string
	OptionTitle   string
	CustomerEmail string
	// Price is in major currency units; the adapter converts to minor
	// units by rounding to the nearest integer
	Price decimal.Decimal
}

// CheckoutSession is the provider-side session reference returned on creation
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutSessionStatus is the provider's view of a session, fetched
// server-to-server when confirming payment
type CheckoutSessionStatus struct {
	ID       string
	Paid     bool
	Metadata map[string]string
}

var decimalHundred = decimal.NewFromInt(100)

// Metadata keys embedded in every checkout session for reconciliation
const (
	MetadataQuoteID  = "quote_id"
	MetadataOptionID = "option_id"
	MetadataOwnerID  = "owner_id"
)
