package quoting

import (
	"testing"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestQuote(t *testing.T) *Quote {
	ownerID := uuid.New()
	clientID := uuid.New()
	quote, err := NewQuote(ownerID, clientID, "Kitchen renovation")
	require.NoError(t, err)
	return quote
}

func addTestOption(t *testing.T, quote *Quote, title string, price float64) *QuoteOption {
	option, err := quote.AddOption(title, "", decimal.NewFromFloat(price))
	require.NoError(t, err)
	return option
}

func sentTestQuote(t *testing.T) *Quote {
	quote := createTestQuote(t)
	addTestOption(t, quote, "Basic", 100)
	addTestOption(t, quote, "Premium", 150)
	require.NoError(t, quote.Send())
	return quote
}

// ============================================
// QuoteStatus Tests
// ============================================

func TestQuoteStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  QuoteStatus
		isValid bool
	}{
		{QuoteStatusDraft, true},
		{QuoteStatusSent, true},
		{QuoteStatusAccepted, true},
		{QuoteStatusPaid, true},
		{QuoteStatus("cancelled"), false},
		{QuoteStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestQuoteStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     QuoteStatus
		to       QuoteStatus
		canTrans bool
	}{
		// From draft
		{QuoteStatusDraft, QuoteStatusSent, true},
		{QuoteStatusDraft, QuoteStatusAccepted, false},
		{QuoteStatusDraft, QuoteStatusPaid, false},
		// From sent (resend allowed)
		{QuoteStatusSent, QuoteStatusSent, true},
		{QuoteStatusSent, QuoteStatusAccepted, true},
		{QuoteStatusSent, QuoteStatusDraft, false},
		{QuoteStatusSent, QuoteStatusPaid, false},
		// From accepted
		{QuoteStatusAccepted, QuoteStatusPaid, true},
		{QuoteStatusAccepted, QuoteStatusSent, false},
		{QuoteStatusAccepted, QuoteStatusDraft, false},
		// From paid (terminal)
		{QuoteStatusPaid, QuoteStatusDraft, false},
		{QuoteStatusPaid, QuoteStatusSent, false},
		{QuoteStatusPaid, QuoteStatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// Quote Creation Tests
// ============================================

func TestNewQuote(t *testing.T) {
	t.Run("creates draft with unique link", func(t *testing.T) {
		ownerID := uuid.New()
		clientID := uuid.New()

		quote, err := NewQuote(ownerID, clientID, "Bathroom remodel")

		require.NoError(t, err)
		assert.Equal(t, ownerID, quote.OwnerID)
		assert.Equal(t, clientID, quote.ClientID)
		assert.Equal(t, QuoteStatusDraft, quote.Status)
		assert.NotEqual(t, uuid.Nil, quote.UniqueLinkID)
		assert.Nil(t, quote.AcceptedOptionID)
		assert.Nil(t, quote.CheckoutSessionID)
		assert.Len(t, quote.GetDomainEvents(), 1)
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		_, err := NewQuote(uuid.Nil, uuid.New(), "Job")
		assert.Error(t, err)
	})

	t.Run("rejects empty client", func(t *testing.T) {
		_, err := NewQuote(uuid.New(), uuid.Nil, "Job")
		assert.Error(t, err)
	})

	t.Run("rejects empty job description", func(t *testing.T) {
		_, err := NewQuote(uuid.New(), uuid.New(), "")
		assert.Error(t, err)
	})

	t.Run("link ids differ between quotes", func(t *testing.T) {
		a := createTestQuote(t)
		b := createTestQuote(t)
		assert.NotEqual(t, a.UniqueLinkID, b.UniqueLinkID)
	})
}

// ============================================
// Option Tests
// ============================================

func TestQuote_AddOption(t *testing.T) {
	t.Run("options keep input order with contiguous positions", func(t *testing.T) {
		quote := createTestQuote(t)

		addTestOption(t, quote, "Basic", 100)
		addTestOption(t, quote, "Standard", 150)
		addTestOption(t, quote, "Premium", 220.50)

		require.Len(t, quote.Options, 3)
		assert.Equal(t, "Basic", quote.Options[0].Title)
		assert.Equal(t, "Standard", quote.Options[1].Title)
		assert.Equal(t, "Premium", quote.Options[2].Title)
		for i, opt := range quote.Options {
			assert.Equal(t, i+1, opt.Position)
			assert.Equal(t, quote.ID, opt.QuoteID)
		}
	})

	t.Run("allows zero price", func(t *testing.T) {
		quote := createTestQuote(t)
		option, err := quote.AddOption("Free consult", "", decimal.Zero)
		require.NoError(t, err)
		assert.True(t, option.Price.IsZero())
	})

	t.Run("rejects negative price", func(t *testing.T) {
		quote := createTestQuote(t)
		_, err := quote.AddOption("Bad", "", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		quote := createTestQuote(t)
		_, err := quote.AddOption("", "", decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("rejects options on sent quote", func(t *testing.T) {
		quote := sentTestQuote(t)
		_, err := quote.AddOption("Late", "", decimal.NewFromInt(10))
		assert.Error(t, err)
	})
}

// ============================================
// Send Tests
// ============================================

func TestQuote_Send(t *testing.T) {
	t.Run("draft with options becomes sent", func(t *testing.T) {
		quote := createTestQuote(t)
		addTestOption(t, quote, "Basic", 100)

		err := quote.Send()

		require.NoError(t, err)
		assert.Equal(t, QuoteStatusSent, quote.Status)
		require.NotNil(t, quote.SentAt)
	})

	t.Run("rejects draft without options", func(t *testing.T) {
		quote := createTestQuote(t)
		err := quote.Send()
		assert.Error(t, err)
		assert.Equal(t, QuoteStatusDraft, quote.Status)
	})

	t.Run("resend refreshes sent_at", func(t *testing.T) {
		quote := sentTestQuote(t)
		first := *quote.SentAt

		err := quote.Send()

		require.NoError(t, err)
		assert.Equal(t, QuoteStatusSent, quote.Status)
		assert.True(t, !quote.SentAt.Before(first))
	})

	t.Run("rejects send on accepted quote", func(t *testing.T) {
		quote := sentTestQuote(t)
		require.NoError(t, quote.Accept(quote.Options[0].ID, "cs_test_123"))

		err := quote.Send()

		assert.Error(t, err)
		assert.Equal(t, QuoteStatusAccepted, quote.Status)
	})
}

// ============================================
// Accept Tests
// ============================================

func TestQuote_Accept(t *testing.T) {
	t.Run("sent quote accepts its own option", func(t *testing.T) {
		quote := sentTestQuote(t)
		optionID := quote.Options[1].ID

		err := quote.Accept(optionID, "cs_test_abc")

		require.NoError(t, err)
		assert.Equal(t, QuoteStatusAccepted, quote.Status)
		require.NotNil(t, quote.AcceptedOptionID)
		assert.Equal(t, optionID, *quote.AcceptedOptionID)
		require.NotNil(t, quote.CheckoutSessionID)
		assert.Equal(t, "cs_test_abc", *quote.CheckoutSessionID)
		require.NotNil(t, quote.AcceptedAt)
	})

	t.Run("rejects draft quote", func(t *testing.T) {
		quote := createTestQuote(t)
		option := addTestOption(t, quote, "Basic", 100)

		err := quote.Accept(option.ID, "cs_test_abc")

		assert.Error(t, err)
		assert.Equal(t, QuoteStatusDraft, quote.Status)
		assert.Nil(t, quote.AcceptedOptionID)
	})

	t.Run("rejects already accepted quote", func(t *testing.T) {
		quote := sentTestQuote(t)
		require.NoError(t, quote.Accept(quote.Options[0].ID, "cs_first"))

		err := quote.Accept(quote.Options[1].ID, "cs_second")

		assert.Error(t, err)
		assert.Equal(t, quote.Options[0].ID, *quote.AcceptedOptionID)
	})

	t.Run("rejects option from another quote", func(t *testing.T) {
		quote := sentTestQuote(t)
		other := sentTestQuote(t)

		err := quote.Accept(other.Options[0].ID, "cs_test_abc")

		assert.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTION_NOT_FOUND", domainErr.Code)
		assert.Equal(t, QuoteStatusSent, quote.Status)
	})

	t.Run("rejects empty checkout session", func(t *testing.T) {
		quote := sentTestQuote(t)
		err := quote.Accept(quote.Options[0].ID, "")
		assert.Error(t, err)
		assert.Equal(t, QuoteStatusSent, quote.Status)
	})
}

// ============================================
// MarkPaid Tests
// ============================================

func TestQuote_MarkPaid(t *testing.T) {
	t.Run("accepted quote becomes paid", func(t *testing.T) {
		quote := sentTestQuote(t)
		require.NoError(t, quote.Accept(quote.Options[0].ID, "cs_test"))

		err := quote.MarkPaid()

		require.NoError(t, err)
		assert.Equal(t, QuoteStatusPaid, quote.Status)
		require.NotNil(t, quote.PaidAt)
		assert.True(t, quote.IsTerminal())
	})

	t.Run("rejects sent quote", func(t *testing.T) {
		quote := sentTestQuote(t)
		err := quote.MarkPaid()
		assert.Error(t, err)
		assert.Equal(t, QuoteStatusSent, quote.Status)
	})

	t.Run("rejects double payment", func(t *testing.T) {
		quote := sentTestQuote(t)
		require.NoError(t, quote.Accept(quote.Options[0].ID, "cs_test"))
		require.NoError(t, quote.MarkPaid())

		err := quote.MarkPaid()

		assert.Error(t, err)
	})
}

func TestQuote_AcceptedOption(t *testing.T) {
	quote := sentTestQuote(t)
	assert.Nil(t, quote.AcceptedOption())

	require.NoError(t, quote.Accept(quote.Options[1].ID, "cs_test"))

	accepted := quote.AcceptedOption()
	require.NotNil(t, accepted)
	assert.Equal(t, "Premium", accepted.Title)
}
