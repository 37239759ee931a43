package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quotewire/backend/internal/domain/identity"
	"github.com/quotewire/backend/internal/domain/quoting"
	"github.com/quotewire/backend/internal/domain/shared"
	"github.com/quotewire/backend/internal/infrastructure/billing"
)

func ownerProfile(t *testing.T, ownerID uuid.UUID) *identity.Profile {
	t.Helper()
	profile, err := identity.NewProfile(ownerID, "Reyes Plumbing")
	require.NoError(t, err)
	return profile
}

func TestPublicHandler_GetQuote_Success(t *testing.T) {
	ownerID := uuid.New()
	f := newQuoteHandlerFixture()

	quote, client := newSentQuote(t, ownerID)
	f.quoteRepo.On("FindByUniqueLink", mock.Anything, quote.UniqueLinkID).Return(quote, nil)
	f.clientRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	f.profileRepo.On("FindByUserID", mock.Anything, ownerID).Return(ownerProfile(t, ownerID), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/quotes/"+quote.UniqueLinkID.String(), nil)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Reyes Plumbing", data["business_name"])
	assert.Equal(t, "Dana Reyes", data["client_name"])
	assert.Equal(t, "sent", data["status"])
	assert.Len(t, data["options"].([]interface{}), 2)

	// The public view must never leak account identifiers
	_, hasOwner := data["owner_id"]
	assert.False(t, hasOwner)
	_, hasClientEmail := data["client_email"]
	assert.False(t, hasClientEmail)
}

func TestPublicHandler_GetQuote_DraftHidden(t *testing.T) {
	ownerID := uuid.New()
	f := newQuoteHandlerFixture()

	client, err := quoting.NewClient(ownerID, "Dana Reyes", "dana@example.com")
	require.NoError(t, err)
	quote, err := quoting.NewQuote(ownerID, client.ID, "Bathroom remodel")
	require.NoError(t, err)

	f.quoteRepo.On("FindByUniqueLink", mock.Anything, quote.UniqueLinkID).Return(quote, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/quotes/"+quote.UniqueLinkID.String(), nil)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicHandler_GetQuote_MalformedLink(t *testing.T) {
	f := newQuoteHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/quotes/not-a-link", nil)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	// A malformed link is indistinguishable from an unknown one
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicHandler_AcceptQuote_Success(t *testing.T) {
	ownerID := uuid.New()
	f := newQuoteHandlerFixture()

	quote, client := newSentQuote(t, ownerID)
	premium := quote.Options[1]

	f.quoteRepo.On("FindByUniqueLink", mock.Anything, quote.UniqueLinkID).Return(quote, nil)
	f.clientRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	f.profileRepo.On("FindByUserID", mock.Anything, ownerID).Return(ownerProfile(t, ownerID), nil)
	f.checkout.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(input billing.CreateCheckoutSessionInput) bool {
		return input.QuoteID == quote.ID && input.OptionID == premium.ID && input.CustomerEmail == "dana@example.com"
	})).Return(&billing.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.com/pay/cs_test_123"}, nil)
	f.quoteRepo.On("UpdateStatusIf", mock.Anything, quote, quoting.QuoteStatusSent).Return(nil)

	reqBody := AcceptQuoteRequest{OptionID: premium.ID.String()}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/quotes/"+quote.UniqueLinkID.String()+"/accept", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_123", data["checkout_url"])
	assert.Equal(t, quoting.QuoteStatusAccepted, quote.Status)
}

func TestPublicHandler_AcceptQuote_UnknownOption(t *testing.T) {
	ownerID := uuid.New()
	f := newQuoteHandlerFixture()

	quote, client := newSentQuote(t, ownerID)
	f.quoteRepo.On("FindByUniqueLink", mock.Anything, quote.UniqueLinkID).Return(quote, nil)
	f.clientRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	f.profileRepo.On("FindByUserID", mock.Anything, ownerID).Return(ownerProfile(t, ownerID), nil)

	reqBody := AcceptQuoteRequest{OptionID: uuid.New().String()}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/quotes/"+quote.UniqueLinkID.String()+"/accept", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	f.checkout.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestPublicHandler_AcceptQuote_InvalidBody(t *testing.T) {
	f := newQuoteHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/quotes/"+uuid.New().String()+"/accept", bytes.NewReader([]byte(`{"option_id":"nope"}`)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicHandler_PaymentSuccess_Success(t *testing.T) {
	ownerID := uuid.New()
	f := newQuoteHandlerFixture()

	quote, client := newSentQuote(t, ownerID)
	require.NoError(t, quote.Accept(quote.Options[0].ID, "cs_test_123"))

	f.quoteRepo.On("FindByID", mock.Anything, quote.ID).Return(quote, nil)
	f.quoteRepo.On("FindByUniqueLink", mock.Anything, quote.UniqueLinkID).Return(quote, nil)
	f.quoteRepo.On("UpdateStatusIf", mock.Anything, quote, quoting.QuoteStatusAccepted).Return(nil)
	f.clientRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	f.profileRepo.On("FindByUserID", mock.Anything, ownerID).Return(ownerProfile(t, ownerID), nil)
	f.checkout.On("GetCheckoutSession", mock.Anything, "cs_test_123").Return(&billing.CheckoutSessionStatus{
		ID:       "cs_test_123",
		Paid:     true,
		Metadata: map[string]string{billing.MetadataQuoteID: quote.ID.String()},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/payment/success?quote_id="+quote.ID.String()+"&session_id=cs_test_123", nil)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "paid", data["status"])
}

func TestPublicHandler_PaymentSuccess_MissingSession(t *testing.T) {
	f := newQuoteHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/payment/success?quote_id="+uuid.New().String(), nil)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicHandler_PaymentSuccess_NotPaidYet(t *testing.T) {
	ownerID := uuid.New()
	f := newQuoteHandlerFixture()

	quote, _ := newSentQuote(t, ownerID)
	require.NoError(t, quote.Accept(quote.Options[0].ID, "cs_test_123"))

	f.quoteRepo.On("FindByID", mock.Anything, quote.ID).Return(quote, nil)
	f.checkout.On("GetCheckoutSession", mock.Anything, "cs_test_123").Return(&billing.CheckoutSessionStatus{
		ID:   "cs_test_123",
		Paid: false,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/payment/success?quote_id="+quote.ID.String()+"&session_id=cs_test_123", nil)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, quoting.QuoteStatusAccepted, quote.Status)
}

func TestPublicHandler_Webhook_Completed(t *testing.T) {
	ownerID := uuid.New()
	f := newQuoteHandlerFixture()

	quote, _ := newSentQuote(t, ownerID)
	require.NoError(t, quote.Accept(quote.Options[0].ID, "cs_test_123"))

	payload := []byte(`{"type":"checkout.session.completed"}`)
	f.checkout.On("ParseWebhookEvent", payload, "sig_valid").Return("checkout.session.completed", &billing.CheckoutSessionStatus{
		ID:       "cs_test_123",
		Paid:     true,
		Metadata: map[string]string{billing.MetadataQuoteID: quote.ID.String()},
	}, nil)
	f.quoteRepo.On("FindByID", mock.Anything, quote.ID).Return(quote, nil)
	f.quoteRepo.On("UpdateStatusIf", mock.Anything, quote, quoting.QuoteStatusAccepted).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "sig_valid")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, quoting.QuoteStatusPaid, quote.Status)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, true, data["received"])
}

func TestPublicHandler_Webhook_MissingSignature(t *testing.T) {
	f := newQuoteHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/payment/webhook", bytes.NewReader([]byte(`{}`)))

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	f.checkout.AssertNotCalled(t, "ParseWebhookEvent", mock.Anything, mock.Anything)
}

func TestPublicHandler_Webhook_BadSignature(t *testing.T) {
	f := newQuoteHandlerFixture()

	payload := []byte(`{}`)
	f.checkout.On("ParseWebhookEvent", payload, "sig_bad").Return("", nil, shared.NewDomainError("UNAUTHORIZED", "bad signature"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "sig_bad")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
