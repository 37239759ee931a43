package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/application/quoting"
)

// maxWebhookBody caps the webhook payload read into memory
const maxWebhookBody = 64 * 1024

// PublicHandler handles the unauthenticated client-facing endpoints.
// Everything here is reachable only through the unguessable quote link
// or a provider-signed callback.
type PublicHandler struct {
	BaseHandler
	quoteService *quoting.QuoteService
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(quoteService *quoting.QuoteService) *PublicHandler {
	return &PublicHandler{
		quoteService: quoteService,
	}
}

// GetQuote resolves a quote through its unique link.
// GET /api/v1/public/quotes/:linkId
func (h *PublicHandler) GetQuote(c *gin.Context) {
	linkID, err := uuid.Parse(c.Param("linkId"))
	if err != nil {
		h.NotFound(c, "Quote not found")
		return
	}

	view, err := h.quoteService.GetPublicQuote(c.Request.Context(), linkID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// AcceptQuote records the client's option choice and returns the
// checkout redirect.
// POST /api/v1/public/quotes/:linkId/accept
func (h *PublicHandler) AcceptQuote(c *gin.Context) {
	linkID, err := uuid.Parse(c.Param("linkId"))
	if err != nil {
		h.NotFound(c, "Quote not found")
		return
	}

	var req AcceptQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	optionID, err := uuid.Parse(req.OptionID)
	if err != nil {
		h.BadRequest(c, "Invalid option ID")
		return
	}

	result, err := h.quoteService.AcceptQuote(c.Request.Context(), linkID, quoting.AcceptQuoteInput{
		OptionID: optionID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// PaymentSuccess is the checkout return URL. It verifies the session
// with the provider before marking the quote paid.
// GET /api/v1/public/payment/success
func (h *PublicHandler) PaymentSuccess(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Query("quote_id"))
	if err != nil {
		h.BadRequest(c, "Missing or invalid quote_id")
		return
	}
	sessionID := c.Query("session_id")
	if sessionID == "" {
		h.BadRequest(c, "Missing session_id")
		return
	}

	view, err := h.quoteService.ConfirmPayment(c.Request.Context(), quoteID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// Webhook receives provider events. The signature header authenticates
// the caller; unsigned requests are rejected before any processing.
// POST /api/v1/public/payment/webhook
func (h *PublicHandler) Webhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		h.Unauthorized(c, "Missing webhook signature")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	if err := h.quoteService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"received": true})
}
