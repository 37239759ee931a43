package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/application/quoting"
)

// QuoteHandler handles the owner-facing quote endpoints
type QuoteHandler struct {
	BaseHandler
	quoteService *quoting.QuoteService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quoteService *quoting.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
	}
}

// CreateQuote creates a draft quote with its options.
// POST /api/v1/quotes
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	ownerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	options := make([]quoting.QuoteOptionInput, 0, len(req.Options))
	for _, opt := range req.Options {
		options = append(options, quoting.QuoteOptionInput{
			Title:       opt.Title,
			Description: opt.Description,
			Price:       toDecimal(opt.Price),
		})
	}

	view, err := h.quoteService.CreateQuote(c.Request.Context(), ownerID, quoting.CreateQuoteInput{
		ClientName:     req.ClientName,
		ClientEmail:    req.ClientEmail,
		JobDescription: req.JobDescription,
		Options:        options,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// ListQuotes returns the owner's quotes, newest first.
// GET /api/v1/quotes
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	ownerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ListQuotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.quoteService.ListQuotes(c.Request.Context(), ownerID, quoting.ListQuotesInput{
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   req.Status,
		Search:   req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetQuote returns one of the owner's quotes.
// GET /api/v1/quotes/:id
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	ownerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID")
		return
	}

	view, err := h.quoteService.GetQuote(c.Request.Context(), ownerID, quoteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// SendQuote marks a quote as sent so its link becomes visible.
// PUT /api/v1/quotes/:id/send
func (h *QuoteHandler) SendQuote(c *gin.Context) {
	ownerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid quote ID")
		return
	}

	view, err := h.quoteService.SendQuote(c.Request.Context(), ownerID, quoteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}
