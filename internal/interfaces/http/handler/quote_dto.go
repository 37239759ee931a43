package handler

// QuoteOptionRequest is one priced alternative in a create request
type QuoteOptionRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	Price       float64 `json:"price" binding:"min=0"`
}

// CreateQuoteRequest is the payload for creating a draft quote
type CreateQuoteRequest struct {
	ClientName     string               `json:"client_name" binding:"required,max=200"`
	ClientEmail    string               `json:"client_email" binding:"required,email"`
	JobDescription string               `json:"job_description" binding:"required,max=5000"`
	Options        []QuoteOptionRequest `json:"options" binding:"required,min=1,dive"`
}

// ListQuotesRequest narrows and pages the owner's quote list
type ListQuotesRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=draft sent accepted paid"`
	Search   string `form:"search"`
}

// AcceptQuoteRequest identifies the option the client picked
type AcceptQuoteRequest struct {
	OptionID string `json:"option_id" binding:"required,uuid"`
}
