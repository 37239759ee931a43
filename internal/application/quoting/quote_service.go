package quoting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quotewire/backend/internal/domain/identity"
	"github.com/quotewire/backend/internal/domain/quoting"
	"github.com/quotewire/backend/internal/domain/shared"
	"github.com/quotewire/backend/internal/infrastructure/billing"
	"go.uber.org/zap"
)

// CheckoutProvider abstracts the hosted payment page used to collect
// acceptance payments
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, input billing.CreateCheckoutSessionInput) (*billing.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*billing.CheckoutSessionStatus, error)
	ParseWebhookEvent(payload []byte, signature string) (string, *billing.CheckoutSessionStatus, error)
}

// QuoteService orchestrates the quote lifecycle from draft through payment
type QuoteService struct {
	quoteRepo      quoting.QuoteRepository
	clientRepo     quoting.ClientRepository
	profileRepo    identity.ProfileRepository
	checkout       CheckoutProvider
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	quoteRepo quoting.QuoteRepository,
	clientRepo quoting.ClientRepository,
	profileRepo identity.ProfileRepository,
	checkout CheckoutProvider,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:   quoteRepo,
		clientRepo:  clientRepo,
		profileRepo: profileRepo,
		checkout:    checkout,
		logger:      logger,
	}
}

// SetEventPublisher sets the publisher used to dispatch quote lifecycle events
func (s *QuoteService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvents dispatches and clears the quote's pending domain events.
// Dispatch failures are logged and never fail the operation that raised them.
func (s *QuoteService) publishEvents(ctx context.Context, quote *quoting.Quote) {
	if s.eventPublisher == nil {
		quote.ClearDomainEvents()
		return
	}
	for _, event := range quote.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.String("quote_id", quote.ID.String()),
				zap.Error(err))
		}
	}
	quote.ClearDomainEvents()
}

// CreateQuote creates a draft quote with its options in input order.
// The client is matched by email within the owner's book, created if new.
func (s *QuoteService) CreateQuote(ctx context.Context, ownerID uuid.UUID, input CreateQuoteInput) (*QuoteView, error) {
	if len(input.Options) == 0 {
		return nil, shared.NewDomainError("NO_OPTIONS", "A quote needs at least one option")
	}

	client, err := quoting.NewClient(ownerID, input.ClientName, input.ClientEmail)
	if err != nil {
		return nil, err
	}
	if err := s.clientRepo.Upsert(ctx, client); err != nil {
		s.logger.Error("Failed to upsert client", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create quote")
	}

	quote, err := quoting.NewQuote(ownerID, client.ID, input.JobDescription)
	if err != nil {
		return nil, err
	}
	for _, opt := range input.Options {
		if _, err := quote.AddOption(opt.Title, opt.Description, opt.Price); err != nil {
			return nil, err
		}
	}

	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		s.logger.Error("Failed to save quote", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create quote")
	}

	s.publishEvents(ctx, quote)

	s.logger.Info("Quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.Int("options", len(quote.Options)))

	view := newQuoteView(quote, client)
	return &view, nil
}

// GetQuote returns one of the owner's quotes
func (s *QuoteService) GetQuote(ctx context.Context, ownerID, quoteID uuid.UUID) (*QuoteView, error) {
	quote, err := s.quoteRepo.FindByIDForOwner(ctx, ownerID, quoteID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Quote not found")
		}
		return nil, err
	}

	client, err := s.clientRepo.FindByID(ctx, quote.ClientID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	view := newQuoteView(quote, client)
	return &view, nil
}

// ListQuotes returns the owner's quotes, newest first
func (s *QuoteService) ListQuotes(ctx context.Context, ownerID uuid.UUID, input ListQuotesInput) (*shared.Paginated[QuoteView], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 && input.PageSize <= 100 {
		filter.PageSize = input.PageSize
	}
	filter.Search = input.Search
	if input.Status != "" {
		if !quoting.QuoteStatus(input.Status).IsValid() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown quote status")
		}
		filter.Filters = map[string]interface{}{"status": input.Status}
	}

	quotes, err := s.quoteRepo.FindAllForOwner(ctx, ownerID, filter)
	if err != nil {
		s.logger.Error("Failed to list quotes", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list quotes")
	}

	total, err := s.quoteRepo.CountForOwner(ctx, ownerID, filter)
	if err != nil {
		s.logger.Error("Failed to count quotes", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list quotes")
	}

	clients, err := s.loadClients(ctx, ownerID, quotes)
	if err != nil {
		return nil, err
	}

	views := make([]QuoteView, 0, len(quotes))
	for i := range quotes {
		views = append(views, newQuoteView(&quotes[i], clients[quotes[i].ClientID]))
	}

	result := shared.NewPaginated(views, total, filter.Page, filter.PageSize)
	return &result, nil
}

// SendQuote transitions a quote to sent, or refreshes the sent timestamp
// when the quote was already sent
func (s *QuoteService) SendQuote(ctx context.Context, ownerID, quoteID uuid.UUID) (*QuoteView, error) {
	quote, err := s.quoteRepo.FindByIDForOwner(ctx, ownerID, quoteID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Quote not found")
		}
		return nil, err
	}

	fromStatus := quote.Status
	if err := quote.Send(); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.UpdateStatusIf(ctx, quote, fromStatus); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, quote)

	s.logger.Info("Quote sent",
		zap.String("quote_id", quote.ID.String()),
		zap.String("link_id", quote.UniqueLinkID.String()))

	client, err := s.clientRepo.FindByID(ctx, quote.ClientID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	view := newQuoteView(quote, client)
	return &view, nil
}

// GetPublicQuote resolves a quote through its unique link for the client.
// Draft quotes stay invisible to keep unsent work private.
func (s *QuoteService) GetPublicQuote(ctx context.Context, uniqueLinkID uuid.UUID) (*PublicQuoteView, error) {
	quote, client, businessName, err := s.loadPublicQuote(ctx, uniqueLinkID)
	if err != nil {
		return nil, err
	}

	view := newPublicQuoteView(quote, client, businessName)
	return &view, nil
}

// AcceptQuote records the client's choice and opens a hosted checkout.
// The quote moves to accepted only after the checkout session exists, and
// the conditional update lets exactly one concurrent accept win.
func (s *QuoteService) AcceptQuote(ctx context.Context, uniqueLinkID uuid.UUID, input AcceptQuoteInput) (*AcceptQuoteResult, error) {
	quote, client, businessName, err := s.loadPublicQuote(ctx, uniqueLinkID)
	if err != nil {
		return nil, err
	}

	if quote.Status != quoting.QuoteStatusSent {
		return nil, shared.NewDomainError("INVALID_STATE", "Quote can no longer be accepted")
	}
	option := quote.GetOption(input.OptionID)
	if option == nil {
		return nil, shared.NewDomainError("OPTION_NOT_FOUND", "Option does not belong to this quote")
	}

	customerEmail := ""
	if client != nil {
		customerEmail = client.Email
	}

	session, err := s.checkout.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionInput{
		QuoteID:       quote.ID,
		OptionID:      option.ID,
		OwnerID:       quote.GetOwnerID(),
		UniqueLinkID:  quote.UniqueLinkID,
		BusinessName:  businessName,
		OptionTitle:   option.Title,
		CustomerEmail: customerEmail,
		Price:         option.Price,
	})
	if err != nil {
		s.logger.Error("Failed to create checkout session",
			zap.String("quote_id", quote.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("CHECKOUT_FAILED", "Failed to start checkout")
	}

	if err := quote.Accept(option.ID, session.ID); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.UpdateStatusIf(ctx, quote, quoting.QuoteStatusSent); err != nil {
		// The orphaned session expires on its own; the quote stays with the winner
		return nil, err
	}

	s.publishEvents(ctx, quote)

	s.logger.Info("Quote accepted",
		zap.String("quote_id", quote.ID.String()),
		zap.String("option_id", option.ID.String()),
		zap.String("session_id", session.ID))

	return &AcceptQuoteResult{CheckoutURL: session.URL}, nil
}

// ConfirmPayment verifies the checkout session server-to-server and marks
// the quote paid. Already-paid quotes confirm idempotently.
func (s *QuoteService) ConfirmPayment(ctx context.Context, quoteID uuid.UUID, sessionID string) (*PublicQuoteView, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Quote not found")
		}
		return nil, err
	}

	if quote.IsPaid() {
		return s.GetPublicQuote(ctx, quote.UniqueLinkID)
	}
	if quote.Status != quoting.QuoteStatusAccepted {
		return nil, shared.NewDomainError("INVALID_STATE", "Quote has no pending payment")
	}
	if quote.CheckoutSessionID == nil || *quote.CheckoutSessionID != sessionID {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Session does not match this quote")
	}

	status, err := s.checkout.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to verify checkout session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, shared.NewDomainError("CHECKOUT_FAILED", "Failed to verify payment")
	}

	if !status.Paid {
		return nil, shared.NewDomainError("PAYMENT_PENDING", "Payment has not completed")
	}
	if status.Metadata[billing.MetadataQuoteID] != quote.ID.String() {
		s.logger.Warn("Checkout session metadata mismatch",
			zap.String("quote_id", quote.ID.String()),
			zap.String("session_id", sessionID))
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Session does not match this quote")
	}

	if err := s.markPaid(ctx, quote); err != nil {
		return nil, err
	}

	return s.GetPublicQuote(ctx, quote.UniqueLinkID)
}

// HandleWebhook processes provider events. Completed checkout sessions
// mark their quote paid; other event types are acknowledged and dropped.
func (s *QuoteService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	eventType, status, err := s.checkout.ParseWebhookEvent(payload, signature)
	if err != nil {
		return shared.NewDomainError("UNAUTHORIZED", "Invalid webhook signature")
	}
	if status == nil {
		s.logger.Debug("Ignoring webhook event", zap.String("type", eventType))
		return nil
	}
	if !status.Paid {
		// Async payment methods deliver a later completion event
		s.logger.Debug("Ignoring incomplete checkout session",
			zap.String("session_id", status.ID))
		return nil
	}

	quoteIDRaw := status.Metadata[billing.MetadataQuoteID]
	quoteID, err := uuid.Parse(quoteIDRaw)
	if err != nil {
		s.logger.Warn("Webhook session without quote metadata",
			zap.String("session_id", status.ID))
		return nil
	}

	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Webhook for unknown quote", zap.String("quote_id", quoteIDRaw))
			return nil
		}
		return err
	}

	if quote.IsPaid() {
		return nil
	}
	if quote.Status != quoting.QuoteStatusAccepted {
		s.logger.Warn("Webhook for quote without pending payment",
			zap.String("quote_id", quoteIDRaw),
			zap.String("status", string(quote.Status)))
		return nil
	}
	if quote.CheckoutSessionID == nil || *quote.CheckoutSessionID != status.ID {
		s.logger.Warn("Webhook session mismatch",
			zap.String("quote_id", quoteIDRaw),
			zap.String("session_id", status.ID))
		return nil
	}

	return s.markPaid(ctx, quote)
}

// markPaid performs the accepted -> paid transition under the conditional
// update. A lost race against another confirmation path counts as success.
func (s *QuoteService) markPaid(ctx context.Context, quote *quoting.Quote) error {
	if err := quote.MarkPaid(); err != nil {
		return err
	}
	if err := s.quoteRepo.UpdateStatusIf(ctx, quote, quoting.QuoteStatusAccepted); err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "CONCURRENT_MODIFICATION" {
			current, findErr := s.quoteRepo.FindByID(ctx, quote.ID)
			if findErr == nil && current.IsPaid() {
				return nil
			}
		}
		return err
	}

	s.publishEvents(ctx, quote)

	s.logger.Info("Quote paid", zap.String("quote_id", quote.ID.String()))
	return nil
}

// loadPublicQuote resolves a sendable quote plus the names shown to the client
func (s *QuoteService) loadPublicQuote(ctx context.Context, uniqueLinkID uuid.UUID) (*quoting.Quote, *quoting.Client, string, error) {
	quote, err := s.quoteRepo.FindByUniqueLink(ctx, uniqueLinkID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, "", shared.NewDomainError("NOT_FOUND", "Quote not found")
		}
		return nil, nil, "", err
	}
	if quote.IsDraft() {
		return nil, nil, "", shared.NewDomainError("NOT_FOUND", "Quote not found")
	}

	client, err := s.clientRepo.FindByID(ctx, quote.ClientID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, nil, "", err
	}

	businessName := ""
	profile, err := s.profileRepo.FindByUserID(ctx, quote.GetOwnerID())
	if err == nil {
		businessName = profile.BusinessName
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, nil, "", err
	}

	return quote, client, businessName, nil
}

// loadClients maps the client ID of each quote to its record
func (s *QuoteService) loadClients(ctx context.Context, ownerID uuid.UUID, quotes []quoting.Quote) (map[uuid.UUID]*quoting.Client, error) {
	idSet := make(map[uuid.UUID]struct{}, len(quotes))
	ids := make([]uuid.UUID, 0, len(quotes))
	for i := range quotes {
		if _, seen := idSet[quotes[i].ClientID]; !seen {
			idSet[quotes[i].ClientID] = struct{}{}
			ids = append(ids, quotes[i].ClientID)
		}
	}

	clients, err := s.clientRepo.FindByIDs(ctx, ownerID, ids)
	if err != nil {
		s.logger.Error("Failed to load clients", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list quotes")
	}

	byID := make(map[uuid.UUID]*quoting.Client, len(clients))
	for i := range clients {
		byID[clients[i].ID] = &clients[i]
	}
	return byID, nil
}
