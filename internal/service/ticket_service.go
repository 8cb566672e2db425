package service

import (
	"context"
	"fmt"
	"strings"

	"recell-store/internal/events"
	"recell-store/internal/model"
	"recell-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ticketService struct {
	ticketRepo repository.TicketRepository
	publisher  events.Publisher
	logger     zerolog.Logger
}

// NewTicketService creates a new ticket service.
func NewTicketService(ticketRepo repository.TicketRepository, publisher events.Publisher, logger zerolog.Logger) TicketService {
	return &ticketService{
		ticketRepo: ticketRepo,
		publisher:  publisher,
		logger:     logger.With().Str("service", "ticket").Logger(),
	}
}

// Create opens a ticket on behalf of the user.
func (s *ticketService) Create(ctx context.Context, user *model.User, input *model.TicketInput) (*model.SupportTicket, error) {
	if !model.ValidTicketType(input.Type) {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Unknown ticket type.")
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Subject is required.")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Description is required.")
	}

	ticket := &model.SupportTicket{
		ID:          uuid.New(),
		UserID:      user.ID,
		UserName:    user.Name,
		UserEmail:   user.Email,
		OrderID:     input.OrderID,
		Type:        input.Type,
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
		Status:      model.TicketOpen,
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	s.logger.Info().
		Str("ticket_id", ticket.ID.String()).
		Str("user_id", user.ID.String()).
		Str("type", ticket.Type).
		Msg("support ticket created")

	if pubErr := s.publisher.TicketCreated(ctx, ticket); pubErr != nil {
		s.logger.Warn().Err(pubErr).Str("ticket_id", ticket.ID.String()).Msg("failed to publish ticket created event")
	}

	return ticket, nil
}

// ListMine retrieves the user's tickets.
func (s *ticketService) ListMine(ctx context.Context, userID uuid.UUID) ([]model.SupportTicket, error) {
	tickets, err := s.ticketRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// ListAll retrieves tickets for the admin desk, optionally by status.
func (s *ticketService) ListAll(ctx context.Context, status model.TicketStatus) ([]model.SupportTicket, error) {
	if status != "" && !status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	tickets, err := s.ticketRepo.ListAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// Update progresses a ticket and records the admin response. The lifecycle
// only moves forward; reopening a closed ticket is rejected.
func (s *ticketService) Update(ctx context.Context, id uuid.UUID, update *model.TicketUpdate) (*model.SupportTicket, error) {
	if !update.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, model.ErrTicketNotFound
	}

	if update.Status != ticket.Status && !ticket.Status.CanTransition(update.Status) {
		return nil, model.ErrInvalidStatus
	}

	ticket.Status = update.Status
	if update.AdminResponse != "" {
		ticket.AdminResponse = update.AdminResponse
	}
	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	s.logger.Info().
		Str("ticket_id", id.String()).
		Str("status", string(update.Status)).
		Msg("support ticket updated")

	return ticket, nil
}
