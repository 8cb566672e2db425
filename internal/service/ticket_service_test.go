package service

import (
	"context"
	"testing"

	"recell-store/internal/events"
	"recell-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTicketService_Create(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: uuid.New(), Name: "Asha Rao", Email: "asha@example.com"}

	t.Run("denormalises the submitter and opens the ticket", func(t *testing.T) {
		ticketRepo := new(MockTicketRepository)
		publisher := new(MockPublisher)
		svc := NewTicketService(ticketRepo, publisher, zerolog.Nop())

		ticketRepo.On("Create", ctx, mock.AnythingOfType("*model.SupportTicket")).Return(nil)
		publisher.On("TicketCreated", ctx, mock.AnythingOfType("*model.SupportTicket")).Return(nil)

		ticket, err := svc.Create(ctx, user, &model.TicketInput{
			Type:        model.TicketTypeOrderIssue,
			Subject:     "  Order arrived damaged  ",
			Description: "The screen has a crack.",
		})
		require.NoError(t, err)

		assert.Equal(t, user.ID, ticket.UserID)
		assert.Equal(t, "Asha Rao", ticket.UserName)
		assert.Equal(t, "asha@example.com", ticket.UserEmail)
		assert.Equal(t, "Order arrived damaged", ticket.Subject)
		assert.Equal(t, model.TicketOpen, ticket.Status)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		ticketRepo := new(MockTicketRepository)
		svc := NewTicketService(ticketRepo, events.NewNop(), zerolog.Nop())

		_, err := svc.Create(ctx, user, &model.TicketInput{
			Type:        "Complaint",
			Subject:     "s",
			Description: "d",
		})
		require.Error(t, err)

		ticketRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects blank subject", func(t *testing.T) {
		svc := NewTicketService(new(MockTicketRepository), events.NewNop(), zerolog.Nop())

		_, err := svc.Create(ctx, user, &model.TicketInput{
			Type:        model.TicketTypeGeneral,
			Subject:     "   ",
			Description: "d",
		})
		assert.Error(t, err)
	})
}

func TestTicketService_Update(t *testing.T) {
	ctx := context.Background()

	existing := func(status model.TicketStatus) *model.SupportTicket {
		return &model.SupportTicket{
			ID:     uuid.New(),
			UserID: uuid.New(),
			Type:   model.TicketTypeOrderIssue,
			Status: status,
		}
	}

	t.Run("moves the lifecycle forward with a response", func(t *testing.T) {
		ticketRepo := new(MockTicketRepository)
		svc := NewTicketService(ticketRepo, events.NewNop(), zerolog.Nop())

		ticket := existing(model.TicketOpen)
		ticketRepo.On("GetByID", ctx, ticket.ID).Return(ticket, nil)
		ticketRepo.On("Update", ctx, mock.AnythingOfType("*model.SupportTicket")).Return(nil)

		updated, err := svc.Update(ctx, ticket.ID, &model.TicketUpdate{
			Status:        model.TicketInProgress,
			AdminResponse: "Looking into it.",
		})
		require.NoError(t, err)

		assert.Equal(t, model.TicketInProgress, updated.Status)
		assert.Equal(t, "Looking into it.", updated.AdminResponse)
	})

	t.Run("rejects moving backwards", func(t *testing.T) {
		ticketRepo := new(MockTicketRepository)
		svc := NewTicketService(ticketRepo, events.NewNop(), zerolog.Nop())

		ticket := existing(model.TicketResolved)
		ticketRepo.On("GetByID", ctx, ticket.ID).Return(ticket, nil)

		_, err := svc.Update(ctx, ticket.ID, &model.TicketUpdate{Status: model.TicketOpen})
		assert.ErrorIs(t, err, model.ErrInvalidStatus)

		ticketRepo.AssertNotCalled(t, "Update")
	})

	t.Run("same status only updates the response", func(t *testing.T) {
		ticketRepo := new(MockTicketRepository)
		svc := NewTicketService(ticketRepo, events.NewNop(), zerolog.Nop())

		ticket := existing(model.TicketInProgress)
		ticketRepo.On("GetByID", ctx, ticket.ID).Return(ticket, nil)
		ticketRepo.On("Update", ctx, mock.AnythingOfType("*model.SupportTicket")).Return(nil)

		updated, err := svc.Update(ctx, ticket.ID, &model.TicketUpdate{
			Status:        model.TicketInProgress,
			AdminResponse: "Still on it.",
		})
		require.NoError(t, err)
		assert.Equal(t, model.TicketInProgress, updated.Status)
	})

	t.Run("missing ticket", func(t *testing.T) {
		ticketRepo := new(MockTicketRepository)
		svc := NewTicketService(ticketRepo, events.NewNop(), zerolog.Nop())

		id := uuid.New()
		ticketRepo.On("GetByID", ctx, id).Return(nil, nil)

		_, err := svc.Update(ctx, id, &model.TicketUpdate{Status: model.TicketClosed})
		assert.ErrorIs(t, err, model.ErrTicketNotFound)
	})
}

func TestTicketService_ListAll(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown status filter", func(t *testing.T) {
		svc := NewTicketService(new(MockTicketRepository), events.NewNop(), zerolog.Nop())

		_, err := svc.ListAll(ctx, model.TicketStatus("Pending"))
		assert.ErrorIs(t, err, model.ErrInvalidStatus)
	})

	t.Run("empty status lists everything", func(t *testing.T) {
		ticketRepo := new(MockTicketRepository)
		svc := NewTicketService(ticketRepo, events.NewNop(), zerolog.Nop())

		ticketRepo.On("ListAll", ctx, model.TicketStatus("")).
			Return([]model.SupportTicket{{ID: uuid.New()}}, nil)

		tickets, err := svc.ListAll(ctx, "")
		require.NoError(t, err)
		assert.Len(t, tickets, 1)
	})
}
