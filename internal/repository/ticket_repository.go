package repository

import (
	"context"
	"errors"
	"fmt"

	"recell-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ticketRepository implements the TicketRepository interface using PostgreSQL.
type ticketRepository struct {
	db     DBPool
	logger zerolog.Logger
}

// NewTicketRepository creates a new PostgreSQL-backed ticket repository.
func NewTicketRepository(db DBPool, logger zerolog.Logger) TicketRepository {
	return &ticketRepository{
		db:     db,
		logger: logger.With().Str("repository", "ticket").Logger(),
	}
}

const ticketColumns = `id, user_id, user_name, user_email, order_id, type, subject, description, status, admin_response, created_at, updated_at`

func scanTicket(row pgx.Row, t *model.SupportTicket) error {
	return row.Scan(
		&t.ID,
		&t.UserID,
		&t.UserName,
		&t.UserEmail,
		&t.OrderID,
		&t.Type,
		&t.Subject,
		&t.Description,
		&t.Status,
		&t.AdminResponse,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

// Create inserts a new support ticket.
func (r *ticketRepository) Create(ctx context.Context, ticket *model.SupportTicket) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO support_tickets (id, user_id, user_name, user_email, order_id, type, subject, description, status, admin_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`, ticket.ID, ticket.UserID, ticket.UserName, ticket.UserEmail, ticket.OrderID,
		ticket.Type, ticket.Subject, ticket.Description, ticket.Status,
		ticket.AdminResponse).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("ticket_id", ticket.ID.String()).Msg("failed to create ticket")
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	r.logger.Info().
		Str("ticket_id", ticket.ID.String()).
		Str("type", ticket.Type).
		Msg("support ticket created")

	return nil
}

// GetByID retrieves a single ticket. Returns nil when absent.
func (r *ticketRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SupportTicket, error) {
	query := fmt.Sprintf(`SELECT %s FROM support_tickets WHERE id = $1`, ticketColumns)

	var t model.SupportTicket
	err := scanTicket(r.db.QueryRow(ctx, query, id), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("ticket_id", id.String()).Msg("failed to query ticket")
		return nil, fmt.Errorf("failed to query ticket: %w", err)
	}

	return &t, nil
}

// ListByUser retrieves a user's tickets, newest first.
func (r *ticketRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.SupportTicket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM support_tickets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, ticketColumns)

	return r.collect(ctx, query, userID)
}

// ListAll retrieves tickets for the admin desk, optionally by status.
func (r *ticketRepository) ListAll(ctx context.Context, status model.TicketStatus) ([]model.SupportTicket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM support_tickets
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
	`, ticketColumns)

	return r.collect(ctx, query, string(status))
}

func (r *ticketRepository) collect(ctx context.Context, query string, args ...any) ([]model.SupportTicket, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query tickets")
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []model.SupportTicket
	for rows.Next() {
		var t model.SupportTicket
		if err := scanTicket(rows, &t); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan ticket row")
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating ticket rows")
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// Update writes a ticket's status and admin response.
func (r *ticketRepository) Update(ctx context.Context, ticket *model.SupportTicket) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE support_tickets
		SET status = $2, admin_response = $3, updated_at = NOW()
		WHERE id = $1
	`, ticket.ID, ticket.Status, ticket.AdminResponse)
	if err != nil {
		r.logger.Error().Err(err).Str("ticket_id", ticket.ID.String()).Msg("failed to update ticket")
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrTicketNotFound
	}

	return nil
}
