package model

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "Open"
	TicketInProgress TicketStatus = "In Progress"
	TicketResolved   TicketStatus = "Resolved"
	TicketClosed     TicketStatus = "Closed"
)

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

// CanTransition reports whether a ticket may move from s to next.
// The lifecycle only moves forward: Open -> In Progress -> Resolved/Closed.
func (s TicketStatus) CanTransition(next TicketStatus) bool {
	switch s {
	case TicketOpen:
		return next == TicketInProgress || next == TicketResolved || next == TicketClosed
	case TicketInProgress:
		return next == TicketResolved || next == TicketClosed
	case TicketResolved:
		return next == TicketClosed
	}
	return false
}

// Ticket request types.
const (
	TicketTypeOrderIssue = "Order Issue"
	TicketTypeTechnical  = "Technical Problem"
	TicketTypePayment    = "Payment"
	TicketTypeGeneral    = "General Inquiry"
)

// ValidTicketType reports whether t is a known ticket type.
func ValidTicketType(t string) bool {
	switch t {
	case TicketTypeOrderIssue, TicketTypeTechnical, TicketTypePayment, TicketTypeGeneral:
		return true
	}
	return false
}

// SupportTicket is a user-submitted support request. The submitter's name
// and email are denormalised so the desk renders without a user lookup.
type SupportTicket struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	UserID        uuid.UUID    `json:"userId" db:"user_id"`
	UserName      string       `json:"userName" db:"user_name"`
	UserEmail     string       `json:"userEmail" db:"user_email"`
	OrderID       *uuid.UUID   `json:"orderId,omitempty" db:"order_id"`
	Type          string       `json:"type" db:"type"`
	Subject       string       `json:"subject" db:"subject"`
	Description   string       `json:"description" db:"description"`
	Status        TicketStatus `json:"status" db:"status"`
	AdminResponse string       `json:"adminResponse,omitempty" db:"admin_response"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`
}

// TicketInput is the payload for creating a support ticket.
type TicketInput struct {
	Type        string     `json:"type"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	OrderID     *uuid.UUID `json:"orderId,omitempty"`
}

// TicketUpdate is the admin payload for progressing a ticket.
type TicketUpdate struct {
	Status        TicketStatus `json:"status"`
	AdminResponse string       `json:"adminResponse,omitempty"`
}
