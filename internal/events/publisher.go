package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recell-store/internal/model"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher fans domain events out to interested consumers. Publishing is
// best-effort: it happens after the database transaction has committed and
// a publish failure never undoes the commit.
type Publisher interface {
	OrderPlaced(ctx context.Context, order *model.Order) error
	OrderCancelled(ctx context.Context, order *model.Order) error
	OrderStatusChanged(ctx context.Context, order *model.Order) error
	StockDepleted(ctx context.Context, orderID, productID uuid.UUID) error
	TicketCreated(ctx context.Context, ticket *model.SupportTicket) error
	Close() error
}

// NewNop returns a Publisher that drops every event. Used when event
// publishing is disabled.
func NewNop() Publisher {
	return nopPublisher{}
}

type nopPublisher struct{}

func (nopPublisher) OrderPlaced(context.Context, *model.Order) error        { return nil }
func (nopPublisher) OrderCancelled(context.Context, *model.Order) error     { return nil }
func (nopPublisher) OrderStatusChanged(context.Context, *model.Order) error { return nil }
func (nopPublisher) StockDepleted(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}
func (nopPublisher) TicketCreated(context.Context, *model.SupportTicket) error { return nil }
func (nopPublisher) Close() error                                              { return nil }

// amqpPublisher publishes JSON events to a RabbitMQ topic exchange.
type amqpPublisher struct {
	ch       *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

// NewAMQPPublisher opens a channel on the connection and declares the
// events exchange.
func NewAMQPPublisher(conn *amqp.Connection, exchange string, logger zerolog.Logger) (Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	logger = logger.With().Str("component", "event-publisher").Logger()
	logger.Info().Str("exchange", exchange).Msg("event publisher initialised")

	return &amqpPublisher{ch: ch, exchange: exchange, logger: logger}, nil
}

func (p *amqpPublisher) Close() error {
	return p.ch.Close()
}

func (p *amqpPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", routingKey, err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now().UTC(),
		Body:        body,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("routing_key", routingKey).Msg("failed to publish event")
		return fmt.Errorf("publish %s event: %w", routingKey, err)
	}

	p.logger.Debug().Str("routing_key", routingKey).Msg("event published")

	return nil
}

// NewOrderEvent builds the payload published for an order lifecycle event.
func NewOrderEvent(eventType string, order *model.Order) OrderEvent {
	ev := OrderEvent{
		EventType:  eventType,
		OrderID:    order.ID.String(),
		UserID:     order.UserID.String(),
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice,
		Timestamp:  time.Now().UTC(),
	}
	for _, item := range order.Items {
		ev.Items = append(ev.Items, Line{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
		})
	}
	return ev
}

func (p *amqpPublisher) OrderPlaced(ctx context.Context, order *model.Order) error {
	return p.publish(ctx, KeyOrderPlaced, NewOrderEvent(KeyOrderPlaced, order))
}

func (p *amqpPublisher) OrderCancelled(ctx context.Context, order *model.Order) error {
	return p.publish(ctx, KeyOrderCancelled, NewOrderEvent(KeyOrderCancelled, order))
}

func (p *amqpPublisher) OrderStatusChanged(ctx context.Context, order *model.Order) error {
	return p.publish(ctx, KeyOrderStatusChanged, NewOrderEvent(KeyOrderStatusChanged, order))
}

func (p *amqpPublisher) StockDepleted(ctx context.Context, orderID, productID uuid.UUID) error {
	return p.publish(ctx, KeyStockDepleted, StockDepletedEvent{
		EventType: KeyStockDepleted,
		ProductID: productID.String(),
		OrderID:   orderID.String(),
		Timestamp: time.Now().UTC(),
	})
}

func (p *amqpPublisher) TicketCreated(ctx context.Context, ticket *model.SupportTicket) error {
	return p.publish(ctx, KeyTicketCreated, TicketCreatedEvent{
		EventType: KeyTicketCreated,
		TicketID:  ticket.ID.String(),
		UserID:    ticket.UserID.String(),
		Type:      ticket.Type,
		Subject:   ticket.Subject,
		Timestamp: time.Now().UTC(),
	})
}
