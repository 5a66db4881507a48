package rabbitmq

import (
	"context"
	"fmt"

	"github.com/AVVKavvk/oakmont-voip-crm/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Producer publishes domain events to a fanout exchange.
type Producer struct {
	conn     *amqp.Connection
	exchange string
}

func NewProducer(conn *amqp.Connection, exchange string) *Producer {
	return &Producer{conn: conn, exchange: exchange}
}

func (p *Producer) Publish(ctx context.Context, e models.Event) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declareExchange(ch, p.exchange); err != nil {
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}

	body, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, p.exchange, e.Type, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   e.ID,
		Type:        e.Type,
		Timestamp:   e.At,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	log.Debug().Str("id", e.ID).Str("type", e.Type).Msg("Sent event")
	return nil
}
