package rabbitmq

import (
	"context"
	"fmt"

	"github.com/AVVKavvk/oakmont-voip-crm/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Consumer reads domain events from an exclusive queue bound to the exchange.
type Consumer struct {
	conn     *amqp.Connection
	exchange string
}

func NewConsumer(conn *amqp.Connection, exchange string) *Consumer {
	return &Consumer{conn: conn, exchange: exchange}
}

// Consume calls handle for every event until ctx is done or the delivery
// channel closes.
func (c *Consumer) Consume(ctx context.Context, handle func(models.Event)) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declareExchange(ch, c.exchange); err != nil {
		return fmt.Errorf("declare exchange %s: %w", c.exchange, err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	log.Info().Str("exchange", c.exchange).Str("queue", q.Name).Msg("Waiting for events")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			var e models.Event
			if err := e.UnmarshalBinary(d.Body); err != nil {
				log.Error().Err(err).Str("messageId", d.MessageId).Msg("Dropping malformed event")
				continue
			}
			handle(e)
		}
	}
}
