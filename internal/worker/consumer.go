package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/devxankit/indistylo-sub000/internal/events"
	"github.com/devxankit/indistylo-sub000/internal/notifier"
	"github.com/devxankit/indistylo-sub000/pkg/mq"
)

// Consumer turns order events into user notifications. Everything here is
// best effort; settlement never waits on it.
type Consumer struct {
	mq       *mq.Consumer
	notifier notifier.Notifier
}

func New(c *mq.Consumer, n notifier.Notifier) *Consumer {
	return &Consumer{mq: c, notifier: n}
}

func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.mq.Deliveries(ctx)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := c.handle(d); err != nil {
				log.Printf("[notify] handle key=%s err=%v", d.RoutingKey, err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(d amqp.Delivery) error {
	switch d.RoutingKey {
	case events.RKOrderCreated:
		var ev events.OrderCreated
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return err
		}
		return c.notifier.Notify("Order placed",
			fmt.Sprintf("Order %s for %.2f INR is awaiting payment.", ev.OrderID, ev.Amount))
	case events.RKOrderConfirmed:
		var ev events.OrderConfirmed
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return err
		}
		return c.notifier.Notify("Order confirmed",
			fmt.Sprintf("Order %s is confirmed: %d booking(s), %.2f INR paid.", ev.OrderID, ev.Bookings, ev.Amount))
	default:
		log.Printf("[notify] skip key=%s", d.RoutingKey)
	}
	return nil
}
