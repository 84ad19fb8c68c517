package notify

import (
	"context"
	"encoding/json"
	"log"

	"github.com/rabbitmq/amqp091-go"

	"github.com/example/motogarage/backend/internal/events"
	"github.com/example/motogarage/backend/internal/mq"
)

// Worker consumes queue events from RabbitMQ and turns queue.called into a
// customer notification. It runs alongside the API process so the engine
// itself never waits on delivery.
type Worker struct {
	consumer mq.Consumer
	gateway  *GatewayClient
}

// NewWorker wires the consumer to the gateway.
func NewWorker(consumer mq.Consumer, gateway *GatewayClient) *Worker {
	return &Worker{consumer: consumer, gateway: gateway}
}

// Run begins consuming and blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.consumer.Consume(w.handle); err != nil {
		return err
	}
	<-ctx.Done()
	log.Println("notification worker shutting down")
	return w.consumer.Close()
}

func (w *Worker) handle(msg amqp091.Delivery) {
	var event events.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("decode queue event: %v", err)
		_ = msg.Nack(false, false)
		return
	}
	if event.Type == events.QueueCalled {
		n := TicketCalled{
			EntryID:          stringPayload(event, "entryId"),
			VerificationCode: stringPayload(event, "verificationCode"),
			TechnicianName:   stringPayload(event, "technicianName"),
		}
		if err := w.gateway.SendTicketCalled(context.Background(), n); err != nil {
			log.Printf("notify ticket called %s: %v", n.EntryID, err)
			_ = msg.Nack(false, true)
			return
		}
	}
	_ = msg.Ack(false)
}

func stringPayload(e events.Event, key string) string {
	if v, ok := e.Payload[key].(string); ok {
		return v
	}
	return ""
}
