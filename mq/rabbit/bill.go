package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"billed/mq/mq"
)

const (
	// All bill events go through this topic exchange.
	exchangeName = "bill_events_exchange"
)

const (
	billCreateRoutingKey = "bill.create"
	billUpdateRoutingKey = "bill.update"
)

func getRoutingKey(action mq.Action) string {
	switch action {
	case mq.ActionCreate:
		return billCreateRoutingKey
	case mq.ActionUpdate:
		return billUpdateRoutingKey
	}
	return ""
}

// DeclareExchange ensures the bill events exchange exists.
func DeclareExchange(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchangeName, err)
	}
	return nil
}

// rabbitBillMessageQueue implements mq.BillMessageQueue on RabbitMQ. Every
// subscription gets its own exclusive queue bound to the action's routing
// key, so all subscribers see every event; the per-employee topic filter is
// applied on delivery.
type rabbitBillMessageQueue struct {
	action     mq.Action
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	routingKey string
	mu         sync.RWMutex // Protects the consumers map
	consumers  map[uuid.UUID]chan mq.BillMessage
}

// NewRabbitBillMessageQueue creates a new RabbitMQ message queue for BillMessages.
func NewRabbitBillMessageQueue(action mq.Action, conn *amqp091.Connection) (mq.BillMessageQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := DeclareExchange(ch); err != nil {
		ch.Close()
		return nil, err
	}

	return &rabbitBillMessageQueue{
		action:     action,
		conn:       conn,
		channel:    ch,
		routingKey: getRoutingKey(action),
		consumers:  make(map[uuid.UUID]chan mq.BillMessage),
	}, nil
}

// GetAction returns the action associated with this queue.
func (q *rabbitBillMessageQueue) GetAction() mq.Action {
	return q.action
}

// Publish sends a BillMessage to the exchange.
func (q *rabbitBillMessageQueue) Publish(msg mq.BillMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = q.channel.PublishWithContext(ctx,
		exchangeName, // exchange
		q.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Subscribe registers a consumer for one employee's bill events.
func (q *rabbitBillMessageQueue) Subscribe(email string) (uuid.UUID, <-chan mq.BillMessage, error) {
	subscriberID := uuid.New()

	// Exclusive auto-delete queue per subscription: every subscriber gets
	// its own copy of each event instead of competing on a shared queue.
	queueName := fmt.Sprintf("bill_%d_%s", q.action, subscriberID)
	queue, err := q.channel.QueueDeclare(
		queueName, // name
		false,     // durable
		true,      // delete when unused
		true,      // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to declare subscription queue: %w", err)
	}

	if err := q.channel.QueueBind(queue.Name, q.routingKey, exchangeName, false, nil); err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to bind subscription queue: %w", err)
	}

	msgs, err := q.channel.Consume(
		queue.Name, // queue
		"",         // consumer
		true,       // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	outputChan := make(chan mq.BillMessage)

	q.mu.Lock()
	q.consumers[subscriberID] = outputChan
	q.mu.Unlock()

	go func() {
		defer func() {
			q.mu.Lock()
			if ch, ok := q.consumers[subscriberID]; ok {
				close(ch)
				delete(q.consumers, subscriberID)
			}
			q.mu.Unlock()
		}()

		for d := range msgs {
			var msg mq.BillMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Printf("Failed to unmarshal BillMessage: %v", err)
				continue
			}
			if msg.GetTopic() != email {
				continue
			}

			// The read lock is held across the send: DeSubscribe closes
			// the channel under the write lock, so a send can never race
			// the close. The timeout bounds how long the lock is held for
			// a stalled consumer.
			q.mu.RLock()
			ch, ok := q.consumers[subscriberID]
			if !ok {
				// Consumer was unsubscribed while message was in flight
				q.mu.RUnlock()
				return
			}

			select {
			case ch <- msg:
			case <-time.After(1 * time.Second):
				log.Printf("Timeout sending message to BillMessage consumer %s. Skipping.", subscriberID)
			}
			q.mu.RUnlock()
		}
	}()

	return subscriberID, outputChan, nil
}

// DeSubscribe removes a subscriber by its ID.
func (q *rabbitBillMessageQueue) DeSubscribe(subscriberID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ch, ok := q.consumers[subscriberID]; ok {
		delete(q.consumers, subscriberID)
		close(ch)
		return nil
	}
	return fmt.Errorf("consumer with ID %s not found for action %d", subscriberID, q.action)
}

// RabbitBillMessageQueueWrapper bundles one RabbitMQ queue per action.
type RabbitBillMessageQueueWrapper struct {
	BillMQArray [mq.ActionCnt]mq.BillMessageQueue
}

func (wrapper *RabbitBillMessageQueueWrapper) GetBillMessageQueue(action mq.Action) mq.BillMessageQueue {
	if action < 0 || action >= mq.ActionCnt {
		return nil
	}
	return wrapper.BillMQArray[action]
}

// NewRabbitBillMessageQueueWrapper opens one queue per action on the given connection.
func NewRabbitBillMessageQueueWrapper(conn *amqp091.Connection) (mq.BillMessageQueueWrapper, error) {
	wrapper := RabbitBillMessageQueueWrapper{}
	for _, action := range []mq.Action{mq.ActionCreate, mq.ActionUpdate} {
		q, err := NewRabbitBillMessageQueue(action, conn)
		if err != nil {
			return nil, fmt.Errorf("failed to create rabbit queue for action %d: %w", action, err)
		}
		wrapper.BillMQArray[action] = q
	}
	return &wrapper, nil
}
