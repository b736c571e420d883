package goch

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"billed/mq/mq"
)

const subscriberBufferSize = 5

type subscriber struct {
	topic string
	ch    chan mq.BillMessage
}

// channelBillMessageQueue implements mq.BillMessageQueue with an in-process
// fan-out over Go channels. Publish delivers to every subscriber whose topic
// matches the message; a subscriber that cannot keep up loses the message
// rather than blocking the publisher.
type channelBillMessageQueue struct {
	action      mq.Action
	mu          sync.RWMutex
	subscribers map[uuid.UUID]*subscriber
}

// NewChannelBillMessageQueue creates a new in-process queue for one action.
func NewChannelBillMessageQueue(action mq.Action) mq.BillMessageQueue {
	return &channelBillMessageQueue{
		action:      action,
		subscribers: make(map[uuid.UUID]*subscriber),
	}
}

// GetAction returns the action associated with this queue.
func (q *channelBillMessageQueue) GetAction() mq.Action {
	return q.action
}

// Publish fans the message out to every matching subscriber without blocking.
func (q *channelBillMessageQueue) Publish(msg mq.BillMessage) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, sub := range q.subscribers {
		if sub.topic != msg.GetTopic() {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			// Slow subscriber; drop for this one, keep delivering to the rest.
		}
	}
	return nil
}

// Subscribe registers a new subscriber for one employee's bill events.
func (q *channelBillMessageQueue) Subscribe(email string) (uuid.UUID, <-chan mq.BillMessage, error) {
	id := uuid.New()
	sub := &subscriber{
		topic: email,
		ch:    make(chan mq.BillMessage, subscriberBufferSize),
	}

	q.mu.Lock()
	q.subscribers[id] = sub
	q.mu.Unlock()

	return id, sub.ch, nil
}

// DeSubscribe removes a subscriber and closes its channel.
func (q *channelBillMessageQueue) DeSubscribe(id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, exists := q.subscribers[id]
	if !exists {
		return fmt.Errorf("subscription %s not found", id)
	}
	delete(q.subscribers, id)
	close(sub.ch)
	return nil
}

// GoChanBillMessageQueueWrapper bundles one channel queue per action.
type GoChanBillMessageQueueWrapper struct {
	BillMQArray [mq.ActionCnt]mq.BillMessageQueue
}

func (wrapper *GoChanBillMessageQueueWrapper) GetBillMessageQueue(action mq.Action) mq.BillMessageQueue {
	if action < 0 || action >= mq.ActionCnt {
		return nil
	}
	return wrapper.BillMQArray[action]
}

// NewGoChanBillMessageQueueWrapper creates a new instance of GoChanBillMessageQueueWrapper.
func NewGoChanBillMessageQueueWrapper() mq.BillMessageQueueWrapper {
	wrapper := GoChanBillMessageQueueWrapper{}
	wrapper.BillMQArray[mq.ActionCreate] = NewChannelBillMessageQueue(mq.ActionCreate)
	wrapper.BillMQArray[mq.ActionUpdate] = NewChannelBillMessageQueue(mq.ActionUpdate)

	return &wrapper
}
