package gcppubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"

	"billed/mq/mq"
)

const (
	emailAttribute = "email"
)

// subscriptionInfo holds details about an active Pub/Sub subscription.
type subscriptionInfo struct {
	gcpSubscription *pubsub.Subscription
	cancel          context.CancelFunc
}

// billPubSubService wraps one Pub/Sub topic carrying bill events for a
// single action. Subscriptions are filtered server-side on the email
// attribute, so a subscriber only receives its own employee's events.
type billPubSubService struct {
	client              *pubsub.Client
	topic               *pubsub.Topic
	activeSubscriptions map[uuid.UUID]*subscriptionInfo
	subscriptionsMutex  sync.Mutex
	ctx                 context.Context
}

// newBillPubSubService ensures the underlying topic exists, creating it if
// necessary, and returns a service bound to it.
func newBillPubSubService(ctx context.Context, client *pubsub.Client, topicID string) (*billPubSubService, error) {
	if client == nil {
		return nil, fmt.Errorf("GCP Pub/Sub client is nil")
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existence of topic %s: %w", topicID, err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", topicID, err)
		}
		log.Printf("Created Pub/Sub topic: %s", topicID)
	}

	return &billPubSubService{
		client:              client,
		topic:               topic,
		activeSubscriptions: make(map[uuid.UUID]*subscriptionInfo),
		ctx:                 ctx,
	}, nil
}

// Publish sends a message to the topic with the employee email as an attribute.
func (s *billPubSubService) Publish(msg mq.BillMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal BillMessage: %w", err)
	}

	pubsubMsg := &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			emailAttribute: msg.GetTopic(),
		},
	}

	result := s.topic.Publish(s.ctx, pubsubMsg)
	_, err = result.Get(s.ctx)
	if err != nil {
		return fmt.Errorf("failed to publish BillMessage to topic %s: %w", s.topic.ID(), err)
	}
	return nil
}

// Subscribe creates a new filtered subscription on GCP and starts listening.
func (s *billPubSubService) Subscribe(email string) (uuid.UUID, <-chan mq.BillMessage, error) {
	subscriptionID := uuid.New() // Internal ID for tracking

	gcpSubName := fmt.Sprintf("sub-bill-%s", subscriptionID.String())

	config := pubsub.SubscriptionConfig{
		Topic:            s.topic,
		Filter:           fmt.Sprintf("attributes.%s = \"%s\"", emailAttribute, email),
		ExpirationPolicy: 24 * time.Hour,
		AckDeadline:      10 * time.Second,
	}

	gcpSub, err := s.client.CreateSubscription(s.ctx, gcpSubName, config)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to create GCP subscription %s: %w", gcpSubName, err)
	}

	msgChan := make(chan mq.BillMessage, 5)
	receiveCtx, cancel := context.WithCancel(s.ctx)

	s.subscriptionsMutex.Lock()
	s.activeSubscriptions[subscriptionID] = &subscriptionInfo{
		gcpSubscription: gcpSub,
		cancel:          cancel,
	}
	s.subscriptionsMutex.Unlock()

	go func() {
		// Automatically clean up when the goroutine exits.
		defer func() {
			s.subscriptionsMutex.Lock()
			delete(s.activeSubscriptions, subscriptionID)
			s.subscriptionsMutex.Unlock()

			// Delete the subscription from GCP to prevent resource leaks.
			if deleteErr := gcpSub.Delete(context.Background()); deleteErr != nil {
				log.Printf("Error deleting GCP subscription %s: %v", gcpSub.ID(), deleteErr)
			}
			close(msgChan)
		}()

		// Receive blocks until the context is cancelled.
		err := gcpSub.Receive(receiveCtx, func(ctx context.Context, pubsubMsg *pubsub.Message) {
			pubsubMsg.Ack()

			var msg mq.BillMessage
			if err := json.Unmarshal(pubsubMsg.Data, &msg); err != nil {
				log.Printf("Error unmarshaling BillMessage for %s: %v. Body: %s", subscriptionID, err, string(pubsubMsg.Data))
				return
			}

			select {
			case msgChan <- msg:
			case <-time.After(2 * time.Second):
				log.Printf("Timeout sending BillMessage to msgChan for %s.", subscriptionID)
			case <-receiveCtx.Done():
				return
			}
		})

		if err != nil && err != context.Canceled {
			log.Printf("Error in Receive loop for subscription %s: %v", subscriptionID, err)
		}
	}()

	return subscriptionID, msgChan, nil
}

// DeSubscribe stops the message receiver and deletes the subscription from GCP.
func (s *billPubSubService) DeSubscribe(id uuid.UUID) error {
	s.subscriptionsMutex.Lock()
	info, ok := s.activeSubscriptions[id]
	if ok {
		// It's removed from the map inside the goroutine's defer block.
		// Here we just trigger the cancellation.
		info.cancel()
	}
	s.subscriptionsMutex.Unlock()

	if !ok {
		return fmt.Errorf("subscription ID %s not found", id)
	}
	return nil
}

// Close gracefully shuts down all active subscriptions for this service.
func (s *billPubSubService) Close() {
	s.subscriptionsMutex.Lock()
	defer s.subscriptionsMutex.Unlock()

	for _, info := range s.activeSubscriptions {
		info.cancel()
	}
}

// --- billMQ implementation ---
type billMQ struct {
	genericService *billPubSubService
	action         mq.Action
}

func NewBillMessageQueue(ctx context.Context, client *pubsub.Client, action mq.Action) (*billMQ, error) {
	topicID := fmt.Sprintf("bill-%s", action.String())
	gs, err := newBillPubSubService(ctx, client, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub service for bill events: %w", err)
	}
	return &billMQ{genericService: gs, action: action}, nil
}

func (q *billMQ) GetAction() mq.Action             { return q.action }
func (q *billMQ) Publish(msg mq.BillMessage) error { return q.genericService.Publish(msg) }
func (q *billMQ) Subscribe(email string) (uuid.UUID, <-chan mq.BillMessage, error) {
	return q.genericService.Subscribe(email)
}
func (q *billMQ) DeSubscribe(id uuid.UUID) error { return q.genericService.DeSubscribe(id) }

// --------- bill message queue wrapper implementation ---------

type GCPBillMessageQueueWrapper struct {
	BillMQArray [mq.ActionCnt]*billMQ
}

func (wrapper *GCPBillMessageQueueWrapper) GetBillMessageQueue(action mq.Action) mq.BillMessageQueue {
	if action < 0 || action >= mq.ActionCnt || wrapper.BillMQArray[action] == nil {
		return nil
	}
	return wrapper.BillMQArray[action]
}

// NewGCPBillMessageQueueWrapper creates a new MQ wrapper instance using GCP Pub/Sub.
func NewGCPBillMessageQueueWrapper(ctx context.Context, projectID string) (mq.BillMessageQueueWrapper, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Pub/Sub client for project %s: %w", projectID, err)
	}

	wrapper := &GCPBillMessageQueueWrapper{}

	wrapper.BillMQArray[mq.ActionCreate], err = NewBillMessageQueue(ctx, client, mq.ActionCreate)
	if err != nil {
		return nil, err
	}
	wrapper.BillMQArray[mq.ActionUpdate], err = NewBillMessageQueue(ctx, client, mq.ActionUpdate)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}
