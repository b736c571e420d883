package mq

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Subscriber is anything that can be subscribed to by topic and later
// de-subscribed. M is the message type carried by the subscription.
type Subscriber[M any] interface {
	Subscribe(topic string) (uuid.UUID, <-chan M, error)
	DeSubscribe(id uuid.UUID) error
}

// SubscribeProcessor subscribes to a topic, transforms each incoming message
// and forwards the result to outputStream until the context is cancelled or
// the subscription channel closes. The subscription is released and
// outputStream closed on exit.
//
// transformFunc returns the transformed message, a skip flag, and an error;
// errors and skips drop the message without stopping the stream.
func SubscribeProcessor[S Subscriber[M], M any, O any](
	ctx context.Context,
	topic string,
	service S,
	transformFunc func(msg M) (O, bool, error),
	outputStream chan<- O,
) {
	go func() {
		uid, inputCh, err := service.Subscribe(topic)
		if err != nil {
			close(outputStream)
			return
		}

		defer func() {
			if err := service.DeSubscribe(uid); err != nil {
				log.Printf("Error de-subscribing %s: %v", uid, err)
			}
			close(outputStream)
		}()

		for {
			select {
			case msg, ok := <-inputCh:
				if !ok {
					// publisher side closed the subscription
					return
				}

				output, skip, err := transformFunc(msg)
				if err != nil {
					continue
				}
				if skip {
					continue
				}

				select {
				case outputStream <- output:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
