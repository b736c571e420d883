package mq

import "github.com/google/uuid"

// Mode selects the message queue backend at startup.
type Mode string

const (
	ModeGoChan    Mode = "go_chan"
	ModeRabbitMQ  Mode = "rabbitmq"
	ModeGCPPubSub Mode = "gcp_pub_sub"
)

// TopicProvider is implemented by messages that know which topic they belong
// to. Bill events are topic-ed by the submitting employee's email.
type TopicProvider interface {
	GetTopic() string
}

// BillMessageQueue fans bill events out to per-employee subscribers.
// Subscribe returns a subscription ID used to DeSubscribe, plus a channel
// that only carries messages whose topic matches the given email.
type BillMessageQueue interface {
	GetAction() Action
	Publish(msg BillMessage) error
	Subscribe(email string) (uuid.UUID, <-chan BillMessage, error)
	DeSubscribe(id uuid.UUID) error
}

// BillMessageQueueWrapper bundles one queue per action.
type BillMessageQueueWrapper interface {
	GetBillMessageQueue(action Action) BillMessageQueue
}
