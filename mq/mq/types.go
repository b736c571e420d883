package mq

import (
	"github.com/google/uuid"

	"billed/bill"
)

type Action int

const (
	ActionCreate Action = iota
	ActionUpdate
	ActionCnt
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	}
	return "unknown"
}

// BillMessage is the event payload published when a bill is created or
// updated. It carries the fields the list page needs to refresh a row.
type BillMessage struct {
	ID     uuid.UUID
	Email  string
	Name   string
	Amount float64
	Date   string
	Status string
}

// GetTopic routes the message to the submitting employee's feed.
func (m BillMessage) GetTopic() string {
	return m.Email
}

// NewBillMessage builds the event payload for a persisted bill.
func NewBillMessage(b *bill.Bill) BillMessage {
	return BillMessage{
		ID:     b.ID,
		Email:  b.Email,
		Name:   b.Name,
		Amount: b.Amount,
		Date:   b.Date,
		Status: string(b.Status),
	}
}
