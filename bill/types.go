package bill

import (
	"fmt"

	"github.com/google/uuid"
)

// Status is the review state of a submitted bill.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// Bill is a single employee expense claim as persisted by the store.
// Date holds the raw ISO 8601 form ("2006-01-02"); display formatting is a
// separate, one-way projection (see Formatted).
type Bill struct {
	ID         uuid.UUID
	Email      string  // submitting employee
	Type       string  // expense category, free form (e.g. "Transports")
	Name       string  // expense description
	Amount     float64 // non-negative
	Date       string  // ISO 8601
	Vat        string  // string-encoded tax value, may be empty
	Pct        int     // non-negative percentage
	Commentary string
	FileURL    string // uploaded receipt location
	FileName   string // original receipt filename
	Status     Status
}

// Formatted is a display-only projection of a Bill: Date is rewritten to the
// localized short form and Status to its human label. It is never persisted
// and never fed back into a mutation.
type Formatted struct {
	ID         uuid.UUID
	Email      string
	Type       string
	Name       string
	Amount     float64
	Date       string
	Vat        string
	Pct        int
	Commentary string
	FileURL    string
	FileName   string
	Status     string
}

// Validate checks the invariants a bill must satisfy before persistence.
// FileURL and FileName are deliberately not required here: the submit path
// stays permissive about a missing receipt, matching the observed contract.
func (b *Bill) Validate() error {
	if b.Email == "" {
		return fmt.Errorf("bill '%s' must have a submitting email", b.Name)
	}
	if b.Amount < 0 {
		return fmt.Errorf("bill '%s' amount must not be negative", b.Name)
	}
	if b.Pct < 0 {
		return fmt.Errorf("bill '%s' pct must not be negative", b.Name)
	}
	switch b.Status {
	case StatusPending, StatusAccepted, StatusRefused:
	default:
		return fmt.Errorf("bill '%s' has unknown status %q", b.Name, b.Status)
	}
	return nil
}
