package db

import (
	"context"

	"github.com/google/uuid"

	"billed/bill"
)

// BillDBWrapper is the persistence contract for bills. Any implementation
// (postgres, in-memory) is substitutable; controllers and handlers depend on
// this interface only.
//
// The create/update pair mirrors the client submission flow: CreateBill
// stores the partial record produced by the receipt upload (email, file,
// pending status), UpdateBill completes it with the form fields.
type BillDBWrapper interface {
	// Create
	CreateBill(b *bill.Bill) error
	// Read
	GetBill(id uuid.UUID) (*bill.Bill, error)
	ListBills() ([]bill.Bill, error)
	ListBillsByEmail(email string) ([]bill.Bill, error)
	// Update
	UpdateBill(b *bill.Bill) error
	// Data Loader
	DataLoaderListBillsByEmail(ctx context.Context, emails []string) (map[string][]bill.Bill, error)
}
