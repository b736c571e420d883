package mem

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"billed/bill"
	dbt "billed/db/db"
)

// inMemoryBillDBWrapper is an in-memory implementation of dbt.BillDBWrapper.
// It backs the dev server mode and doubles for postgres in tests.
type inMemoryBillDBWrapper struct {
	bills map[uuid.UUID]*bill.Bill

	// Guards bills; list handlers and the upload path run concurrently.
	mu sync.RWMutex
}

// NewInMemoryBillDBWrapper creates and returns a new instance of inMemoryBillDBWrapper.
func NewInMemoryBillDBWrapper() dbt.BillDBWrapper {
	return &inMemoryBillDBWrapper{
		bills: make(map[uuid.UUID]*bill.Bill),
	}
}

// CreateBill stores a new bill. The ID must be assigned by the caller.
func (db *inMemoryBillDBWrapper) CreateBill(b *bill.Bill) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.bills[b.ID]; exists {
		return fmt.Errorf("bill with ID %s already exists", b.ID)
	}

	// Store a copy to prevent external modification through the caller's pointer.
	billCopy := *b
	db.bills[b.ID] = &billCopy
	return nil
}

// GetBill retrieves a bill by ID.
func (db *inMemoryBillDBWrapper) GetBill(id uuid.UUID) (*bill.Bill, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	b, exists := db.bills[id]
	if !exists {
		return nil, fmt.Errorf("bill with ID %s not found", id)
	}
	billCopy := *b
	return &billCopy, nil
}

// ListBills retrieves every stored bill in unspecified order.
func (db *inMemoryBillDBWrapper) ListBills() ([]bill.Bill, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	bills := make([]bill.Bill, 0, len(db.bills))
	for _, b := range db.bills {
		bills = append(bills, *b)
	}
	return bills, nil
}

// ListBillsByEmail retrieves the bills submitted by one employee.
func (db *inMemoryBillDBWrapper) ListBillsByEmail(email string) ([]bill.Bill, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var bills []bill.Bill
	for _, b := range db.bills {
		if b.Email == email {
			bills = append(bills, *b)
		}
	}
	return bills, nil
}

// UpdateBill replaces the stored record with the same ID.
func (db *inMemoryBillDBWrapper) UpdateBill(b *bill.Bill) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.bills[b.ID]; !exists {
		return fmt.Errorf("bill with ID %s not found for update", b.ID)
	}

	billCopy := *b
	db.bills[b.ID] = &billCopy
	return nil
}

// DataLoaderListBillsByEmail batch-loads bills for a set of employee emails.
// Every requested email gets an entry, empty slice included, so the loader
// caches negatives too.
func (db *inMemoryBillDBWrapper) DataLoaderListBillsByEmail(_ context.Context, emails []string) (map[string][]bill.Bill, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make(map[string][]bill.Bill, len(emails))
	for _, email := range emails {
		result[email] = []bill.Bill{}
	}
	for _, b := range db.bills {
		if _, wanted := result[b.Email]; wanted {
			result[b.Email] = append(result[b.Email], *b)
		}
	}
	return result, nil
}
