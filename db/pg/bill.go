package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"billed/bill"
	dbt "billed/db/db"
)

// GORMBillDBWrapper is a GORM-based PostgreSQL implementation of dbt.BillDBWrapper.
type GORMBillDBWrapper struct {
	db *gorm.DB
}

// NewGORMBillDBWrapper creates and returns a new instance of GORMBillDBWrapper.
func NewGORMBillDBWrapper(db *gorm.DB) dbt.BillDBWrapper {
	return &GORMBillDBWrapper{
		db: db,
	}
}

func toModel(b *bill.Bill) BillModel {
	return BillModel{
		ID:         b.ID,
		Email:      b.Email,
		Type:       b.Type,
		Name:       b.Name,
		Amount:     b.Amount,
		Date:       b.Date,
		Vat:        b.Vat,
		Pct:        b.Pct,
		Commentary: b.Commentary,
		FileURL:    b.FileURL,
		FileName:   b.FileName,
		Status:     string(b.Status),
	}
}

func fromModel(m BillModel) bill.Bill {
	return bill.Bill{
		ID:         m.ID,
		Email:      m.Email,
		Type:       m.Type,
		Name:       m.Name,
		Amount:     m.Amount,
		Date:       m.Date,
		Vat:        m.Vat,
		Pct:        m.Pct,
		Commentary: m.Commentary,
		FileURL:    m.FileURL,
		FileName:   m.FileName,
		Status:     bill.Status(m.Status),
	}
}

// CreateBill creates a new bill entry using GORM.
func (pgdb *GORMBillDBWrapper) CreateBill(b *bill.Bill) error {
	model := toModel(b)
	result := pgdb.db.Create(&model)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "duplicate key value violates unique constraint") {
			return fmt.Errorf("bill with ID %s already exists: %w", b.ID, result.Error)
		}
		return fmt.Errorf("failed to create bill: %w", result.Error)
	}
	return nil
}

// GetBill retrieves a bill by ID using GORM.
func (pgdb *GORMBillDBWrapper) GetBill(id uuid.UUID) (*bill.Bill, error) {
	var model BillModel
	result := pgdb.db.First(&model, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("bill with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get bill for ID %s: %w", id, result.Error)
	}
	b := fromModel(model)
	return &b, nil
}

// ListBills retrieves every stored bill using GORM.
func (pgdb *GORMBillDBWrapper) ListBills() ([]bill.Bill, error) {
	var models []BillModel
	result := pgdb.db.Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list bills: %w", result.Error)
	}

	var bills []bill.Bill
	for _, m := range models {
		bills = append(bills, fromModel(m))
	}
	return bills, nil
}

// ListBillsByEmail retrieves the bills submitted by one employee using GORM.
func (pgdb *GORMBillDBWrapper) ListBillsByEmail(email string) ([]bill.Bill, error) {
	var models []BillModel
	result := pgdb.db.Where("email = ?", email).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list bills for email %s: %w", email, result.Error)
	}

	var bills []bill.Bill
	for _, m := range models {
		bills = append(bills, fromModel(m))
	}
	return bills, nil
}

// UpdateBill replaces the stored record with the same ID using GORM.
func (pgdb *GORMBillDBWrapper) UpdateBill(b *bill.Bill) error {
	model := toModel(b)
	result := pgdb.db.Model(&BillModel{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"email":      model.Email,
		"type":       model.Type,
		"name":       model.Name,
		"amount":     model.Amount,
		"date":       model.Date,
		"vat":        model.Vat,
		"pct":        model.Pct,
		"commentary": model.Commentary,
		"file_url":   model.FileURL,
		"file_name":  model.FileName,
		"status":     model.Status,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update bill with ID %s: %w", b.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("bill with ID %s not found for update", b.ID)
	}
	return nil
}

// DataLoaderListBillsByEmail batch-loads bills for a set of employee emails
// in a single query.
func (pgdb *GORMBillDBWrapper) DataLoaderListBillsByEmail(ctx context.Context, emails []string) (map[string][]bill.Bill, error) {
	var models []BillModel
	result := pgdb.db.WithContext(ctx).Where("email IN ?", emails).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to batch-load bills: %w", result.Error)
	}

	bills := make(map[string][]bill.Bill, len(emails))
	for _, email := range emails {
		bills[email] = []bill.Bill{}
	}
	for _, m := range models {
		bills[m.Email] = append(bills[m.Email], fromModel(m))
	}
	return bills, nil
}
