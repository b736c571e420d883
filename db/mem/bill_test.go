package mem_test // Use _test suffix for test package

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"billed/bill"
	dbt "billed/db/db"
	"billed/db/mem"
)

// setupTest creates a new inMemoryBillDBWrapper instance for each test.
func setupTest() dbt.BillDBWrapper {
	return mem.NewInMemoryBillDBWrapper()
}

func sampleBill(email string) *bill.Bill {
	return &bill.Bill{
		ID:       uuid.New(),
		Email:    email,
		Type:     "Transports",
		Name:     "Taxi",
		Amount:   42,
		Date:     "2023-01-01",
		Vat:      "20",
		Pct:      20,
		FileURL:  "https://example.com/test.png",
		FileName: "test.png",
		Status:   bill.StatusPending,
	}
}

func TestCreateBill(t *testing.T) {
	db := setupTest()

	b := sampleBill("a@test.tld")
	err := db.CreateBill(b)
	assert.NoError(t, err, "CreateBill should not return an error for a new bill")

	retrieved, err := db.GetBill(b.ID)
	assert.NoError(t, err)
	assert.NotNil(t, retrieved)
	assert.Equal(t, b.Email, retrieved.Email)
	assert.Equal(t, b.FileURL, retrieved.FileURL)

	// Creating with an existing ID should fail.
	err = db.CreateBill(b)
	assert.Error(t, err, "CreateBill should return an error for a duplicate bill ID")
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateBill_StoresACopy(t *testing.T) {
	db := setupTest()

	b := sampleBill("a@test.tld")
	assert.NoError(t, db.CreateBill(b))

	// Mutating the caller's pointer must not leak into the store.
	b.Name = "changed"
	retrieved, err := db.GetBill(b.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Taxi", retrieved.Name)
}

func TestGetBill_NotFound(t *testing.T) {
	db := setupTest()

	_, err := db.GetBill(uuid.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListBillsByEmail(t *testing.T) {
	db := setupTest()

	assert.NoError(t, db.CreateBill(sampleBill("a@test.tld")))
	assert.NoError(t, db.CreateBill(sampleBill("a@test.tld")))
	assert.NoError(t, db.CreateBill(sampleBill("b@test.tld")))

	bills, err := db.ListBillsByEmail("a@test.tld")
	assert.NoError(t, err)
	assert.Len(t, bills, 2)

	all, err := db.ListBills()
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := db.ListBillsByEmail("nobody@test.tld")
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateBill(t *testing.T) {
	db := setupTest()

	b := sampleBill("a@test.tld")
	assert.NoError(t, db.CreateBill(b))

	b.Name = "Vol Paris Londres"
	b.Amount = 348
	b.Status = bill.StatusAccepted
	assert.NoError(t, db.UpdateBill(b))

	retrieved, err := db.GetBill(b.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Vol Paris Londres", retrieved.Name)
	assert.Equal(t, float64(348), retrieved.Amount)
	assert.Equal(t, bill.StatusAccepted, retrieved.Status)

	// Updating an unknown bill fails.
	unknown := sampleBill("a@test.tld")
	err = db.UpdateBill(unknown)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDataLoaderListBillsByEmail(t *testing.T) {
	db := setupTest()

	assert.NoError(t, db.CreateBill(sampleBill("a@test.tld")))
	assert.NoError(t, db.CreateBill(sampleBill("b@test.tld")))
	assert.NoError(t, db.CreateBill(sampleBill("b@test.tld")))

	result, err := db.DataLoaderListBillsByEmail(context.Background(),
		[]string{"a@test.tld", "b@test.tld", "c@test.tld"})
	assert.NoError(t, err)
	assert.Len(t, result, 3)
	assert.Len(t, result["a@test.tld"], 1)
	assert.Len(t, result["b@test.tld"], 2)
	assert.Empty(t, result["c@test.tld"], "unknown email still gets an empty entry")
}

func TestBillDataLoader(t *testing.T) {
	db := setupTest()
	b := sampleBill("a@test.tld")
	assert.NoError(t, db.CreateBill(b))

	loader := dbt.NewBillDataLoader(db)
	bills, err := loader.ListByEmail.Load(context.Background(), "a@test.tld")
	assert.NoError(t, err)
	assert.Len(t, bills, 1)
	assert.Equal(t, b.ID, bills[0].ID)
}
