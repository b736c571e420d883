package container_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billed/bill"
	"billed/container"
	dbt "billed/db/db"
	"billed/db/mem"
	"billed/session"
)

func loginEmployee(t *testing.T) session.Storage {
	t.Helper()
	s := session.NewMemStorage()
	require.NoError(t, session.StoreUser(s, session.User{Email: "employee@test.tld", Type: "Employee"}))
	return s
}

func seedBill(t *testing.T, store dbt.BillDBWrapper, email, date string, status bill.Status) bill.Bill {
	t.Helper()
	b := bill.Bill{
		ID:     uuid.New(),
		Email:  email,
		Type:   "Transports",
		Name:   "vol",
		Amount: 100,
		Date:   date,
		Pct:    20,
		Status: status,
	}
	require.NoError(t, store.CreateBill(&b))
	return b
}

func TestBillsFetchAllOrdersNewestFirst(t *testing.T) {
	store := mem.NewInMemoryBillDBWrapper()
	seedBill(t, store, "employee@test.tld", "2022-06-15", bill.StatusPending)
	seedBill(t, store, "employee@test.tld", "2023-03-01", bill.StatusAccepted)
	seedBill(t, store, "employee@test.tld", "2021-01-01", bill.StatusRefused)

	c := container.NewBills(store, func(string) {}, loginEmployee(t))

	got, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "1 Mar. 23", got[0].Date)
	assert.Equal(t, "15 Jui. 22", got[1].Date)
	assert.Equal(t, "1 Jan. 21", got[2].Date)
	assert.Equal(t, "Accepté", got[0].Status)
	assert.Equal(t, "En attente", got[1].Status)
	assert.Equal(t, "Refusé", got[2].Status)
}

func TestBillsFetchAllScopedToSessionUser(t *testing.T) {
	store := mem.NewInMemoryBillDBWrapper()
	seedBill(t, store, "employee@test.tld", "2022-06-15", bill.StatusPending)
	seedBill(t, store, "other@test.tld", "2023-03-01", bill.StatusPending)

	c := container.NewBills(store, func(string) {}, loginEmployee(t))

	got, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "vol", got[0].Name)
}

func TestBillsFetchAllKeepsCorruptedDateRaw(t *testing.T) {
	store := mem.NewInMemoryBillDBWrapper()
	seedBill(t, store, "employee@test.tld", "not-a-date", bill.StatusPending)

	c := container.NewBills(store, func(string) {}, loginEmployee(t))

	got, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "not-a-date", got[0].Date)
}

// failingStore returns a fixed error from every read so the test can assert
// the error text reaches the caller untouched.
type failingStore struct {
	dbt.BillDBWrapper
	err error
}

func (s failingStore) ListBillsByEmail(string) ([]bill.Bill, error) {
	return nil, s.err
}

func TestBillsFetchAllPropagatesStoreErrorVerbatim(t *testing.T) {
	for _, msg := range []string{"Erreur 404", "Erreur 500"} {
		t.Run(msg, func(t *testing.T) {
			store := failingStore{err: errors.New(msg)}
			c := container.NewBills(store, func(string) {}, loginEmployee(t))

			_, err := c.FetchAll(context.Background())
			require.Error(t, err)
			assert.Equal(t, msg, err.Error())
		})
	}
}

func TestBillsFetchAllRequiresSessionUser(t *testing.T) {
	c := container.NewBills(mem.NewInMemoryBillDBWrapper(), func(string) {}, session.NewMemStorage())

	_, err := c.FetchAll(context.Background())
	assert.Error(t, err)
}

func TestBillsFetchAllUsesContextLoader(t *testing.T) {
	store := mem.NewInMemoryBillDBWrapper()
	seedBill(t, store, "employee@test.tld", "2022-06-15", bill.StatusPending)

	loader := dbt.NewBillDataLoader(store)
	ctx := dbt.ContextWithLoader(context.Background(), loader)

	c := container.NewBills(store, func(string) {}, loginEmployee(t))

	got, err := c.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestBillsHandlePreviewReceipt(t *testing.T) {
	c := container.NewBills(mem.NewInMemoryBillDBWrapper(), func(string) {}, loginEmployee(t))

	preview := c.HandlePreviewReceipt("/receipts/abc")
	assert.Equal(t, "/receipts/abc", preview.ImgURL)
	assert.Equal(t, 50, preview.WidthPct)
}

func TestBillsHandleClickNewBill(t *testing.T) {
	var visited []string
	c := container.NewBills(mem.NewInMemoryBillDBWrapper(), func(route string) {
		visited = append(visited, route)
	}, loginEmployee(t))

	c.HandleClickNewBill()
	assert.Equal(t, []string{container.RouteNewBill}, visited)
}
