package container

import (
	"context"
	"fmt"

	"billed/bill"
	dbt "billed/db/db"
	"billed/session"
)

// Receipt previews render the image at half the modal width.
const previewWidthPct = 50

// ReceiptPreview is the data the modal overlay needs to display a receipt.
// Building it involves no network call; the image URL comes straight from
// the row that triggered the preview.
type ReceiptPreview struct {
	ImgURL   string
	WidthPct int
}

// Bills drives the bill-list page: it fetches the session employee's bills,
// formats and orders them for display, and delegates navigation.
type Bills struct {
	store      dbt.BillDBWrapper
	onNavigate func(route string)
	session    session.Storage
}

func NewBills(store dbt.BillDBWrapper, onNavigate func(route string), sessionStore session.Storage) *Bills {
	return &Bills{
		store:      store,
		onNavigate: onNavigate,
		session:    sessionStore,
	}
}

// FetchAll lists the session employee's bills, newest first, formatted for
// display. A record with a corrupted date is kept with its raw date rather
// than aborting the batch. A store failure is returned untouched so the view
// can render its message verbatim.
func (c *Bills) FetchAll(ctx context.Context) ([]bill.Formatted, error) {
	user, err := session.CurrentUser(c.session)
	if err != nil {
		return nil, fmt.Errorf("cannot list bills: %w", err)
	}

	var bills []bill.Bill
	if loader, ok := dbt.LoaderFromContext(ctx); ok {
		bills, err = loader.ListByEmail.Load(ctx, user.Email)
	} else {
		bills, err = c.store.ListBillsByEmail(user.Email)
	}
	if err != nil {
		return nil, err
	}

	bill.SortNewestFirst(bills)

	formatted := make([]bill.Formatted, 0, len(bills))
	for _, b := range bills {
		formatted = append(formatted, bill.Format(b))
	}
	return formatted, nil
}

// HandlePreviewReceipt builds the modal data for the receipt URL carried by
// the clicked row.
func (c *Bills) HandlePreviewReceipt(fileURL string) ReceiptPreview {
	return ReceiptPreview{
		ImgURL:   fileURL,
		WidthPct: previewWidthPct,
	}
}

// HandleClickNewBill navigates to the new-bill form.
func (c *Bills) HandleClickNewBill() {
	c.onNavigate(RouteNewBill)
}
