// Package views renders the server-side pages. Templates are embedded so
// the binary ships self-contained; element identifiers (data-testid
// attributes) are a fixed contract with the browser-side code and the UI
// tests and must not change.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"billed/bill"
	"billed/container"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// BillsPage is the bill-list page data. Err carries a failed fetch's message
// and is rendered verbatim in place of the table.
type BillsPage struct {
	Email string
	Bills []bill.Formatted
	Err   string
}

// NewBillPage is the new-bill form page data. Rejection holds the file-type
// warning shown next to the file input after a refused selection.
type NewBillPage struct {
	Email     string
	Rejection string
}

// PreviewModal is the receipt overlay fragment data.
type PreviewModal struct {
	Preview container.ReceiptPreview
}

// LoginPage carries the failure message redisplayed above the form.
type LoginPage struct {
	Err string
}

func RenderLogin(w io.Writer, data LoginPage) error {
	return render(w, "login.html", data)
}

func RenderBills(w io.Writer, data BillsPage) error {
	return render(w, "bills.html", data)
}

func RenderNewBill(w io.Writer, data NewBillPage) error {
	return render(w, "new-bill.html", data)
}

func RenderPreviewModal(w io.Writer, data PreviewModal) error {
	return render(w, "preview-modal.html", data)
}

func render(w io.Writer, name string, data any) error {
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}
