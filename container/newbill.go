package container

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"billed/bill"
	dbt "billed/db/db"
	"billed/libs/diff"
	"billed/mq/mq"
	"billed/session"
	"billed/storage"
)

// A pct the form left empty or garbled falls back to this value.
const defaultPct = 20

// allowedExtensions is the receipt allow-set, compared case-insensitively.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type draftState int

const (
	draftEmpty draftState = iota
	draftUploading
	draftFileReady
)

// NewBill owns one form session: the selected receipt, its uploaded
// location, and the submit flow that persists the assembled record. A new
// instance is created per form session; the draft dies with it.
//
// Draft mutations are serialized: selecting a file while the previous upload
// is in flight is rejected instead of racing it.
type NewBill struct {
	store      dbt.BillDBWrapper
	receipts   storage.ReceiptStore
	onNavigate func(route string)
	session    session.Storage
	events     mq.BillMessageQueueWrapper // may be nil

	mu       sync.Mutex
	state    draftState
	billID   uuid.UUID
	fileURL  string
	fileName string
}

func NewNewBill(
	store dbt.BillDBWrapper,
	receipts storage.ReceiptStore,
	onNavigate func(route string),
	sessionStore session.Storage,
	events mq.BillMessageQueueWrapper,
) *NewBill {
	return &NewBill{
		store:      store,
		receipts:   receipts,
		onNavigate: onNavigate,
		session:    sessionStore,
		events:     events,
	}
}

// BindNavigation replaces the navigation collaborator. The web layer calls
// this when a draft outlives the request that created it; the collaborator
// set at construction time stays in place otherwise.
func (c *NewBill) BindNavigation(onNavigate func(route string)) {
	c.mu.Lock()
	c.onNavigate = onNavigate
	c.mu.Unlock()
}

// FileURL returns the uploaded receipt location, empty until an upload succeeds.
func (c *NewBill) FileURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fileURL
}

// FileName returns the selected receipt's original name, empty until an upload succeeds.
func (c *NewBill) FileName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fileName
}

// HandleChangeFile validates the selected file's extension and, when
// accepted, immediately stores the receipt and creates the partial bill
// record (email, file, pending status). On rejection the draft resets and
// ErrInvalidFileType carries the user-facing warning. An upload failure is
// returned as *UploadError; the draft resets so the user can reselect.
func (c *NewBill) HandleChangeFile(fileName string, content io.Reader) error {
	c.mu.Lock()
	if c.state == draftUploading {
		c.mu.Unlock()
		return ErrUploadInFlight
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		c.fileURL = ""
		c.fileName = ""
		c.state = draftEmpty
		c.mu.Unlock()
		return ErrInvalidFileType
	}

	c.state = draftUploading
	c.mu.Unlock()

	receipt, billID, err := c.upload(fileName, content)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = draftEmpty
		return &UploadError{Err: err}
	}

	c.billID = billID
	c.fileURL = receipt.URL
	c.fileName = fileName
	c.state = draftFileReady
	return nil
}

// upload runs outside the draft lock; the draftUploading state keeps other
// selections out meanwhile.
func (c *NewBill) upload(fileName string, content io.Reader) (storage.Receipt, uuid.UUID, error) {
	user, err := session.CurrentUser(c.session)
	if err != nil {
		return storage.Receipt{}, uuid.Nil, err
	}

	receipt, err := c.receipts.Save(fileName, content)
	if err != nil {
		return storage.Receipt{}, uuid.Nil, err
	}

	partial := &bill.Bill{
		ID:       uuid.New(),
		Email:    user.Email,
		FileURL:  receipt.URL,
		FileName: fileName,
		Status:   bill.StatusPending,
	}
	if err := c.store.CreateBill(partial); err != nil {
		return storage.Receipt{}, uuid.Nil, err
	}

	c.publish(mq.ActionCreate, partial)
	return receipt, partial.ID, nil
}

// HandleSubmit assembles the bill record from the form snapshot and the
// draft, persists it, and navigates back to the bill list. Navigation fires
// even when persistence fails; the error is still returned so the caller can
// surface it. A missing receipt does not block submission.
func (c *NewBill) HandleSubmit(form FormSnapshot) error {
	user, err := session.CurrentUser(c.session)
	if err != nil {
		return fmt.Errorf("cannot submit bill: %w", err)
	}

	amount, err := strconv.ParseFloat(form.Amount, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", form.Amount, err)
	}

	pct, err := strconv.Atoi(form.Pct)
	if err != nil {
		pct = defaultPct
	}

	c.mu.Lock()
	record := &bill.Bill{
		ID:         c.billID,
		Email:      user.Email,
		Type:       form.Type,
		Name:       form.Name,
		Amount:     amount,
		Date:       form.Date,
		Vat:        form.Vat,
		Pct:        pct,
		Commentary: form.Commentary,
		FileURL:    c.fileURL,
		FileName:   c.fileName,
		Status:     bill.StatusPending,
	}
	navigate := c.onNavigate
	c.mu.Unlock()

	persistErr := c.persist(record)

	navigate(RouteBills)
	return persistErr
}

// persist completes the two-step submission: the upload already created the
// partial record, so a known ID means update; a submit without a prior
// upload creates the record in one go.
func (c *NewBill) persist(record *bill.Bill) error {
	if err := record.Validate(); err != nil {
		return err
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
		if err := c.store.CreateBill(record); err != nil {
			return err
		}
		c.publish(mq.ActionCreate, record)
		return nil
	}

	// Audit which fields the submit changed on the uploaded partial.
	if old, err := c.store.GetBill(record.ID); err == nil {
		if changes, diffErr := diff.Changelog(*old, *record); diffErr == nil && len(changes) > 0 {
			log.Printf("bill %s updated: %v", record.ID, changes)
		}
	}

	if err := c.store.UpdateBill(record); err != nil {
		return err
	}
	c.publish(mq.ActionUpdate, record)
	return nil
}

func (c *NewBill) publish(action mq.Action, record *bill.Bill) {
	if c.events == nil {
		return
	}
	queue := c.events.GetBillMessageQueue(action)
	if queue == nil {
		return
	}
	if err := queue.Publish(mq.NewBillMessage(record)); err != nil {
		log.Printf("failed to publish bill %s event: %v", action, err)
	}
}
