package web

import (
	"context"
	"errors"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"billed/container"
	dbt "billed/db/db"
	"billed/mq/mq"
	"billed/session"
	"billed/storage"
	"billed/views"
)

// A draft untouched for this long is considered abandoned and evicted.
const draftTTL = 30 * time.Minute

type draftEntry struct {
	draft    *container.NewBill
	lastUsed time.Time
}

// Handlers wires the page containers to HTTP. One instance serves all
// requests; per-form draft state lives in the registry below.
type Handlers struct {
	store    dbt.BillDBWrapper
	receipts storage.ReceiptStore
	events   mq.BillMessageQueueWrapper

	// One new-bill draft per employee, created on first use of the form
	// and dropped after submit navigates away. Abandoned drafts are swept
	// on access once they age past draftTTL.
	draftsMu sync.Mutex
	drafts   map[string]*draftEntry
}

func NewHandlers(store dbt.BillDBWrapper, receipts storage.ReceiptStore, events mq.BillMessageQueueWrapper) *Handlers {
	return &Handlers{
		store:    store,
		receipts: receipts,
		events:   events,
		drafts:   make(map[string]*draftEntry),
	}
}

func (h *Handlers) draftFor(email string, sess session.Storage, navigate func(string)) *container.NewBill {
	h.draftsMu.Lock()
	defer h.draftsMu.Unlock()

	now := time.Now()
	for owner, entry := range h.drafts {
		if now.Sub(entry.lastUsed) > draftTTL {
			delete(h.drafts, owner)
		}
	}

	entry, ok := h.drafts[email]
	if !ok {
		entry = &draftEntry{draft: container.NewNewBill(h.store, h.receipts, navigate, sess, h.events)}
		h.drafts[email] = entry
	} else {
		// The draft outlived the request that created it; point navigation
		// at the current response.
		entry.draft.BindNavigation(navigate)
	}
	entry.lastUsed = now
	return entry.draft
}

func (h *Handlers) redirector(c *gin.Context) func(string) {
	return func(route string) {
		c.Redirect(http.StatusSeeOther, route)
	}
}

func (h *Handlers) dropDraft(email string) {
	h.draftsMu.Lock()
	delete(h.drafts, email)
	h.draftsMu.Unlock()
}

func (h *Handlers) loginPage(c *gin.Context) {
	if err := views.RenderLogin(c.Writer, views.LoginPage{}); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (h *Handlers) login(c *gin.Context) {
	email := c.PostForm("email")
	if email == "" {
		c.Status(http.StatusBadRequest)
		_ = views.RenderLogin(c.Writer, views.LoginPage{Err: "email requis"})
		return
	}

	sess := cookieSession{c}
	if err := session.StoreUser(sess, session.User{Email: email, Type: "Employee"}); err != nil {
		c.Status(http.StatusInternalServerError)
		_ = views.RenderLogin(c.Writer, views.LoginPage{Err: err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, container.RouteBills)
}

func (h *Handlers) billsPage(c *gin.Context) {
	user, err := sessionUser(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, container.RouteLogin)
		return
	}

	bills := container.NewBills(h.store, h.redirector(c), cookieSession{c})
	formatted, err := bills.FetchAll(c.Request.Context())

	page := views.BillsPage{Email: user.Email, Bills: formatted}
	if err != nil {
		// The message is rendered verbatim in place of the table.
		page.Err = err.Error()
	}
	if renderErr := views.RenderBills(c.Writer, page); renderErr != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (h *Handlers) newBillPage(c *gin.Context) {
	user, err := sessionUser(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, container.RouteLogin)
		return
	}

	page := views.NewBillPage{Email: user.Email, Rejection: c.Query("rejected")}
	if err := views.RenderNewBill(c.Writer, page); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// uploadReceipt handles the file-selection call the form fires as soon as a
// receipt is picked, before the rest of the form is filled in.
func (h *Handlers) uploadReceipt(c *gin.Context) {
	user, err := sessionUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	draft := h.draftFor(user.Email, cookieSession{c}, h.redirector(c))
	if err := draft.HandleChangeFile(fileHeader.Filename, file); err != nil {
		status := http.StatusBadRequest
		var uploadErr *container.UploadError
		switch {
		case errors.As(err, &uploadErr):
			status = http.StatusBadGateway
		case errors.Is(err, container.ErrUploadInFlight):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fileUrl":  draft.FileURL(),
		"fileName": draft.FileName(),
	})
}

func (h *Handlers) submitBill(c *gin.Context) {
	user, err := sessionUser(c)
	if err != nil {
		c.Redirect(http.StatusSeeOther, container.RouteLogin)
		return
	}

	form := container.FormSnapshot{
		Type:       c.PostForm("type"),
		Name:       c.PostForm("name"),
		Amount:     c.PostForm("amount"),
		Date:       c.PostForm("date"),
		Vat:        c.PostForm("vat"),
		Pct:        c.PostForm("pct"),
		Commentary: c.PostForm("commentary"),
	}

	navigated := false
	draft := h.draftFor(user.Email, cookieSession{c}, func(route string) {
		navigated = true
		c.Redirect(http.StatusSeeOther, route)
	})

	if err := draft.HandleSubmit(form); err != nil {
		log.Printf("bill submission by %s failed: %v", user.Email, err)
		if !navigated {
			c.Status(http.StatusBadRequest)
			_ = views.RenderNewBill(c.Writer, views.NewBillPage{Email: user.Email, Rejection: err.Error()})
			return
		}
	}
	if navigated {
		// Navigation away ends the form session.
		h.dropDraft(user.Email)
	}
}

// previewReceipt returns the modal fragment for the receipt URL carried by
// the clicked row's data-bill-url attribute.
func (h *Handlers) previewReceipt(c *gin.Context) {
	bills := container.NewBills(h.store, h.redirector(c), cookieSession{c})
	preview := bills.HandlePreviewReceipt(c.Query("fileUrl"))
	if err := views.RenderPreviewModal(c.Writer, views.PreviewModal{Preview: preview}); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (h *Handlers) serveReceipt(c *gin.Context) {
	content, name, err := h.receipts.Open(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
		return
	}
	defer content.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, content, map[string]string{
		"Content-Disposition": `inline; filename="` + name + `"`,
	})
}

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// reverse proxy terminates origin checks in production
		return true
	},
}

// billFeed streams the session employee's bill events over a websocket so
// the list page refreshes without polling.
func (h *Handlers) billFeed(c *gin.Context) {
	user, err := sessionUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event feed disabled"})
		return
	}

	conn, err := feedUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	type feedEvent struct {
		Action string         `json:"action"`
		Bill   mq.BillMessage `json:"bill"`
	}

	events := make(chan feedEvent, 8)
	for _, action := range []mq.Action{mq.ActionCreate, mq.ActionUpdate} {
		queue := h.events.GetBillMessageQueue(action)
		if queue == nil {
			continue
		}
		stream := make(chan feedEvent, 8)
		mq.SubscribeProcessor(ctx, user.Email, queue, func(msg mq.BillMessage) (feedEvent, bool, error) {
			return feedEvent{Action: action.String(), Bill: msg}, false, nil
		}, stream)
		go func() {
			for ev := range stream {
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Reads only serve to detect the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-events:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
