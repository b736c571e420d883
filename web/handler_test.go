package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billed/bill"
	dbt "billed/db/db"
	"billed/db/mem"
	"billed/mq/goch"
	"billed/storage"
)

func newTestServer(t *testing.T, store dbt.BillDBWrapper) (*httptest.Server, *http.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	h := NewHandlers(store, storage.NewMemReceiptStore(), goch.NewGoChanBillMessageQueueWrapper())
	setupRoutes(r, h, store)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func login(t *testing.T, srv *httptest.Server, client *http.Client, email string) {
	t.Helper()
	resp, err := client.PostForm(srv.URL+"/login", url.Values{
		"email":    {email},
		"password": {"secret"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestBillsPageRequiresLogin(t *testing.T) {
	srv, _ := newTestServer(t, mem.NewInMemoryBillDBWrapper())

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(srv.URL + "/employee/bills")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestBillsPageListsEmployeeBills(t *testing.T) {
	store := mem.NewInMemoryBillDBWrapper()
	require.NoError(t, store.CreateBill(&bill.Bill{
		ID:     uuid.New(),
		Email:  "employee@test.tld",
		Type:   "Transports",
		Name:   "vol Paris Londres",
		Amount: 348,
		Date:   "2004-04-04",
		Pct:    20,
		Status: bill.StatusPending,
	}))

	srv, client := newTestServer(t, store)
	login(t, srv, client, "employee@test.tld")

	resp, err := client.Get(srv.URL + "/employee/bills")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Mes notes de frais")
	assert.Contains(t, body, "vol Paris Londres")
	assert.Contains(t, body, "4 Avr. 04")
	assert.Contains(t, body, "En attente")
}

// brokenStore fails every list call with a fixed API-style error.
type brokenStore struct {
	dbt.BillDBWrapper
	err error
}

func (s brokenStore) ListBillsByEmail(string) ([]bill.Bill, error) {
	return nil, s.err
}

func (s brokenStore) DataLoaderListBillsByEmail(ctx context.Context, emails []string) (map[string][]bill.Bill, error) {
	return nil, s.err
}

func TestBillsPageRendersStoreErrorVerbatim(t *testing.T) {
	for _, msg := range []string{"Erreur 404", "Erreur 500"} {
		t.Run(msg, func(t *testing.T) {
			store := brokenStore{BillDBWrapper: mem.NewInMemoryBillDBWrapper(), err: errors.New(msg)}
			srv, client := newTestServer(t, store)
			login(t, srv, client, "employee@test.tld")

			resp, err := client.Get(srv.URL + "/employee/bills")
			require.NoError(t, err)
			body := readBody(t, resp)

			assert.Contains(t, body, msg)
		})
	}
}

func TestNewBillPageCarriesFormContract(t *testing.T) {
	srv, client := newTestServer(t, mem.NewInMemoryBillDBWrapper())
	login(t, srv, client, "employee@test.tld")

	resp, err := client.Get(srv.URL + "/employee/bills/new")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `data-testid="form-new-bill"`)
	assert.Contains(t, body, `data-testid="file"`)
}

func uploadFile(t *testing.T, srv *httptest.Server, client *http.Client, fileName string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte("image-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := client.Post(srv.URL+"/employee/bills/new/file", writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	srv, client := newTestServer(t, mem.NewInMemoryBillDBWrapper())
	login(t, srv, client, "employee@test.tld")

	resp := uploadFile(t, srv, client, "bad.pdf")
	body := readBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Only .jpg, .jpeg and .png files are accepted.")
}

func TestUploadAcceptsImageAndCreatesPartialBill(t *testing.T) {
	store := mem.NewInMemoryBillDBWrapper()
	srv, client := newTestServer(t, store)
	login(t, srv, client, "employee@test.tld")

	resp := uploadFile(t, srv, client, "test.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		FileURL  string `json:"fileUrl"`
		FileName string `json:"fileName"`
	}
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &payload))
	assert.Contains(t, payload.FileURL, "/receipts/")
	assert.Equal(t, "test.png", payload.FileName)

	bills, err := store.ListBillsByEmail("employee@test.tld")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, bill.StatusPending, bills[0].Status)
}

func TestSubmitCompletesBillAndRedirects(t *testing.T) {
	store := mem.NewInMemoryBillDBWrapper()
	srv, client := newTestServer(t, store)
	login(t, srv, client, "employee@test.tld")

	readBody(t, uploadFile(t, srv, client, "test.png"))

	form := url.Values{
		"type":       {"Transports"},
		"name":       {"Taxi"},
		"amount":     {"42"},
		"date":       {"2023-01-01"},
		"vat":        {"20"},
		"pct":        {"20"},
		"commentary": {"Course de taxi"},
	}
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := client.PostForm(srv.URL+"/employee/bills/new", form)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/employee/bills", resp.Header.Get("Location"))

	bills, err := store.ListBillsByEmail("employee@test.tld")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, 42.0, bills[0].Amount)
	assert.Equal(t, 20, bills[0].Pct)
	assert.Equal(t, bill.StatusPending, bills[0].Status)
	assert.Equal(t, "test.png", bills[0].FileName)
}

func TestSubmitWithBadAmountRedisplaysForm(t *testing.T) {
	srv, client := newTestServer(t, mem.NewInMemoryBillDBWrapper())
	login(t, srv, client, "employee@test.tld")

	resp, err := client.PostForm(srv.URL+"/employee/bills/new", url.Values{
		"type":   {"Transports"},
		"name":   {"Taxi"},
		"amount": {"beaucoup"},
		"date":   {"2023-01-01"},
	})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, `data-testid="form-new-bill"`)
}

func TestPreviewFragmentRendersReceiptImage(t *testing.T) {
	srv, client := newTestServer(t, mem.NewInMemoryBillDBWrapper())
	login(t, srv, client, "employee@test.tld")

	resp, err := client.Get(srv.URL + "/employee/bills/preview?fileUrl=" + url.QueryEscape("/receipts/abc"))
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `src="/receipts/abc"`)
	assert.Contains(t, body, `width="50%"`)
}

func TestServeReceiptRoundTrip(t *testing.T) {
	srv, client := newTestServer(t, mem.NewInMemoryBillDBWrapper())
	login(t, srv, client, "employee@test.tld")

	resp := uploadFile(t, srv, client, "test.png")
	var payload struct {
		FileURL string `json:"fileUrl"`
	}
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &payload))

	got, err := client.Get(srv.URL + payload.FileURL)
	require.NoError(t, err)
	body := readBody(t, got)

	assert.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, "image-bytes", body)
	assert.Equal(t, "image/png", got.Header.Get("Content-Type"))
}

func TestServeReceiptUnknownKey(t *testing.T) {
	srv, client := newTestServer(t, mem.NewInMemoryBillDBWrapper())

	resp, err := client.Get(srv.URL + "/receipts/" + uuid.New().String())
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv, client := newTestServer(t, mem.NewInMemoryBillDBWrapper())

	resp, err := client.Get(srv.URL + "/health")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "ok")
}
