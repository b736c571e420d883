package db

import (
	"context"

	"github.com/vikstrous/dataloadgen"

	"billed/bill"
)

type dataLoaderKey string

const (
	// DataLoaderKeyBillData is the request-context key under which the web
	// middleware stores a *BillDataLoader.
	DataLoaderKeyBillData dataLoaderKey = "bill_data_loader"
)

// BillDataLoader batches and caches per-request bill lookups keyed by
// employee email, so several consumers inside one request (list page,
// event feed) share a single store round trip.
type BillDataLoader struct {
	ListByEmail *dataloadgen.Loader[string, []bill.Bill]
}

func NewBillDataLoader(dbWrapper BillDBWrapper) *BillDataLoader {
	return &BillDataLoader{
		ListByEmail: dataloadgen.NewMappedLoader(dbWrapper.DataLoaderListBillsByEmail),
	}
}

// ContextWithLoader attaches a per-request loader to the context.
func ContextWithLoader(ctx context.Context, loader *BillDataLoader) context.Context {
	return context.WithValue(ctx, DataLoaderKeyBillData, loader)
}

// LoaderFromContext retrieves the loader installed by the web middleware.
func LoaderFromContext(ctx context.Context) (*BillDataLoader, bool) {
	loader, ok := ctx.Value(DataLoaderKeyBillData).(*BillDataLoader)
	return loader, ok
}
