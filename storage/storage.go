// Package storage holds uploaded receipt images. The store assigns each
// receipt an opaque key and a URL the views can embed directly; bills keep
// only the URL and the original filename.
package storage

import "io"

// Receipt locates one stored receipt image.
type Receipt struct {
	Key string // opaque storage key
	URL string // servable location, embedded in the bill record
}

// ReceiptStore persists receipt images. Implementations must be safe for
// concurrent use; uploads happen while list pages are being served.
type ReceiptStore interface {
	// Save stores the content under a fresh key and returns its location.
	// fileName is the client's original name, kept for the download headers.
	Save(fileName string, content io.Reader) (Receipt, error)
	// Open returns the stored content and original filename for a key.
	Open(key string) (io.ReadCloser, string, error)
}
