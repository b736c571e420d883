package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddBillsStatusDateIndex, downAddBillsStatusDateIndex)
}

func upAddBillsStatusDateIndex(ctx context.Context, tx *sql.Tx) error {
	// The list page filters by employee and orders by date descending.
	_, err := tx.ExecContext(ctx, `CREATE INDEX idx_bills_email_date ON bills(email, date DESC);`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_bills_status ON bills(status);`)
	if err != nil {
		return err
	}

	return nil
}

func downAddBillsStatusDateIndex(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_bills_email_date;`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_bills_status;`)
	if err != nil {
		return err
	}

	return nil
}
