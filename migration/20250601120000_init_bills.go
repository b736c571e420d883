package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitBills, downInitBills)
}

func upInitBills(ctx context.Context, tx *sql.Tx) error {
	// Create bills table
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE bills (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			type VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			amount NUMERIC(10,2) NOT NULL,
			date VARCHAR(10) NOT NULL,
			vat VARCHAR(16),
			pct INTEGER NOT NULL DEFAULT 20,
			commentary TEXT,
			file_url VARCHAR(1024),
			file_name VARCHAR(255),
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_bills_email ON bills(email);`)
	if err != nil {
		return err
	}

	return nil
}

func downInitBills(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS bills;`)
	if err != nil {
		return err
	}

	return nil
}
