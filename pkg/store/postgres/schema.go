package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlDocuments = `
CREATE TABLE IF NOT EXISTS teal_documents (
    id          BIGSERIAL    PRIMARY KEY,
    collection  TEXT         NOT NULL,
    doc         JSONB        NOT NULL,
    inserted_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_teal_documents_collection
    ON teal_documents (collection, inserted_at);

CREATE INDEX IF NOT EXISTS idx_teal_documents_doc
    ON teal_documents USING GIN (doc);
`

// Migrate creates the documents table and its indexes if they do not
// already exist. It is idempotent and safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlDocuments); err != nil {
		return fmt.Errorf("migrate documents table: %w", err)
	}
	return nil
}
