// Package store defines the document-store abstraction used to persist
// tell exchanges and user records.
//
// The interface mirrors the two operations the application actually needs
// from its key-value backend: an unconditional put of a JSON-like document
// into a named collection, and a scan of a collection filtered on a single
// top-level document field. Connection lifecycle, table bootstrapping, and
// durability are the implementation's concern.
//
// Implementations must be safe for concurrent use; a single long-lived
// Store handle is shared by every request.
package store

import (
	"context"
	"encoding/json"
)

// Store is the persistence collaborator for the tell pipeline.
type Store interface {
	// Put marshals doc to JSON and appends it to the named collection.
	// Documents are never updated or deleted through this interface.
	Put(ctx context.Context, collection string, doc any) error

	// Scan returns the raw documents in collection whose top-level field
	// filterKey equals filterValue, ordered oldest first by insertion time.
	Scan(ctx context.Context, collection, filterKey, filterValue string) ([]json.RawMessage, error)

	// Ping verifies the backend is reachable. Used by readiness checks.
	Ping(ctx context.Context) error
}
