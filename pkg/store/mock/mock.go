// Package mock provides a test double for the store.Store interface.
//
// Use Store in unit tests to verify which documents the pipeline persists
// and to feed controlled history scans without a live database. Set the
// Err fields to inject failures.
package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tealbot/teal/pkg/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// PutCall records a single invocation of Put.
type PutCall struct {
	// Collection is the collection name passed to Put.
	Collection string
	// Doc is the document passed to Put.
	Doc any
}

// ScanCall records a single invocation of Scan.
type ScanCall struct {
	Collection  string
	FilterKey   string
	FilterValue string
}

// Store is a mock implementation of store.Store.
// Zero values cause methods to succeed and return empty results.
type Store struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// PutErr, if non-nil, is returned by every Put call.
	PutErr error

	// ScanResult is returned by Scan when ScanErr is nil.
	ScanResult []json.RawMessage

	// ScanErr, if non-nil, is returned by every Scan call.
	ScanErr error

	// PingErr, if non-nil, is returned by Ping.
	PingErr error

	// --- Call records (read after test) ---

	// PutCalls records every invocation of Put in order.
	PutCalls []PutCall

	// ScanCalls records every invocation of Scan in order.
	ScanCalls []ScanCall
}

// Put implements store.Store.
func (s *Store) Put(_ context.Context, collection string, doc any) error {
	s.mu.Lock()
	s.PutCalls = append(s.PutCalls, PutCall{Collection: collection, Doc: doc})
	s.mu.Unlock()
	return s.PutErr
}

// Scan implements store.Store.
func (s *Store) Scan(_ context.Context, collection, filterKey, filterValue string) ([]json.RawMessage, error) {
	s.mu.Lock()
	s.ScanCalls = append(s.ScanCalls, ScanCall{Collection: collection, FilterKey: filterKey, FilterValue: filterValue})
	s.mu.Unlock()
	if s.ScanErr != nil {
		return nil, s.ScanErr
	}
	return s.ScanResult, nil
}

// Ping implements store.Store.
func (s *Store) Ping(context.Context) error {
	return s.PingErr
}
