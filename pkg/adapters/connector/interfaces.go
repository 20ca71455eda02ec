// Package connector defines the uniform contract over heterogeneous data
// backends. One SourceConnector implementation exists per backend kind
// (file, relational, document); the rest of the system never branches on
// the kind after construction.
package connector

import (
	"context"

	"github.com/vizquery/vizquery-engine/pkg/schema"
)

// Row is one result record, field name to scalar value.
type Row = map[string]any

// QueryResult holds the rows produced by one execution.
type QueryResult struct {
	Rows    []Row  `json:"data"`
	Message string `json:"message"`
}

// SourceConnector is the single contract every backend implements.
//
// A connector instance owns its handle (network session or loaded
// in-memory table) for the duration of one request and is not shared.
// Connect is safe to call repeatedly: each call either reuses healthy
// state or cleanly replaces it, never leaking a prior handle. Disconnect
// must be called on every exit path; it never fails and swallows close
// errors. Failures are classified into the apperrors taxonomy rather than
// raised as bare driver errors.
type SourceConnector interface {
	// Connect validates the profile's parameters for this backend and
	// establishes a live handle, probing liveness before reporting success.
	Connect(ctx context.Context) error

	// ExecuteQuery runs the query text against the backend. Connects first
	// if Connect has not succeeded yet, propagating its failure.
	ExecuteQuery(ctx context.Context, query string) (*QueryResult, error)

	// DescribeSchema reads the backend's live metadata and returns it
	// normalized. Results are never cached; every call re-reads.
	DescribeSchema(ctx context.Context) (schema.Schema, error)

	// DumpAllData returns every table/collection's rows, capped at limit
	// rows each when limit > 0.
	DumpAllData(ctx context.Context, limit int) (map[string][]Row, error)

	// Disconnect releases the held handle. Never fails.
	Disconnect()
}
