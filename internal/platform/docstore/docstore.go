// Package docstore is the client side of a schemaless document database:
// named collections of documents, each a map of typed field values keyed by a
// backend-assigned or caller-chosen identifier.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrUnsupportedValue is returned when a field value has no wire representation.
var ErrUnsupportedValue = errors.New("unsupported field value")

// Fields holds the field values of a document.
//
// Supported value types are string, bool, int/int32/int64, float32/float64,
// time.Time, nil, []byte, nested maps and slices of those. Values read back from
// a Store are normalised to string, bool, int64, float64, time.Time, nil,
// []byte, map[string]any and []any.
type Fields map[string]any

// Document is one record of a collection.
type Document struct {
	ID     string
	Fields Fields
}

// Store is the document-database contract the client depends on.
type Store interface {
	// List returns every document of the collection in backend order.
	List(ctx context.Context, collection string) ([]Document, error)
	// Get returns a single document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create stores a new document and returns the identifier assigned to it.
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// Put creates or replaces the document with the given identifier.
	Put(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
}
