package book

import (
	"context"

	"booknest/internal/platform/openlibrary"
)

// Repository defines the contract for book data storage.
type Repository interface {
	List(ctx context.Context) ([]Book, error)
	Create(ctx context.Context, b Book) (string, error)
	Delete(ctx context.Context, id string) error
}

// MetadataSource looks books up by ISBN for form autofill.
type MetadataSource interface {
	GetBooksByISBN(ctx context.Context, isbns []string) (map[string]openlibrary.BookDetails, error)
}
