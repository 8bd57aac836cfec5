package book

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrEditNotImplemented is returned by Service.Edit; books cannot be
	// updated after creation.
	ErrEditNotImplemented = errors.New("edit not implemented yet")
	ErrNotFound           = errors.New("book not found")
)

// Book is one inventory item. ID is assigned by the document store.
type Book struct {
	ID          string
	ISBN        string
	Title       string
	Author      string
	Image       string
	Price       decimal.Decimal
	Quantity    int
	Ratings     int
	PublishDate time.Time
	Status      string
	Summary     string
	Type        string
}

// HasImage reports whether the book carries a cover URI.
func (b Book) HasImage() bool {
	return b.Image != ""
}

// ValidationError rejects a draft before any backend call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
