package book

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"booknest/internal/platform/docstore"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Collection holds the inventory.
const Collection = "books"

type DocumentRepo struct {
	store docstore.Store
	log   logrus.FieldLogger
}

// NewDocumentRepo reads and writes books in store. log receives the fields
// List had to drop; nil discards them.
func NewDocumentRepo(store docstore.Store, log logrus.FieldLogger) *DocumentRepo {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &DocumentRepo{store: store, log: log}
}

// List returns every book in backend order. A field that cannot be read is
// logged and left at its zero value; the book is still listed.
func (r *DocumentRepo) List(ctx context.Context) ([]Book, error) {
	docs, err := r.store.List(ctx, Collection)
	if err != nil {
		return nil, err
	}
	books := make([]Book, 0, len(docs))
	for _, doc := range docs {
		b, errs := fromFields(doc)
		for _, fe := range errs {
			r.log.WithFields(logrus.Fields{
				"book":  doc.ID,
				"field": fe.Field,
			}).WithError(fe.Err).Warn("unreadable book field")
		}
		books = append(books, b)
	}
	return books, nil
}

func (r *DocumentRepo) Create(ctx context.Context, b Book) (string, error) {
	return r.store.Create(ctx, Collection, toFields(b))
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, Collection, id)
}

func toFields(b Book) docstore.Fields {
	price, _ := b.Price.Float64()
	var publishDate any
	if !b.PublishDate.IsZero() {
		publishDate = b.PublishDate
	}
	return docstore.Fields{
		KeyISBN:        b.ISBN,
		KeyAuthor:      b.Author,
		KeyImage:       b.Image,
		KeyPrice:       price,
		KeyPublishDate: publishDate,
		KeyQuantity:    int64(b.Quantity),
		KeyRatings:     int64(b.Ratings),
		KeyStatus:      b.Status,
		KeySummary:     b.Summary,
		KeyTitle:       b.Title,
		KeyType:        b.Type,
	}
}

type fieldError struct {
	Field string
	Err   error
}

var (
	errNotFinite  = errors.New("not a finite number")
	errOutOfRange = errors.New("not a whole number in range")
)

// fromFields is lenient: documents written by other clients may carry
// numbers as strings or dates as ISO text, and a blank price is stored as
// NaN.
func fromFields(doc docstore.Document) (Book, []fieldError) {
	f := doc.Fields
	b := Book{
		ID:      doc.ID,
		ISBN:    str(f[KeyISBN]),
		Author:  str(f[KeyAuthor]),
		Image:   str(f[KeyImage]),
		Status:  str(f[KeyStatus]),
		Summary: str(f[KeySummary]),
		Title:   str(f[KeyTitle]),
		Type:    str(f[KeyType]),
	}

	var errs []fieldError
	var err error
	if b.Price, err = decimalField(f[KeyPrice]); err != nil {
		b.Price = decimal.Zero
		errs = append(errs, fieldError{KeyPrice, err})
	}
	if b.Quantity, err = intField(f[KeyQuantity]); err != nil {
		b.Quantity = 0
		errs = append(errs, fieldError{KeyQuantity, err})
	}
	if b.Ratings, err = intField(f[KeyRatings]); err != nil {
		b.Ratings = 0
		errs = append(errs, fieldError{KeyRatings, err})
	}
	if b.PublishDate, err = dateField(f[KeyPublishDate]); err != nil {
		b.PublishDate = time.Time{}
		errs = append(errs, fieldError{KeyPublishDate, err})
	}
	return b, errs
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func decimalField(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, errNotFinite
		}
		return decimal.NewFromFloat(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case string:
		if x == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(x)
	}
	return decimal.Zero, fmt.Errorf("unexpected %T", v)
}

func intField(v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return 0, errOutOfRange
		}
		return int(x), nil
	case float64:
		if math.IsNaN(x) || x < math.MinInt32 || x > math.MaxInt32 {
			return 0, errOutOfRange
		}
		return int(x), nil
	case string:
		if x == "" {
			return 0, nil
		}
		return strconv.Atoi(x)
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

func dateField(v any) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return x, nil
	case string:
		if x == "" {
			return time.Time{}, nil
		}
		return parsePublishDate(x)
	}
	return time.Time{}, fmt.Errorf("unexpected %T", v)
}
