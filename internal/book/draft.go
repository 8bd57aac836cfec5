package book

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Document field keys.
const (
	KeyISBN        = "ISBN"
	KeyAuthor      = "author"
	KeyImage       = "image"
	KeyPrice       = "price"
	KeyPublishDate = "publishDate"
	KeyQuantity    = "quantity"
	KeyRatings     = "ratings"
	KeyStatus      = "status"
	KeySummary     = "summary"
	KeyTitle       = "title"
	KeyType        = "type"
)

// FormKeys is the order the add-book form asks for fields.
var FormKeys = []string{
	KeyISBN, KeyAuthor, KeyImage, KeyPrice, KeyPublishDate, KeyQuantity,
	KeyRatings, KeyStatus, KeySummary, KeyTitle, KeyType,
}

var publishDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006",
}

// Draft is the add-book form: every field as typed text.
type Draft struct {
	values map[string]string
}

func NewDraft() Draft {
	return Draft{values: map[string]string{}}
}

// Set stores a form value. Unknown keys are rejected.
func (d *Draft) Set(key, value string) error {
	if !isFormKey(key) {
		return fmt.Errorf("unknown book field %q", key)
	}
	if d.values == nil {
		d.values = map[string]string{}
	}
	d.values[key] = value
	return nil
}

func (d Draft) Get(key string) string {
	return d.values[key]
}

func (d Draft) IsEmpty() bool {
	for _, v := range d.values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (d Draft) Clone() Draft {
	cp := NewDraft()
	for k, v := range d.values {
		cp.values[k] = v
	}
	return cp
}

// Book coerces the draft. Title and ISBN are required; empty numeric fields
// become zero, malformed ones are rejected.
func (d Draft) Book() (Book, error) {
	b := Book{
		ISBN:    strings.TrimSpace(d.Get(KeyISBN)),
		Title:   strings.TrimSpace(d.Get(KeyTitle)),
		Author:  strings.TrimSpace(d.Get(KeyAuthor)),
		Image:   strings.TrimSpace(d.Get(KeyImage)),
		Status:  strings.TrimSpace(d.Get(KeyStatus)),
		Summary: strings.TrimSpace(d.Get(KeySummary)),
		Type:    strings.TrimSpace(d.Get(KeyType)),
	}
	if b.Title == "" || b.ISBN == "" {
		return Book{}, &ValidationError{Field: KeyTitle, Message: "Title and ISBN are required."}
	}

	var err error
	if b.Price, err = parsePrice(d.Get(KeyPrice)); err != nil {
		return Book{}, err
	}
	if b.Quantity, err = parseCount(KeyQuantity, "Quantity", d.Get(KeyQuantity)); err != nil {
		return Book{}, err
	}
	if b.Ratings, err = parseCount(KeyRatings, "Ratings", d.Get(KeyRatings)); err != nil {
		return Book{}, err
	}
	if b.PublishDate, err = parsePublishDate(d.Get(KeyPublishDate)); err != nil {
		return Book{}, err
	}
	return b, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "₱"))
	if raw == "" {
		return decimal.Zero, nil
	}
	p, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: KeyPrice, Message: "Price must be a number."}
	}
	if p.IsNegative() {
		return decimal.Zero, &ValidationError{Field: KeyPrice, Message: "Price cannot be negative."}
	}
	return p, nil
}

func parseCount(key, label, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: key, Message: label + " must be a whole number."}
	}
	if n < 0 {
		return 0, &ValidationError{Field: key, Message: label + " cannot be negative."}
	}
	return n, nil
}

func parsePublishDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ValidationError{Field: KeyPublishDate, Message: "Publish date must be a date like 2006-01-02."}
}

func isFormKey(key string) bool {
	for _, k := range FormKeys {
		if k == key {
			return true
		}
	}
	return false
}
