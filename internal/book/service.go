package book

import (
	"context"
	"errors"
	"strings"

	"booknest/internal/platform/openlibrary"
)

// Service provides inventory operations.
type Service struct {
	repo     Repository
	metadata MetadataSource
}

// NewService creates a new book service. metadata may be nil, which turns
// Autofill into a no-op.
func NewService(repo Repository, metadata MetadataSource) *Service {
	return &Service{repo: repo, metadata: metadata}
}

// List returns the whole inventory.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

// Add validates and coerces the draft, then creates the document. A
// *ValidationError means the backend was not called.
func (s *Service) Add(ctx context.Context, d Draft) (string, error) {
	b, err := d.Book()
	if err != nil {
		return "", err
	}
	return s.repo.Create(ctx, b)
}

// Delete removes the book. Deleting a missing id succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Edit is not supported.
func (s *Service) Edit(ctx context.Context, id string) error {
	return ErrEditNotImplemented
}

// ErrNoMetadata is returned by Autofill when the ISBN is unknown upstream.
var ErrNoMetadata = errors.New("no metadata for isbn")

// Autofill fills the draft's empty title, author, cover, publish date and
// summary from the metadata source, keyed by the draft's ISBN. Fields the
// admin already typed are kept.
func (s *Service) Autofill(ctx context.Context, d Draft) (Draft, error) {
	isbn := normalizeISBN(d.Get(KeyISBN))
	if s.metadata == nil || isbn == "" {
		return d, nil
	}
	res, err := s.metadata.GetBooksByISBN(ctx, []string{isbn})
	if err != nil {
		return d, err
	}
	details, ok := res["ISBN:"+isbn]
	if !ok {
		return d, ErrNoMetadata
	}

	out := d.Clone()
	fill := func(key, value string) {
		if strings.TrimSpace(out.Get(key)) == "" && value != "" {
			_ = out.Set(key, value)
		}
	}
	fill(KeyTitle, details.Title)
	fill(KeyAuthor, details.AuthorNames())
	fill(KeyImage, details.Cover.Large)
	if t, err := openlibrary.ParsePublishDate(details.PublishDate); err == nil {
		fill(KeyPublishDate, t.Format("2006-01-02"))
	}
	fill(KeySummary, details.Notes)
	return out, nil
}

func normalizeISBN(raw string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(raw))
}

