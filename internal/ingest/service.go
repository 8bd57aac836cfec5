package ingest

import (
	"context"
	"fmt"
	"time"

	"booknest/internal/book"
	"booknest/internal/platform/openlibrary"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	BooksMax    int
	Subjects    []string
	BatchSize   int
	Concurrency int
	Price       string
	Quantity    int
	Status      string
	Type        string
}

type OpenLibraryClient interface {
	SearchBooks(ctx context.Context, subject string, limit int) (*openlibrary.SearchResponse, error)
	GetBooksByISBN(ctx context.Context, isbns []string) (map[string]openlibrary.BookDetails, error)
}

// Inventory is the part of book.Service the seeder writes through, so seeded
// books pass the same validation as books typed in by an admin.
type Inventory interface {
	List(ctx context.Context) ([]book.Book, error)
	Add(ctx context.Context, d book.Draft) (string, error)
}

// Service tops the inventory up to BooksMax with Open Library titles.
type Service struct {
	olClient  OpenLibraryClient
	inventory Inventory
	cfg       Config
	log       logrus.FieldLogger
}

func NewService(olClient OpenLibraryClient, inventory Inventory, cfg Config, log logrus.FieldLogger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	return &Service{
		olClient:  olClient,
		inventory: inventory,
		cfg:       cfg,
		log:       log.WithField("component", "ingest"),
	}
}

func (s *Service) Run(ctx context.Context) (report Report, err error) {
	report.StartedAt = time.Now()
	defer func() {
		report.FinishedAt = time.Now()
		switch {
		case err != nil:
			report.Status = StatusFailed
			report.Errors = append(report.Errors, err.Error())
		case report.Status == "":
			report.Status = StatusCompleted
		}
	}()

	current, err := s.inventory.List(ctx)
	if err != nil {
		return report, err
	}
	report.Existing = len(current)

	needed := s.cfg.BooksMax - len(current)
	if needed <= 0 {
		s.log.Info("Ingestion targets already met. Skipping.")
		report.Status = StatusSkipped
		return report, nil
	}

	seen := make(map[string]bool, len(current))
	for _, b := range current {
		seen[b.ISBN] = true
	}

	var isbns []string
	for _, subject := range s.cfg.Subjects {
		if len(isbns) >= needed {
			break
		}
		searchLimit := 100
		if needed < 50 {
			searchLimit = needed * 2
		}
		res, err := s.olClient.SearchBooks(ctx, subject, searchLimit)
		if err != nil {
			return report, fmt.Errorf("search failed for %s: %w", subject, err)
		}
		for _, doc := range res.Docs {
			isbn := preferISBN13(doc.ISBN)
			if isbn == "" || seen[isbn] {
				continue
			}
			seen[isbn] = true
			isbns = append(isbns, isbn)
			if len(isbns) >= needed {
				break
			}
		}
	}

	details, err := s.hydrate(ctx, isbns)
	if err != nil {
		return report, err
	}

	for _, isbn := range isbns {
		d, ok := details["ISBN:"+isbn]
		if !ok {
			continue
		}
		report.BooksFetched++
		if _, err := s.inventory.Add(ctx, s.draft(isbn, d)); err != nil {
			s.log.WithError(err).WithField("isbn", isbn).Warn("Failed to add book")
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", isbn, err))
			continue
		}
		report.BooksAdded++
	}
	return report, nil
}

// hydrate fetches details in batches, a few batches at a time.
func (s *Service) hydrate(ctx context.Context, isbns []string) (map[string]openlibrary.BookDetails, error) {
	var batches [][]string
	for start := 0; start < len(isbns); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(isbns))
		batches = append(batches, isbns[start:end])
	}

	results := make([]map[string]openlibrary.BookDetails, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			res, err := s.olClient.GetBooksByISBN(gctx, batch)
			if err != nil {
				return fmt.Errorf("hydrate batch %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]openlibrary.BookDetails)
	for _, res := range results {
		for k, v := range res {
			out[k] = v
		}
	}
	return out, nil
}

func (s *Service) draft(isbn string, d openlibrary.BookDetails) book.Draft {
	draft := book.NewDraft()
	set := func(key, value string) {
		if value != "" {
			_ = draft.Set(key, value)
		}
	}
	set(book.KeyISBN, isbn)
	set(book.KeyTitle, d.Title)
	set(book.KeyAuthor, d.AuthorNames())
	set(book.KeyImage, d.Cover.Large)
	set(book.KeySummary, d.Notes)
	if t, err := openlibrary.ParsePublishDate(d.PublishDate); err == nil {
		set(book.KeyPublishDate, t.Format("2006-01-02"))
	}
	set(book.KeyPrice, s.cfg.Price)
	if s.cfg.Quantity > 0 {
		set(book.KeyQuantity, fmt.Sprint(s.cfg.Quantity))
	}
	set(book.KeyStatus, s.cfg.Status)
	set(book.KeyType, s.cfg.Type)
	return draft
}

// preferISBN13 picks the 13-digit ISBN when Open Library lists both forms.
func preferISBN13(isbns []string) string {
	if len(isbns) == 0 {
		return ""
	}
	for _, i := range isbns {
		if len(i) == 13 {
			return i
		}
	}
	return isbns[0]
}
