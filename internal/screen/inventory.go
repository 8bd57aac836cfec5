package screen

import (
	"context"
	"errors"
	"sync"

	"booknest/internal/book"

	"github.com/sirupsen/logrus"
)

const (
	deleteTitle   = "Delete Book"
	deleteMessage = "Are you sure you want to delete this book?"
	editMessage   = "Edit not implemented yet"
	noMetadata    = "No details found for this ISBN."
)

// InventoryView is a snapshot for rendering.
type InventoryView struct {
	Books     []book.Book
	Draft     book.Draft
	ModalOpen bool
	Search    string
}

// Inventory lists books and runs the add/delete flows. Every successful
// mutation is followed by a full re-fetch; concurrent mutations are not
// coordinated and the last re-fetch to finish wins.
type Inventory struct {
	books   *book.Service
	alert   Alerter
	confirm Confirmer
	log     logrus.FieldLogger

	mu        sync.Mutex
	list      []book.Book
	draft     book.Draft
	modalOpen bool
	search    string
}

func NewInventory(books *book.Service, alert Alerter, confirm Confirmer, log logrus.FieldLogger) *Inventory {
	return &Inventory{
		books:   books,
		alert:   alert,
		confirm: confirm,
		log:     log.WithField("screen", "inventory"),
		draft:   book.NewDraft(),
	}
}

func (c *Inventory) Mount(ctx context.Context) {
	c.Refresh(ctx)
}

// Refresh re-fetches the list. On failure the previous list stays.
func (c *Inventory) Refresh(ctx context.Context) {
	books, err := c.books.List(ctx)
	if err != nil {
		c.log.WithError(err).Error("fetch books")
		return
	}
	c.mu.Lock()
	c.list = books
	c.mu.Unlock()
}

func (c *Inventory) View() InventoryView {
	c.mu.Lock()
	defer c.mu.Unlock()
	books := make([]book.Book, len(c.list))
	copy(books, c.list)
	return InventoryView{
		Books:     books,
		Draft:     c.draft.Clone(),
		ModalOpen: c.modalOpen,
		Search:    c.search,
	}
}

func (c *Inventory) OpenModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modalOpen = true
}

// CloseModal hides the form. The draft is kept for the next open.
func (c *Inventory) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modalOpen = false
}

func (c *Inventory) SetField(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Set(key, value)
}

// SetSearch stores the search text. The list is not filtered.
func (c *Inventory) SetSearch(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = q
}

// Save submits the draft. Validation problems are alerted and the backend
// is not called; backend failures are only logged. Either way the modal and
// draft stay as they were.
func (c *Inventory) Save(ctx context.Context) bool {
	c.mu.Lock()
	draft := c.draft.Clone()
	c.mu.Unlock()

	if _, err := c.books.Add(ctx, draft); err != nil {
		var verr *book.ValidationError
		if errors.As(err, &verr) {
			c.alert.Alert(verr.Message)
			return false
		}
		c.log.WithError(err).Error("add book")
		return false
	}

	c.mu.Lock()
	c.draft = book.NewDraft()
	c.modalOpen = false
	c.mu.Unlock()

	c.Refresh(ctx)
	return true
}

// Delete asks for confirmation first; declining makes no backend call.
func (c *Inventory) Delete(ctx context.Context, id string) bool {
	if !c.confirm.Confirm(deleteTitle, deleteMessage) {
		return false
	}
	if err := c.books.Delete(ctx, id); err != nil {
		c.log.WithError(err).WithField("id", id).Error("delete book")
		return false
	}
	c.Refresh(ctx)
	return true
}

func (c *Inventory) Edit(ctx context.Context, id string) {
	if err := c.books.Edit(ctx, id); errors.Is(err, book.ErrEditNotImplemented) {
		c.alert.Alert(editMessage)
	}
}

// Autofill completes the draft from the metadata source by ISBN.
func (c *Inventory) Autofill(ctx context.Context) {
	c.mu.Lock()
	draft := c.draft.Clone()
	c.mu.Unlock()

	filled, err := c.books.Autofill(ctx, draft)
	switch {
	case errors.Is(err, book.ErrNoMetadata):
		c.alert.Alert(noMetadata)
		return
	case err != nil:
		c.log.WithError(err).Warn("autofill")
		return
	}

	c.mu.Lock()
	c.draft = filled
	c.mu.Unlock()
}
