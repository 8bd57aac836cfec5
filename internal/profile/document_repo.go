package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booknest/internal/platform/docstore"
)

// Collection holds one document per admin, id = UID.
const Collection = "users"

type DocumentRepo struct {
	store docstore.Store
}

func NewDocumentRepo(store docstore.Store) *DocumentRepo {
	return &DocumentRepo{store: store}
}

func (r *DocumentRepo) Get(ctx context.Context, uid string) (Profile, error) {
	doc, err := r.store.Get(ctx, Collection, uid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return fromFields(doc)
}

func (r *DocumentRepo) Put(ctx context.Context, p Profile) error {
	return r.store.Put(ctx, Collection, p.UID, toFields(p))
}

func toFields(p Profile) docstore.Fields {
	return docstore.Fields{
		"uid":       p.UID,
		"firstName": p.FirstName,
		"lastName":  p.LastName,
		"role":      p.Role,
		"birthdate": FormatISO(p.Birthdate),
		"createdAt": FormatISO(p.CreatedAt),
	}
}

func fromFields(doc docstore.Document) (Profile, error) {
	p := Profile{
		UID:       stringField(doc.Fields, "uid"),
		FirstName: stringField(doc.Fields, "firstName"),
		LastName:  stringField(doc.Fields, "lastName"),
		Role:      stringField(doc.Fields, "role"),
	}
	if p.UID == "" {
		p.UID = doc.ID
	}
	var err error
	if p.Birthdate, err = timeField(doc.Fields, "birthdate"); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", doc.ID, err)
	}
	if p.CreatedAt, err = timeField(doc.Fields, "createdAt"); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", doc.ID, err)
	}
	return p, nil
}

func stringField(f docstore.Fields, key string) string {
	s, _ := f[key].(string)
	return s
}

// timeField accepts both the ISO string written at signup and a native
// timestamp value.
func timeField(f docstore.Fields, key string) (time.Time, error) {
	switch v := f[key].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("field %s: %w", key, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("field %s: unexpected %T", key, v)
	}
}
