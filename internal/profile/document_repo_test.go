package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"booknest/internal/platform/docstore"
	"booknest/internal/platform/docstore/mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepo(docstore.NewMemoryStore())

	p := Profile{
		UID:       "u1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      "admin",
		Birthdate: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, 3, 1, 9, 30, 15, 123000000, time.UTC),
	}
	require.NoError(t, repo.Put(ctx, p))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, p.FirstName, got.FirstName)
	assert.Equal(t, p.Role, got.Role)
	assert.True(t, p.Birthdate.Equal(got.Birthdate))
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestDocumentRepo_WritesISOStrings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Put(gomock.Any(), "users", "u1", docstore.Fields{
		"uid":       "u1",
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"role":      "admin",
		"birthdate": "1990-05-17T00:00:00.000Z",
		"createdAt": "2024-03-01T09:30:15.123Z",
	}).Return(nil)

	err := NewDocumentRepo(store).Put(context.Background(), Profile{
		UID:       "u1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      "admin",
		Birthdate: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, 3, 1, 9, 30, 15, 123456789, time.UTC),
	})
	assert.NoError(t, err)
}

func TestDocumentRepo_Get(t *testing.T) {
	tests := []struct {
		name    string
		doc     docstore.Document
		err     error
		wantErr error
		check   func(t *testing.T, p Profile)
	}{
		{
			name:    "missing document",
			err:     docstore.ErrNotFound,
			wantErr: ErrNotFound,
		},
		{
			name: "native timestamp and missing uid field",
			doc: docstore.Document{ID: "u2", Fields: docstore.Fields{
				"firstName": "Grace",
				"createdAt": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			}},
			check: func(t *testing.T, p Profile) {
				assert.Equal(t, "u2", p.UID)
				assert.Equal(t, "Grace", p.FirstName)
				assert.True(t, p.Birthdate.IsZero())
				assert.Equal(t, 2024, p.CreatedAt.Year())
			},
		},
		{
			name: "unparseable birthdate",
			doc: docstore.Document{ID: "u3", Fields: docstore.Fields{
				"birthdate": "yesterday",
			}},
			wantErr: errors.New("any"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mocks.NewMockStore(ctrl)
			store.EXPECT().Get(gomock.Any(), "users", gomock.Any()).Return(tt.doc, tt.err)

			p, err := NewDocumentRepo(store).Get(context.Background(), "whoever")
			switch {
			case tt.wantErr == ErrNotFound:
				assert.ErrorIs(t, err, ErrNotFound)
			case tt.wantErr != nil:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				tt.check(t, p)
			}
		})
	}
}

func TestFormatISO(t *testing.T) {
	assert.Equal(t, "", FormatISO(time.Time{}))
	loc := time.FixedZone("PHT", 8*60*60)
	assert.Equal(t, "2024-03-01T16:00:00.000Z", FormatISO(time.Date(2024, 3, 2, 0, 0, 0, 0, loc)))
}
