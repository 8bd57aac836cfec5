package screen_test

import (
	"context"
	"errors"
	"testing"

	"booknest/internal/platform/docstore"
	"booknest/internal/platform/docstore/mocks"
	"booknest/internal/profile"
	"booknest/internal/screen"
	"booknest/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Loads(t *testing.T) {
	ctx := context.Background()
	b := testutil.NewBackend(nil)
	uid, err := b.Auth.Signup(ctx, testutil.TestSignup)
	require.NoError(t, err)

	p := screen.NewProfile(b.Profiles, uid, b.Logger)
	assert.True(t, p.View().Loading)

	p.Mount(ctx)
	v := p.View()
	assert.False(t, v.Loading)
	require.True(t, v.Found)
	assert.Equal(t, "Ada", v.Profile.FirstName)
	assert.Equal(t, "admin", v.Profile.Role)
}

func TestProfile_MissingDocument(t *testing.T) {
	b := testutil.NewBackend(nil)
	p := screen.NewProfile(b.Profiles, "ghost", b.Logger)
	p.Mount(context.Background())

	v := p.View()
	assert.False(t, v.Loading)
	assert.False(t, v.Found)
	assert.Equal(t, []string{"No user document found"}, b.Messages(logrus.WarnLevel))
}

func TestProfile_FetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any(), profile.Collection, "u1").Return(docstore.Document{}, errors.New("offline"))

	b := testutil.NewBackend(store)
	p := screen.NewProfile(b.Profiles, "u1", b.Logger)
	p.Mount(context.Background())

	assert.False(t, p.View().Loading)
	assert.False(t, p.View().Found)
	assert.Contains(t, b.Messages(logrus.ErrorLevel), "fetch profile")
}

func TestProfile_NoUID(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	b := testutil.NewBackend(store)
	p := screen.NewProfile(b.Profiles, "", b.Logger)
	p.Mount(context.Background())

	v := p.View()
	assert.False(t, v.Loading)
	assert.False(t, v.Found)
}
