package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"booknest/internal/app"
	"booknest/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, b *testutil.Backend, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	svc := &app.Services{Auth: b.Auth, Books: b.Books, Profiles: b.Profiles, Sessions: b.Sessions}
	console := NewConsole(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	require.NoError(t, NewApp(svc, console, b.Logger).Run(context.Background()))
	return out.String()
}

func TestApp_FullSession(t *testing.T) {
	b := testutil.NewBackend(nil)
	out := runScript(t, b,
		// sign up
		"2", "1", "Ada", "Lovelace", "admin", "a@b.com", "password123", "password123", "1990-05-17",
		// log in
		"1", "a@b.com", "password123",
		// add a book: ISBN author image price publishDate quantity ratings status summary title type
		"i", "a",
		"9780441013593", "Frank Herbert", "", "350", "1990-09-01", "4", "5", "available", "Desert planet", "Dune", "Paperback",
		"s",
		// delete it
		"x 1", "y",
		"p",
		"o",
		"q",
	)

	assert.Contains(t, out, "! Account created! Please log in.")
	assert.Contains(t, out, "Welcome to the Dashboard!")
	assert.Contains(t, out, "1. Dune by Frank Herbert")
	assert.Contains(t, out, "₱350.00  qty 4")
	assert.Contains(t, out, "[No Image]")
	assert.Contains(t, out, "Are you sure you want to delete this book? [y/N]: ")
	assert.Contains(t, out, "First name: Ada\nLast name: Lovelace\nRole: admin\nBirthdate: 1990-05-17\n")

	// Logged out: back at the login menu before quitting.
	assert.True(t, strings.HasSuffix(out, "BookNest\n  1) Log in\n  2) Sign up\n  q) Quit\n> "))
	_, signedIn := b.Provider.CurrentUser()
	assert.False(t, signedIn)

	books, err := b.Books.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestApp_ValidationAlerts(t *testing.T) {
	b := testutil.NewBackend(nil)
	out := runScript(t, b,
		"1", "", "",
		"1", "nope", "secret",
		"2", "1", "Ada", "Lovelace", "admin", "a@b.com", "short", "short", "",
		"2",
		"q",
	)

	assert.Contains(t, out, "! Please fill in both email and password.\n")
	assert.Contains(t, out, "! Please enter a valid email address.\n")
	assert.Contains(t, out, "! Password must be at least 8 characters long.\n")
}

func TestApp_AddBookRequiresTitleAndISBN(t *testing.T) {
	b := testutil.NewBackend(nil)
	_, err := b.Auth.Signup(context.Background(), testutil.TestSignup)
	require.NoError(t, err)

	blankForm := []string{"", "", "", "", "", "", "", "", "", "", ""}
	lines := []string{"1", "a@b.com", "password123", "i", "a"}
	lines = append(lines, blankForm...)
	lines = append(lines, "s")
	lines = append(lines, blankForm...)
	lines = append(lines, "c", "e 1", "q")

	out := runScript(t, b, lines...)
	assert.Contains(t, out, "! Title and ISBN are required.\n")
	assert.Contains(t, out, "No book #1\n")
	assert.Contains(t, out, "No books yet.\n")
}

func TestApp_InputEndsQuietly(t *testing.T) {
	b := testutil.NewBackend(nil)
	var out bytes.Buffer
	svc := &app.Services{Auth: b.Auth, Books: b.Books, Profiles: b.Profiles, Sessions: b.Sessions}
	err := NewApp(svc, NewConsole(strings.NewReader(""), &out), b.Logger).Run(context.Background())
	assert.NoError(t, err)
}
