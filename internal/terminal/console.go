// Package terminal is a line-oriented front-end for the screen controllers.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"booknest/internal/screen"
)

// ErrClosed is returned by Prompt once the input is exhausted.
var ErrClosed = errors.New("terminal: input closed")

// Console reads answers line by line and writes prompts and alerts.
type Console struct {
	mu  sync.Mutex
	in  *bufio.Scanner
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewScanner(in), out: out}
}

// Prompt prints label and returns the next input line without its newline.
func (c *Console) Prompt(label string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", ErrClosed
	}
	return strings.TrimRight(c.in.Text(), "\r"), nil
}

func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) Alert(message string) {
	c.Printf("! %s\n", message)
}

// Confirm defaults to no; closed input also counts as no.
func (c *Console) Confirm(title, message string) bool {
	answer, err := c.Prompt(fmt.Sprintf("%s\n%s [y/N]: ", title, message))
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// Router records the last navigation request. The app loop applies it once
// the current action has returned.
type Router struct {
	mu      sync.Mutex
	pending *navigation
}

type navigation struct {
	route  screen.Route
	params screen.Params
}

func (r *Router) Navigate(route screen.Route, params screen.Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = &navigation{route: route, params: params}
}

func (r *Router) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}

// Take returns and clears the pending navigation.
func (r *Router) Take() (screen.Route, screen.Params, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return "", nil, false
	}
	n := r.pending
	r.pending = nil
	return n.route, n.params, true
}
