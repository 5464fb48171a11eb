// Package views holds the state of the reports and demandas screens. Each
// view keeps an explicit state struct, changes it only through its methods
// and reloads the full collection from the API after every mutation.
package views

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/localnerve/ascom-demandas/internal/client"
)

// ErrValidation is wrapped by every form error raised before a request is
// sent.
var ErrValidation = errors.New("validation failed")

// ValidationError carries the message shown to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// Notifier shows short feedback messages.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Clipboard copies text, reporting whether the copy worked.
type Clipboard interface {
	Copy(text string) bool
}

// Downloader hands a fetched file to the user.
type Downloader interface {
	Save(d *client.Download) error
}

// Confirmer asks the user a yes/no question.
type Confirmer func(prompt string) bool

// Env is what every view needs from its surroundings. Nil fields fall back
// to no-ops, and Confirm defaults to yes.
type Env struct {
	Notifier  Notifier
	Clipboard Clipboard
	Download  Downloader
	Confirm   Confirmer
	Now       func() time.Time
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

type nopClipboard struct{}

func (nopClipboard) Copy(string) bool { return false }

func (e Env) withDefaults() Env {
	if e.Notifier == nil {
		e.Notifier = nopNotifier{}
	}
	if e.Clipboard == nil {
		e.Clipboard = nopClipboard{}
	}
	if e.Confirm == nil {
		e.Confirm = func(string) bool { return true }
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

func (e Env) save(d *client.Download) error {
	if e.Download == nil {
		return errors.New("no downloader configured")
	}
	return e.Download.Save(d)
}

// generations tags list requests so only the newest response is applied.
type generations struct {
	latest atomic.Uint64
}

func (g *generations) next() uint64 {
	return g.latest.Add(1)
}

func (g *generations) current(gen uint64) bool {
	return g.latest.Load() == gen
}

// guarded pairs a state value with its lock.
type guarded[T any] struct {
	mu    sync.Mutex
	state T
}

func (g *guarded[T]) update(fn func(*T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.state)
}

func (g *guarded[T]) get() T {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
