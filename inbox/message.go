// Package inbox stores contact-form messages and checks the admin
// credential that guards reading them.
package inbox

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMissingFields is returned when a submission lacks a name, email or
	// message body.
	ErrMissingFields = errors.New("inbox: missing required fields")
	// ErrNotFound is returned for an unknown message ID.
	ErrNotFound = errors.New("inbox: message not found")
)

// Message is one stored contact-form submission.
type Message struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Body       string    `json:"message"`
	ReceivedAt time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// Submission is the client-provided part of a Message. Timestamp is
// optional; when empty or unparseable the server time is used.
type Submission struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Body      string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Validate returns ErrMissingFields when any required field is blank.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Name) == "" ||
		strings.TrimSpace(s.Email) == "" ||
		strings.TrimSpace(s.Body) == "" {
		return ErrMissingFields
	}
	return nil
}

// Store persists messages. Implementations are safe for concurrent use.
type Store interface {
	// Submit validates and appends a message.
	Submit(ctx context.Context, sub Submission) (Message, error)
	// List returns every message, most recent first.
	List(ctx context.Context) ([]Message, error)
	// MarkRead flags a message as read. Unknown IDs return ErrNotFound.
	MarkRead(ctx context.Context, id string) error
	Close() error
}

// newMessage builds an unread Message from a validated submission.
func newMessage(sub Submission, now time.Time) Message {
	received := now.UTC()
	if sub.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339Nano, sub.Timestamp); err == nil {
			received = t.UTC()
		}
	}
	return Message{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(sub.Name),
		Email:      strings.TrimSpace(sub.Email),
		Body:       sub.Body,
		ReceivedAt: received,
	}
}

// newestFirst orders messages stored oldest first by descending time;
// equal times keep the later-stored message first.
func newestFirst(stored []Message) []Message {
	out := make([]Message, len(stored))
	for i, m := range stored {
		out[len(stored)-1-i] = m
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReceivedAt.After(out[j].ReceivedAt)
	})
	return out
}

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used by the package. Passing nil restores
// slog.Default().
func SetLogger(l *slog.Logger) { pkgLogger.Store(l) }

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
