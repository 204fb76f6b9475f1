package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps every message in one indented JSON array. A missing or
// unreadable file is treated as an empty inbox.
type FileStore struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewFileStore returns a store backed by path. The parent directory is
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: filepath.Clean(path), now: time.Now}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) read() []Message {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger().Warn("inbox: read messages, starting empty", "path", s.path, "error", err)
		}
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		logger().Warn("inbox: corrupt messages file, starting empty", "path", s.path, "error", err)
		return nil
	}
	return msgs
}

// write replaces the file atomically through a temp file in the same
// directory.
func (s *FileStore) write(msgs []Message) error {
	if msgs == nil {
		msgs = []Message{}
	}
	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".messages-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write messages: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace messages file: %w", err)
	}
	return nil
}

// Submit appends a message.
func (s *FileStore) Submit(ctx context.Context, sub Submission) (Message, error) {
	if err := sub.Validate(); err != nil {
		return Message{}, err
	}
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := newMessage(sub, s.now())
	msgs := append(s.read(), m)
	if err := s.write(msgs); err != nil {
		return Message{}, err
	}
	return m, nil
}

// List returns every message, most recent first.
func (s *FileStore) List(ctx context.Context) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.read()), nil
}

// MarkRead flags the message with id as read.
func (s *FileStore) MarkRead(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.read()
	for i := range msgs {
		if msgs[i].ID == id {
			if msgs[i].Read {
				return nil
			}
			msgs[i].Read = true
			return s.write(msgs)
		}
	}
	return ErrNotFound
}

// Close is a no-op; every call reopens the file.
func (s *FileStore) Close() error { return nil }
