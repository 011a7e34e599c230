package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rolechat/internal/models"
)

// FileStore persists one JSON array of messages per scope under a
// history directory, created lazily. Every append is a full
// read-modify-write of the scope's file; the write lands in a temporary
// file first and is renamed into place so a failure cannot leave a
// half-written record behind.
type FileStore struct {
	dir   string
	locks *scopeLocks
}

// NewFileStore builds a store rooted at dir. The directory itself is
// created on first write.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("history: directory must not be empty")
	}
	return &FileStore{dir: dir, locks: newScopeLocks()}, nil
}

func (s *FileStore) path(scope string) string {
	return filepath.Join(s.dir, SanitizeScope(scope)+".json")
}

// Append adds one message to the end of the scope's record.
func (s *FileStore) Append(ctx context.Context, scope string, msg models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := s.locks.get(SanitizeScope(scope))
	lock.Lock()
	defer lock.Unlock()

	messages, err := s.load(scope)
	if err != nil {
		return err
	}
	messages = append(messages, msg)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("history: create directory: %w", err)
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("history: encode messages: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".history-*")
	if err != nil {
		return fmt.Errorf("history: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("history: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("history: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(scope)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("history: replace record: %w", err)
	}
	return nil
}

// Read returns the full ordered history for the scope. A scope with no
// prior record yields an empty slice.
func (s *FileStore) Read(ctx context.Context, scope string) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lock := s.locks.get(SanitizeScope(scope))
	lock.Lock()
	defer lock.Unlock()
	return s.load(scope)
}

// Clear removes the scope's record entirely. Clearing a scope that was
// never written is not an error.
func (s *FileStore) Clear(ctx context.Context, scope string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := s.locks.get(SanitizeScope(scope))
	lock.Lock()
	defer lock.Unlock()
	if err := os.Remove(s.path(scope)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("history: clear record: %w", err)
	}
	return nil
}

func (s *FileStore) load(scope string) ([]models.Message, error) {
	data, err := os.ReadFile(s.path(scope))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Message{}, nil
		}
		return nil, fmt.Errorf("history: read record: %w", err)
	}
	var messages []models.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("history: decode record: %w", err)
	}
	return messages, nil
}
