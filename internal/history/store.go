package history

import (
	"context"
	"strings"
	"sync"

	"rolechat/internal/models"
)

// GlobalScope is the partition used when authentication is disabled.
const GlobalScope = "global"

// Store is the durable, append-only record of exchanged messages, keyed
// by scope. Reading a scope with no prior history returns an empty
// sequence, never an error.
type Store interface {
	Append(ctx context.Context, scope string, msg models.Message) error
	Read(ctx context.Context, scope string) ([]models.Message, error)
	Clear(ctx context.Context, scope string) error
}

// SanitizeScope reduces an externally supplied scope identifier to a
// safe storage-location name. Path separators and other non-portable
// runes are replaced, and leading dots are stripped so the result can
// never navigate outside the history area.
func SanitizeScope(scope string) string {
	scope = strings.TrimSpace(scope)
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, scope)
	cleaned = strings.TrimLeft(cleaned, ".")
	if cleaned == "" {
		return GlobalScope
	}
	return cleaned
}

// scopeLocks hands out one mutex per scope so read-modify-write cycles
// on the same scope never interleave within this process. Cross-process
// races on the file backend remain possible; single-server deployments
// are the supported arrangement.
type scopeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *scopeLocks) get(scope string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[scope]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[scope] = lock
	}
	return lock
}
