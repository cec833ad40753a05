package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hazref/hazsearch/internal/core/domain"
)

// pendingResult is the full, uncapped match set stashed behind a
// continuation token until the caller confirms wanting more than the
// default display count.
type pendingResult struct {
	query       domain.Query
	strategy    domain.Strategy
	substances  []domain.SubstanceMatch
	regulations []domain.ClauseMatch
	escalated   bool
	degraded    bool
	degradedSrc []string
	expiresAt   time.Time
}

type continuationStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]pendingResult
	now     func() time.Time
}

func newContinuationStore(ttl time.Duration) *continuationStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &continuationStore{
		ttl:     ttl,
		entries: make(map[string]pendingResult),
		now:     time.Now,
	}
}

func (s *continuationStore) put(result pendingResult) string {
	token := uuid.NewString()
	now := s.now()
	result.expiresAt = now.Add(s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
	s.entries[token] = result
	return token
}

// take consumes a token; a token is valid at most once.
func (s *continuationStore) take(token string) (pendingResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok {
		return pendingResult{}, false
	}
	delete(s.entries, token)
	if s.now().After(entry.expiresAt) {
		return pendingResult{}, false
	}
	return entry, true
}
