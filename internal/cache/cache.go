// Package cache keeps recent bill lists in memory so repeated page loads do
// not hit a rate-limited remote store.
package cache

import (
	"context"
	"strings"
	"time"

	"billed/internal/core"
	"billed/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store caches List results per email in front of another store. Creating a
// bill invalidates the owner's entry. Errors are never cached.
type Store struct {
	inner store.Store
	lists *LRUCache[[]core.Bill]
}

func NewStore(inner store.Store, maxSize int, ttl time.Duration) *Store {
	return &Store{inner: inner, lists: NewLRUCache[[]core.Bill](maxSize, ttl)}
}

func cacheKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// List implements store.BillLister. Callers get their own copy of the slice.
func (s *Store) List(ctx context.Context, email string) ([]core.Bill, error) {
	key := cacheKey(email)
	if bills, ok := s.lists.Get(key); ok {
		return append([]core.Bill(nil), bills...), nil
	}
	bills, err := s.inner.List(ctx, email)
	if err != nil {
		return nil, err
	}
	s.lists.Set(key, append([]core.Bill(nil), bills...))
	return bills, nil
}

// Create implements store.BillCreator.
func (s *Store) Create(ctx context.Context, b core.Bill) (core.Bill, error) {
	created, err := s.inner.Create(ctx, b)
	if err != nil {
		return core.Bill{}, err
	}
	s.lists.Delete(cacheKey(b.Email))
	s.lists.Delete("")
	return created, nil
}

// Upload implements store.AttachmentUploader.
func (s *Store) Upload(ctx context.Context, a core.Attachment) (core.StoredFile, error) {
	return s.inner.Upload(ctx, a)
}
