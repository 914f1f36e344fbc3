package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"billed/internal/core"
	"billed/internal/store"
)

// Operations that can be made to fail with FailNext.
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpload = "upload"
)

var (
	_ store.Store            = (*Store)(nil)
	_ store.AttachmentReader = (*Store)(nil)
)

type Store struct {
	mu          sync.Mutex
	bills       []core.Bill
	attachments map[string]core.Attachment
	failures    map[string]error
}

func New(seed []core.Bill) *Store {
	return &Store{
		bills:       append([]core.Bill(nil), seed...),
		attachments: map[string]core.Attachment{},
		failures:    map[string]error{},
	}
}

// NewFromFiles seeds the store from <base>/bills.json when present.
func NewFromFiles(base string) (*Store, error) {
	data, err := os.ReadFile(filepath.Join(base, "bills.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("read seed bills: %w", err)
	}
	var seed []core.Bill
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed bills: %w", err)
	}
	return New(seed), nil
}

// FailNext makes the next call of op return err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) takeFailure(op string) error {
	err := s.failures[op]
	delete(s.failures, op)
	return err
}

// List returns the bills of email, or every bill when email is empty.
func (s *Store) List(_ context.Context, email string) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(OpList); err != nil {
		return nil, err
	}
	out := make([]core.Bill, 0, len(s.bills))
	for _, b := range s.bills {
		if email == "" || strings.EqualFold(b.Email, email) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Create stores the bill under a fresh ID.
func (s *Store) Create(_ context.Context, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(OpCreate); err != nil {
		return core.Bill{}, err
	}
	b.ID = uuid.NewString()
	s.bills = append(s.bills, b)
	return b, nil
}

// Upload keeps the attachment content in memory.
func (s *Store) Upload(_ context.Context, a core.Attachment) (core.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(OpUpload); err != nil {
		return core.StoredFile{}, err
	}
	key := uuid.NewString()
	s.attachments[key] = a
	return core.StoredFile{
		FileURL:  "memory://attachments/" + key,
		FileName: a.Name,
		Key:      key,
	}, nil
}

// Attachment implements store.AttachmentReader.
func (s *Store) Attachment(_ context.Context, key string) (core.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attachments[key]
	if !ok {
		return core.Attachment{}, store.NotFound("get attachment", nil)
	}
	return a, nil
}
