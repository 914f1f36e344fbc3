package bills

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billed/internal/core"
)

// --- Mock Store ---
type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context, email string) ([]core.Bill, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.Bill), args.Error(1)
}

func (m *MockStore) Create(ctx context.Context, b core.Bill) (core.Bill, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(core.Bill), args.Error(1)
}

func (m *MockStore) Upload(ctx context.Context, a core.Attachment) (core.StoredFile, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(core.StoredFile), args.Error(1)
}

// --- Mock Store that can read attachments back ---
type MockAttachmentStore struct {
	MockStore
}

func (m *MockAttachmentStore) Attachment(ctx context.Context, key string) (core.Attachment, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(core.Attachment), args.Error(1)
}
