package adapters

import (
	"context"
	"errors"
	"fmt"

	"billed/internal/core"
	"billed/internal/log"
	"billed/internal/store"
)

// Publisher announces bills persisted locally.
type Publisher interface {
	PublishBillCreated(ctx context.Context, id, email string) error
	Close() error
}

// LocalStore is the SQLite side of the adapter.
type LocalStore interface {
	store.Store
	store.AttachmentReader
	Close() error
}

// SQLiteAdapter serves the bill store from SQLite and publishes a
// bill-created message for every new bill so the worker can mirror it.
type SQLiteAdapter struct {
	local     LocalStore
	publisher Publisher
	logger    *log.Logger
}

var (
	_ store.Store            = (*SQLiteAdapter)(nil)
	_ store.AttachmentReader = (*SQLiteAdapter)(nil)
)

// NewSQLiteAdapter builds the adapter; publisher may be nil when AMQP is not configured.
func NewSQLiteAdapter(local LocalStore, publisher Publisher, logger *log.Logger) *SQLiteAdapter {
	if logger == nil {
		logger = log.Default(log.ComponentStorage)
	}
	return &SQLiteAdapter{
		local:     local,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentStorage),
	}
}

// List implements store.BillLister
func (a *SQLiteAdapter) List(ctx context.Context, email string) ([]core.Bill, error) {
	return a.local.List(ctx, email)
}

// Upload implements store.AttachmentUploader
func (a *SQLiteAdapter) Upload(ctx context.Context, att core.Attachment) (core.StoredFile, error) {
	return a.local.Upload(ctx, att)
}

// Attachment implements store.AttachmentReader
func (a *SQLiteAdapter) Attachment(ctx context.Context, key string) (core.Attachment, error) {
	return a.local.Attachment(ctx, key)
}

// Create saves the bill locally, then publishes the sync message. A publish
// failure is logged only: the bill is saved and the worker sweep catches up.
func (a *SQLiteAdapter) Create(ctx context.Context, b core.Bill) (core.Bill, error) {
	created, err := a.local.Create(ctx, b)
	if err != nil {
		return core.Bill{}, err
	}

	if a.publisher == nil {
		a.logger.WarnContext(ctx, "AMQP publisher not available, skipping bill created message",
			log.FieldBillID, created.ID)
		return created, nil
	}
	if err := a.publisher.PublishBillCreated(ctx, created.ID, created.Email); err != nil {
		a.logger.ErrorContext(ctx, "Failed to publish bill created message",
			log.FieldBillID, created.ID,
			log.FieldError, err)
	}
	return created, nil
}

// Close closes both storage and publisher
func (a *SQLiteAdapter) Close() error {
	var errs []error
	if a.local != nil {
		if err := a.local.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
