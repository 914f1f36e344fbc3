package store

import (
	"context"
	"fmt"
	"strings"

	"billed/internal/core"
)

// Ports of the remote bill store.
type (
	// BillLister returns the raw bill records owned by email.
	BillLister interface {
		List(ctx context.Context, email string) ([]core.Bill, error)
	}

	// BillCreator persists a new bill and returns it with its store-assigned ID.
	BillCreator interface {
		Create(ctx context.Context, b core.Bill) (core.Bill, error)
	}

	// AttachmentUploader persists an attachment and returns where it lives.
	AttachmentUploader interface {
		Upload(ctx context.Context, a core.Attachment) (core.StoredFile, error)
	}

	// AttachmentReader returns the content of an uploaded attachment by the
	// key found in its stored file URL.
	AttachmentReader interface {
		Attachment(ctx context.Context, key string) (core.Attachment, error)
	}

	Store interface {
		BillLister
		BillCreator
		AttachmentUploader
	}
)

// StatusError reports a store failure with an HTTP-like status code. Its
// message carries the "Erreur <code>" text clients classify on.
type StatusError struct {
	Code int
	Op   string
	Err  error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("Erreur %d", e.Code)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.Err }

// NotFound returns a 404 StatusError for op.
func NotFound(op string, err error) error {
	return &StatusError{Code: 404, Op: op, Err: err}
}

// ServerError returns a 500 StatusError for op.
func ServerError(op string, err error) error {
	return &StatusError{Code: 500, Op: op, Err: err}
}

// AttachmentKey extracts the key from a file URL issued by a local store
// ("memory://attachments/<key>", "sqlite://attachments/<key>"). Remote URLs
// have no key.
func AttachmentKey(fileURL string) (string, bool) {
	for _, prefix := range []string{"memory://attachments/", "sqlite://attachments/"} {
		if key, ok := strings.CutPrefix(fileURL, prefix); ok && key != "" {
			return key, true
		}
	}
	return "", false
}
