package bills

import (
	"context"
	"fmt"

	"billed/internal/core"
	"billed/internal/log"
	"billed/internal/store"
)

// AttachmentView is what the bill list shows when the employee opens a
// bill's receipt.
type AttachmentView struct {
	Bill     core.Bill
	FileURL  string
	FileName string
	// Content is nil when the store only exposes the file by URL.
	Content []byte
}

// ViewAttachment returns the receipt of one of the employee's bills. Bills of
// other employees are reported as not found. When the store can read
// attachments back and the file URL carries a local key, the content is
// loaded as well.
func (s *ListService) ViewAttachment(ctx context.Context, billID string) (AttachmentView, error) {
	sess, err := s.session.Current(ctx)
	if err != nil {
		return AttachmentView{}, fmt.Errorf("current session: %w", err)
	}

	raws, err := s.store.List(ctx, sess.Email)
	if err != nil {
		return AttachmentView{}, fmt.Errorf("view attachment: %w", err)
	}

	var (
		found core.Bill
		ok    bool
	)
	for _, b := range raws {
		if b.ID == billID {
			found, ok = b, true
			break
		}
	}
	if !ok {
		return AttachmentView{}, store.NotFound("view attachment", fmt.Errorf("bill %q", billID))
	}

	bill, _ := Normalize(found)
	view := AttachmentView{Bill: bill, FileURL: found.FileURL, FileName: found.FileName}

	reader, canRead := s.store.(store.AttachmentReader)
	key, local := store.AttachmentKey(found.FileURL)
	if canRead && local {
		a, err := reader.Attachment(ctx, key)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to read attachment",
				log.FieldBillID, billID,
				log.FieldFileKey, key,
				log.FieldError, err)
			return AttachmentView{}, fmt.Errorf("view attachment: %w", err)
		}
		view.Content = a.Content
	}

	s.logger.DebugContext(ctx, "Attachment viewed",
		log.FieldBillID, billID,
		log.FieldFileName, view.FileName,
		"has_content", view.Content != nil)
	return view, nil
}
