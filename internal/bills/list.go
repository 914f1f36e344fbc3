// Package bills implements the employee bill pages: listing submitted bills
// and submitting a new one.
package bills

import (
	"context"
	"fmt"
	"strings"

	"billed/internal/core"
	"billed/internal/log"
	"billed/internal/session"
	"billed/internal/store"
)

// ListService fetches the current employee's bills for display.
type ListService struct {
	store   store.BillLister
	session session.Provider
	logger  *log.Logger
}

func NewListService(lister store.BillLister, sess session.Provider, logger *log.Logger) *ListService {
	if logger == nil {
		logger = log.Default(log.ComponentBills)
	}
	return &ListService{
		store:   lister,
		session: sess,
		logger:  logger.WithComponent(log.ComponentBills),
	}
}

// FetchBills lists the employee's bills with display dates and status labels,
// most recent first. Records whose date cannot be formatted keep the stored
// value. Store errors are returned with their message intact so callers can
// classify them with core.ClassifyFailure.
func (s *ListService) FetchBills(ctx context.Context) ([]core.Bill, error) {
	sess, err := s.session.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("current session: %w", err)
	}

	raws, err := s.store.List(ctx, sess.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list bills",
			log.FieldEmail, sess.Email,
			log.FieldFailure, core.ClassifyFailure(err).String(),
			log.FieldError, err)
		return nil, fmt.Errorf("list bills: %w", err)
	}

	for _, r := range raws {
		if st := strings.TrimSpace(r.Status); st != "" && !core.Status(strings.ToLower(st)).IsKnown() {
			s.logger.DebugContext(ctx, "Bill status has no label, shown as stored",
				log.FieldBillID, r.ID,
				log.FieldRawStatus, r.Status)
		}
	}

	out, diags := NormalizeAll(raws)
	for _, d := range diags {
		fields := log.NewFields().
			WithBill(d.BillID, sess.Email).
			WithOperation(log.OpNormalize).
			WithError(d.Err)
		fields[log.FieldRawDate] = d.Raw
		s.logger.WarnContext(ctx, "Bill date kept unformatted", fields.ToSlice()...)
	}

	s.logger.DebugContext(ctx, "Bills fetched",
		log.FieldEmail, sess.Email,
		log.FieldCount, len(out),
		log.FieldDiagnostic, len(diags))
	return out, nil
}
