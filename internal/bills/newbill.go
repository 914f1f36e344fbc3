package bills

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"billed/internal/core"
	"billed/internal/log"
	"billed/internal/session"
	"billed/internal/store"
)

var (
	ErrNoAttachment = errors.New("no valid attachment selected")
	ErrInvalidForm  = errors.New("invalid bill form")
)

// Navigator moves the UI to the page identified by route.
type Navigator func(route string)

// AttachmentState tracks the file input of the new bill form.
type AttachmentState int

const (
	AttachmentEmpty AttachmentState = iota
	AttachmentSelected
	AttachmentValid
	AttachmentRejected
)

func (s AttachmentState) String() string {
	switch s {
	case AttachmentEmpty:
		return "empty"
	case AttachmentSelected:
		return "selected"
	case AttachmentValid:
		return "valid"
	case AttachmentRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Form holds the new bill fields as typed by the employee.
type Form struct {
	Type       string
	Name       string
	Date       string
	Amount     string
	VAT        string
	Pct        string
	Commentary string
}

// NewBillService backs the new bill page. It keeps the selected attachment
// between the file selection and the form submission and is not safe for
// concurrent use.
type NewBillService struct {
	store    store.Store
	session  session.Provider
	navigate Navigator
	logger   *log.Logger

	state      AttachmentState
	attachment core.Attachment
	validation string
}

func NewNewBillService(st store.Store, sess session.Provider, navigate Navigator, logger *log.Logger) *NewBillService {
	if logger == nil {
		logger = log.Default(log.ComponentNewBill)
	}
	if navigate == nil {
		navigate = func(string) {}
	}
	return &NewBillService{
		store:    st,
		session:  sess,
		navigate: navigate,
		logger:   logger.WithComponent(log.ComponentNewBill),
	}
}

// SelectAttachment handles a file chosen on the form. Files whose extension
// is not jpg, jpeg or png are rejected: the validation message is set and the
// selection cleared. It reports whether the file was kept.
func (s *NewBillService) SelectAttachment(a core.Attachment) bool {
	s.setState(AttachmentSelected)
	if err := core.ValidateAttachment(a); err != nil {
		s.setState(AttachmentRejected)
		s.logger.Info("Attachment rejected",
			log.FieldFileName, a.Name,
			log.FieldOperation, log.OpValidate)
		s.validation = err.Error()
		s.attachment = core.Attachment{}
		// A rejected value is cleared; the employee must select again.
		s.setState(AttachmentEmpty)
		return false
	}
	s.validation = ""
	s.attachment = a
	s.setState(AttachmentValid)
	return true
}

func (s *NewBillService) setState(to AttachmentState) {
	s.logger.Debug("Attachment state changed",
		"from", s.state.String(),
		"to", to.String())
	s.state = to
}

// ValidationMessage returns the message currently set on the file input.
func (s *NewBillService) ValidationMessage() string {
	return s.validation
}

// State returns the attachment state.
func (s *NewBillService) State() AttachmentState {
	return s.state
}

// Attachment returns the retained file, if any.
func (s *NewBillService) Attachment() (core.Attachment, bool) {
	return s.attachment, s.state == AttachmentValid
}

// Submit uploads the attachment, creates the bill as pending and navigates
// to the bill list. On failure nothing is navigated and the attachment stays
// selected so the employee can retry.
func (s *NewBillService) Submit(ctx context.Context, form Form) (core.Bill, error) {
	if s.state != AttachmentValid {
		return core.Bill{}, ErrNoAttachment
	}

	sess, err := s.session.Current(ctx)
	if err != nil {
		return core.Bill{}, fmt.Errorf("current session: %w", err)
	}

	bill, err := billFromForm(form)
	if err != nil {
		return core.Bill{}, err
	}
	bill.Email = sess.Email
	bill.Status = string(core.StatusPending)

	stored, err := s.store.Upload(ctx, s.attachment)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to upload attachment",
			log.FieldFileName, s.attachment.Name,
			log.FieldError, err)
		return core.Bill{}, fmt.Errorf("upload attachment: %w", err)
	}
	bill.FileURL = stored.FileURL
	bill.FileName = stored.FileName

	created, err := s.store.Create(ctx, bill)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create bill, uploaded attachment is unreferenced",
			log.FieldEmail, sess.Email,
			log.FieldFileKey, stored.Key,
			log.FieldError, err)
		return core.Bill{}, fmt.Errorf("create bill (attachment %s unreferenced): %w", stored.Key, err)
	}

	s.logger.InfoContext(ctx, "Bill submitted",
		log.FieldBillID, created.ID,
		log.FieldEmail, sess.Email,
		log.FieldFileKey, stored.Key,
		log.FieldRoute, core.RouteBills)

	s.attachment = core.Attachment{}
	s.setState(AttachmentEmpty)
	s.navigate(core.RouteBills)
	return created, nil
}

func billFromForm(form Form) (core.Bill, error) {
	date := strings.TrimSpace(form.Date)
	if date == "" {
		return core.Bill{}, fmt.Errorf("%w: date is required", ErrInvalidForm)
	}
	amount, err := core.ParseAmount(form.Amount)
	if err != nil {
		return core.Bill{}, fmt.Errorf("%w: amount %q: %v", ErrInvalidForm, form.Amount, err)
	}
	vat, err := core.ParseOptionalAmount(form.VAT)
	if err != nil {
		return core.Bill{}, fmt.Errorf("%w: vat %q: %v", ErrInvalidForm, form.VAT, err)
	}
	pct := core.DefaultPct
	if v := strings.TrimSpace(form.Pct); v != "" {
		pct, err = strconv.Atoi(v)
		if err != nil || pct < 0 || pct > 100 {
			return core.Bill{}, fmt.Errorf("%w: pct %q", ErrInvalidForm, form.Pct)
		}
	}
	return core.Bill{
		Type:       strings.TrimSpace(form.Type),
		Name:       strings.TrimSpace(form.Name),
		Date:       date,
		Amount:     amount,
		VAT:        vat,
		Pct:        pct,
		Commentary: form.Commentary,
	}, nil
}
