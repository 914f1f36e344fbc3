package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// DefaultPct is the VAT percentage applied when the form leaves it blank.
const DefaultPct = 20

// UnknownStatusLabel is shown for records stored without any status.
const UnknownStatusLabel = "Inconnu"

// RouteBills is the employee bill list page.
const RouteBills = "#employee/bills"

type (
	Status string

	// Bill is one expense submission as exchanged with the bill store.
	// Date and Status hold the raw stored values until the list service
	// replaces them with their display forms.
	Bill struct {
		ID         string              `json:"id"`
		Email      string              `json:"email"`
		Type       string              `json:"type"`
		Name       string              `json:"name"`
		Amount     decimal.Decimal     `json:"amount"`
		Date       string              `json:"date"`
		VAT        decimal.NullDecimal `json:"vat"`
		Pct        int                 `json:"pct"`
		Commentary string              `json:"commentary"`
		FileURL    string              `json:"fileUrl"`
		FileName   string              `json:"fileName"`
		Status     string              `json:"status"`
	}

	// StoredFile references an attachment persisted by the store.
	StoredFile struct {
		FileURL  string
		FileName string
		Key      string
	}
)

// statusLabels maps raw statuses to the labels shown to employees.
var statusLabels = map[Status]string{
	StatusPending:  "En attente",
	StatusAccepted: "Accepté",
	StatusRefused:  "Refused",
}

var (
	ErrEmptyEmail    = errors.New("empty email")
	ErrEmptyDate     = errors.New("empty date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidPct    = errors.New("invalid vat percentage")
	ErrMissingFile   = errors.New("missing attachment reference")
)

// StatusLabel returns the display label of a raw status. Unrecognized values
// are returned unchanged; an empty status yields UnknownStatusLabel.
func StatusLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UnknownStatusLabel
	}
	if label, ok := statusLabels[Status(strings.ToLower(raw))]; ok {
		return label
	}
	return raw
}

// IsKnown reports whether s is one of the statuses with a display label.
func (s Status) IsKnown() bool {
	_, ok := statusLabels[s]
	return ok
}

// Validate checks a bill before it is handed to the store for creation.
func (b Bill) Validate() error {
	if strings.TrimSpace(b.Email) == "" {
		return ErrEmptyEmail
	}
	if strings.TrimSpace(b.Date) == "" {
		return ErrEmptyDate
	}
	if b.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if b.VAT.Valid && b.VAT.Decimal.IsNegative() {
		return ErrInvalidAmount
	}
	if b.Pct < 0 || b.Pct > 100 {
		return ErrInvalidPct
	}
	if strings.TrimSpace(b.FileURL) == "" {
		return ErrMissingFile
	}
	return nil
}
