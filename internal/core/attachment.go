package core

import (
	"errors"
	"path/filepath"
	"strings"
)

// InvalidFileFormatMessage is shown on the file input when a selection is rejected.
const InvalidFileFormatMessage = "Invalid file format. Please upload a file with extension jpg, jpeg, or png."

var ErrInvalidFileFormat = errors.New(InvalidFileFormatMessage)

// allowedExtensions lists the attachment extensions accepted client-side.
var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// Attachment is a file picked by the employee, held until the bill is submitted.
type Attachment struct {
	Name     string
	MimeType string
	Content  []byte
}

// Extension returns the lower-cased extension of the file name without the dot.
func (a Attachment) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(a.Name), "."))
}

// AllowedExtension reports whether ext (without dot, any case) may be uploaded.
func AllowedExtension(ext string) bool {
	_, ok := allowedExtensions[strings.ToLower(ext)]
	return ok
}

// ValidateAttachment checks the file extension against the allow-list.
func ValidateAttachment(a Attachment) error {
	if !AllowedExtension(a.Extension()) {
		return ErrInvalidFileFormat
	}
	return nil
}
