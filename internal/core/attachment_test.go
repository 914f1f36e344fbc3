package core

import (
	"errors"
	"testing"
)

func TestValidateAttachment(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"test.png", true},
		{"test.jpg", true},
		{"test.jpeg", true},
		{"TEST.PNG", true},
		{"photo.JpEg", true},
		{"archive.tar.png", true},
		{"test-invalid-extension.gif", false},
		{"doc.pdf", false},
		{"png", false},
		{"noextension", false},
		{"image.png.exe", false},
	}
	for _, tc := range cases {
		err := ValidateAttachment(Attachment{Name: tc.name})
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidFileFormat) {
			t.Fatalf("%q expected ErrInvalidFileFormat, got %v", tc.name, err)
		}
	}
}

func TestInvalidFileFormatMessage(t *testing.T) {
	want := "Invalid file format. Please upload a file with extension jpg, jpeg, or png."
	if ErrInvalidFileFormat.Error() != want {
		t.Fatalf("unexpected message %q", ErrInvalidFileFormat.Error())
	}
}

func TestAttachmentExtension(t *testing.T) {
	if got := (Attachment{Name: "Receipt.JPG"}).Extension(); got != "jpg" {
		t.Fatalf("got %q", got)
	}
	if got := (Attachment{Name: "receipt"}).Extension(); got != "" {
		t.Fatalf("got %q", got)
	}
}
