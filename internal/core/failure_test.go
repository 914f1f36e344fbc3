package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		err  error
		want Failure
		msg  string
	}{
		{nil, FailureNone, ""},
		{errors.New("Erreur 404"), FailureNotFound, "Erreur 404"},
		{errors.New("Erreur 500"), FailureServer, "Erreur 500"},
		{fmt.Errorf("list bills: %w", errors.New("Erreur 404")), FailureNotFound, "Erreur 404"},
		{errors.New("connection refused"), FailureGeneric, "Erreur"},
	}
	for _, tc := range cases {
		got := ClassifyFailure(tc.err)
		if got != tc.want {
			t.Fatalf("ClassifyFailure(%v) = %v, want %v", tc.err, got, tc.want)
		}
		if got.Message() != tc.msg {
			t.Fatalf("Message() = %q, want %q", got.Message(), tc.msg)
		}
	}
}
