package core

import "strings"

// Failure classifies a bill store error for display.
type Failure int

const (
	FailureNone Failure = iota
	FailureGeneric
	FailureNotFound
	FailureServer
)

// ClassifyFailure matches the status codes the bill store embeds in its
// error messages. Anything unrecognized is a generic failure.
func ClassifyFailure(err error) Failure {
	if err == nil {
		return FailureNone
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "404"):
		return FailureNotFound
	case strings.Contains(msg, "500"):
		return FailureServer
	default:
		return FailureGeneric
	}
}

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureNotFound:
		return "not_found"
	case FailureServer:
		return "server_error"
	default:
		return "generic"
	}
}

// Message returns the text shown in place of the bill list.
func (f Failure) Message() string {
	switch f {
	case FailureNone:
		return ""
	case FailureNotFound:
		return "Erreur 404"
	case FailureServer:
		return "Erreur 500"
	default:
		return "Erreur"
	}
}
