// Package session exposes the signed-in employee to the services.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrNoSession = errors.New("no signed-in user")

// Session is the read-only identity of the current user.
type Session struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

// Provider returns the current session.
type Provider interface {
	Current(ctx context.Context) (Session, error)
}

// Static always returns the same session.
type Static Session

func (s Static) Current(_ context.Context) (Session, error) {
	if strings.TrimSpace(s.Email) == "" {
		return Session{}, ErrNoSession
	}
	return Session(s), nil
}

// File reads the session from the JSON user object written at sign-in,
// e.g. {"type":"Employee","email":"employee@test.tld"}. The file is read on
// every call so a new sign-in is picked up.
type File struct {
	Path string
}

func (f File) Current(_ context.Context) (Session, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("read session file: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session file: %w", err)
	}
	if strings.TrimSpace(s.Email) == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}
