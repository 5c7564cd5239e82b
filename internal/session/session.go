// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns conversation lifecycle: one Session per
// conversation, a Manager that keys sessions for the web surface, and
// the Gateway port the sessions talk through.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/JoranBergfeld/BouncingClippy/internal/model"
)

// ErrEmptyMessage indicates the submitted text was empty after
// trimming. The transcript is left untouched.
var ErrEmptyMessage = errors.New("empty message")

// Gateway produces an assistant reply for a transcript. The foundry
// client satisfies this; tests substitute fakes.
type Gateway interface {
	Complete(ctx context.Context, turns []model.Turn) (string, error)
}

// =============================================================================
// SESSION
// =============================================================================

// Session binds an identifier to a transcript and serializes exchanges
// against it. A second Send on the same session blocks until the first
// completes, so the transcript only ever alternates user/assistant.
type Session struct {
	id string

	mu         sync.Mutex
	transcript *model.Transcript
}

// New creates a session seeded with the system prompt.
func New(id, systemPrompt string) *Session {
	return &Session{
		id:         id,
		transcript: model.NewTranscript(systemPrompt),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Send records text as a user turn, asks the gateway for a reply, and
// records the reply as an assistant turn. On gateway failure the user
// turn stays appended and no assistant turn is added, so a retry still
// carries full context. Empty input returns ErrEmptyMessage without
// touching the transcript.
func (s *Session) Send(ctx context.Context, gw Gateway, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.transcript.AppendUser(text) {
		return "", ErrEmptyMessage
	}

	reply, err := gw.Complete(ctx, s.transcript.Turns())
	if err != nil {
		return "", err
	}

	s.transcript.AppendAssistant(reply)
	return reply, nil
}

// Clear resets the transcript to just the system turn. Clearing an
// already-fresh session is a harmless no-op.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.Reset()
}

// Turns returns a copy of the session's transcript.
func (s *Session) Turns() []model.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Turns()
}

// Len returns the transcript length including the system turn.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Len()
}
