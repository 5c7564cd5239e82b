// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// ============================================================================
// TRANSCRIPT
// ============================================================================

// Transcript is the ordered history of a conversation. The system turn
// is always present at index 0; user and assistant turns alternate
// after it in arrival order. Transcript is not safe for concurrent use;
// callers that share one across goroutines must serialize access.
type Transcript struct {
	systemPrompt string
	turns        []Turn
}

// NewTranscript creates a transcript seeded with the system prompt.
func NewTranscript(systemPrompt string) *Transcript {
	t := &Transcript{systemPrompt: systemPrompt}
	t.Reset()
	return t
}

// Reset discards every turn except a fresh system turn. After Reset the
// transcript has length 1.
func (t *Transcript) Reset() {
	t.turns = t.turns[:0]
	t.turns = append(t.turns, NewTurn(RoleSystem, t.systemPrompt))
}

// AppendUser appends a user turn with the trimmed text. Whitespace-only
// input is a no-op and returns false.
func (t *Transcript) AppendUser(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	t.turns = append(t.turns, NewTurn(RoleUser, trimmed))
	return true
}

// AppendAssistant appends an assistant turn verbatim.
func (t *Transcript) AppendAssistant(text string) {
	t.turns = append(t.turns, NewTurn(RoleAssistant, text))
}

// Turns returns a copy of the turn slice. Mutating the copy does not
// affect the transcript.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns including the system turn.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// LastTurn returns the most recent turn.
func (t *Transcript) LastTurn() Turn {
	return t.turns[len(t.turns)-1]
}

// SystemPrompt returns the prompt the transcript was seeded with.
func (t *Transcript) SystemPrompt() string {
	return t.systemPrompt
}
