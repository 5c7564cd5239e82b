// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the conversation types shared by the CLI and
// web surfaces: roles, turns and the ordered transcript they form.
package model

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// ============================================================================
// ROLES
// ============================================================================

// Role identifies who produced a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ============================================================================
// TURNS
// ============================================================================

// Turn is a single utterance in a conversation. Turns are immutable
// once created; edits to a conversation happen by appending.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn builds a turn stamped with the current time.
func NewTurn(role Role, content string) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Preview returns the first line of the turn's content, truncated to
// maxWidth display columns. Truncation is width-aware so double-width
// runes never split.
func (t Turn) Preview(maxWidth int) string {
	line := t.Content
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}
	return runewidth.Truncate(line, maxWidth, "...")
}
