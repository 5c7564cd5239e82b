// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestNewTranscriptSeedsSystemTurn(t *testing.T) {
	tr := NewTranscript("be helpful")

	if tr.Len() != 1 {
		t.Fatalf("expected length 1, got %d", tr.Len())
	}
	first := tr.Turns()[0]
	if first.Role != RoleSystem {
		t.Errorf("expected system role, got %q", first.Role)
	}
	if first.Content != "be helpful" {
		t.Errorf("expected system prompt, got %q", first.Content)
	}
}

func TestAppendOrdering(t *testing.T) {
	tr := NewTranscript("sys")
	if !tr.AppendUser("hello") {
		t.Fatal("AppendUser returned false for non-empty input")
	}
	tr.AppendAssistant("hi there")
	if !tr.AppendUser("how are you") {
		t.Fatal("AppendUser returned false for non-empty input")
	}

	turns := tr.Turns()
	wantRoles := []Role{RoleSystem, RoleUser, RoleAssistant, RoleUser}
	if len(turns) != len(wantRoles) {
		t.Fatalf("expected %d turns, got %d", len(wantRoles), len(turns))
	}
	for i, want := range wantRoles {
		if turns[i].Role != want {
			t.Errorf("turn %d: expected role %q, got %q", i, want, turns[i].Role)
		}
	}
}

func TestAppendUserTrimsAndRejectsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain text", "hello", true},
		{"padded text", "  hello  ", true},
		{"empty", "", false},
		{"spaces only", "   ", false},
		{"tabs and newlines", "\t\n  \n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranscript("sys")
			got := tr.AppendUser(tt.input)
			if got != tt.want {
				t.Errorf("AppendUser(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !tt.want && tr.Len() != 1 {
				t.Errorf("rejected input grew transcript to %d turns", tr.Len())
			}
			if tt.want && tr.LastTurn().Content != strings.TrimSpace(tt.input) {
				t.Errorf("stored content %q not trimmed", tr.LastTurn().Content)
			}
		})
	}
}

func TestResetYieldsLengthOne(t *testing.T) {
	tr := NewTranscript("sys")
	tr.AppendUser("a")
	tr.AppendAssistant("b")
	tr.AppendUser("c")

	tr.Reset()

	if tr.Len() != 1 {
		t.Fatalf("expected length 1 after reset, got %d", tr.Len())
	}
	if tr.LastTurn().Role != RoleSystem {
		t.Errorf("expected system turn after reset, got %q", tr.LastTurn().Role)
	}
	if tr.LastTurn().Content != "sys" {
		t.Errorf("system prompt lost across reset: %q", tr.LastTurn().Content)
	}
}

func TestTurnsReturnsCopy(t *testing.T) {
	tr := NewTranscript("sys")
	tr.AppendUser("original")

	turns := tr.Turns()
	turns[1].Content = "mutated"

	if tr.Turns()[1].Content != "original" {
		t.Error("mutating the returned slice changed the transcript")
	}
}

// =============================================================================
// ROLE AND TURN TESTS
// =============================================================================

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant} {
		if !r.Valid() {
			t.Errorf("role %q should be valid", r)
		}
	}
	if Role("moderator").Valid() {
		t.Error("unknown role reported valid")
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		width   int
		want    string
	}{
		{"short single line", "hello", 20, "hello"},
		{"first line only", "first\nsecond", 20, "first"},
		{"truncated", "a very long line of text here", 12, "a very lo..."},
		{"trims padding", "  padded  \nrest", 20, "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := NewTurn(RoleUser, tt.content)
			if got := turn.Preview(tt.width); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.width, got, tt.want)
			}
		})
	}
}
