// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestChatCLIHistoryUsesConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chat_history")

	c := NewChatCLI(path)
	defer c.Close()
	c.line.AppendHistory("hello clippy")
	c.SaveHistory()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("history not written to configured path: %v", err)
	}
	if !strings.Contains(string(data), "hello clippy") {
		t.Errorf("history file missing entry: %q", data)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("history file permissions = %o, want 0600", perm)
		}
	}

	// A fresh instance reads the same file back.
	c2 := NewChatCLI(path)
	defer c2.Close()
	c2.LoadHistory()
	c2.SaveHistory()
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello clippy") {
		t.Error("history entry lost across load/save cycle")
	}
}

func TestChatCLIEmptyHistoryPathDisablesPersistence(t *testing.T) {
	c := NewChatCLI("")
	defer c.Close()
	c.line.AppendHistory("ephemeral")

	// Both must be silent no-ops.
	c.LoadHistory()
	c.SaveHistory()
}
