// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Markdown rendering for assistant responses.

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer is the shared glamour renderer for assistant output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(DefaultTerminalWidth),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails.
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown for terminal display.
// Returns the input unchanged when rendering is unavailable.
func renderMarkdown(text string) string {
	if markdownRenderer == nil || !IsStdoutTTY() {
		return text
	}
	rendered, err := markdownRenderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}

// displayResponse prints an assistant response with the name tag.
func displayResponse(text string) {
	fmt.Println(ClippyStyle.Render("📎 Clippy:"))
	fmt.Println(renderMarkdown(text))
}
