// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to Markdown files.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/JoranBergfeld/BouncingClippy/internal/model"
	"github.com/JoranBergfeld/BouncingClippy/internal/util"
)

// =============================================================================
// MARKDOWN EXPORT
// =============================================================================

// roleLabels maps roles to their display headings.
var roleLabels = map[model.Role]string{
	model.RoleSystem:    "⚙️ System",
	model.RoleUser:      "👤 You",
	model.RoleAssistant: "📎 Clippy",
}

// Markdown renders a transcript as a Markdown document with YAML
// frontmatter.
func Markdown(title string, turns []model.Turn) ([]byte, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("transcript has no turns")
	}

	var sb strings.Builder

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(title)))
	sb.WriteString(fmt.Sprintf("turns: %d\n", len(turns)))
	sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
	sb.WriteString("generator: clippy\n")
	sb.WriteString("---\n\n")

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	for i, turn := range turns {
		label, ok := roleLabels[turn.Role]
		if !ok {
			label = string(turn.Role)
		}
		sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
			label, turn.Timestamp.Format("2006-01-02 15:04")))
		sb.WriteString(strings.TrimRight(turn.Content, "\n"))
		sb.WriteString("\n\n")
		if i < len(turns)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// WriteMarkdown renders the transcript and writes it atomically so a
// crash mid-export never leaves a truncated file.
func WriteMarkdown(path, title string, turns []model.Turn) error {
	data, err := Markdown(title, turns)
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(path, data, 0644)
}

// escapeYAML quotes a value when it would break frontmatter parsing.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#\"'\n") {
		return fmt.Sprintf("%q", strings.ReplaceAll(s, "\n", " "))
	}
	return s
}
