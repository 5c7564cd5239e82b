// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat loop for clippy.
//
// Runs a readline loop against a single conversation. Slash commands
// manage the transcript; everything else is sent to the model. A
// failed completion is reported and the conversation continues.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/JoranBergfeld/BouncingClippy/internal/export"
	"github.com/JoranBergfeld/BouncingClippy/internal/foundry"
	"github.com/JoranBergfeld/BouncingClippy/internal/model"
	"github.com/JoranBergfeld/BouncingClippy/internal/session"
)

// =============================================================================
// READLINE WRAPPER
// =============================================================================

// ChatCLI wraps liner with history persistence.
type ChatCLI struct {
	line        *liner.State
	historyPath string
}

// NewChatCLI creates the readline state. Ctrl-C aborts the current
// prompt instead of killing the process. historyPath comes from the
// chat config (history_file); empty disables persistence.
func NewChatCLI(historyPath string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &ChatCLI{line: line, historyPath: historyPath}
}

// LoadHistory loads readline history from disk, if present.
func (c *ChatCLI) LoadHistory() {
	if c.historyPath == "" {
		return
	}
	f, err := os.Open(c.historyPath)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.ReadHistory(f)
}

// SaveHistory persists readline history with restricted permissions.
func (c *ChatCLI) SaveHistory() {
	if c.historyPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.historyPath), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// ReadInput reads one line and records it in history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close restores the terminal. Must run before exit.
func (c *ChatCLI) Close() {
	c.line.Close()
}

// =============================================================================
// CHAT LOOP
// =============================================================================

// RunChat runs the interactive chat until the user quits. historyPath
// is the readline history location from the chat config.
func RunChat(client *foundry.Client, sess *session.Session, historyPath string) error {
	cli := NewChatCLI(historyPath)
	defer cli.Close()
	cli.LoadHistory()
	defer cli.SaveHistory()

	// Restore the terminal on SIGINT/SIGTERM delivered outside a
	// prompt, e.g. while waiting on a completion.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sigCh
		cancel()
	}()

	printWelcome(client)

	for {
		if ctx.Err() != nil {
			fmt.Println()
			printExitSummary(sess)
			return nil
		}

		input, err := cli.ReadInput(PromptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println(DimStyle.Render("(interrupted, /quit to leave)"))
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println()
				printExitSummary(sess)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// Bare words accepted alongside the slash forms.
		switch input {
		case "quit", "exit":
			printExitSummary(sess)
			return nil
		case "clear":
			input = "/clear"
		}

		if strings.HasPrefix(input, "/") {
			if quit := handleSlashCommand(input, client, sess); quit {
				printExitSummary(sess)
				return nil
			}
			continue
		}

		sendMessage(ctx, client, sess, input)
	}
}

// sendMessage runs one completion round trip with a spinner.
func sendMessage(ctx context.Context, client *foundry.Client, sess *session.Session, text string) {
	stop := Thinking("Clippy is thinking...")
	reply, err := sess.Send(ctx, client, text)
	stop()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Println(ErrorStyle.Render("📎 " + foundry.UserMessage(err)))
		return
	}
	displayResponse(reply)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand dispatches a /command. Returns true to quit.
func handleSlashCommand(input string, client *foundry.Client, sess *session.Session) bool {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "/", "/help":
		printHelp()
		return false

	case "/quit", "/exit":
		return true

	case "/clear":
		sess.Clear()
		fmt.Println(SuccessStyle.Render("Conversation cleared."))

	case "/history":
		printHistory(sess)

	case "/status":
		printStatus(client, sess)

	case "/save":
		path := fmt.Sprintf("clippy-chat-%s.md", time.Now().Format("2006-01-02-150405"))
		if len(parts) > 1 {
			path = parts[1]
		}
		if err := export.WriteMarkdown(path, "Clippy Conversation", sess.Turns()); err != nil {
			fmt.Println(ErrorStyle.Render(fmt.Sprintf("Save failed: %v", err)))
			break
		}
		fmt.Println(SuccessStyle.Render("Saved conversation to " + path))

	default:
		fmt.Println(ErrorStyle.Render("Unknown command: " + cmd))
		fmt.Println(DimStyle.Render("Type /help for available commands."))
	}
	return false
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

func printWelcome(client *foundry.Client) {
	fmt.Println(TitleStyle.Render("📎 Clippy"))
	fmt.Println(DimStyle.Render("It looks like you're starting a conversation!"))
	fmt.Printf("%s %s\n", LabelStyle.Render("Model:"), client.Deployment())
	fmt.Println(DimStyle.Render("Type /help for commands, /quit to leave."))
	fmt.Println(RenderSeparator())
}

func printHelp() {
	fmt.Println(TitleStyle.Render("Commands"))
	fmt.Println("  /clear     Clear the conversation")
	fmt.Println("  /history   Show the conversation so far")
	fmt.Println("  /save [FILE] Export the conversation as markdown")
	fmt.Println("  /status    Show connection status")
	fmt.Println("  /help      Show this help")
	fmt.Println("  /quit      Leave the chat")
}

func printHistory(sess *session.Session) {
	turns := sess.Turns()
	if len(turns) <= 1 {
		fmt.Println(DimStyle.Render("No messages yet."))
		return
	}
	width := GetTerminalWidth() - 14
	for i, turn := range turns {
		if turn.Role == model.RoleSystem {
			continue
		}
		label := "you"
		if turn.Role == model.RoleAssistant {
			label = "clippy"
		}
		fmt.Printf("%s %3d. [%s] %s\n",
			DimStyle.Render(turn.Timestamp.Format("15:04")),
			i, label, turn.Preview(width))
	}
}

func printStatus(client *foundry.Client, sess *session.Session) {
	fmt.Println(TitleStyle.Render("Status"))
	fmt.Printf("%s %s\n", LabelStyle.Render("Endpoint:"), client.Endpoint())
	fmt.Printf("%s %s\n", LabelStyle.Render("Model:"), client.Deployment())
	fmt.Printf("%s %s\n", LabelStyle.Render("API key:"), client.APIKeyMasked())
	fmt.Printf("%s %d\n", LabelStyle.Render("Turns:"), sess.Len())
}

func printExitSummary(sess *session.Session) {
	// Exclude the system turn from the count.
	exchanges := sess.Len() - 1
	if exchanges > 0 {
		fmt.Println(DimStyle.Render(fmt.Sprintf("Goodbye! (%d messages this session)", exchanges)))
		return
	}
	fmt.Println(DimStyle.Render("Goodbye!"))
}
