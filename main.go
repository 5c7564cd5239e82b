// clippy - A bouncing paperclip chat assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JoranBergfeld/BouncingClippy/internal/cli"
	"github.com/JoranBergfeld/BouncingClippy/internal/config"
	"github.com/JoranBergfeld/BouncingClippy/internal/foundry"
	"github.com/JoranBergfeld/BouncingClippy/internal/server"
	"github.com/JoranBergfeld/BouncingClippy/internal/session"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "clippy: %v\n\n%s", err, cli.Usage())
		os.Exit(2)
	}

	switch args.Command {
	case cli.CmdHelp:
		fmt.Print(cli.Usage())
	case cli.CmdVersion:
		fmt.Println(cli.FormatVersion())
	case cli.CmdConfig:
		runConfig()
	case cli.CmdServe:
		runServe(args)
	default:
		runChat(args)
	}
}

// loadConfig loads and validates the configuration.
// Exits with a setup hint when required settings are missing.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "clippy: load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "clippy: %v\n", err)
		fmt.Fprintln(os.Stderr, "\nSet AZURE_AI_FOUNDRY_ENDPOINT and AZURE_AI_FOUNDRY_API_KEY,")
		fmt.Fprintln(os.Stderr, "or add them to ~/.clippy/config.toml.")
		os.Exit(1)
	}
	return cfg
}

// newGateway builds the completion client from configuration.
func newGateway(cfg *config.Config) *foundry.Client {
	return foundry.NewClient(cfg.Foundry.Endpoint, cfg.Foundry.APIKey).
		WithDeployment(cfg.Foundry.Model).
		WithTimeout(cfg.RequestTimeout())
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

func runChat(args *cli.Args) {
	if args.NoColor {
		cli.DisableColors()
	}

	cfg := loadConfig()
	if args.Model != "" {
		cfg.Foundry.Model = args.Model
	}
	if args.SystemPrompt != "" {
		cfg.Chat.SystemPrompt = args.SystemPrompt
	}

	client := newGateway(cfg)
	sess := session.New("cli", cfg.Chat.SystemPrompt)

	if err := cli.RunChat(client, sess, cfg.Chat.HistoryFile); err != nil {
		fmt.Fprintf(os.Stderr, "clippy: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// SERVE COMMAND
// =============================================================================

func runServe(args *cli.Args) {
	cfg := loadConfig()
	if args.Port != 0 {
		cfg.Server.Port = args.Port
	}

	client := newGateway(cfg)
	sessions := session.NewManager(cfg.Chat.SystemPrompt)

	srv := server.NewServer(cfg.Server.Port, client, sessions).
		WithRateLimiter(server.NewRateLimiter(cfg.Server.RateLimitPerMin))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reload config file edits without a restart. Endpoint and key
	// changes apply to new requests via a fresh client.
	if path, err := config.ConfigPath(); err == nil {
		go func() {
			watchErr := config.Watch(ctx, path, func(updated *config.Config) {
				if err := updated.Validate(); err != nil {
					log.Printf("CONFIG INVALID | err=%v", err)
					return
				}
				srv.SetGateway(newGateway(updated))
			})
			if watchErr != nil && !errors.Is(watchErr, context.Canceled) {
				log.Printf("CONFIG WATCH FAILED | err=%v", watchErr)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("SERVER_STOPPING | signal=%v", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "clippy: server: %v\n", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "clippy: shutdown: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func runConfig() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "clippy: load config: %v\n", err)
		os.Exit(1)
	}

	client := newGateway(cfg)
	path, _ := config.ConfigPath()

	fmt.Println("Configuration")
	fmt.Printf("  File:       %s\n", path)
	fmt.Printf("  Endpoint:   %s\n", valueOrUnset(cfg.Foundry.Endpoint))
	fmt.Printf("  API key:    %s\n", client.APIKeyMasked())
	fmt.Printf("  Model:      %s\n", cfg.Foundry.Model)
	fmt.Printf("  Timeout:    %s\n", cfg.RequestTimeout())
	fmt.Printf("  Port:       %d\n", cfg.Server.Port)
	fmt.Printf("  Rate limit: %d req/min\n", cfg.Server.RateLimitPerMin)

	if err := cfg.Validate(); err != nil {
		fmt.Printf("\n  Status: incomplete (%v)\n", err)
		return
	}
	fmt.Println("\n  Status: ready")
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
