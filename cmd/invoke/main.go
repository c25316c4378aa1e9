// Package main runs a single action and prints its JSON result.
//
// Usage:
//
//	invoke -action risk_analysis -params '{"tokenAddress":"..."}'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"solana-risk-engine/internal/actions"
	"solana-risk-engine/internal/config"
	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	action := flag.String("action", "", "Action name (price_sentiment, address_activity, risk_analysis, news)")
	params := flag.String("params", "{}", "Action params as a JSON object")
	flag.Parse()

	os.Exit(run(*configPath, *action, *params))
}

func run(configPath, action, params string) int {
	if action == "" {
		fmt.Fprintln(os.Stderr, "-action is required")
		return 2
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "env: %v\n", err)
		return 1
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	// Logs go to stderr so stdout carries only the result.
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := actions.FromConfig(cfg, nil, &log)
	result, err := engine.Invoke(ctx, action, json.RawMessage(params))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s (%s)\n", err, domain.Kind(err))
		return 1
	}

	fmt.Println(result)
	return 0
}
