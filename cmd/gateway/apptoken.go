package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sofatutor/copilot-metrics-gateway/internal/config"
	"github.com/sofatutor/copilot-metrics-gateway/internal/github"
	"github.com/sofatutor/copilot-metrics-gateway/internal/logging"
	"github.com/sofatutor/copilot-metrics-gateway/internal/obfuscate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var appTokenEnvFile string

var appTokenCmd = &cobra.Command{
	Use:   "app-token",
	Short: "Exchange the configured GitHub App credentials for an installation token",
	Long:  `Performs one installation token exchange and prints the obfuscated token and its expiry. Useful to verify GITHUB_APP_* settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loadEnvFile(appTokenEnvFile)
		cfg, err := config.New()
		if err != nil {
			return err
		}
		return exchangeAppToken(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func init() {
	appTokenCmd.Flags().StringVar(&appTokenEnvFile, "env", config.EnvOrDefault("ENV", ".env"), "Path to .env file")
}

func exchangeAppToken(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !cfg.GitHubApp.Configured() {
		return fmt.Errorf("GITHUB_APP_ID, GITHUB_APP_PRIVATE_KEY and GITHUB_APP_INSTALLATION_ID are required")
	}
	logger := zap.NewNop()
	client, err := github.NewClient(cfg.GitHubAPIURL, cfg.RequestTimeout, logger)
	if err != nil {
		return err
	}
	tokens, err := newTokenCache(cfg, client, logger, logging.NewAuditLogger(logger))
	if err != nil {
		return err
	}
	token, err := tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Token: %s\n", obfuscate.ObfuscateTokenGeneric(token))
	_, _ = fmt.Fprintf(out, "Expires at: %s\n", tokens.Stats().ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}
