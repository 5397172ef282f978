package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	gsheet "foyer/internal/sheets/google"
)

var (
	authPort      int
	authTokenFile string
)

var sheetsAuthCmd = &cobra.Command{
	Use:   "sheets-auth",
	Short: "Authorize report export with a Google user account",
	Long: `sheets-auth runs the OAuth consent flow for the client in
GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE and saves the token
where foyer-worker reads it (GOOGLE_OAUTH_TOKEN_FILE). Register
http://localhost:<port>/callback as a redirect URI of the client.`,
	RunE: runSheetsAuth,
}

func init() {
	sheetsAuthCmd.Flags().IntVar(&authPort, "port", 8085, "local port for the OAuth redirect")
	sheetsAuthCmd.Flags().StringVar(&authTokenFile, "token-file", "", "where to save the token (default GOOGLE_OAUTH_TOKEN_FILE or token.json)")
	rootCmd.AddCommand(sheetsAuthCmd)
}

func runSheetsAuth(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	clientJSON := []byte(cfg.GoogleOAuthClientJSON)
	if len(clientJSON) == 0 {
		if cfg.GoogleOAuthClientFile == "" {
			return errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
		}
		var err error
		if clientJSON, err = os.ReadFile(cfg.GoogleOAuthClientFile); err != nil {
			return fmt.Errorf("read client file: %w", err)
		}
	}
	oauthCfg, err := gsheet.OAuthConfig(clientJSON)
	if err != nil {
		return err
	}

	tokenFile := authTokenFile
	if tokenFile == "" {
		tokenFile = cfg.GoogleOAuthTokenFile
	}
	if tokenFile == "" {
		tokenFile = "token.json"
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	out := cmd.OutOrStdout()
	tok, err := gsheet.Authorize(ctx, oauthCfg, "localhost:"+strconv.Itoa(authPort), func(url string) {
		fmt.Fprintf(out, "Open this URL to authorize:\n%s\n", url)
	})
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}
	if err := gsheet.SaveToken(tokenFile, tok); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved token to %s\n", tokenFile)
	return nil
}
