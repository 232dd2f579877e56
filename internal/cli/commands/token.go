package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/podreg/internal/web/auth"
)

const defaultTokenTTL = 24 * time.Hour

var (
	tokenSubject string
	tokenTTL     time.Duration
)

// NewTokenCommand creates the token command
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token",
		Long: `Issue a signed bearer token for the HTTP API. Requires auth.jwt_secret.

Examples:
  podreg token --subject ci
  PODREG_AUTH_JWT_SECRET=s3cret podreg token --subject dashboard --ttl 1h`,
		Args: cobra.NoArgs,
		RunE: runToken,
	}

	cmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject (required)")
	cmd.Flags().DurationVar(&tokenTTL, "ttl", defaultTokenTTL, "Token lifetime")
	cmd.MarkFlagRequired("subject")

	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if a.cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured")
	}

	token, err := auth.NewTokenService(a.cfg.Auth.JWTSecret, tokenTTL).GenerateToken(tokenSubject)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]string{
			"token":      token,
			"subject":    tokenSubject,
			"expires_at": time.Now().Add(tokenTTL).UTC().Format(time.RFC3339),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
