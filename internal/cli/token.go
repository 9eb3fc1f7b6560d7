package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type issuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with performer tokens",
	}

	var name, email string
	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign a development token carrying a performer identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("AUTH_JWT_SECRET is required")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.DevTokenTTL()
			}
			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, ttl)
			token, expiresAt, err := tokens.GenerateToken(domain.Performer{Name: name, Email: email})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), issuedToken{Token: token, ExpiresAt: expiresAt}, token)
		},
	}
	issue.Flags().StringVar(&name, "name", "", "Performer name")
	issue.Flags().StringVar(&email, "email", "", "Performer email")
	issue.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to AUTH_DEV_TOKEN_TTL_MINUTES)")
	cmd.AddCommand(issue)
	return cmd
}
