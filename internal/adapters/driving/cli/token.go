package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docucortex/internal/core/domain"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token",
	Long:  `Signs a bearer token with JWT_SECRET for clients of the HTTP API.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if tokenSubject == "" {
			return errors.New("--subject is required")
		}

		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		if a.Tokens == nil {
			return errors.New("bearer auth is disabled: set JWT_SECRET")
		}

		now := time.Now()
		claims := &domain.TokenClaims{Subject: tokenSubject, IssuedAt: now.Unix()}
		if tokenTTL > 0 {
			claims.ExpiresAt = now.Add(tokenTTL).Unix()
		}

		token, err := a.Tokens.GenerateToken(claims)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}
		cmd.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "client name recorded in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	rootCmd.AddCommand(tokenCmd)
}
