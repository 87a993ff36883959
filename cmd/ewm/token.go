package main

import (
	"errors"
	"fmt"
	"time"

	"explorewithme/config"
	"explorewithme/internal/adapters/auth"
	"explorewithme/internal/domain"

	"github.com/spf13/cobra"
)

func tokenCommand() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "issue a moderator access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(subject, []string{domain.RoleModerator}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "moderator", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
