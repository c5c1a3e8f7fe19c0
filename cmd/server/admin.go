package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/pickflick/internal/utils"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := bootstrap()
		if err != nil {
			return err
		}
		hash, err := utils.HashPassword(args[0], cfg.Admin.BcryptCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var (
	adminTokenSubject string
	adminTokenTTL     time.Duration
)

var adminTokenCmd = &cobra.Command{
	Use:   "admin-token",
	Short: "Mint an ADMIN access token signed with JWT_SECRET",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := bootstrap()
		if err != nil {
			return err
		}
		if cfg.Admin.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		ttl := adminTokenTTL
		if ttl <= 0 {
			ttl = time.Duration(cfg.Admin.AccessTTLMin) * time.Minute
		}
		tok, err := utils.NewAccessToken(cfg.Admin.JWTSecret, adminTokenSubject, utils.RoleAdmin, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
		return nil
	},
}

func init() {
	adminTokenCmd.Flags().StringVar(&adminTokenSubject, "subject", "admin", "sub claim of the token")
	adminTokenCmd.Flags().DurationVar(&adminTokenTTL, "ttl", 0, "token lifetime; defaults to ACCESS_TOKEN_TTL_MIN")
}
