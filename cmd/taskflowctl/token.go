package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/domain"
	"taskflow/internal/middleware"
)

func (c *cli) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint API tokens",
	}
	var (
		userID, email, role string
		ttl                 time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.resolveUser(cmd, userID, email)
			if err != nil {
				return err
			}
			r := domain.UserRole(role)
			if role == "" {
				r = domain.UserRoleMember
				if u, err := c.rt.Service().GetUser(cmd.Context(), id); err == nil {
					r = u.Role
				}
			}
			if ttl <= 0 {
				ttl = c.cfg.JWTTTL
			}
			token, err := middleware.NewAuthenticator(c.cfg.JWTSecret, c.cfg.JWTIssuer, nil).SignToken(id, r, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&userID, "id", "", "user id")
	issue.Flags().StringVar(&email, "email", "", "user email")
	issue.Flags().StringVar(&role, "role", "", "role claim; defaults to the stored role")
	issue.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime; defaults to JWT_TTL_HOURS")
	cmd.AddCommand(issue)
	return cmd
}
