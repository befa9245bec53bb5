package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskflow/internal/domain"
)

func (c *cli) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var name, role string
	create := &cobra.Command{
		Use:   "create <email>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.rt.Service().RegisterUser(cmd.Context(), args[0], name, domain.UserRole(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&role, "role", string(domain.UserRoleMember), "owner or member")

	var userID, email, plan string
	setPlan := &cobra.Command{
		Use:   "set-plan",
		Short: "Move a user onto a plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.rt.SeedPlans(cmd.Context()); err != nil {
				return err
			}
			id, err := c.resolveUser(cmd, userID, email)
			if err != nil {
				return err
			}
			view, err := c.rt.Service().ChangePlan(cmd.Context(), id, plan)
			if err != nil {
				return err
			}
			end := "-"
			if view.Subscription.EndDate != nil {
				end = view.Subscription.EndDate.Format("2006-01-02")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\tends %s\n", id, view.Plan.Name, view.Subscription.Status, end)
			return nil
		},
	}
	setPlan.Flags().StringVar(&userID, "id", "", "user id")
	setPlan.Flags().StringVar(&email, "email", "", "user email")
	setPlan.Flags().StringVar(&plan, "plan", "Pro", "plan name")

	cmd.AddCommand(create, setPlan)
	return cmd
}

// resolveUser returns id, or the id of the user registered under email.
func (c *cli) resolveUser(cmd *cobra.Command, id, email string) (string, error) {
	id, email = strings.TrimSpace(id), strings.TrimSpace(email)
	switch {
	case id != "":
		return id, nil
	case email != "":
		u, err := c.rt.Service().FindUserByEmail(cmd.Context(), email)
		if err != nil {
			return "", fmt.Errorf("find user %s: %w", email, err)
		}
		return u.ID, nil
	}
	return "", errors.New("either --id or --email must be provided")
}
