package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskflow/internal/domain"
)

func (c *cli) plansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Manage the subscription plan catalog",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "seed",
			Short: "Upsert the plan catalog from PLANS_FILE or the built-in default",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				seeded, err := c.rt.SeedPlans(cmd.Context())
				if err != nil {
					return err
				}
				return printPlans(cmd, seeded)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List active plans",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := c.rt.SeedPlans(cmd.Context()); err != nil {
					return err
				}
				plans, err := c.rt.Service().ListPlans(cmd.Context())
				if err != nil {
					return err
				}
				return printPlans(cmd, plans)
			},
		},
	)
	return cmd
}

func printPlans(cmd *cobra.Command, plans []domain.Plan) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPRICE\tPROJECTS\tMEMBERS\tTASKS")
	for _, p := range plans {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", p.Name, p.PriceCents, limit(p.ProjectsLimit), limit(p.TeamMembersLimit), limit(p.TasksLimit))
	}
	return w.Flush()
}

func limit(n int) string {
	if n < 0 {
		return "unlimited"
	}
	return fmt.Sprint(n)
}
