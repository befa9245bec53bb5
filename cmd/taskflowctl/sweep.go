package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/internal/sweep"
)

func (c *cli) sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run periodic notification jobs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "run [job]",
		Short:     "Run one job, or every job when none is named",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: sweep.Jobs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := c.rt.Sweeper()
			var (
				results []sweep.Result
				err     error
			)
			if len(args) == 1 {
				var res sweep.Result
				res, err = runner.Run(cmd.Context(), args[0])
				results = append(results, res)
			} else {
				results, err = runner.RunAll(cmd.Context())
			}
			for _, res := range results {
				if res.Period == "" {
					continue
				}
				state := "ran"
				if res.Skipped {
					state = "skipped"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\tevents=%d notifications=%d\n",
					res.Job, res.Period, state, res.Events, res.Notifications)
			}
			return err
		},
	})
	return cmd
}
