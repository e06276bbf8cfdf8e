package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved sessions, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.reportRepository().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "No sessions yet.")
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SESSION\tSTARTED\tVENDOR\tIDENTIFIER\tRESUMED FROM")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.StartedAt.Local().Format(time.DateTime), e.Vendor, e.Identifier, e.ResumedFrom)
			}
			return tw.Flush()
		},
	}
}
