package main

import (
	"context"
	"fmt"

	"ozzus/vendor-check/internal/domain"

	"github.com/spf13/cobra"
)

func (a *app) resumeCmd() *cobra.Command {
	var format string
	var bf browserFlags

	c := &cobra.Command{
		Use:   "resume <session-id|latest>",
		Short: "Re-run only the checks a previous session did not settle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			ctx := cmd.Context()

			prior, err := a.loadReport(ctx, args[0])
			if err != nil {
				return err
			}

			if len(prior.FailedKinds()) == 0 {
				fmt.Fprintf(a.errOut, "Session %s has nothing left to retry.\n", prior.ID())
				return printReport(a.out, prior, format)
			}

			if err := bf.apply(cmd, a, newPrompter(a.in, a.errOut)); err != nil {
				return err
			}

			eng, err := a.buildEngine(format)
			if err != nil {
				return err
			}
			defer eng.Close()

			report, runErr := eng.service.Resume(ctx, prior)
			return a.finish(ctx, eng, report, runErr, format)
		},
	}

	c.Flags().StringVar(&format, "format", formatText, "output format: text|json|yaml")
	bf.register(c)

	return c
}

func (a *app) loadReport(ctx context.Context, id string) (*domain.SessionReport, error) {
	repo := a.reportRepository()
	if id == "latest" {
		return repo.Latest(ctx)
	}
	return repo.Load(ctx, id)
}
