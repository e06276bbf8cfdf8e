package main

import (
	"ozzus/vendor-check/internal/artifacts"

	"github.com/spf13/cobra"
)

func (a *app) checksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List the supported checks and where their evidence is kept",
		RunE: func(_ *cobra.Command, _ []string) error {
			root := a.cfg.Artifacts.Root
			if root == "" {
				var err error
				if root, err = artifacts.DefaultRoot(); err != nil {
					return err
				}
			}
			return printChecks(a.out, root)
		},
	}
}
