package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"ozzus/vendor-check/internal/resolver"

	"github.com/spf13/cobra"
)

func (a *app) vendorsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "vendors",
		Short: "Work with the Salesforce vendor master",
	}
	c.AddCommand(a.vendorsExportCmd())
	return c
}

func (a *app) vendorsExportCmd() *cobra.Command {
	var out, format string

	c := &cobra.Command{
		Use:   "export",
		Short: "Export every vendor (name, identifier, DUNS number)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format, formatCSV, formatJSON, formatYAML); err != nil {
				return err
			}
			ctx := cmd.Context()

			client, err := a.login(ctx, newPrompter(a.in, a.errOut))
			if err != nil {
				return err
			}

			vendors, err := resolver.New(client, a.log).ListAll(ctx)
			if err != nil {
				return err
			}

			var w io.Writer = a.out
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case formatJSON:
				err = writeJSON(w, vendors)
			case formatYAML:
				err = writeYAML(w, vendors)
			default:
				err = writeVendorsCSV(w, vendors)
			}
			if err != nil {
				return err
			}

			a.log.Info("vendors exported", slog.Int("count", len(vendors)), slog.String("out", out))
			return nil
		},
	}

	c.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	c.Flags().StringVar(&format, "format", formatCSV, "output format: csv|json|yaml")

	return c
}
