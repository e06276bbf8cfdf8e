package main

import (
	"errors"

	"ozzus/vendor-check/internal/artifacts"
	"ozzus/vendor-check/internal/resolver"

	"github.com/spf13/cobra"
)

type browserFlags struct {
	chrome   string
	remote   string
	headless bool
}

func (f *browserFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.chrome, "chrome", "", "path to the Chrome binary (overrides browser.chrome_path)")
	cmd.Flags().StringVar(&f.remote, "remote", "", "DevTools URL of a running Chrome, e.g. ws://127.0.0.1:9222 (overrides browser.remote_url)")
	cmd.Flags().BoolVar(&f.headless, "headless", true, "run the browser without a window (overrides browser.headless)")
}

// apply folds the flags into the config, asking for the browser binary when
// none is configured. A blank answer looks Chrome up on PATH.
func (f *browserFlags) apply(cmd *cobra.Command, a *app, p *prompter) error {
	if cmd.Flags().Changed("chrome") {
		a.cfg.Browser.ChromePath = f.chrome
	}
	if cmd.Flags().Changed("remote") {
		a.cfg.Browser.RemoteURL = f.remote
	}
	if cmd.Flags().Changed("headless") {
		a.cfg.Browser.Headless = f.headless
	}
	if a.cfg.Browser.RemoteURL == "" {
		return p.fill(&a.cfg.Browser.ChromePath, "Path to Chrome (blank to search PATH)", false)
	}
	return nil
}

func (a *app) runCmd() *cobra.Command {
	var name, id, format string
	var bf browserFlags

	c := &cobra.Command{
		Use:   "run",
		Short: "Resolve a vendor and run every compliance check against it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			ctx := cmd.Context()
			p := newPrompter(a.in, a.errOut)

			client, err := a.login(ctx, p)
			if err != nil {
				return err
			}

			if name == "" && id == "" {
				if err := p.fill(&name, "Vendor name (blank to search by identifier)", false); err != nil {
					return err
				}
				if name == "" {
					if err := p.fill(&id, "Vendor identifier", false); err != nil {
						return err
					}
				}
			}
			if name == "" && id == "" {
				return errors.New("a vendor name or identifier is required; use `vendorcheck vendors export` for the full vendor list")
			}

			vendor, err := resolveVendor(ctx, resolver.New(client, a.log), name, id)
			if err != nil {
				return err
			}

			if err := bf.apply(cmd, a, p); err != nil {
				return err
			}

			eng, err := a.buildEngine(format)
			if err != nil {
				return err
			}
			defer eng.Close()

			if format == formatText {
				root := a.cfg.Artifacts.Root
				if root == "" {
					root, _ = artifacts.DefaultRoot()
				}
				if err := printChecks(a.out, root); err != nil {
					return err
				}
			}

			report, runErr := eng.service.RunSession(ctx, vendor)
			return a.finish(ctx, eng, report, runErr, format)
		},
	}

	c.Flags().StringVarP(&name, "name", "n", "", "vendor name as recorded in Salesforce")
	c.Flags().StringVarP(&id, "id", "i", "", "vendor identifier (Vendor_Id__c)")
	c.Flags().StringVar(&format, "format", formatText, "output format: text|json|yaml")
	bf.register(c)
	c.MarkFlagsMutuallyExclusive("name", "id")

	return c
}
