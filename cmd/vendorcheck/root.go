package main

import (
	"io"
	"log/slog"

	"ozzus/vendor-check/internal/config"

	"github.com/spf13/cobra"
)

// app is what every command shares once the config is loaded.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}
	var configFile string

	cmd := &cobra.Command{
		Use:          "vendorcheck",
		Short:        "Run vendor compliance checks and keep the evidence",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = setupLogger(cfg.Env, errOut)
			return nil
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default config/local.yaml)")

	cmd.AddCommand(
		a.runCmd(),
		a.resumeCmd(),
		a.vendorsCmd(),
		a.checksCmd(),
		a.sessionsCmd(),
	)

	return cmd
}
