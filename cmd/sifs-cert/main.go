// Command sifs-cert verifies and exports SIFS certificates from a terminal.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sifs_backend/internals/bootstrap"
	"sifs_backend/internals/configs"
)

type options struct {
	verbose bool
	timeout time.Duration
	baseURL string
}

// newRootCmd builds the command tree; tests swap in their own config loader.
func newRootCmd(load func(*zap.Logger) (*configs.Config, error)) *cobra.Command {
	opt := &options{}
	var services *bootstrap.Services

	root := &cobra.Command{
		Use:   "sifs-cert",
		Short: "Verify and export SIFS certificates",
		Long: `sifs-cert talks to the certificate-management API the same way the web
service does and renders certificates to PNG locally.

Configuration comes from the environment (.env is read when present).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opt.verbose {
				level = "debug"
			}
			log, err := configs.NewLogger(level)
			if err != nil {
				return err
			}
			cfg, err := load(log)
			if err != nil {
				return err
			}
			if opt.baseURL != "" {
				cfg.CertAPIBaseURL = opt.baseURL
			}
			services = bootstrap.NewServices(cfg, nil, log)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if services == nil {
				return nil
			}
			return services.Close()
		},
	}

	root.PersistentFlags().BoolVarP(&opt.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().DurationVar(&opt.timeout, "timeout", 2*time.Minute, "Operation timeout")
	root.PersistentFlags().StringVar(&opt.baseURL, "api", "", "Certificate API base URL (or set CERT_API_BASE_URL)")

	get := func() *bootstrap.Services { return services }
	root.AddCommand(newVerifyCmd(opt, get))
	root.AddCommand(newExportCmd(opt, get))
	root.AddCommand(newMigrateCmd(get))
	return root
}

func main() {
	if err := newRootCmd(configs.LoadEnv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
