// Package cli builds the funnelscope command tree.
package cli

import (
	"github.com/spf13/cobra"

	"funnelscope/api/config"
)

// NewRootCmd builds the funnelscope root command tree.
func NewRootCmd(version string) *cobra.Command {
	var logLevel, logFormat string

	cmd := &cobra.Command{
		Use:           "funnelscope",
		Short:         "Onboarding funnel analytics service and batch reporter",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.SetupLogging(logLevel, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text or json)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}
