package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/ctxlog"
)

// Execute builds the command tree and runs it against the given arguments.
// Errors come back to the caller (typically main) for exit-code handling.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	root := NewRootCommand()
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand assembles the migrator's command tree.
func NewRootCommand() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:   "alloy-migrator",
		Short: "Migrate Promtail and node_exporter configurations to Grafana Alloy",
		Long: `alloy-migrator translates a Promtail agent configuration, and the flags of
a node_exporter systemd unit, into an equivalent Grafana Alloy component
graph. The result always deserves a human read before deployment: some
pipeline constructs (metrics stages, match stages inside loki.process) have
no direct equivalent and are flagged for manual review instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel, logFormat, cmd.ErrOrStderr())
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	root.AddCommand(
		newPromtailCommand(),
		newNodeExporterCommand(),
		newAllCommand(),
		newValidateCommand(),
	)
	return root
}
