package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/migrate"
	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/promtail"
)

func newPromtailCommand() *cobra.Command {
	var (
		outputPath string
		showNotes  bool
	)

	cmd := &cobra.Command{
		Use:   "promtail <config.yml>",
		Short: "Migrate a Promtail configuration to Grafana Alloy format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromtail(cmd, args[0], outputPath, showNotes)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path. Defaults to stdout.")
	cmd.Flags().BoolVarP(&showNotes, "diff", "d", false, "Print manual-review notes after migrating.")
	return cmd
}

func runPromtail(cmd *cobra.Command, configPath, outputPath string, showNotes bool) error {
	ctx := cmd.Context()
	errW := cmd.ErrOrStderr()

	cfg, err := promtail.Load(ctx, configPath)
	if err != nil {
		return exitErrorf(1, "failed to migrate configuration: %v", err)
	}

	result, err := migrate.NewBuilder(cfg).Build(ctx)
	if err != nil {
		return exitErrorf(1, "failed to migrate configuration: %v", err)
	}
	text := result.Emit()

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
			return exitErrorf(1, "failed to write output: %v", err)
		}
		successf(errW, "Migrated configuration written to %s", outputPath)
	} else {
		fmt.Fprint(cmd.OutOrStdout(), text)
	}

	for _, note := range result.Report.Notes() {
		warnf(errW, "%s", note)
	}
	if showNotes {
		notef(errW, "Configuration requires manual review, especially:")
		fmt.Fprintln(errW, "  - Pipeline stages with complex regex/metrics")
		fmt.Fprintln(errW, "  - Authentication credentials")
		fmt.Fprintln(errW, "  - Remote write endpoints")
	}
	return nil
}
