package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/nodeexporter"
)

func newNodeExporterCommand() *cobra.Command {
	var (
		serviceFile string
		execStart   string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "node-exporter",
		Short: "Migrate a node_exporter systemd configuration to Grafana Alloy format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNodeExporter(cmd, serviceFile, execStart, outputPath)
		},
	}

	cmd.Flags().StringVarP(&serviceFile, "service-file", "s", "", "Path to the systemd service file.")
	cmd.Flags().StringVarP(&execStart, "exec-start", "e", "", "ExecStart line from the service file.")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path. Defaults to stdout.")
	return cmd
}

func runNodeExporter(cmd *cobra.Command, serviceFile, execStart, outputPath string) error {
	errW := cmd.ErrOrStderr()

	if serviceFile == "" && execStart == "" {
		return exitErrorf(1, "provide either --service-file or --exec-start")
	}

	var (
		settings nodeexporter.Settings
		err      error
	)
	if execStart != "" {
		settings = nodeexporter.ParseExecStart(execStart)
	} else {
		settings, err = nodeexporter.ParseServiceFile(serviceFile)
		if err != nil {
			return exitErrorf(1, "failed to migrate configuration: %v", err)
		}
	}

	text := settings.Migrate()
	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
			return exitErrorf(1, "failed to write output: %v", err)
		}
		successf(errW, "Migrated configuration written to %s", outputPath)
	} else {
		fmt.Fprint(cmd.OutOrStdout(), text)
	}

	notef(errW, "Update the prometheus.remote_write endpoint URL")
	return nil
}
