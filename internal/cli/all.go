package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/migrate"
	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/nodeexporter"
	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/promtail"
)

// combinedFileName is the output of the `all` command inside --output-dir.
const combinedFileName = "alloy-config.river"

func newAllCommand() *cobra.Command {
	var (
		promtailPath string
		nodeService  string
		outputDir    string
	)

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Migrate both Promtail and node_exporter configurations into one file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAll(cmd, promtailPath, nodeService, outputDir)
		},
	}

	cmd.Flags().StringVarP(&promtailPath, "promtail", "p", "", "Path to the Promtail config.yml.")
	cmd.Flags().StringVarP(&nodeService, "node-service", "n", "", "Path to the node_exporter service file.")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "Output directory for the combined configuration.")
	return cmd
}

func runAll(cmd *cobra.Command, promtailPath, nodeService, outputDir string) error {
	ctx := cmd.Context()
	errW := cmd.ErrOrStderr()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return exitErrorf(1, "failed to create output directory: %v", err)
	}

	fmt.Fprintln(errW, "Grafana Alloy Migration Tool")
	fmt.Fprintln(errW)

	type section struct {
		header string
		text   string
	}
	var sections []section

	if promtailPath != "" {
		cfg, err := promtail.Load(ctx, promtailPath)
		if err != nil {
			failf(errW, "Failed to migrate Promtail: %v", err)
		} else if result, err := migrate.NewBuilder(cfg).Build(ctx); err != nil {
			failf(errW, "Failed to migrate Promtail: %v", err)
		} else {
			sections = append(sections, section{"// Promtail Migration", result.Emit()})
			successf(errW, "Promtail configuration migrated")
			for _, note := range result.Report.Notes() {
				warnf(errW, "%s", note)
			}
		}
	}

	if nodeService != "" {
		settings, err := nodeexporter.ParseServiceFile(nodeService)
		if err != nil {
			failf(errW, "Failed to migrate node_exporter: %v", err)
		} else {
			sections = append(sections, section{"// Node Exporter Migration", settings.Migrate()})
			successf(errW, "node_exporter configuration migrated")
		}
	}

	if len(sections) == 0 {
		warnf(errW, "No configurations to migrate")
		return nil
	}

	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, s.header+"\n"+s.text)
	}
	combined := strings.Join(parts, "\n\n")

	outputFile := filepath.Join(outputDir, combinedFileName)
	if err := os.WriteFile(outputFile, []byte(combined), 0o644); err != nil {
		return exitErrorf(1, "failed to write combined configuration: %v", err)
	}

	fmt.Fprintln(errW)
	successf(errW, "Combined configuration written to %s", outputFile)
	fmt.Fprintln(errW)
	notef(errW, "Next steps:")
	fmt.Fprintln(errW, "1. Review and update the configuration:")
	fmt.Fprintln(errW, "   - Set correct remote write endpoints")
	fmt.Fprintln(errW, "   - Update authentication credentials")
	fmt.Fprintln(errW, "   - Verify pipeline stages and metrics")
	fmt.Fprintf(errW, "2. Test with: alloy run %s\n", outputFile)
	fmt.Fprintln(errW, "3. Deploy to production")
	return nil
}
