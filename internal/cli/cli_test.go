package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPromtailConfig = `
clients:
  - url: http://sink/loki/api/v1/push
scrape_configs:
  - job_name: app
    static_configs:
      - targets: [localhost]
        labels:
          env: prod
`

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errW bytes.Buffer
	err = Execute(context.Background(), &out, &errW, args)
	return out.String(), errW.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPromtailCommand(t *testing.T) {
	t.Run("prints the migrated config to stdout", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "promtail.yml", testPromtailConfig)

		stdout, _, err := runCLI(t, "promtail", path)
		require.NoError(t, err)
		assert.Contains(t, stdout, `loki.write "default" {`)
		assert.Contains(t, stdout, `local.file_match "app" {`)
		assert.Contains(t, stdout, `loki.source.file "app" {`)
	})

	t.Run("writes the migrated config to a file", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := writeFile(t, dir, "promtail.yml", testPromtailConfig)
		outPath := filepath.Join(dir, "out.alloy")

		stdout, stderr, err := runCLI(t, "promtail", cfgPath, "-o", outPath)
		require.NoError(t, err)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "written to "+outPath)

		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), `loki.write "default" {`)
	})

	t.Run("missing input file exits with code 1", func(t *testing.T) {
		_, _, err := runCLI(t, "promtail", filepath.Join(t.TempDir(), "absent.yml"))
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.Code)
	})

	t.Run("skipped stages surface as warnings", func(t *testing.T) {
		cfg := testPromtailConfig + `
    pipeline_stages:
      - metrics:
          lines_total:
            type: Counter
`
		path := writeFile(t, t.TempDir(), "promtail.yml", cfg)

		_, stderr, err := runCLI(t, "promtail", path)
		require.NoError(t, err)
		assert.Contains(t, stderr, "metrics stage skipped")
	})

	t.Run("invalid log level exits with code 2", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "promtail.yml", testPromtailConfig)

		_, _, err := runCLI(t, "--log-level", "loud", "promtail", path)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})
}

func TestNodeExporterCommand(t *testing.T) {
	t.Run("requires a service file or exec-start line", func(t *testing.T) {
		_, _, err := runCLI(t, "node-exporter")
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.Code)
		assert.Contains(t, exitErr.Message, "--service-file or --exec-start")
	})

	t.Run("migrates an exec-start line", func(t *testing.T) {
		stdout, stderr, err := runCLI(t, "node-exporter",
			"-e", "/usr/bin/node_exporter --collector.systemd")
		require.NoError(t, err)
		assert.Contains(t, stdout, `prometheus.exporter.unix "node_exporter" {`)
		assert.Contains(t, stdout, `enable_collectors = ["systemd"]`)
		assert.Contains(t, stderr, "Update the prometheus.remote_write endpoint URL")
	})
}

func TestAllCommand(t *testing.T) {
	t.Run("combines both migrations into one file", func(t *testing.T) {
		dir := t.TempDir()
		promtailPath := writeFile(t, dir, "promtail.yml", testPromtailConfig)
		servicePath := writeFile(t, dir, "node_exporter.service",
			"[Service]\nExecStart=/usr/bin/node_exporter --collector.systemd\n")
		outDir := filepath.Join(dir, "out")

		_, stderr, err := runCLI(t, "all",
			"-p", promtailPath, "-n", servicePath, "-o", outDir)
		require.NoError(t, err)
		assert.Contains(t, stderr, "Combined configuration written to")

		data, err := os.ReadFile(filepath.Join(outDir, combinedFileName))
		require.NoError(t, err)
		combined := string(data)
		assert.Contains(t, combined, "// Promtail Migration")
		assert.Contains(t, combined, "// Node Exporter Migration")
		assert.Contains(t, combined, `loki.write "default" {`)
		assert.Contains(t, combined, `prometheus.exporter.unix "node_exporter" {`)
	})

	t.Run("nothing to migrate is only a warning", func(t *testing.T) {
		_, stderr, err := runCLI(t, "all", "-o", t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, stderr, "No configurations to migrate")
	})
}

func TestValidateCommandBinaryMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, stderr, err := runCLI(t, "validate", "config.alloy")
	require.NoError(t, err)
	assert.Contains(t, stderr, "alloy binary not found")
}

func TestExitError(t *testing.T) {
	err := exitErrorf(2, "bad %s", "flag")
	assert.Equal(t, "bad flag", err.Error())
	var exitErr *ExitError
	assert.True(t, errors.As(err, &exitErr))
}
