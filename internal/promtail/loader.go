package promtail

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/ctxlog"
)

// Parse decodes a Promtail configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing promtail config: %w", err)
	}
	return &cfg, nil
}

// Load reads and decodes the Promtail configuration at path.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading promtail config.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading promtail config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("Promtail config loaded.",
		"clients", len(cfg.Clients),
		"scrape_configs", len(cfg.ScrapeConfigs))
	return cfg, nil
}
