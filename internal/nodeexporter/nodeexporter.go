// Package nodeexporter extracts node_exporter settings from a systemd unit
// file (or a bare ExecStart line) and builds the equivalent Alloy exporter
// document: a prometheus.exporter.unix component, a companion
// prometheus.scrape component, and a placeholder prometheus.remote_write
// sink the user must point at their own endpoint.
package nodeexporter

import (
	"fmt"
	"os"
	"regexp"
	"slices"

	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/alloy"
)

var (
	execStartRe = regexp.MustCompile(`ExecStart=(.+)`)
	systemdRe   = regexp.MustCompile(`--collector\.systemd\b`)
	textfileRe  = regexp.MustCompile(`--collector\.textfile\.directory\s+([^\s]+)`)
)

// PlaceholderRemoteWriteURL is the instructive default endpoint of the
// generated prometheus.remote_write component.
const PlaceholderRemoteWriteURL = "http://your-prometheus-endpoint/api/v1/write"

// Settings are the node_exporter flags the migrator recognizes. Absent
// flags are a normal outcome, not an error.
type Settings struct {
	Collectors        []string
	TextfileDirectory string
}

// ParseExecStart extracts recognized collector flags from a command line.
func ParseExecStart(line string) Settings {
	var s Settings
	if systemdRe.MatchString(line) {
		s.Collectors = append(s.Collectors, "systemd")
	}
	if m := textfileRe.FindStringSubmatch(line); m != nil {
		s.Collectors = append(s.Collectors, "textfile")
		s.TextfileDirectory = m[1]
	}
	return s
}

// ParseServiceFile reads a systemd unit file and extracts the flags from
// its ExecStart line. A unit file without one yields empty settings.
func ParseServiceFile(path string) (Settings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading service file: %w", err)
	}
	m := execStartRe.FindSubmatch(content)
	if m == nil {
		return Settings{}, nil
	}
	return ParseExecStart(string(m[1])), nil
}

// Components builds the fixed exporter document for these settings.
func (s Settings) Components() []*alloy.Component {
	exporter := alloy.NewComponent("prometheus.exporter.unix", "node_exporter")
	if len(s.Collectors) > 0 {
		collectors := make(alloy.List, 0, len(s.Collectors))
		for _, c := range s.Collectors {
			collectors = append(collectors, alloy.String(c))
		}
		exporter.Body.Set("enable_collectors", collectors)
	}
	if s.TextfileDirectory != "" {
		exporter.Body.Set("textfile",
			alloy.NewBody().Set("directory", alloy.String(s.TextfileDirectory)))
	}
	if slices.Contains(s.Collectors, "systemd") {
		exporter.Body.Set("systemd",
			alloy.NewBody().Set("enable_restarts", alloy.Bool(true)))
	}

	scrape := alloy.NewComponent("prometheus.scrape", "node_exporter")
	scrape.Body.
		Set("targets", exporter.Expr("targets")).
		Set("forward_to", alloy.List{alloy.Reference("prometheus.remote_write.default.receiver")})

	write := alloy.NewComponent("prometheus.remote_write", "default")
	write.Body.Set("endpoint",
		alloy.NewBody().Set("url", alloy.String(PlaceholderRemoteWriteURL)))

	return []*alloy.Component{exporter, scrape, write}
}

// Migrate renders the exporter document as Alloy text.
func (s Settings) Migrate() string {
	return alloy.Emit(s.Components())
}
