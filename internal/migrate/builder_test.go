package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/alloy"
	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/promtail"
)

func build(t *testing.T, cfg *promtail.Config) *Result {
	t.Helper()
	result, err := NewBuilder(cfg).Build(context.Background())
	require.NoError(t, err)
	return result
}

func forwardTarget(t *testing.T, c *alloy.Component) string {
	t.Helper()
	list, ok := c.Body.Get("forward_to").(alloy.List)
	require.True(t, ok, "component %s %q has no forward_to list", c.Kind, c.ID)
	require.Len(t, list, 1)
	ref, ok := list[0].(alloy.Reference)
	require.True(t, ok, "forward_to element is not a reference")
	return string(ref)
}

func TestBuildStaticScenario(t *testing.T) {
	cfg := &promtail.Config{
		Clients: []promtail.Client{{URL: "http://sink/loki/api/v1/push"}},
		ScrapeConfigs: []promtail.ScrapeConfig{
			{
				JobName: "app",
				StaticConfigs: []promtail.StaticConfig{
					{
						Targets: []string{"localhost:9080"},
						Labels:  promtail.OrderedMap{{Key: "env", Value: "prod"}},
					},
				},
			},
		},
	}

	result := build(t, cfg)
	require.Len(t, result.Components, 3)
	assert.True(t, result.Report.Empty())

	want := `loki.write "default" {
  endpoint {
    url = "http://sink/loki/api/v1/push"
  }
  external_labels = {}
}

local.file_match "app" {
  path_targets = [{
    __address__ = "localhost:9080",
    env = "prod",
  }]
}

loki.source.file "app" {
  targets = local.file_match.app.targets
  forward_to = [loki.write.default.receiver]
}
`
	assert.Equal(t, want, result.Emit())
}

func TestBuildSinkNaming(t *testing.T) {
	cfg := &promtail.Config{
		Clients: []promtail.Client{
			{URL: "http://a/push"},
			{URL: "http://b/push"},
			{URL: "http://c/push"},
		},
	}
	result := build(t, cfg)
	require.Len(t, result.Components, 3)
	assert.Equal(t, "default", result.Components[0].ID)
	assert.Equal(t, "client_1", result.Components[1].ID)
	assert.Equal(t, "client_2", result.Components[2].ID)
}

func TestBuildSinkBasicAuth(t *testing.T) {
	cfg := &promtail.Config{
		Clients: []promtail.Client{
			{URL: "http://a/push", BasicAuth: &promtail.BasicAuth{Username: "u"}},
		},
	}
	result := build(t, cfg)
	doc := result.Emit()
	assert.Contains(t, doc, "basic_auth {")
	assert.Contains(t, doc, `username = "u"`)
	// A missing password still emits an empty credential.
	assert.Contains(t, doc, `password = ""`)
}

func TestBuildMissingURL(t *testing.T) {
	cfg := &promtail.Config{Clients: []promtail.Client{{}}}
	_, err := NewBuilder(cfg).Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no url")
}

func TestBuildStaticEntryNaming(t *testing.T) {
	cfg := &promtail.Config{
		Clients: []promtail.Client{{URL: "http://sink/push"}},
		ScrapeConfigs: []promtail.ScrapeConfig{
			{
				JobName: "app",
				StaticConfigs: []promtail.StaticConfig{
					{Targets: []string{"a"}},
					{Targets: []string{"b"}},
				},
			},
		},
	}
	result := build(t, cfg)
	// One (discovery, source) pair per static entry, after the sink.
	require.Len(t, result.Components, 5)
	assert.Equal(t, "local.file_match", result.Components[1].Kind)
	assert.Equal(t, "app", result.Components[1].ID)
	assert.Equal(t, "loki.source.file", result.Components[2].Kind)
	assert.Equal(t, "app", result.Components[2].ID)
	assert.Equal(t, "app_1", result.Components[3].ID)
	assert.Equal(t, "app_1", result.Components[4].ID)
	assert.Equal(t, alloy.Reference("local.file_match.app_1.targets"),
		result.Components[4].Body.Get("targets"))
}

func TestBuildDuplicateJobNames(t *testing.T) {
	cfg := &promtail.Config{
		Clients: []promtail.Client{{URL: "http://sink/push"}},
		ScrapeConfigs: []promtail.ScrapeConfig{
			{JobName: "app", StaticConfigs: []promtail.StaticConfig{{Targets: []string{"a"}}}},
			{JobName: "app", StaticConfigs: []promtail.StaticConfig{{Targets: []string{"b"}}}},
		},
	}
	result := build(t, cfg)
	require.Len(t, result.Components, 5)
	// No two components of a kind share an identifier.
	assert.Equal(t, "app", result.Components[1].ID)
	assert.Equal(t, "app_1", result.Components[3].ID)
}

func TestBuildSuffixedJobNameCollision(t *testing.T) {
	// A job literally named app_1 occupies the first suffix the duplicate
	// "app" job would otherwise claim, so the allocator must keep probing.
	cfg := &promtail.Config{
		Clients: []promtail.Client{{URL: "http://sink/push"}},
		ScrapeConfigs: []promtail.ScrapeConfig{
			{JobName: "app", StaticConfigs: []promtail.StaticConfig{{Targets: []string{"a"}}}},
			{JobName: "app_1", StaticConfigs: []promtail.StaticConfig{{Targets: []string{"b"}}}},
			{JobName: "app", StaticConfigs: []promtail.StaticConfig{{Targets: []string{"c"}}}},
		},
	}
	result := build(t, cfg)
	require.Len(t, result.Components, 7)

	seen := map[string]bool{}
	for _, c := range result.Components {
		key := c.Kind + "/" + c.ID
		assert.Falsef(t, seen[key], "duplicate component identifier %s", key)
		seen[key] = true
	}
	assert.Equal(t, "app", result.Components[1].ID)
	assert.Equal(t, "app_1", result.Components[3].ID)
	assert.Equal(t, "app_2", result.Components[5].ID)
}

func TestBuildStaticWithInlineStages(t *testing.T) {
	cfg := &promtail.Config{
		Clients: []promtail.Client{{URL: "http://sink/push"}},
		ScrapeConfigs: []promtail.ScrapeConfig{
			{
				JobName:       "app",
				StaticConfigs: []promtail.StaticConfig{{Targets: []string{"a"}}},
				PipelineStages: []promtail.PipelineStage{
					regexStage("^x$"),
				},
			},
		},
	}
	result := build(t, cfg)
	src := result.Components[2]
	require.Equal(t, "loki.source.file", src.Kind)
	_, ok := src.Body.Get("stages").(alloy.Scalar)
	require.True(t, ok)
	assert.Contains(t, result.Emit(), `stages = "stage.regex { expression = \"^x$\" }"`)
}

func TestBuildJournal(t *testing.T) {
	t.Run("plain journal forwards to the default sink", func(t *testing.T) {
		maxAge := "12h"
		cfg := &promtail.Config{
			Clients: []promtail.Client{{URL: "http://sink/push"}},
			ScrapeConfigs: []promtail.ScrapeConfig{
				{
					JobName: "journald",
					Journal: &promtail.JournalConfig{
						MaxAge: &maxAge,
						Labels: promtail.OrderedMap{{Key: "job", Value: "systemd-journal"}},
					},
				},
			},
		}
		result := build(t, cfg)
		require.Len(t, result.Components, 2)
		journal := result.Components[1]
		assert.Equal(t, "loki.source.journal", journal.Kind)
		assert.Equal(t, "journald", journal.ID)
		assert.Equal(t, "loki.write.default.receiver", forwardTarget(t, journal))

		doc := result.Emit()
		assert.Contains(t, doc, `max_age = "12h"`)
		assert.Contains(t, doc, "  labels = {\n    job = \"systemd-journal\",\n  }")
	})

	t.Run("relabel splices between journal and sink", func(t *testing.T) {
		unit := "unit"
		cfg := &promtail.Config{
			Clients: []promtail.Client{{URL: "http://sink/push"}},
			ScrapeConfigs: []promtail.ScrapeConfig{
				{
					JobName: "journald",
					Journal: &promtail.JournalConfig{},
					RelabelConfigs: []promtail.RelabelConfig{
						{SourceLabels: []string{"__journal__systemd_unit"}, TargetLabel: &unit},
					},
				},
			},
		}
		result := build(t, cfg)
		require.Len(t, result.Components, 3)

		relabel := result.Components[1]
		journal := result.Components[2]
		require.Equal(t, "loki.relabel", relabel.Kind)
		assert.Equal(t, "journald_relabel", relabel.ID)
		require.Equal(t, "loki.source.journal", journal.Kind)

		// Journal feeds the relabel component, which feeds the sink.
		assert.Equal(t, "loki.relabel.journald_relabel.receiver", forwardTarget(t, journal))
		assert.Equal(t, "loki.write.default.receiver", forwardTarget(t, relabel))
	})

	t.Run("stages and relabels produce four components in order", func(t *testing.T) {
		unit := "unit"
		cfg := &promtail.Config{
			Clients: []promtail.Client{{URL: "http://sink/push"}},
			ScrapeConfigs: []promtail.ScrapeConfig{
				{
					JobName: "journald",
					Journal: &promtail.JournalConfig{},
					PipelineStages: []promtail.PipelineStage{
						regexStage("^x$"),
					},
					RelabelConfigs: []promtail.RelabelConfig{
						{SourceLabels: []string{"__journal__systemd_unit"}, TargetLabel: &unit},
					},
				},
			},
		}
		result := build(t, cfg)
		require.Len(t, result.Components, 4)

		kinds := []string{
			result.Components[0].Kind,
			result.Components[1].Kind,
			result.Components[2].Kind,
			result.Components[3].Kind,
		}
		assert.Equal(t, []string{"loki.write", "loki.relabel", "loki.source.journal", "loki.process"}, kinds)

		relabel := result.Components[1]
		journal := result.Components[2]
		process := result.Components[3]
		assert.Equal(t, "loki.relabel.journald_relabel.receiver", forwardTarget(t, journal))
		assert.Equal(t, "loki.process.journald.receiver", forwardTarget(t, relabel))
		assert.Equal(t, "loki.write.default.receiver", forwardTarget(t, process))
	})

	t.Run("empty relabel list synthesizes no relabel component", func(t *testing.T) {
		cfg := &promtail.Config{
			Clients: []promtail.Client{{URL: "http://sink/push"}},
			ScrapeConfigs: []promtail.ScrapeConfig{
				{
					JobName:        "journald",
					Journal:        &promtail.JournalConfig{},
					RelabelConfigs: []promtail.RelabelConfig{},
				},
			},
		}
		result := build(t, cfg)
		require.Len(t, result.Components, 2)
		assert.Equal(t, "loki.source.journal", result.Components[1].Kind)
	})
}

func TestBuildJobWithoutMechanisms(t *testing.T) {
	cfg := &promtail.Config{
		Clients:       []promtail.Client{{URL: "http://sink/push"}},
		ScrapeConfigs: []promtail.ScrapeConfig{{JobName: "empty"}},
	}
	result := build(t, cfg)
	// The job contributes nothing, and that is not an error.
	require.Len(t, result.Components, 1)
}

func TestBuildMetricsStageReported(t *testing.T) {
	cfg := &promtail.Config{
		Clients: []promtail.Client{{URL: "http://sink/push"}},
		ScrapeConfigs: []promtail.ScrapeConfig{
			{
				JobName: "journald",
				Journal: &promtail.JournalConfig{},
				PipelineStages: []promtail.PipelineStage{
					regexStage("^x$"),
					{Kind: promtail.StageMetrics},
					{
						Kind:   promtail.StageOutput,
						Output: &promtail.OutputStage{Source: strptr("message")},
					},
				},
			},
		},
	}
	result := build(t, cfg)

	require.Len(t, result.Report.Skipped, 1)
	assert.Equal(t, "metrics", result.Report.Skipped[0].Kind)

	process := result.Components[2]
	require.Equal(t, "loki.process", process.Kind)
	stages, ok := process.Body.Get("stages").(alloy.Stages)
	require.True(t, ok)
	// The metrics stage is omitted; its neighbors survive.
	require.Len(t, stages, 2)
	assert.Equal(t, "stage.regex", stages[0].Type)
	assert.Equal(t, "stage.output", stages[1].Type)

	doc := result.Emit()
	assert.NotContains(t, doc, "metrics")
}

func TestBuildUnnamedJob(t *testing.T) {
	cfg := &promtail.Config{
		Clients: []promtail.Client{{URL: "http://sink/push"}},
		ScrapeConfigs: []promtail.ScrapeConfig{
			{StaticConfigs: []promtail.StaticConfig{{Targets: []string{"a"}}}},
		},
	}
	result := build(t, cfg)
	require.Len(t, result.Components, 3)
	assert.Equal(t, "unknown", result.Components[1].ID)
}
