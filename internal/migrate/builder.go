package migrate

import (
	"context"
	"fmt"

	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/alloy"
	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/ctxlog"
	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/promtail"
)

// defaultReceiver is the receiver expression of the first sink. The first
// client is always named "default" so every source has an implicit write
// target.
const defaultReceiver = "loki.write.default.receiver"

// Builder translates one source document into an ordered component list.
// The identifier counters are scoped to the builder instance, so
// independent translations never interfere.
type Builder struct {
	cfg    *promtail.Config
	comps  []*alloy.Component
	ids    map[string]map[string]int
	report *Report
}

// Result is the outcome of a successful build: components in output order
// plus the skip report.
type Result struct {
	Components []*alloy.Component
	Report     *Report
}

// Emit renders the built components into the final document text.
func (r *Result) Emit() string {
	return alloy.Emit(r.Components)
}

// NewBuilder returns a builder for the given source document. The document
// is only read, never mutated.
func NewBuilder(cfg *promtail.Config) *Builder {
	return &Builder{
		cfg:    cfg,
		ids:    make(map[string]map[string]int),
		report: &Report{},
	}
}

// Build runs the single top-to-bottom translation pass: sinks first, then
// each scrape job in source order. Components are appended strictly in the
// order they are decided.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	if err := b.clients(); err != nil {
		return nil, err
	}
	if err := b.scrapeConfigs(); err != nil {
		return nil, err
	}

	logger.Debug("Component graph built.",
		"components", len(b.comps),
		"skipped", len(b.report.Skipped))
	return &Result{Components: b.comps, Report: b.report}, nil
}

// allocID returns an identifier unique among components of the given kind,
// suffixing _1, _2, ... when the wanted name is already taken. Repeated
// requests for the same name therefore yield name, name_1, name_2, ...
// A suffixed candidate can itself be taken, when a source name literally
// ends in _N, so each candidate is re-probed until a free one is found.
func (b *Builder) allocID(kind, want string) string {
	used, ok := b.ids[kind]
	if !ok {
		used = make(map[string]int)
		b.ids[kind] = used
	}
	n, taken := used[want]
	if !taken {
		used[want] = 1
		return want
	}
	for {
		id := fmt.Sprintf("%s_%d", want, n)
		n++
		if _, taken := used[id]; !taken {
			used[want] = n
			used[id] = 1
			return id
		}
	}
}

// clients maps each sink descriptor to a loki.write component. The first
// sink is "default"; later ones are client_N by position.
func (b *Builder) clients() error {
	for i, c := range b.cfg.Clients {
		if c.URL == "" {
			return fmt.Errorf("clients[%d] has no url", i)
		}

		want := "default"
		if i > 0 {
			want = fmt.Sprintf("client_%d", i)
		}
		comp := alloy.NewComponent("loki.write", b.allocID("loki.write", want))

		endpoint := alloy.NewBody().Set("url", alloy.String(c.URL))
		if c.BasicAuth != nil {
			endpoint.Set("basic_auth", alloy.NewBody().
				Set("username", alloy.String(c.BasicAuth.Username)).
				Set("password", alloy.String(c.BasicAuth.Password)))
		}
		comp.Body.
			Set("endpoint", endpoint).
			Set("external_labels", alloy.NewBody())

		b.comps = append(b.comps, comp)
	}
	return nil
}

func (b *Builder) scrapeConfigs() error {
	for i := range b.cfg.ScrapeConfigs {
		job := &b.cfg.ScrapeConfigs[i]
		name := job.JobName
		if name == "" {
			name = "unknown"
		}

		if job.StaticConfigs != nil {
			if err := b.staticConfigs(job, name); err != nil {
				return fmt.Errorf("job %q: %w", name, err)
			}
		}
		if job.Journal != nil {
			if err := b.journal(job, name); err != nil {
				return fmt.Errorf("job %q: %w", name, err)
			}
		}
	}
	return nil
}

// staticConfigs synthesizes a (local.file_match, loki.source.file) pair per
// static entry. Targets are decorated with the entry's labels; pipeline
// stages attach to the source in the legacy inline form.
func (b *Builder) staticConfigs(job *promtail.ScrapeConfig, name string) error {
	for _, sc := range job.StaticConfigs {
		match := alloy.NewComponent("local.file_match", b.allocID("local.file_match", name))

		var pathTargets alloy.List
		for _, target := range sc.Targets {
			rec := alloy.NewBody().Set("__address__", alloy.String(target))
			for _, p := range sc.Labels {
				rec.Set(p.Key, alloy.FromGo(p.Value))
			}
			pathTargets = append(pathTargets, rec)
		}
		match.Body.Set("path_targets", pathTargets)
		b.comps = append(b.comps, match)

		src := alloy.NewComponent("loki.source.file", b.allocID("loki.source.file", name))
		src.Body.
			Set("targets", match.Expr("targets")).
			Set("forward_to", alloy.List{alloy.Reference(defaultReceiver)})

		if job.PipelineStages != nil {
			inline, err := TranslateInline(job.PipelineStages, b.report)
			if err != nil {
				return err
			}
			if inline != "" {
				src.Body.Set("stages", alloy.String(inline))
			}
		}
		b.comps = append(b.comps, src)
	}
	return nil
}

// journal synthesizes a loki.source.journal component, plus a loki.process
// component when pipeline stages exist and a loki.relabel component when
// relabel rules exist. The forward target is decided before the journal is
// built; the relabel component, when present, is spliced between the
// journal and that original target.
func (b *Builder) journal(job *promtail.ScrapeConfig, name string) error {
	needsProcess := len(job.PipelineStages) > 0

	forward := alloy.Reference(defaultReceiver)
	var processID string
	if needsProcess {
		processID = b.allocID("loki.process", name)
		forward = alloy.Reference("loki.process." + processID + ".receiver")
	}

	src := alloy.NewComponent("loki.source.journal", b.allocID("loki.source.journal", name))
	src.Body.Set("forward_to", alloy.List{forward})
	if job.Journal.MaxAge != nil {
		src.Body.Set("max_age", alloy.String(*job.Journal.MaxAge))
	}
	if job.Journal.Labels != nil {
		labels := alloy.NewBody()
		for _, p := range job.Journal.Labels {
			labels.Set(p.Key, alloy.FromGo(p.Value))
		}
		src.Body.Set("labels", labels)
	}

	if len(job.RelabelConfigs) > 0 {
		relabel := alloy.NewComponent("loki.relabel", b.allocID("loki.relabel", name+"_relabel"))
		relabel.Body.
			Set("forward_to", alloy.List{forward}).
			Set("rule", translateRelabelRules(job.RelabelConfigs))
		b.comps = append(b.comps, relabel)

		// The journal now feeds the relabel component, which feeds the
		// journal's original target.
		src.Body.Set("forward_to", alloy.List{relabel.Expr("receiver")})
	}
	b.comps = append(b.comps, src)

	if needsProcess {
		stages, err := TranslateStages(job.PipelineStages, b.report)
		if err != nil {
			return err
		}
		proc := alloy.NewComponent("loki.process", processID)
		proc.Body.
			Set("forward_to", alloy.List{alloy.Reference(defaultReceiver)}).
			Set("stages", stages)
		b.comps = append(b.comps, proc)
	}
	return nil
}

// translateRelabelRules passes relabel rules through in input order. Only
// keys present in the source appear in the rule block.
func translateRelabelRules(cfgs []promtail.RelabelConfig) alloy.Rules {
	rules := make(alloy.Rules, 0, len(cfgs))
	for _, rc := range cfgs {
		rule := alloy.NewBody()
		if rc.SourceLabels != nil {
			labels := make(alloy.List, 0, len(rc.SourceLabels))
			for _, l := range rc.SourceLabels {
				labels = append(labels, alloy.String(l))
			}
			rule.Set("source_labels", labels)
		}
		if rc.TargetLabel != nil {
			rule.Set("target_label", alloy.String(*rc.TargetLabel))
		}
		if rc.Regex != nil {
			rule.Set("regex", alloy.String(*rc.Regex))
		}
		if rc.Replacement != nil {
			rule.Set("replacement", alloy.String(*rc.Replacement))
		}
		if rc.Action != nil {
			rule.Set("action", alloy.String(*rc.Action))
		}
		rules = append(rules, rule)
	}
	return rules
}
