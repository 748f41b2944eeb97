package migrate

import (
	"fmt"
	"strings"

	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/alloy"
	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/promtail"
)

// Reasons attached to skipped constructs. The caller surfaces these as
// manual-review notices.
const (
	reasonMatchStructured = "match stages cannot be expressed in a loki.process block and need manual review"
	reasonMetrics         = "metrics stages require manual review"
	reasonUnknown         = "unrecognized stage kind"
)

// TranslateStages converts pipeline stages into the structured stage list
// hosted by a loki.process component. Unsupported stage kinds are recorded
// on the report and omitted; a structurally broken stage aborts the
// translation.
func TranslateStages(stages []promtail.PipelineStage, rep *Report) (alloy.Stages, error) {
	var out alloy.Stages
	for i, st := range stages {
		stage, err := translateStage(st, rep)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		if stage != nil {
			out = append(out, *stage)
		}
	}
	return out, nil
}

// translateStage maps one source stage onto its structured form, or nil
// when the kind has no structured equivalent.
func translateStage(st promtail.PipelineStage, rep *Report) (*alloy.Stage, error) {
	switch st.Kind {
	case promtail.StageRegex:
		if st.Regex.Expression == nil {
			return nil, fmt.Errorf("regex stage: missing expression")
		}
		body := alloy.NewBody().Set("expression", alloy.String(*st.Regex.Expression))
		return &alloy.Stage{Type: "stage.regex", Body: body}, nil

	case promtail.StageJSON:
		exprs := alloy.NewBody()
		for _, p := range st.JSON.Expressions {
			exprs.Set(p.Key, alloy.FromGo(p.Value))
		}
		body := alloy.NewBody().
			Set("expressions", exprs).
			Set("source", alloy.String(deref(st.JSON.Source)))
		return &alloy.Stage{Type: "stage.json", Body: body}, nil

	case promtail.StageLabels:
		values := alloy.NewBody()
		for _, p := range st.Labels {
			values.Set(p.Key, labelValue(p.Value))
		}
		body := alloy.NewBody().Set("values", values)
		return &alloy.Stage{Type: "stage.labels", Body: body}, nil

	case promtail.StageOutput:
		if st.Output.Source == nil {
			return nil, fmt.Errorf("output stage: missing source")
		}
		body := alloy.NewBody().Set("source", alloy.String(*st.Output.Source))
		return &alloy.Stage{Type: "stage.output", Body: body}, nil

	case promtail.StageTemplate:
		if st.Template.Source == nil || st.Template.Template == nil {
			return nil, fmt.Errorf("template stage: missing source or template")
		}
		body := alloy.NewBody().
			Set("source", alloy.String(*st.Template.Source)).
			Set("template", alloy.String(*st.Template.Template))
		return &alloy.Stage{Type: "stage.template", Body: body}, nil

	case promtail.StageMatch:
		rep.skip("match", reasonMatchStructured)
		return nil, nil

	case promtail.StageMetrics:
		rep.skip("metrics", reasonMetrics)
		return nil, nil

	default:
		rep.skip(st.RawKind, reasonUnknown)
		return nil, nil
	}
}

// TranslateInline converts pipeline stages into the legacy inline pipeline
// string attached directly to a loki.source.file component, e.g.
// `stage.regex { ... } | stage.json { ... }`. An empty result means every
// stage was skipped.
func TranslateInline(stages []promtail.PipelineStage, rep *Report) (string, error) {
	var snippets []string
	for i, st := range stages {
		snippet, err := translateInlineStage(st, rep)
		if err != nil {
			return "", fmt.Errorf("stage %d: %w", i, err)
		}
		if snippet != "" {
			snippets = append(snippets, snippet)
		}
	}
	if len(snippets) == 0 {
		return "", nil
	}
	return "stage." + strings.Join(snippets, " | stage."), nil
}

// translateInlineStage renders one stage as a DSL snippet without the
// leading "stage." prefix; the caller adds it when joining.
func translateInlineStage(st promtail.PipelineStage, rep *Report) (string, error) {
	switch st.Kind {
	case promtail.StageMatch:
		return inlineMatch(st.Match, rep)

	case promtail.StageRegex:
		if st.Regex.Expression == nil {
			return "", fmt.Errorf("regex stage: missing expression")
		}
		return fmt.Sprintf("regex { expression = %s }", alloy.QuoteString(*st.Regex.Expression)), nil

	case promtail.StageJSON:
		return inlineJSON(st.JSON), nil

	case promtail.StageLabels:
		return inlineLabels(st.Labels), nil

	case promtail.StageMetrics:
		rep.skip("metrics", reasonMetrics)
		return "metrics { /* Metrics configuration requires manual review */ }", nil

	case promtail.StageTemplate:
		if st.Template.Source == nil || st.Template.Template == nil {
			return "", fmt.Errorf("template stage: missing source or template")
		}
		return fmt.Sprintf("template { source = %s, template = %s }",
			alloy.QuoteString(*st.Template.Source),
			alloy.QuoteString(*st.Template.Template)), nil

	case promtail.StageOutput:
		if st.Output.Source == nil {
			return "", fmt.Errorf("output stage: missing source")
		}
		return fmt.Sprintf("output { source = %s }", alloy.QuoteString(*st.Output.Source)), nil

	default:
		rep.skip(st.RawKind, reasonUnknown)
		return "", nil
	}
}

// inlineMatch renders a match stage, recursing into its nested stage list.
// Selector, pipeline_name and action appear only when present in the
// source.
func inlineMatch(m *promtail.MatchStage, rep *Report) (string, error) {
	parts := []string{"match {"}

	if m.Selector != nil {
		parts = append(parts, "  selector = "+alloy.QuoteString(*m.Selector))
	}
	if m.PipelineName != nil {
		parts = append(parts, "  pipeline_name = "+alloy.QuoteString(*m.PipelineName))
	}
	if m.Action != nil {
		parts = append(parts, "  action = "+alloy.QuoteString(*m.Action))
	}

	if len(m.Stages) > 0 {
		var nested []string
		for i, st := range m.Stages {
			snippet, err := translateInlineStage(st, rep)
			if err != nil {
				return "", fmt.Errorf("nested stage %d: %w", i, err)
			}
			if snippet != "" {
				nested = append(nested, "    stage."+snippet)
			}
		}
		if len(nested) > 0 {
			parts = append(parts, "  stage {")
			parts = append(parts, nested...)
			parts = append(parts, "  }")
		}
	}

	parts = append(parts, "}")
	return strings.Join(parts, "\n"), nil
}

func inlineJSON(j *promtail.JSONStage) string {
	parts := []string{"json {"}

	if j.Source != nil {
		parts = append(parts, "  source = "+alloy.QuoteString(*j.Source))
	}
	if j.Expressions != nil {
		parts = append(parts, "  expressions = {")
		for _, p := range j.Expressions {
			parts = append(parts, "    "+p.Key+" = "+alloy.QuoteString(stringify(p.Value)))
		}
		parts = append(parts, "  }")
	}

	parts = append(parts, "}")
	return strings.Join(parts, "\n")
}

func inlineLabels(labels promtail.OrderedMap) string {
	if len(labels) == 0 {
		return "labels {}"
	}
	parts := make([]string, 0, len(labels))
	for _, p := range labels {
		switch v := p.Value.(type) {
		case nil:
			parts = append(parts, p.Key+` = ""`)
		case string:
			if v == "" {
				parts = append(parts, p.Key+` = ""`)
				continue
			}
			parts = append(parts, p.Key+" = "+alloy.QuoteString(v))
		default:
			parts = append(parts, fmt.Sprintf("%s = %v", p.Key, v))
		}
	}
	return fmt.Sprintf("labels { %s }", strings.Join(parts, ", "))
}

// labelValue maps a source label value to its output scalar. Absent and
// empty values both become the empty string literal rather than being
// dropped.
func labelValue(v any) alloy.Scalar {
	if v == nil {
		return alloy.String("")
	}
	return alloy.FromGo(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
