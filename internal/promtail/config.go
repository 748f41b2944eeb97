package promtail

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the parsed source document. It is read-only once loaded; the
// graph builder never mutates it.
type Config struct {
	Clients       []Client       `yaml:"clients"`
	ScrapeConfigs []ScrapeConfig `yaml:"scrape_configs"`
}

// Client describes one log-destination endpoint. It maps 1:1 to a
// loki.write component.
type Client struct {
	URL       string     `yaml:"url"`
	BasicAuth *BasicAuth `yaml:"basic_auth"`
}

// BasicAuth carries the credential pair of a client endpoint.
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ScrapeConfig describes one scrape job. A job may carry static file
// configs, a journal config, or both; a job with neither contributes no
// components.
type ScrapeConfig struct {
	JobName        string          `yaml:"job_name"`
	StaticConfigs  []StaticConfig  `yaml:"static_configs"`
	Journal        *JournalConfig  `yaml:"journal"`
	PipelineStages []PipelineStage `yaml:"pipeline_stages"`
	RelabelConfigs []RelabelConfig `yaml:"relabel_configs"`
}

// StaticConfig is one static file-target entry of a scrape job.
type StaticConfig struct {
	Targets []string   `yaml:"targets"`
	Labels  OrderedMap `yaml:"labels"`
}

// JournalConfig describes systemd journal scraping. Fields the migrator
// does not translate (path, matches) are ignored by the loader.
type JournalConfig struct {
	MaxAge *string    `yaml:"max_age"`
	Labels OrderedMap `yaml:"labels"`
}

// RelabelConfig is one relabeling rule. Pointer fields distinguish an
// absent key from an empty value, since only present keys appear in the
// translated rule block.
type RelabelConfig struct {
	SourceLabels []string `yaml:"source_labels"`
	TargetLabel  *string  `yaml:"target_label"`
	Regex        *string  `yaml:"regex"`
	Replacement  *string  `yaml:"replacement"`
	Action       *string  `yaml:"action"`
}

// Pair is one entry of an OrderedMap.
type Pair struct {
	Key   string
	Value any
}

// OrderedMap is a YAML mapping decoded with its document order intact. A
// nil OrderedMap means the key was absent; a non-nil empty one means it was
// present but empty.
type OrderedMap []Pair

// UnmarshalYAML decodes a mapping node pair by pair, preserving order.
func (m *OrderedMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, nodeKind(node))
	}
	out := OrderedMap{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}
		var val any
		if err := node.Content[i+1].Decode(&val); err != nil {
			return err
		}
		out = append(out, Pair{Key: key, Value: val})
	}
	*m = out
	return nil
}

// StageKind tags a pipeline stage variant.
type StageKind string

// The stage kinds the migrator recognizes. Anything else decodes as
// StageUnknown and is skipped with a manual-review note.
const (
	StageRegex    StageKind = "regex"
	StageJSON     StageKind = "json"
	StageLabels   StageKind = "labels"
	StageOutput   StageKind = "output"
	StageTemplate StageKind = "template"
	StageMatch    StageKind = "match"
	StageMetrics  StageKind = "metrics"
	StageUnknown  StageKind = "unknown"
)

// PipelineStage is the closed tagged variant over pipeline stage kinds.
// Exactly one payload field matching Kind is populated. For StageUnknown,
// RawKind holds the unrecognized key so it can be reported.
type PipelineStage struct {
	Kind     StageKind
	RawKind  string
	Regex    *RegexStage
	JSON     *JSONStage
	Labels   OrderedMap
	Output   *OutputStage
	Template *TemplateStage
	Match    *MatchStage
}

// RegexStage extracts fields from a log line with a regular expression.
type RegexStage struct {
	Expression *string `yaml:"expression"`
}

// JSONStage extracts fields from a JSON log line.
type JSONStage struct {
	Source      *string    `yaml:"source"`
	Expressions OrderedMap `yaml:"expressions"`
}

// OutputStage replaces the log line with an extracted field.
type OutputStage struct {
	Source *string `yaml:"source"`
}

// TemplateStage rewrites an extracted field through a text template.
type TemplateStage struct {
	Source   *string `yaml:"source"`
	Template *string `yaml:"template"`
}

// MatchStage conditionally applies a nested stage list. The nesting is the
// recursive part of the source schema: nested stages execute only when the
// selector applies.
type MatchStage struct {
	Selector     *string         `yaml:"selector"`
	PipelineName *string         `yaml:"pipeline_name"`
	Action       *string         `yaml:"action"`
	Stages       []PipelineStage `yaml:"stages"`
}

// UnmarshalYAML decodes the single-key stage mapping into the matching
// variant. The first key of the mapping decides the kind.
func (s *PipelineStage) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) < 2 {
		return fmt.Errorf("line %d: pipeline stage must be a single-key mapping", node.Line)
	}
	var key string
	if err := node.Content[0].Decode(&key); err != nil {
		return err
	}
	payload := node.Content[1]

	switch StageKind(key) {
	case StageRegex:
		s.Kind = StageRegex
		s.Regex = &RegexStage{}
		return payload.Decode(s.Regex)
	case StageJSON:
		s.Kind = StageJSON
		s.JSON = &JSONStage{}
		return payload.Decode(s.JSON)
	case StageLabels:
		s.Kind = StageLabels
		if payload.Kind == yaml.MappingNode {
			return payload.Decode(&s.Labels)
		}
		// "labels:" with no body is legal and means an empty set.
		s.Labels = OrderedMap{}
		return nil
	case StageOutput:
		s.Kind = StageOutput
		s.Output = &OutputStage{}
		return payload.Decode(s.Output)
	case StageTemplate:
		s.Kind = StageTemplate
		s.Template = &TemplateStage{}
		return payload.Decode(s.Template)
	case StageMatch:
		s.Kind = StageMatch
		s.Match = &MatchStage{}
		return payload.Decode(s.Match)
	case StageMetrics:
		// Metrics stages are never translated, so the payload is dropped.
		s.Kind = StageMetrics
		return nil
	default:
		s.Kind = StageUnknown
		s.RawKind = key
		return nil
	}
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown node"
}
