package alloy

import (
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// attributeMapKeys are the map-valued attributes Alloy declares as plain
// attributes rather than blocks. They render in brace-literal form,
// collapsing to "{}" when empty.
var attributeMapKeys = map[string]bool{
	"labels":          true,
	"external_labels": true,
}

// quote renders a single cty value as an HCL literal, so string escaping,
// bare numbers and booleans all match what the Alloy parser expects.
// hclwrite doubles the template introducers ${ and %{, but Alloy strings
// carry no template syntax, so those sequences are restored verbatim.
// Relabel replacements like "${1}" depend on this.
func quote(v cty.Value) string {
	s := string(hclwrite.TokensForValue(v).Bytes())
	s = strings.ReplaceAll(s, "$${", "${")
	s = strings.ReplaceAll(s, "%%{", "%{")
	return s
}

// QuoteString renders s as a quoted HCL string literal.
func QuoteString(s string) string {
	return quote(cty.StringVal(s))
}

// literal renders a value in expression position: inside list brackets,
// record fields and rule bodies. References stay verbatim, everything else
// is quoted.
func literal(v Value) string {
	switch t := v.(type) {
	case Scalar:
		return quote(t.Val)
	case Reference:
		return string(t)
	case List:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, literal(e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Body:
		parts := make([]string, 0, t.Len())
		for _, a := range t.Attrs() {
			parts = append(parts, a.Key+" = "+literal(a.Value))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return ""
	}
}

// formatAttr renders one attribute at the given indentation (in spaces) and
// returns the resulting lines. This is the single entry point for every
// shape-specific rule of the target syntax.
func formatAttr(key string, v Value, indent int) []string {
	pad := strings.Repeat(" ", indent)
	switch t := v.(type) {
	case Scalar:
		if t.Val.Type() == cty.String && !t.Val.IsNull() && IsReference(t.Val.AsString()) {
			return []string{pad + key + " = " + t.Val.AsString()}
		}
		return []string{pad + key + " = " + quote(t.Val)}
	case Reference:
		return []string{pad + key + " = " + string(t)}
	case *Body:
		if attributeMapKeys[key] {
			return formatMapAttr(key, t, indent)
		}
		if t.Len() == 0 {
			return []string{pad + key + " = {}"}
		}
		lines := []string{pad + key + " {"}
		for _, a := range t.Attrs() {
			lines = append(lines, formatAttr(a.Key, a.Value, indent+2)...)
		}
		return append(lines, pad+"}")
	case List:
		if recs, ok := recordList(t); ok && len(recs) > 0 {
			return formatRecordList(key, recs, indent)
		}
		if key == "forward_to" {
			return []string{pad + key + " = [" + joinTargets(t) + "]"}
		}
		return []string{pad + key + " = " + literal(t)}
	case Stages:
		return formatStages(t, indent)
	case Rules:
		return formatRules(t, indent)
	}
	return nil
}

// formatMapAttr renders a labels-class map: all pairs on one
// trailing-comma-terminated line between the braces.
func formatMapAttr(key string, b *Body, indent int) []string {
	pad := strings.Repeat(" ", indent)
	if b.Len() == 0 {
		return []string{pad + key + " = {}"}
	}
	parts := make([]string, 0, b.Len())
	for _, a := range b.Attrs() {
		parts = append(parts, a.Key+" = "+literal(a.Value))
	}
	return []string{
		pad + key + " = {",
		pad + "  " + strings.Join(parts, ", ") + ",",
		pad + "}",
	}
}

// recordList reports whether every element of the list is a record (*Body).
func recordList(l List) ([]*Body, bool) {
	recs := make([]*Body, 0, len(l))
	for _, v := range l {
		b, ok := v.(*Body)
		if !ok {
			return nil, false
		}
		recs = append(recs, b)
	}
	return recs, true
}

// formatRecordList renders a homogeneous record list such as path_targets.
// A single record collapses onto the opening bracket; multiple records get
// one brace block per line, each trailing-comma-terminated.
func formatRecordList(key string, recs []*Body, indent int) []string {
	pad := strings.Repeat(" ", indent)
	if len(recs) == 1 {
		lines := []string{pad + key + " = [{"}
		for _, a := range recs[0].Attrs() {
			lines = append(lines, pad+"  "+a.Key+" = "+literal(a.Value)+",")
		}
		return append(lines, pad+"}]")
	}
	lines := []string{pad + key + " = ["}
	for _, r := range recs {
		lines = append(lines, pad+"  {")
		for _, a := range r.Attrs() {
			lines = append(lines, pad+"    "+a.Key+" = "+literal(a.Value)+",")
		}
		lines = append(lines, pad+"  },")
	}
	return append(lines, pad+"]")
}

// joinTargets renders the elements of a forward_to list. Component
// expressions stay bare; anything else is quoted.
func joinTargets(l List) string {
	parts := make([]string, 0, len(l))
	for _, v := range l {
		switch t := v.(type) {
		case Reference:
			parts = append(parts, string(t))
		case Scalar:
			if t.Val.Type() == cty.String && !t.Val.IsNull() && IsReference(t.Val.AsString()) {
				parts = append(parts, t.Val.AsString())
				continue
			}
			parts = append(parts, quote(t.Val))
		default:
			parts = append(parts, literal(v))
		}
	}
	return strings.Join(parts, ", ")
}

// formatStages renders the structured stage list of a processing component:
// one nested block per stage, blank-line separated. Map-valued stage fields
// (json expressions, label values) render in brace-literal form with one
// pair per line.
func formatStages(st Stages, indent int) []string {
	pad := strings.Repeat(" ", indent)
	var lines []string
	for _, s := range st {
		lines = append(lines, pad+s.Type+" {")
		for _, a := range s.Body.Attrs() {
			if m, ok := a.Value.(*Body); ok {
				lines = append(lines, pad+"  "+a.Key+" = {")
				for _, e := range m.Attrs() {
					lines = append(lines, pad+"    "+e.Key+" = "+literal(e.Value))
				}
				lines = append(lines, pad+"  }")
				continue
			}
			lines = append(lines, pad+"  "+a.Key+" = "+literal(a.Value))
		}
		lines = append(lines, pad+"}", "")
	}
	return lines
}

// formatRules renders relabel rules as bare "rule { ... }" blocks,
// blank-line separated, bypassing the normal key/value form entirely.
func formatRules(rules Rules, indent int) []string {
	pad := strings.Repeat(" ", indent)
	var lines []string
	for _, r := range rules {
		lines = append(lines, pad+"rule {")
		for _, a := range r.Attrs() {
			lines = append(lines, pad+"  "+a.Key+" = "+literal(a.Value))
		}
		lines = append(lines, pad+"}", "")
	}
	return lines
}
