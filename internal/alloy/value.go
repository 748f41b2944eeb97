package alloy

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Value is the discriminated union of attribute value shapes the formatter
// understands. Implementations are Scalar, Reference, *Body, List, Stages
// and Rules.
type Value interface {
	isValue()
}

// Scalar is a single literal value. It wraps a cty.Value so literal
// rendering (quoting, escaping, bare numbers and booleans) is exactly what
// the HCL toolchain produces.
type Scalar struct {
	Val cty.Value
}

func (Scalar) isValue() {}

// String returns a string scalar.
func String(s string) Scalar { return Scalar{Val: cty.StringVal(s)} }

// Bool returns a boolean scalar.
func Bool(b bool) Scalar { return Scalar{Val: cty.BoolVal(b)} }

// Number returns a numeric scalar.
func Number(n int64) Scalar { return Scalar{Val: cty.NumberIntVal(n)} }

// FromGo converts a dynamically-typed value, as produced by a YAML decoder,
// into a Scalar. Unknown types fall back to their string representation;
// nil becomes a null literal.
func FromGo(v any) Scalar {
	switch t := v.(type) {
	case nil:
		return Scalar{Val: cty.NullVal(cty.String)}
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Number(int64(t))
	case int64:
		return Number(t)
	case float64:
		return Scalar{Val: cty.NumberFloatVal(t)}
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// Reference is a component expression such as
// "loki.write.default.receiver". References are emitted verbatim, never
// quoted.
type Reference string

func (Reference) isValue() {}

// referencePrefixes are the component namespaces a bare string may belong
// to. A string scalar that starts with one of these is treated as a
// reference and emitted unquoted.
var referencePrefixes = []string{"loki.", "local.", "prometheus."}

// IsReference reports whether s looks like a component expression rather
// than an ordinary string value.
func IsReference(s string) bool {
	for _, p := range referencePrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Attr is one key/value entry of a Body. Order of attrs is significant and
// preserved through to the emitted text.
type Attr struct {
	Key   string
	Value Value
}

// Body is an insertion-ordered set of attributes. It doubles as the map
// node of the value tree and as the attribute tree of a whole component.
type Body struct {
	attrs []Attr
}

func (*Body) isValue() {}

// NewBody returns an empty attribute body.
func NewBody() *Body { return &Body{} }

// Set appends the attribute, or replaces the value in place when the key is
// already present so the attribute keeps its original position.
func (b *Body) Set(key string, v Value) *Body {
	for i := range b.attrs {
		if b.attrs[i].Key == key {
			b.attrs[i].Value = v
			return b
		}
	}
	b.attrs = append(b.attrs, Attr{Key: key, Value: v})
	return b
}

// Get returns the value stored under key, or nil.
func (b *Body) Get(key string) Value {
	for _, a := range b.attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return nil
}

// Attrs returns the attributes in insertion order.
func (b *Body) Attrs() []Attr { return b.attrs }

// Len returns the number of attributes.
func (b *Body) Len() int { return len(b.attrs) }

// List is an ordered sequence of values.
type List []Value

func (List) isValue() {}

// Stage is one structured pipeline stage hosted by a processing component:
// a block header such as "stage.regex" plus its attributes.
type Stage struct {
	Type string
	Body *Body
}

// Stages is the structured stage list of a processing component. It formats
// as one nested block per stage, blank-line separated.
type Stages []Stage

func (Stages) isValue() {}

// Rules is an ordered list of relabel rules. It bypasses normal key/value
// formatting and emits one bare "rule { ... }" block per entry.
type Rules []*Body

func (Rules) isValue() {}

// Component is one named, typed unit of the target configuration, e.g.
// loki.write "default". Components are built once, appended to the output
// list and never mutated afterwards.
type Component struct {
	Kind string
	ID   string
	Body *Body
}

// NewComponent returns a component with an empty body.
func NewComponent(kind, id string) *Component {
	return &Component{Kind: kind, ID: id, Body: NewBody()}
}

// Expr returns the dotted expression addressing a field of this component,
// e.g. Expr("receiver") on loki.write "default" yields
// "loki.write.default.receiver".
func (c *Component) Expr(field string) Reference {
	return Reference(c.Kind + "." + c.ID + "." + field)
}
