package alloy

import "strings"

// FormatComponent renders a single component block.
func FormatComponent(c *Component) []string {
	lines := []string{c.Kind + " \"" + c.ID + "\" {"}
	for _, a := range c.Body.Attrs() {
		lines = append(lines, formatAttr(a.Key, a.Value, 2)...)
	}
	return append(lines, "}")
}

// Emit walks the ordered component list and renders the final document,
// one blank line between components. The component order is whatever the
// builder decided; references resolve by name, so ordering only affects
// readability.
func Emit(components []*Component) string {
	var lines []string
	for _, c := range components {
		lines = append(lines, FormatComponent(c)...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
