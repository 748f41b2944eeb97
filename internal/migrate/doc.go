// Package migrate turns a parsed Promtail configuration into an ordered
// list of Alloy components. The Builder walks the source document top to
// bottom, allocates document-unique component identifiers, wires components
// together through forward references, and records every construct it had
// to skip so callers can ask the user for a manual review.
package migrate
