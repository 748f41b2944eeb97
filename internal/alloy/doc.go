// Package alloy models the target side of a migration: a flat, ordered list
// of Grafana Alloy components, each carrying a tree of typed attribute
// values, plus the formatter that renders that tree into Alloy's concrete
// block/attribute syntax.
//
// The package knows nothing about Promtail or node_exporter semantics. It
// only understands value shapes (scalars, references, ordered maps, lists,
// stage blocks, relabel rules) and the formatting rules Alloy applies to
// each of them.
package alloy
