// Package promtail models the source side of a migration: the subset of a
// Promtail agent configuration the migrator understands, plus the YAML
// loader that produces it.
//
// Pipeline stages decode into a closed tagged variant (Kind plus one
// populated payload) so every unsupported stage kind is an explicit case at
// the translation boundary rather than a silent branch. Maps whose entry
// order is visible in the output (labels, json expressions) decode into an
// order-preserving pair list instead of a Go map.
package promtail
