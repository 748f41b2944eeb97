package migrate

import "fmt"

// SkippedStage records one construct the translator omitted from the
// output.
type SkippedStage struct {
	Kind   string
	Reason string
}

// Report accumulates the constructs a translation skipped. A non-empty
// report means the output needs manual review; it never means the
// translation failed.
type Report struct {
	Skipped []SkippedStage
}

func (r *Report) skip(kind, reason string) {
	r.Skipped = append(r.Skipped, SkippedStage{Kind: kind, Reason: reason})
}

// Empty reports whether the translation carried everything over.
func (r *Report) Empty() bool { return len(r.Skipped) == 0 }

// Notes returns one human-readable line per skipped construct.
func (r *Report) Notes() []string {
	notes := make([]string, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		notes = append(notes, fmt.Sprintf("%s stage skipped: %s", s.Kind, s.Reason))
	}
	return notes
}
