package cli

import (
	"io"

	"github.com/gookit/color"
)

// Console status helpers. Status and warning lines go to the error stream
// so the migrated configuration on stdout stays pipeable.

func successf(w io.Writer, format string, args ...any) {
	color.Fprintf(w, "<green>✓</> "+format+"\n", args...)
}

func failf(w io.Writer, format string, args ...any) {
	color.Fprintf(w, "<red>✗</> "+format+"\n", args...)
}

func warnf(w io.Writer, format string, args ...any) {
	color.Fprintf(w, "<yellow>Warning:</> "+format+"\n", args...)
}

func notef(w io.Writer, format string, args ...any) {
	color.Fprintf(w, "<yellow>Note:</> "+format+"\n", args...)
}
