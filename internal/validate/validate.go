// Package validate hands an emitted configuration to the external `alloy`
// binary for a syntax check. The binary is an opaque collaborator: only its
// pass/fail status and diagnostic text are used. Its absence is a warning
// condition, not an error — by the time validation runs, the translation
// has already succeeded.
package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/ctxlog"
)

// ErrAlloyNotFound reports that the alloy binary is not installed. Callers
// should surface it as a warning with an installation hint.
var ErrAlloyNotFound = errors.New("alloy binary not found in PATH")

// InstallHint points the user at the validator's installation docs.
const InstallHint = "https://grafana.com/docs/alloy/latest/get-started/install/"

// Result is the validator's verdict on a configuration file.
type Result struct {
	Valid       bool
	Diagnostics string
}

// Run executes `alloy validate <path>` and captures its verdict.
func Run(ctx context.Context, path string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	bin, err := exec.LookPath("alloy")
	if err != nil {
		return nil, ErrAlloyNotFound
	}
	logger.Debug("Running external validator.", "binary", bin, "config", path)

	cmd := exec.CommandContext(ctx, bin, "validate", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{Valid: false, Diagnostics: stderr.String()}, nil
		}
		return nil, fmt.Errorf("running alloy validate: %w", err)
	}
	return &Result{Valid: true}, nil
}
