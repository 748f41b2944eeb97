package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ACE-IoT-Solutions/alloy-migrator/internal/validate"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config.river>",
		Short: "Validate an Alloy configuration file (requires the alloy binary)",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	errW := cmd.ErrOrStderr()

	result, err := validate.Run(cmd.Context(), args[0])
	if errors.Is(err, validate.ErrAlloyNotFound) {
		// The translation already succeeded; an absent validator is only
		// worth a warning.
		warnf(errW, "alloy binary not found. Install it to validate configurations.")
		fmt.Fprintln(errW, "Visit: "+validate.InstallHint)
		return nil
	}
	if err != nil {
		return exitErrorf(1, "failed to validate configuration: %v", err)
	}

	if result.Valid {
		successf(errW, "Configuration is valid")
		return nil
	}

	failf(errW, "Configuration has errors:")
	fmt.Fprint(errW, result.Diagnostics)
	return exitErrorf(1, "configuration is invalid")
}
