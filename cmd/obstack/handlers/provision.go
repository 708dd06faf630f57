package handlers

import (
	"context"
	"fmt"

	"github.com/obstack/obstack/internal/preflight"
	"github.com/obstack/obstack/internal/provision"
)

// Provision creates the OKE cluster and node pool described by the flat
// config record at configPath, polling each until ACTIVE, and writes the
// returned OCIDs back into the record. Re-running resumes from whatever IDs
// the record already holds.
func Provision(ctx context.Context, configPath string) error {
	logger := newLogger()

	checker := newChecker(logger)
	if err := checker.Run(ctx, preflight.Requirements{Tools: preflight.ProvisionTools()}); err != nil {
		return fmt.Errorf("preflight failed: %w", err)
	}

	record, err := loadRecord(configPath)
	if err != nil {
		return fmt.Errorf("loading config record: %w", err)
	}

	workflow := provision.NewWorkflow(newProvisioner(), logger)
	runErr := workflow.Run(ctx, record)

	// Persist even on failure so a created cluster ID survives for the next
	// attempt instead of being orphaned.
	if err := record.Save(configPath); err != nil {
		if runErr != nil {
			return fmt.Errorf("saving config record after failed run (%v): %w", runErr, err)
		}
		return fmt.Errorf("saving config record: %w", err)
	}
	return runErr
}
