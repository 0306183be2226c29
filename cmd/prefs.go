package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tessera/internal/repositories"
	"github.com/desertthunder/tessera/internal/shared"
	"github.com/urfave/cli/v3"
)

// PrefsShow prints every preference with defaults applied.
func (r *Runner) PrefsShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(); err != nil {
		return err
	}

	all, err := repositories.NewPreferences(r.store).All()
	if err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(all, true)
	}

	for _, key := range repositories.PreferenceKeys {
		r.writePlain("%-16s %s\n", key, all[key])
	}
	return nil
}

// PrefsSet validates and stores one preference.
func (r *Runner) PrefsSet(ctx context.Context, cmd *cli.Command) error {
	key, value := cmd.StringArg("key"), cmd.StringArg("value")
	if key == "" || value == "" {
		return fmt.Errorf("%w: usage: tessera prefs set <key> <value>", shared.ErrMissingArgument)
	}
	if !repositories.IsPreference(key) {
		return fmt.Errorf("%w: unknown preference %q (known: %v)", shared.ErrInvalidArgument, key, repositories.PreferenceKeys)
	}
	if err := r.openStore(); err != nil {
		return err
	}

	prefs := repositories.NewPreferences(r.store)
	if err := prefs.Set(key, value); err != nil {
		return err
	}

	all, err := prefs.All()
	if err != nil {
		return err
	}
	r.logger.Debug("preference updated", "key", key, "value", all[key])
	return r.writePlain("✓ %s = %s\n", key, all[key])
}
