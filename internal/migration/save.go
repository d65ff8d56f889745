// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/guestctl/guestctl/internal/domctl"
	"github.com/guestctl/guestctl/internal/savefile"
)

// SaveOptions control a save invocation.
type SaveOptions struct {
	// OverrideConfigPath replaces the domain's live configuration.
	OverrideConfigPath string
	// Checkpoint leaves the domain running after the save.
	Checkpoint bool
	// LeavePaused leaves the domain paused after the save.
	LeavePaused bool
	Debug       bool
	// Stderr receives operator-facing status messages. Defaults to
	// [os.Stderr].
	Stderr io.Writer
}

// Save writes the domain's configuration and state to the given file. By
// default the domain is destroyed afterwards; Checkpoint and LeavePaused
// keep it. A failed suspend resumes the domain.
func Save(
	ctx context.Context,
	ctrl domctl.Controller,
	nameOrID string,
	path string,
	opts SaveOptions,
) error {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	dom, err := ctrl.Lookup(ctx, nameOrID)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", nameOrID, err)
	}

	config, err := domctl.BuildConfig(ctx, ctrl, dom.ID, opts.OverrideConfigPath)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open save file: %w", err)
	}

	err = savefile.WriteConfig(file, path, config)
	if err != nil {
		file.Close()

		return err
	}

	err = ctrl.Suspend(ctx, dom.ID, file, domctl.SuspendOptions{
		Debug: opts.Debug,
	})

	closeErr := file.Close()

	if err != nil {
		// A timed-out suspend means the guest may still be running, so it
		// is left alone rather than resumed blindly.
		if errors.Is(err, domctl.ErrSuspendTimeout) {
			fmt.Fprintln(stderr, "Failed to save domain, could not suspend.")

			return fmt.Errorf("suspend domain: %w", err)
		}

		fmt.Fprintln(stderr, "Failed to save domain, resuming domain.")

		resumeErr := ctrl.Resume(ctx, dom.ID)
		if resumeErr != nil {
			slog.Error("Failed to resume domain after failed save",
				slog.Any("error", resumeErr))
		}

		return fmt.Errorf("suspend domain: %w", err)
	}

	if closeErr != nil {
		return fmt.Errorf("close save file: %w", closeErr)
	}

	switch {
	case opts.LeavePaused:
		err = ctrl.Pause(ctx, dom.ID)
		if err != nil {
			return fmt.Errorf("pause: %w", err)
		}

		err = ctrl.Resume(ctx, dom.ID)

	case opts.Checkpoint:
		err = ctrl.Resume(ctx, dom.ID)

	default:
		err = ctrl.Destroy(ctx, dom.ID)
	}

	if err != nil {
		return fmt.Errorf("finish save: %w", err)
	}

	return nil
}

// RestoreOptions control a restore invocation.
type RestoreOptions struct {
	// OverrideConfigPath replaces the configuration embedded in the save
	// file.
	OverrideConfigPath string
	// Paused leaves the restored domain paused.
	Paused bool
	Debug  bool
}

// Restore recreates a domain from a save file under its canonical name.
func Restore(
	ctx context.Context,
	ctrl domctl.Controller,
	path string,
	opts RestoreOptions,
) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open save file: %w", err)
	}
	defer file.Close()

	_, configBytes, err := savefile.ReadConfig(file)
	if err != nil {
		return err
	}

	var cfg *domctl.Config

	if opts.OverrideConfigPath != "" {
		data, err := os.ReadFile(opts.OverrideConfigPath)
		if err != nil {
			return &domctl.ConfigError{Op: "read override", Err: err}
		}

		cfg, err = domctl.ParseConfig(data)
		if err != nil {
			return err
		}
	} else {
		if len(configBytes) == 0 {
			return ErrNoConfig
		}

		cfg, err = domctl.DecodeConfig(configBytes)
		if err != nil {
			return err
		}
	}

	dom, err := ctrl.Restore(ctx, file, cfg, domctl.RestoreOptions{
		Name:  cfg.Name,
		Debug: opts.Debug,
	})
	if err != nil {
		return fmt.Errorf("restore domain: %w", err)
	}

	if opts.Paused {
		return nil
	}

	err = ctrl.Unpause(ctx, dom.ID)
	if err != nil {
		return fmt.Errorf("unpause restored domain: %w", err)
	}

	return nil
}
