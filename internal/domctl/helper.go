// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package domctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultHelper is the hypervisor helper binary driven by
// [HelperController]. It can be overridden with the GUESTCTL_HV environment
// variable.
const DefaultHelper = "guestctl-hv"

// Helper exit code reserved for a suspend that timed out.
const helperExitSuspendTimeout = 3

// HelperController implements [Controller] by running one helper invocation
// per operation with the state streams wired to the helper's stdio.
type HelperController struct {
	// Helper binary to run. Looked up in PATH if not absolute.
	Helper string
}

var _ Controller = (*HelperController)(nil)

// NewHelperController creates a [HelperController] using GUESTCTL_HV or the
// default helper binary.
func NewHelperController() *HelperController {
	helper := os.Getenv("GUESTCTL_HV")
	if helper == "" {
		helper = DefaultHelper
	}

	return &HelperController{Helper: helper}
}

func (h *HelperController) command(
	ctx context.Context,
	args ...string,
) *exec.Cmd {
	cmd := exec.CommandContext(ctx, h.Helper, args...)
	cmd.Stderr = os.Stderr

	return cmd
}

// run runs a helper invocation that produces no output.
func (h *HelperController) run(ctx context.Context, args ...string) error {
	err := h.command(ctx, args...).Run()
	if err != nil {
		return fmt.Errorf("%s %s: %w", h.Helper, args[0], err)
	}

	return nil
}

// runOutput runs a helper invocation and returns its trimmed stdout.
func (h *HelperController) runOutput(
	ctx context.Context,
	args ...string,
) ([]byte, error) {
	var stdout bytes.Buffer

	cmd := h.command(ctx, args...)
	cmd.Stdout = &stdout

	err := cmd.Run()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", h.Helper, args[0], err)
	}

	return bytes.TrimSpace(stdout.Bytes()), nil
}

// parseDomain parses the "id name" line the helper prints for lookup and
// restore.
func parseDomain(out []byte) (Domain, error) {
	fields := strings.Fields(string(out))
	if len(fields) < 2 {
		return Domain{}, fmt.Errorf("unexpected helper output: %q", out)
	}

	id, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return Domain{}, fmt.Errorf("parse domain ID: %w", err)
	}

	return Domain{ID: uint32(id), Name: fields[1]}, nil
}

// Lookup implements [Controller].
func (h *HelperController) Lookup(
	ctx context.Context,
	nameOrID string,
) (Domain, error) {
	out, err := h.runOutput(ctx, "lookup", nameOrID)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Domain{}, fmt.Errorf("%w: %s", ErrDomainNotFound, nameOrID)
		}

		return Domain{}, err
	}

	return parseDomain(out)
}

// RetrieveConfig implements [Controller].
func (h *HelperController) RetrieveConfig(
	ctx context.Context,
	id uint32,
) (*Config, error) {
	out, err := h.runOutput(ctx, "getconfig", formatID(id))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = json.Unmarshal(out, &cfg)
	if err != nil {
		return nil, &ConfigError{Op: "decode helper output", Err: err}
	}

	return &cfg, nil
}

// Suspend implements [Controller]. The helper streams the domain state to
// its stdout, which is wired to the given writer.
func (h *HelperController) Suspend(
	ctx context.Context,
	id uint32,
	state io.Writer,
	opts SuspendOptions,
) error {
	args := []string{"suspend"}
	if opts.Live {
		args = append(args, "--live")
	}

	if opts.Debug {
		args = append(args, "--debug")
	}

	args = append(args, formatID(id))

	cmd := h.command(ctx, args...)
	cmd.Stdout = state

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) &&
			exitErr.ExitCode() == helperExitSuspendTimeout {
			return fmt.Errorf("%w: domain %d", ErrSuspendTimeout, id)
		}

		return fmt.Errorf("%s suspend: %w", h.Helper, err)
	}

	return nil
}

// Resume implements [Controller].
func (h *HelperController) Resume(ctx context.Context, id uint32) error {
	return h.run(ctx, "resume", formatID(id))
}

// Pause implements [Controller].
func (h *HelperController) Pause(ctx context.Context, id uint32) error {
	return h.run(ctx, "pause", formatID(id))
}

// Unpause implements [Controller].
func (h *HelperController) Unpause(ctx context.Context, id uint32) error {
	return h.run(ctx, "unpause", formatID(id))
}

// Rename implements [Controller].
func (h *HelperController) Rename(
	ctx context.Context,
	id uint32,
	newName string,
) error {
	return h.run(ctx, "rename", formatID(id), newName)
}

// Destroy implements [Controller].
func (h *HelperController) Destroy(ctx context.Context, id uint32) error {
	return h.run(ctx, "destroy", formatID(id))
}

// Restore implements [Controller]. The helper reads the domain state from
// its stdin, which is wired to the given reader, and prints the created
// domain. The domain is created paused.
func (h *HelperController) Restore(
	ctx context.Context,
	state io.Reader,
	cfg *Config,
	opts RestoreOptions,
) (Domain, error) {
	args := []string{"restore", "--paused"}
	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}

	switch opts.Kind {
	case StreamCheckpointed:
		args = append(args, "--checkpointed")
	case StreamMirrored:
		args = append(args, "--mirrored")
		if opts.FailoverScript != "" {
			args = append(args, "--failover-script", opts.FailoverScript)
		}
	case StreamNone:
	}

	if opts.Debug {
		args = append(args, "--debug")
	}

	config, err := EncodeConfig(cfg)
	if err != nil {
		return Domain{}, err
	}

	args = append(args, "--config", string(bytes.TrimSuffix(config, []byte{0})))

	var stdout bytes.Buffer

	cmd := h.command(ctx, args...)
	cmd.Stdin = state
	cmd.Stdout = &stdout

	err = cmd.Run()
	if err != nil {
		return Domain{}, fmt.Errorf("%s restore: %w", h.Helper, err)
	}

	return parseDomain(bytes.TrimSpace(stdout.Bytes()))
}

// Replicate implements [Controller].
func (h *HelperController) Replicate(
	ctx context.Context,
	id uint32,
	send io.Writer,
	recv io.Reader,
	opts ReplicateOptions,
) error {
	args := []string{"replicate"}
	if opts.Mirror {
		args = append(args, "--mirror")
	} else {
		args = append(args, "--interval", strconv.Itoa(opts.IntervalMS))
	}

	if !opts.Compression {
		args = append(args, "--no-compression")
	}

	if !opts.NetBuffer {
		args = append(args, "--no-netbuffer")
	}

	if !opts.DiskBuffer {
		args = append(args, "--no-diskbuffer")
	}

	if opts.NetBufferScript != "" {
		args = append(args, "--netbuffer-script", opts.NetBufferScript)
	}

	if opts.AllowUnsafe {
		args = append(args, "--allow-unsafe")
	}

	args = append(args, formatID(id))

	cmd := h.command(ctx, args...)
	cmd.Stdout = send
	cmd.Stdin = recv

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) &&
			exitErr.ExitCode() == helperExitSuspendTimeout {
			return fmt.Errorf("%w: domain %d", ErrSuspendTimeout, id)
		}

		return fmt.Errorf("%s replicate: %w", h.Helper, err)
	}

	return nil
}

// Exists implements [Controller].
func (h *HelperController) Exists(ctx context.Context, id uint32) bool {
	return h.command(ctx, "exists", formatID(id)).Run() == nil
}

func formatID(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}
