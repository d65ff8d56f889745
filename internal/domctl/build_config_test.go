// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package domctl_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guestctl/guestctl/internal/domctl"
)

// configSource stubs out the single controller method BuildConfig uses for
// the live path.
type configSource struct {
	domctl.Controller

	cfg *domctl.Config
	err error
}

func (s configSource) RetrieveConfig(
	_ context.Context,
	_ uint32,
) (*domctl.Config, error) {
	return s.cfg, s.err
}

func TestBuildConfigLive(t *testing.T) {
	cfg := &domctl.Config{Name: "web", VCPUs: 2}

	data, err := domctl.BuildConfig(
		context.Background(),
		configSource{cfg: cfg},
		5,
		"",
	)
	require.NoError(t, err)

	expected, err := domctl.EncodeConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, expected, data)
}

func TestBuildConfigRetrieveFailure(t *testing.T) {
	_, err := domctl.BuildConfig(
		context.Background(),
		configSource{err: os.ErrPermission},
		5,
		"",
	)

	require.ErrorIs(t, err, &domctl.ConfigError{})
	require.ErrorIs(t, err, os.ErrPermission)
}

func TestBuildConfigOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "web.toml")

	err := os.WriteFile(path, []byte("name = \"replacement\"\n"), 0o644)
	require.NoError(t, err)

	// The live configuration must not be consulted at all.
	data, err := domctl.BuildConfig(context.Background(), nil, 5, path)
	require.NoError(t, err)

	decoded, err := domctl.DecodeConfig(data)
	require.NoError(t, err)
	assert.Equal(t, "replacement", decoded.Name)
}

func TestBuildConfigOverrideMissingFile(t *testing.T) {
	_, err := domctl.BuildConfig(
		context.Background(),
		nil,
		5,
		filepath.Join(t.TempDir(), "missing.toml"),
	)

	require.ErrorIs(t, err, &domctl.ConfigError{})
	require.ErrorIs(t, err, os.ErrNotExist)
}
