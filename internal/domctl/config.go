// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package domctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the structured domain configuration. Operators supply it as a
// TOML file; on the save stream it travels as canonical JSON with a counted
// terminating NUL.
type Config struct {
	Name     string `toml:"name"               json:"name"`
	VCPUs    uint   `toml:"vcpus,omitempty"    json:"vcpus,omitempty"`
	MemoryMB uint64 `toml:"memory,omitempty"   json:"memory,omitempty"`
	Kernel   string `toml:"kernel,omitempty"   json:"kernel,omitempty"`
	Cmdline  string `toml:"cmdline,omitempty"  json:"cmdline,omitempty"`

	Disks      []DiskConfig `toml:"disk,omitempty"  json:"disk,omitempty"`
	Interfaces []NICConfig  `toml:"vif,omitempty"   json:"vif,omitempty"`
}

// DiskConfig describes one block device of a domain.
type DiskConfig struct {
	Path     string `toml:"path"                json:"path"`
	Device   string `toml:"device"              json:"device"`
	ReadOnly bool   `toml:"readonly,omitempty"  json:"readonly,omitempty"`
}

// NICConfig describes one network interface of a domain.
type NICConfig struct {
	Bridge string `toml:"bridge,omitempty"  json:"bridge,omitempty"`
	MAC    string `toml:"mac,omitempty"     json:"mac,omitempty"`
}

// ParseConfig parses an operator-supplied TOML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config

	err := toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, &ConfigError{Op: "parse", Err: err}
	}

	return &cfg, nil
}

// DecodeConfig decodes the canonical JSON form carried in a save stream.
// A trailing NUL, counted in the serialized length, is tolerated.
func DecodeConfig(data []byte) (*Config, error) {
	data = bytes.TrimSuffix(data, []byte{0})

	var cfg Config

	err := json.Unmarshal(data, &cfg)
	if err != nil {
		return nil, &ConfigError{Op: "decode", Err: err}
	}

	return &cfg, nil
}

// EncodeConfig serializes a configuration to its canonical JSON form with
// the terminating NUL included in the returned length.
func EncodeConfig(cfg *Config) ([]byte, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, &ConfigError{Op: "serialize", Err: err}
	}

	return append(data, 0), nil
}

// BuildConfig produces the serialized configuration blob for a domain. If
// overridePath is given, that file is read and parsed instead of retrieving
// the live configuration. Any failure here is final and happens before any
// transport I/O, so no partial protocol state can exist.
func BuildConfig(
	ctx context.Context,
	ctrl Controller,
	id uint32,
	overridePath string,
) ([]byte, error) {
	var (
		cfg *Config
		err error
	)

	if overridePath != "" {
		var data []byte

		data, err = os.ReadFile(overridePath)
		if err != nil {
			return nil, &ConfigError{Op: "read override", Err: err}
		}

		cfg, err = ParseConfig(data)
		if err != nil {
			return nil, fmt.Errorf("override %s: %w", overridePath, err)
		}
	} else {
		cfg, err = ctrl.RetrieveConfig(ctx, id)
		if err != nil {
			return nil, &ConfigError{Op: "retrieve", Err: err}
		}
	}

	return EncodeConfig(cfg)
}
