// SPDX-License-Identifier: MPL-2.0

// Package config loads the packmule configuration: cache location,
// package repositories, and UI preferences. Values come from defaults,
// an optional TOML file in the platform config directory, and
// PACKMULE_* environment variables, in increasing precedence.
package config
