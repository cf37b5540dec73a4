// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration management for the zatgpt client.
//
// Configuration is loaded from ~/.zatgpt/config.toml with environment
// variable overrides (ZATGPT_API_URL and friends). A process-wide accessor
// (Global) hands the loaded config to every package; SetGlobal exists for
// tests and for the config CLI subcommand.
package config
