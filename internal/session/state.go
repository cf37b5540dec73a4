// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zatgpt/zatgpt-tui/internal/config"
	"github.com/zatgpt/zatgpt-tui/internal/util"
)

// StateFile is the name of the UI state file inside the config directory.
const StateFile = "state.json"

// State is the small piece of client state that survives restarts: the chat
// session the user last had open. It plays the role the ?session_id= query
// parameter played in the web frontend - relaunching the client resumes the
// same session.
type State struct {
	LastSessionID string `json:"last_session_id,omitempty"`
}

func statePath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StateFile), nil
}

// LoadState reads the persisted UI state. A missing or corrupt file yields
// a zero state, never an error the caller has to care about.
func LoadState() State {
	path, err := statePath()
	if err != nil {
		return State{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}
	}
	return st
}

// SaveState persists the UI state atomically. Called the moment a new
// session id is known so that a crash right after the first send still
// resumes into the right session.
func SaveState(st State) error {
	path, err := statePath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFileWithDir(path, data, 0o600, 0o700)
}
