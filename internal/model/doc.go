// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the zatgpt
// backend: users and their permission flags, chat sessions, and chat
// messages.
//
// All durable state lives in the backend; these types are wire
// representations plus the small amount of presentation logic (date
// grouping, system-message filtering, permission coupling) the client
// applies to them.
package model
