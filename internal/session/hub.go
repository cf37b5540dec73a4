// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "sync"

// =============================================================================
// INVALIDATION SIGNAL
// =============================================================================

// Event describes a session lifecycle notification.
type Event struct {
	// Reason is a short human-readable explanation, shown to the user on
	// the login screen ("session expired", "logged out elsewhere", ...).
	Reason string
}

// Hub is a process-wide publish/subscribe point for session events.
//
// Publishers: the API gateway's 401 handler and the credentials-file
// watcher. Subscribers: the root UI model (which redirects to login) and
// long-running CLI commands. Publishing never blocks; a subscriber that has
// fallen behind misses intermediate events but always observes the latest.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned cancel function must be
// called when the subscriber goes away, or its channel leaks.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	// Buffer of 1: the only state a subscriber needs is "the session died".
	ch := make(chan Event, 1)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers an event to all current subscribers without blocking.
// If a subscriber's buffer is full the pending event is already equivalent,
// so the new one is dropped for that subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// =============================================================================
// DEFAULT HUB
// =============================================================================

var defaultHub = NewHub()

// Default returns the process-wide hub instance.
func Default() *Hub {
	return defaultHub
}
