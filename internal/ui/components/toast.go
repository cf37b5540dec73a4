// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Non-blocking toast notifications. Toasts render above the status bar and
// auto-dismiss, so a failed send never traps the user behind a modal.
package components

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zatgpt/zatgpt-tui/internal/ui/styles"
	"github.com/zatgpt/zatgpt-tui/internal/util"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind classifies a toast notification.
type ToastKind int

const (
	// ToastInfo is an informational toast.
	ToastInfo ToastKind = iota
	// ToastError is an error toast. Shown longer so it can be read.
	ToastError
	// ToastSuccess is a success toast.
	ToastSuccess
)

// InfoToastDuration is the auto-dismiss duration for info toasts.
const InfoToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts.
const ErrorToastDuration = 8 * time.Second

// Toast is one notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

var toastIDCounter struct {
	mu sync.Mutex
	n  int
}

func nextToastID() int {
	toastIDCounter.mu.Lock()
	defer toastIDCounter.mu.Unlock()
	toastIDCounter.n++
	return toastIDCounter.n
}

// NewErrorToast creates an error toast.
func NewErrorToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastError,
		CreatedAt: time.Now(),
		Duration:  ErrorToastDuration,
	}
}

// NewInfoToast creates an informational toast.
func NewInfoToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastInfo,
		CreatedAt: time.Now(),
		Duration:  InfoToastDuration,
	}
}

// NewSuccessToast creates a success toast.
func NewSuccessToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastSuccess,
		CreatedAt: time.Now(),
		Duration:  InfoToastDuration,
	}
}

// Expired reports whether the toast has outlived its duration.
func (t Toast) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST STACK
// =============================================================================

// ToastExpiredMsg asks the stack to drop expired toasts.
type ToastExpiredMsg struct{ ID int }

// ToastStack holds the currently visible toasts, newest last.
type ToastStack struct {
	toasts []Toast
	theme  *styles.Theme
	width  int
}

// NewToastStack creates an empty toast stack.
func NewToastStack(theme *styles.Theme) *ToastStack {
	return &ToastStack{theme: theme, width: 80}
}

// SetWidth updates the render width.
func (s *ToastStack) SetWidth(width int) {
	s.width = width
}

// Push adds a toast and returns the command that expires it.
func (s *ToastStack) Push(t Toast) tea.Cmd {
	s.toasts = append(s.toasts, t)
	id := t.ID
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Expire removes the toast with the given id.
func (s *ToastStack) Expire(id int) {
	kept := s.toasts[:0]
	for _, t := range s.toasts {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.toasts = kept
}

// DismissAll removes every toast.
func (s *ToastStack) DismissAll() {
	s.toasts = nil
}

// Len returns the number of visible toasts.
func (s *ToastStack) Len() int {
	return len(s.toasts)
}

// View renders the stack, one line per toast.
func (s *ToastStack) View() string {
	if len(s.toasts) == 0 {
		return ""
	}

	var out string
	for i, t := range s.toasts {
		msg := util.TruncateWidth(t.Message, s.width-8)
		var line string
		switch t.Kind {
		case ToastError:
			line = styles.RenderError(msg)
		case ToastSuccess:
			line = styles.RenderSuccess(msg)
		default:
			line = styles.RenderInfo(msg)
		}
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	return out
}
