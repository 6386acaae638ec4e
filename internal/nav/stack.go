// Package nav tracks which chat messages belong to the screen currently on
// display, so a screen transition can atomically replace them.
package nav

import (
	"context"

	"log/slog"
	"recbot/core/logger"
)

// Handle identifies one displayed message.
type Handle struct {
	ChatID    int64
	MessageID int
	// HasMedia records whether the message carries a photo, which decides
	// between caption and text edits later on.
	HasMedia bool
}

// Deleter removes a displayed message. Implementations must treat deleting
// an already-deleted message as a non-fatal condition.
type Deleter interface {
	Delete(ctx context.Context, h Handle) error
}

// Stack is a stack of screen levels, each holding the handles of the
// messages displayed for that screen. The topmost level is the current
// screen. The zero value is ready to use.
type Stack struct {
	levels [][]Handle
}

// Push begins a new empty screen level on top of the stack.
func (s *Stack) Push() {
	s.levels = append(s.levels, nil)
}

// Record appends a handle to the current level. Without a pushed level the
// handle is dropped; there is no screen to attach it to.
func (s *Stack) Record(h Handle) {
	if len(s.levels) == 0 {
		return
	}
	top := len(s.levels) - 1
	s.levels[top] = append(s.levels[top], h)
}

// Pop deletes every message of the topmost level and removes the level,
// making the level beneath current. Per-message deletion failures are logged
// and swallowed; the pop always completes. Handles of a popped level are
// discarded, never reused.
func (s *Stack) Pop(ctx context.Context, del Deleter) {
	if len(s.levels) == 0 {
		return
	}
	top := len(s.levels) - 1
	for _, h := range s.levels[top] {
		if err := del.Delete(ctx, h); err != nil {
			logger.Warn(ctx, "flow", "stack.delete_failed",
				slog.Int64("chat_id", h.ChatID),
				slog.Int("message_id", h.MessageID),
				slog.String("err", err.Error()),
			)
		}
	}
	s.levels[top] = nil
	s.levels = s.levels[:top]
}

// Drain pops until the stack is empty. Used when resetting to the main menu.
func (s *Stack) Drain(ctx context.Context, del Deleter) {
	for len(s.levels) > 0 {
		s.Pop(ctx, del)
	}
}

// Depth returns the number of levels on the stack.
func (s *Stack) Depth() int {
	return len(s.levels)
}

// Current returns a copy of the handles recorded for the topmost level.
func (s *Stack) Current() []Handle {
	if len(s.levels) == 0 {
		return nil
	}
	top := s.levels[len(s.levels)-1]
	out := make([]Handle, len(top))
	copy(out, top)
	return out
}
