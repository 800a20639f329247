package notify

import (
	"sync"
	"time"
)

const (
	// MaxToasts caps the visible stack.
	MaxToasts = 4
	// ToastDuration is how long a toast stays up without interaction.
	ToastDuration = 5 * time.Second
)

// ToastStack holds the visible toasts, most recent first. A new toast
// for a conversation that already has one replaces it instead of
// stacking a duplicate.
type ToastStack struct {
	mu     sync.Mutex
	max    int
	ttl    time.Duration
	toasts []Toast
}

func NewToastStack(max int, ttl time.Duration) *ToastStack {
	return &ToastStack{max: max, ttl: ttl}
}

func (s *ToastStack) Push(toast Toast) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]Toast, 0, len(s.toasts)+1)
	kept = append(kept, toast)
	for _, existing := range s.toasts {
		if existing.ConversationID == toast.ConversationID {
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) > s.max {
		kept = kept[:s.max]
	}
	s.toasts = kept
}

// Active prunes expired toasts and returns the remainder.
func (s *ToastStack) Active(now time.Time) []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.toasts[:0]
	for _, toast := range s.toasts {
		if now.Sub(toast.CreatedAt) < s.ttl {
			kept = append(kept, toast)
		}
	}
	s.toasts = kept

	out := make([]Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

// Dismiss removes a toast early, either by user action or by
// navigating to its target.
func (s *ToastStack) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.toasts[:0]
	for _, toast := range s.toasts {
		if toast.ID != id {
			kept = append(kept, toast)
		}
	}
	s.toasts = kept
}
