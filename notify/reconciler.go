package notify

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"chat-service/service"

	"github.com/google/uuid"
)

// Toast is one in-app notification event derived from an unread-count
// increase.
type Toast struct {
	ID             string    `json:"id"`
	ConversationID uint      `json:"conversation_id"`
	IsGroup        bool      `json:"is_group"`
	DisplayName    string    `json:"display_name"`
	GroupName      string    `json:"group_name,omitempty"`
	Avatar         string    `json:"avatar,omitempty"`
	Summary        string    `json:"summary"`
	Target         string    `json:"target"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserInfo is the slice of the user directory the reconciler needs to
// resolve display identities.
type UserInfo struct {
	ID     uint
	Name   string
	Avatar string
}

// Notifier is the platform notification surface (browser Notification
// API or equivalent). Notify is only called when permission has been
// granted and the application surface is hidden.
type Notifier interface {
	PermissionGranted() bool
	SurfaceVisible() bool
	Notify(Toast)
}

type Options struct {
	MeID uint

	// Users returns the current user directory snapshot.
	Users func() []UserInfo

	// Target returns the navigation target currently on screen.
	// Notifications for that conversation are suppressed.
	Target func() string

	// OnToast receives every in-app toast event.
	OnToast func(Toast)

	// Notifier is optional; nil disables platform notifications.
	Notifier Notifier

	// Now is a clock hook for tests. Defaults to time.Now.
	Now func() time.Time
}

// Reconciler diffs consecutive conversations-with-unread snapshots and
// turns positive deltas into notification events. The first snapshot
// after construction only seeds baselines, so pre-existing unreads do
// not produce a notification storm.
type Reconciler struct {
	mu        sync.Mutex
	opts      Options
	baselines map[uint]int
	seeded    bool
}

func NewReconciler(opts Options) *Reconciler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Reconciler{
		opts:      opts,
		baselines: make(map[uint]int),
	}
}

// Observe processes one snapshot delivery. A nil snapshot means the
// subscription had no data and is ignored without touching baselines.
func (r *Reconciler) Observe(snapshot []service.ConversationSummary) {
	if snapshot == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.seeded {
		r.seeded = true
		for _, conversation := range snapshot {
			r.baselines[conversation.ConversationID] = conversation.UnreadCount
		}
		return
	}

	for _, conversation := range snapshot {
		previous := r.baselines[conversation.ConversationID]
		current := conversation.UnreadCount
		delta := current - previous
		r.baselines[conversation.ConversationID] = current

		if delta <= 0 {
			continue
		}

		target := r.targetFor(conversation)
		if r.opts.Target != nil && r.opts.Target() == target {
			// Already looking at this conversation.
			continue
		}

		toast := r.buildToast(conversation, delta, target)
		if r.opts.OnToast != nil {
			r.opts.OnToast(toast)
		}
		if n := r.opts.Notifier; n != nil && n.PermissionGranted() && !n.SurfaceVisible() {
			n.Notify(toast)
		}
	}
}

func (r *Reconciler) targetFor(conversation service.ConversationSummary) string {
	if conversation.IsGroup {
		return "/chat/group/" + strconv.FormatUint(uint64(conversation.ConversationID), 10)
	}
	if other, ok := r.otherMember(conversation); ok {
		return "/chat/" + strconv.FormatUint(uint64(other), 10)
	}
	return "/chat/"
}

func (r *Reconciler) otherMember(conversation service.ConversationSummary) (uint, bool) {
	for _, member := range conversation.Members {
		if member != r.opts.MeID {
			return member, true
		}
	}
	return 0, false
}

func (r *Reconciler) lookupUser(id uint) (UserInfo, bool) {
	if r.opts.Users == nil {
		return UserInfo{}, false
	}
	for _, user := range r.opts.Users() {
		if user.ID == id {
			return user, true
		}
	}
	return UserInfo{}, false
}

func (r *Reconciler) buildToast(conversation service.ConversationSummary, delta int, target string) Toast {
	toast := Toast{
		ID:             uuid.NewString(),
		ConversationID: conversation.ConversationID,
		IsGroup:        conversation.IsGroup,
		DisplayName:    "Someone",
		Summary:        summaryText(delta),
		Target:         target,
		CreatedAt:      r.opts.Now(),
	}

	if conversation.IsGroup {
		// The delta alone does not identify the author, so the group
		// name stands in as the sender and the first other member's
		// avatar serves as a proxy.
		toast.GroupName = conversation.Name
		if toast.GroupName == "" {
			toast.GroupName = "Group Chat"
		}
		toast.DisplayName = toast.GroupName
		if other, ok := r.otherMember(conversation); ok {
			if user, ok := r.lookupUser(other); ok {
				toast.Avatar = user.Avatar
			}
		}
		return toast
	}

	if other, ok := r.otherMember(conversation); ok {
		if user, ok := r.lookupUser(other); ok {
			toast.DisplayName = user.Name
			toast.Avatar = user.Avatar
		}
	}
	return toast
}

func summaryText(delta int) string {
	if delta > 1 {
		return fmt.Sprintf("%d new messages", delta)
	}
	return fmt.Sprintf("%d new message", delta)
}
