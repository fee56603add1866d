package itinerary

import (
	"sync"
	"time"
)

const DefaultNotificationTTL = 3 * time.Second

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

// Notifier holds the single message shown to the user. Success messages clear
// themselves after the TTL; errors stay until replaced or cleared.
type Notifier struct {
	ttl time.Duration

	mu      sync.Mutex
	current *Notification
	timer   *time.Timer
	seq     uint64
}

func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Notifier{ttl: ttl}
}

func (n *Notifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	seq := n.showLocked(Notification{Kind: NotificationSuccess, Message: message})
	n.timer = time.AfterFunc(n.ttl, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.seq == seq {
			n.current = nil
		}
	})
}

func (n *Notifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.showLocked(Notification{Kind: NotificationError, Message: message})
}

func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	n.seq++
	n.current = nil
}

func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

func (n *Notifier) showLocked(note Notification) uint64 {
	n.stopLocked()
	n.seq++
	n.current = &note
	return n.seq
}

func (n *Notifier) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
