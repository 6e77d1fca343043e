// Package notify provides an injectable notification service for transient
// user-facing messages, replacing the need for a process-wide toast manager.
package notify

import (
	"log"
	"slices"
	"sync"

	"github.com/gen2brain/beeep"
)

// Notifier delivers a short user-visible message.
type Notifier interface {
	Notify(title, message string)
}

// Nop discards all notifications. Useful in tests and headless runs.
type Nop struct{}

func (Nop) Notify(string, string) {}

// Desktop shows native desktop notifications.
type Desktop struct {
	AppName string
}

func (d Desktop) Notify(title, message string) {
	if d.AppName != "" {
		beeep.AppName = d.AppName
	}
	if err := beeep.Notify(title, message, ""); err != nil {
		log.Printf("Failed to show notification %q: %v", title, err)
	}
}

// Bus fans a notification out to any number of subscribers while also
// forwarding to an optional primary notifier. Components take a Notifier;
// the shell decides what actually renders.
type Bus struct {
	mu          sync.Mutex
	primary     Notifier
	subscribers []func(title, message string)
}

func NewBus(primary Notifier) *Bus {
	if primary == nil {
		primary = Nop{}
	}
	return &Bus{primary: primary}
}

// Subscribe registers a callback for every published notification.
func (b *Bus) Subscribe(fn func(title, message string)) {
	b.mu.Lock()
	b.subscribers = append(b.subscribers, fn)
	b.mu.Unlock()
}

func (b *Bus) Notify(title, message string) {
	b.mu.Lock()
	primary := b.primary
	subscribers := slices.Clone(b.subscribers)
	b.mu.Unlock()

	primary.Notify(title, message)
	for _, fn := range subscribers {
		fn(title, message)
	}
}
