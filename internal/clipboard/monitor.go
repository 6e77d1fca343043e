package clipboard

import (
	"log"
	"sync"
	"time"

	"github.com/Praveen2412/pastekeeper/internal/history"
	"github.com/Praveen2412/pastekeeper/internal/lifecycle"
	"github.com/Praveen2412/pastekeeper/internal/notify"
	"github.com/Praveen2412/pastekeeper/internal/util"
)

const defaultInterval = 2 * time.Second

// OnNewContent receives a candidate item for every detected clipboard
// change. Invoked synchronously from the poll tick.
type OnNewContent func(candidate history.Item)

// Options configures a monitoring run.
type Options struct {
	Interval time.Duration
}

// Monitor polls the clipboard for changes, classifies new content and hands
// candidates to the registered callback. Deduplication here is only against
// the immediately preceding observation; resolving a candidate to an
// existing history entry is the store's job.
type Monitor struct {
	device   Device
	deviceID string
	notifier notify.Notifier

	mu          sync.Mutex
	lastHash    string
	stopCh      chan struct{}
	active      bool
	permErrSeen bool
	onNew       OnNewContent
	opts        Options

	checkMu sync.Mutex // at most one in-flight clipboard check
}

func NewMonitor(device Device, deviceID string, notifier notify.Notifier) *Monitor {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Monitor{
		device:   device,
		deviceID: deviceID,
		notifier: notifier,
	}
}

// Start begins polling at the configured interval (default 2s). The current
// clipboard value is read once up front to seed change detection without
// emitting an item. Starting while already active first stops the previous
// loop, so at most one poll loop runs per monitor. The returned stop
// function is idempotent; after it returns no further ticks fire, though an
// in-flight check may still complete.
func (m *Monitor) Start(onNew OnNewContent, opts Options) (func(), error) {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}

	m.mu.Lock()
	if m.active {
		m.stopLocked()
	}

	// Seed the hash so the initial clipboard value is not emitted. A failed
	// read keeps the previous value, which preserves dedup state across
	// stop/start sequences.
	if content, err := m.device.ReadString(); err == nil {
		m.lastHash = util.ContentHash(content)
	} else {
		log.Printf("Failed to read initial clipboard content: %v", err)
	}

	stopCh := make(chan struct{})
	m.stopCh = stopCh
	m.active = true
	m.onNew = onNew
	m.opts = opts
	m.mu.Unlock()

	log.Printf("Clipboard monitor started (interval %s)", opts.Interval)

	go m.pollLoop(stopCh, onNew, opts.Interval)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			m.mu.Lock()
			if m.stopCh == stopCh && m.active {
				m.stopLocked()
			}
			m.mu.Unlock()
		})
	}
	return stop, nil
}

func (m *Monitor) stopLocked() {
	close(m.stopCh)
	m.active = false
	log.Println("Clipboard monitor stopped")
}

// Stop cancels the active poll loop, if any. Idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		m.stopLocked()
	}
}

// Active reports whether a poll loop is currently running.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Monitor) pollLoop(stopCh chan struct{}, onNew OnNewContent, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			select {
			case <-stopCh:
				return
			default:
			}
			m.checkOnce(onNew)
		}
	}
}

// CheckNow performs one immediate out-of-cycle change check using the
// callback from the most recent Start. No-op if Start was never called.
func (m *Monitor) CheckNow() {
	m.mu.Lock()
	onNew := m.onNew
	m.mu.Unlock()
	if onNew == nil {
		return
	}
	m.checkOnce(onNew)
}

func (m *Monitor) checkOnce(onNew OnNewContent) {
	// Skip rather than queue when a slow check outlives the interval.
	if !m.checkMu.TryLock() {
		return
	}
	defer m.checkMu.Unlock()

	content, err := m.device.ReadString()
	if err != nil {
		m.mu.Lock()
		first := !m.permErrSeen
		m.permErrSeen = true
		m.mu.Unlock()
		if first {
			log.Printf("Clipboard read failed: %v", err)
			m.notifier.Notify("Clipboard access problem",
				"PasteKeeper cannot read the clipboard. History capture is paused until access is restored.")
		}
		return
	}

	m.mu.Lock()
	if m.permErrSeen {
		m.permErrSeen = false
		log.Println("Clipboard access restored")
	}
	hash := util.ContentHash(content)
	if content == "" || hash == m.lastHash {
		m.mu.Unlock()
		return
	}
	m.lastHash = hash
	m.mu.Unlock()

	candidate := history.NewCandidate(content, m.deviceID)
	candidate.ID = util.NewID()
	candidate.Timestamp = time.Now().UnixMilli()

	onNew(candidate)
}

// BindLifecycle wires the monitor to app state transitions: foregrounding
// triggers an immediate change check and restarts polling when it had been
// stopped; backgrounding pauses polling when pauseInBackground is set.
func (m *Monitor) BindLifecycle(signal *lifecycle.Signal, pauseInBackground bool) {
	signal.Subscribe(func(_, next lifecycle.State) {
		switch {
		case next.IsForeground():
			// Check first with the preserved hash so a change made while
			// backgrounded is still detected, then restart polling.
			m.CheckNow()

			m.mu.Lock()
			restart := !m.active && m.onNew != nil
			onNew := m.onNew
			opts := m.opts
			m.mu.Unlock()

			if restart {
				if _, err := m.Start(onNew, opts); err != nil {
					log.Printf("Failed to restart clipboard monitor: %v", err)
				}
			}
		case next == lifecycle.StateBackground && pauseInBackground:
			m.Stop()
		}
	})
}

// CopyToClipboard writes content to the system clipboard and primes change
// detection so the write is not re-captured as a new item.
func (m *Monitor) CopyToClipboard(content string) error {
	if err := m.device.WriteString(content); err != nil {
		return err
	}
	m.mu.Lock()
	m.lastHash = util.ContentHash(content)
	m.mu.Unlock()
	return nil
}
