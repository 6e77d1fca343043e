package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Praveen2412/pastekeeper/internal/clipboard"
	"github.com/Praveen2412/pastekeeper/internal/config"
	"github.com/Praveen2412/pastekeeper/internal/history"
	"github.com/Praveen2412/pastekeeper/internal/identity"
	"github.com/Praveen2412/pastekeeper/internal/lifecycle"
	"github.com/Praveen2412/pastekeeper/internal/notify"
	"github.com/Praveen2412/pastekeeper/internal/remote"
	"github.com/Praveen2412/pastekeeper/internal/storage"
	"github.com/Praveen2412/pastekeeper/internal/syncer"
)

// Build-time variables (set by the release pipeline)
var (
	Version   = "0.0.0-dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const AppName = "PasteKeeper"

// App wires the clipboard-history core together for a host shell: config,
// durable storage, history store, monitor, identity and sync engine.
type App struct {
	config     *config.Config
	configPath string

	kv       storage.Store
	history  *history.Store
	monitor  *clipboard.Monitor
	engine   *syncer.Engine
	identity identity.Provider
	states   *lifecycle.Signal
	notifier *notify.Bus
	watcher  *config.Watcher
	updates  *UpdateChecker

	mu sync.Mutex // guards config once the watcher can swap it

	deviceID   string
	stopBgSync func()

	ctx        context.Context
	cancelFunc context.CancelFunc
}

func New() (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		ctx:        ctx,
		cancelFunc: cancel,
		states:     lifecycle.NewSignal(),
		notifier:   notify.NewBus(notify.Desktop{AppName: AppName}),
	}

	if err := a.initialize(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return a, nil
}

func (a *App) initialize() error {
	if err := a.initConfig(); err != nil {
		return err
	}
	if err := a.initStorage(); err != nil {
		return err
	}
	if err := a.initServices(); err != nil {
		return err
	}

	a.updates = NewUpdateChecker(a.notifier)

	return nil
}

func (a *App) initConfig() error {
	configDir, err := a.getConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	a.configPath = filepath.Join(configDir, "config.json")
	a.config, err = config.Load(a.configPath)
	if err != nil {
		log.Printf("Creating default configuration: %v", err)
		a.config = config.Default()
		if err := a.config.Save(a.configPath); err != nil {
			log.Printf("Failed to save default config: %v", err)
		}
	}
	return nil
}

func (a *App) initStorage() error {
	configDir, err := a.getConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	a.kv, err = storage.NewSQLiteStore(filepath.Join(configDir, "pastekeeper.db"))
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	a.history, err = history.NewStore(a.ctx, a.kv, a.config.MaxHistoryItems)
	if err != nil {
		return fmt.Errorf("failed to initialize history store: %w", err)
	}

	a.deviceID, err = a.loadDeviceID()
	if err != nil {
		return err
	}

	return nil
}

// loadDeviceID returns the stable per-install device identifier, creating
// and persisting one on first run.
func (a *App) loadDeviceID() (string, error) {
	id, err := a.kv.Get(a.ctx, storage.KeyDeviceID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("failed to load device id: %w", err)
	}

	id = uuid.NewString()
	if err := a.kv.Set(a.ctx, storage.KeyDeviceID, id); err != nil {
		return "", fmt.Errorf("failed to persist device id: %w", err)
	}
	return id, nil
}

func (a *App) initServices() error {
	device, err := clipboard.NewSystemDevice()
	if err != nil {
		// The app still works as a viewer; capture stays off until access
		// is granted and the app restarted.
		log.Printf("Clipboard access unavailable: %v", err)
		a.notifier.Notify("Clipboard access problem",
			"PasteKeeper cannot access the clipboard. History capture is disabled.")
	} else {
		a.monitor = clipboard.NewMonitor(device, a.deviceID, a.notifier)
		a.monitor.BindLifecycle(a.states, !a.config.EnableBackground)
	}

	if a.config.SyncBaseURL != "" {
		client, err := remote.NewClient(a.config.SyncBaseURL)
		if err != nil {
			return fmt.Errorf("invalid sync configuration: %w", err)
		}
		provider, err := identity.NewHTTPProvider(a.config.SyncBaseURL, a.kv)
		if err != nil {
			return fmt.Errorf("invalid sync configuration: %w", err)
		}
		a.identity = provider
		a.engine = syncer.NewEngine(a.history, client, provider, a.deviceID)
	}

	return nil
}

// Run starts background services and blocks until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	if a.config.AutoStartMonitor && a.monitor != nil {
		if err := a.StartMonitoring(); err != nil {
			log.Printf("Failed to start clipboard monitor: %v", err)
		}
	}

	if a.engine != nil && a.config.EnableAutoSync {
		go func() {
			time.Sleep(5 * time.Second) // let the app settle first
			a.engine.Sync(a.ctx, syncer.Options{})
		}()
	}
	if a.engine != nil && a.config.EnableBackground {
		a.stopBgSync = a.engine.Schedule(a.ctx, time.Duration(a.config.BackgroundInterval)*time.Minute)
	}

	if a.config.CheckUpdatesOnStartup {
		go func() {
			time.Sleep(5 * time.Second)
			a.updates.CheckForUpdates(a.ctx)
		}()
	}

	// Started last: from here on the watcher goroutine may swap a.config,
	// so the plain reads above stay race-free.
	watcher, err := config.Watch(a.configPath, a.applyConfig)
	if err != nil {
		log.Printf("Config watching disabled: %v", err)
	} else {
		a.watcher = watcher
	}

	log.Printf("%s %s started (device %s)", AppName, Version, a.deviceID)

	<-ctx.Done()
	a.cleanup()
	return nil
}

// applyConfig picks up on-disk config changes at runtime. Monitoring is
// restarted when its interval changed; the history bound applies from the
// next mutation.
func (a *App) applyConfig(cfg *config.Config) {
	log.Println("Reloading configuration")

	a.mu.Lock()
	prev := a.config
	a.config = cfg
	a.mu.Unlock()
	a.history.SetMaxItems(cfg.MaxHistoryItems)

	if a.monitor != nil && a.monitor.Active() && cfg.MonitorInterval != prev.MonitorInterval {
		if err := a.StartMonitoring(); err != nil {
			log.Printf("Failed to restart monitor with new interval: %v", err)
		}
	}
}

// StartMonitoring begins (or restarts) clipboard polling, feeding detected
// candidates into the history store.
func (a *App) StartMonitoring() error {
	if a.monitor == nil {
		return fmt.Errorf("clipboard access unavailable")
	}

	a.mu.Lock()
	interval := time.Duration(a.config.MonitorInterval) * time.Millisecond
	a.mu.Unlock()

	_, err := a.monitor.Start(a.onNewContent, clipboard.Options{Interval: interval})
	return err
}

// StopMonitoring halts clipboard polling, including a loop the lifecycle
// binding restarted in the meantime. Idempotent.
func (a *App) StopMonitoring() {
	if a.monitor != nil {
		a.monitor.Stop()
	}
}

func (a *App) onNewContent(candidate history.Item) {
	if _, err := a.history.AddItem(a.ctx, candidate); err != nil {
		log.Printf("Failed to save clipboard item: %v", err)
	}
}

// DeleteItems removes items from local history and, when sync is configured,
// from the backend as well. Remote cleanup is best-effort: the items are
// gone locally even if the backend call fails.
func (a *App) DeleteItems(ids []string) error {
	if err := a.history.DeleteMany(a.ctx, ids); err != nil {
		return err
	}
	if a.engine != nil {
		if err := a.engine.DeleteRemote(a.ctx, ids); err != nil {
			log.Printf("Failed to delete items remotely: %v", err)
		}
	}
	return nil
}

// SetAppState feeds host foreground/background transitions into the core.
func (a *App) SetAppState(state lifecycle.State) {
	a.states.Set(state)
}

// AddManualItem adds user-entered content to the history directly.
func (a *App) AddManualItem(content string) (history.Item, error) {
	return a.history.AddItem(a.ctx, history.NewCandidate(content, a.deviceID))
}

// CopyItem writes the stored item's content back to the clipboard.
func (a *App) CopyItem(id string) error {
	if a.monitor == nil {
		return fmt.Errorf("clipboard access unavailable")
	}
	for _, it := range a.history.Snapshot().Items {
		if it.ID == id {
			return a.monitor.CopyToClipboard(it.Content)
		}
	}
	return fmt.Errorf("item %s not found", id)
}

// SyncNow triggers a foreground sync. Returns false when sync is not
// configured or the attempt failed.
func (a *App) SyncNow(force bool) bool {
	if a.engine == nil {
		return false
	}
	return a.engine.Sync(a.ctx, syncer.Options{
		ForceSync: force,
		OnComplete: func(ok bool, message string) {
			a.notifier.Notify("Sync", message)
		},
	})
}

func (a *App) History() *history.Store      { return a.history }
func (a *App) Identity() identity.Provider  { return a.identity }
func (a *App) Notifier() *notify.Bus        { return a.notifier }
func (a *App) Lifecycle() *lifecycle.Signal { return a.states }

func (a *App) cleanup() {
	log.Printf("Shutting down %s...", AppName)

	a.cancelFunc()
	a.StopMonitoring()
	if a.stopBgSync != nil {
		a.stopBgSync()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			log.Printf("Failed to close storage: %v", err)
		}
	}

	log.Printf("%s shutdown complete", AppName)
}

func (a *App) getConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".pastekeeper")
	return configDir, os.MkdirAll(configDir, 0755)
}
