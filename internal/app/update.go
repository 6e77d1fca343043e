package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/creativeprojects/go-selfupdate"

	"github.com/Praveen2412/pastekeeper/internal/notify"
)

// UpdateChecker looks for newer releases and reports them through the
// notifier instead of blocking the core.
type UpdateChecker struct {
	notifier notify.Notifier
	source   selfupdate.Source
}

func NewUpdateChecker(notifier notify.Notifier) *UpdateChecker {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		log.Printf("Failed to create update source: %v", err)
		return nil
	}

	return &UpdateChecker{
		notifier: notifier,
		source:   source,
	}
}

// CheckForUpdates detects whether a newer release exists and notifies the
// user. Failures are logged, never surfaced as errors.
func (uc *UpdateChecker) CheckForUpdates(ctx context.Context) {
	if uc == nil {
		return
	}

	release, newer, err := uc.detectLatest(ctx)
	if err != nil {
		log.Printf("Update check failed: %v", err)
		return
	}
	if !newer {
		return
	}

	uc.notifier.Notify("Update available",
		fmt.Sprintf("%s %s is available (you have %s).", AppName, release.Version(), Version))
}

// Update downloads and installs the latest release over the current binary.
func (uc *UpdateChecker) Update(ctx context.Context) error {
	if uc == nil {
		return fmt.Errorf("updates unavailable")
	}

	release, newer, err := uc.detectLatest(ctx)
	if err != nil {
		return err
	}
	if !newer {
		return nil
	}

	exe, err := executablePath()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	updater, err := uc.newUpdater()
	if err != nil {
		return err
	}
	if err := updater.UpdateTo(ctx, release, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	uc.notifier.Notify("Update complete",
		fmt.Sprintf("%s has been updated to %s. Restart to use the new version.", AppName, release.Version()))
	return nil
}

func (uc *UpdateChecker) detectLatest(ctx context.Context) (*selfupdate.Release, bool, error) {
	updater, err := uc.newUpdater()
	if err != nil {
		return nil, false, err
	}

	release, found, err := updater.DetectLatest(ctx, selfupdate.NewRepositorySlug("Praveen2412", "pastekeeper"))
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, fmt.Errorf("no releases found")
	}

	return release, release.GreaterThan(Version), nil
}

func (uc *UpdateChecker) newUpdater() (*selfupdate.Updater, error) {
	return selfupdate.NewUpdater(selfupdate.Config{
		Source: uc.source,
		Validator: &selfupdate.ChecksumValidator{
			UniqueFilename: "checksums.txt",
		},
	})
}

func executablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}
