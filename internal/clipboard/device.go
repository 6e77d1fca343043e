package clipboard

import (
	"fmt"

	"golang.design/x/clipboard"
)

// Device abstracts clipboard access so the monitor can be driven by the
// real system clipboard or a scripted fake in tests.
type Device interface {
	// ReadString returns the current clipboard text. Reads are best-effort
	// and may fail when clipboard access is denied.
	ReadString() (string, error)
	WriteString(content string) error
}

// SystemDevice reads and writes the OS clipboard.
type SystemDevice struct{}

// NewSystemDevice initializes clipboard access. Initialization fails when
// the platform denies clipboard permissions.
func NewSystemDevice() (*SystemDevice, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	return &SystemDevice{}, nil
}

func (d *SystemDevice) ReadString() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (d *SystemDevice) WriteString(content string) error {
	clipboard.Write(clipboard.FmtText, []byte(content))
	return nil
}
