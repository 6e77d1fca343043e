package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	titles []string
}

func (r *recorder) Notify(title, _ string) {
	r.titles = append(r.titles, title)
}

func TestBusForwardsToPrimaryAndSubscribers(t *testing.T) {
	primary := &recorder{}
	bus := NewBus(primary)

	var seen []string
	bus.Subscribe(func(title, message string) {
		seen = append(seen, title+": "+message)
	})

	bus.Notify("Sync", "done")

	assert.Equal(t, []string{"Sync"}, primary.titles)
	assert.Equal(t, []string{"Sync: done"}, seen)
}

func TestBusNilPrimaryIsSafe(t *testing.T) {
	bus := NewBus(nil)
	assert.NotPanics(t, func() { bus.Notify("x", "y") })
}
