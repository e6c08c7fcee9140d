// Package command owns the front-end endpoints of the tracker channel pair
// and wraps channel traffic into Bubble Tea commands.
package command

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/ketchdev/ketch/internal/tracker"
)

// EventMsg delivers one tracker event to the UI loop.
type EventMsg struct {
	Event tracker.Event
}

// DoneMsg reports that the tracker closed its event channel.
type DoneMsg struct{}

// Bus bridges the UI and the tracker worker. All cross-component traffic
// flows through the two channels; there is no shared state.
type Bus struct {
	commands chan<- tracker.Command
	events   <-chan tracker.Event

	shutdownOnce sync.Once
}

// New wires a bus to the tracker's channel endpoints.
func New(commands chan<- tracker.Command, events <-chan tracker.Event) *Bus {
	return &Bus{commands: commands, events: events}
}

// Submit queues a sync job submission, tagged with a fresh correlation token.
func (b *Bus) Submit(name, source, dest string) tea.Cmd {
	cmd := tracker.Submit{
		Name:   name,
		Source: source,
		Dest:   dest,
		Token:  uuid.New(),
	}
	return func() tea.Msg {
		b.commands <- cmd
		return nil
	}
}

// Shutdown asks the worker to stop. Safe to call more than once; only the
// first call sends.
func (b *Bus) Shutdown() {
	b.shutdownOnce.Do(func() {
		b.commands <- tracker.Shutdown{}
	})
}

// Wait blocks for the next tracker event. The UI re-arms it after every
// received event, mirroring a select on the snapshot channel.
func (b *Bus) Wait() tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-b.events
		if !ok {
			return DoneMsg{}
		}
		return EventMsg{Event: evt}
	}
}
