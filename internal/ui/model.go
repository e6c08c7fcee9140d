package ui

import (
	"errors"
	"reflect"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ketchdev/ketch/internal/logging/events"
	"github.com/ketchdev/ketch/internal/remote"
	"github.com/ketchdev/ketch/internal/theme"
	"github.com/ketchdev/ketch/internal/tracker"
	"github.com/ketchdev/ketch/internal/ui/command"
	uistate "github.com/ketchdev/ketch/internal/ui/state"
)

// Mode is the interaction state of the front end. Exactly one mode is active
// at a time and each input handler matches on it; events that are not valid
// for the current mode are ignored.
type Mode int

const (
	// ModeBrowse is the initial state: selecting and acting on remotes.
	ModeBrowse Mode = iota
	// ModeConfirmDelete is a modal yes/no prompt before removing an entry.
	ModeConfirmDelete
	// ModeError is a modal message; only dismissal is accepted.
	ModeError
	// ModeEdit is modal text editing of a remote's three fields.
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeBrowse:
		return "browse"
	case ModeConfirmDelete:
		return "confirm-delete"
	case ModeError:
		return "error"
	case ModeEdit:
		return "edit"
	}
	return "unknown"
}

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// ErrTrackerLost reports that the worker vanished while the front end still
// expected snapshots.
var ErrTrackerLost = errors.New("job tracker stopped unexpectedly")

// Model implements the Bubble Tea model for the remote table and job pane.
type Model struct {
	store *remote.Store
	list  *uistate.List
	jobs  tracker.Jobs
	bus   *command.Bus

	mode      Mode
	errMsg    string
	infoMsg   string
	filtering bool

	confirmIndex int
	editor       *uistate.EditBuffer
	editIndex    int
	editOriginal remote.Remote

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	verbose     bool

	quitting    bool
	trackerDone bool
	fatalErr    error

	editCursor cursor.Model

	handlers map[reflect.Type]msgHandler
}

// NewModel initialises the UI over the remote store and the tracker bus.
func NewModel(store *remote.Store, bus *command.Bus, width, height int, showFooter, verbose bool) *Model {
	m := &Model{
		store:      store,
		list:       uistate.NewList(uistate.RowsFromRemotes(store.Remotes())),
		bus:        bus,
		mode:       ModeBrowse,
		showFooter: showFooter,
		verbose:    verbose,
	}
	if width > 0 {
		m.width = width
		m.fixedWidth = true
	}
	if height > 0 {
		m.height = height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = *styles.Cursor
	}
	c.SetChar(" ")
	m.editCursor = c
	m.registerHandlers()
	return m
}

// Err returns the fatal error recorded before quitting, if any.
func (m *Model) Err() error {
	return m.fatalErr
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.bus.Wait()}
	if cmd := m.editCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cursorCmd tea.Cmd
	m.editCursor, cursorCmd = m.editCursor.Update(msg)
	if cursorCmd != nil {
		cmds = append(cmds, cursorCmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(command.EventMsg{}):  m.handleTrackerEventMsg,
		reflect.TypeOf(command.DoneMsg{}):   m.handleTrackerDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = size.Width
	}
	if !m.fixedHeight {
		m.height = size.Height
	}
	m.syncViewport()
	return nil
}

func (m *Model) handleTrackerEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(command.EventMsg)
	if !ok {
		return nil
	}
	switch evt := eventMsg.Event.(type) {
	case tracker.Snapshot:
		// Overwrite wholesale: every snapshot is a complete view.
		m.jobs = evt.Jobs
	case tracker.SubmitFailed:
		m.raiseError("Sync of " + evt.Name + " failed: " + evt.Err.Error())
	case tracker.Terminated:
		if evt.Err != nil {
			m.fatalErr = evt.Err
			m.quitting = true
			return tea.Quit
		}
	}
	return m.bus.Wait()
}

func (m *Model) handleTrackerDoneMsg(tea.Msg) tea.Cmd {
	m.trackerDone = true
	if !m.quitting {
		// The worker is gone while we still expect snapshots.
		if m.fatalErr == nil {
			m.fatalErr = ErrTrackerLost
		}
		m.quitting = true
		return tea.Quit
	}
	return nil
}

// raiseError enters the modal error state. Re-raising while already in the
// error state just replaces the message.
func (m *Model) raiseError(msg string) {
	events.UI.Error(msg)
	m.setMode(ModeError)
	m.errMsg = msg
}

func (m *Model) dismissError() {
	m.errMsg = ""
	m.setMode(ModeBrowse)
}

func (m *Model) setMode(mode Mode) {
	if m.mode != mode {
		events.UI.ModeChange(m.mode.String(), mode.String())
	}
	m.mode = mode
}

// refreshRows rebuilds the visible list after a store mutation.
func (m *Model) refreshRows() {
	m.list.SetRows(uistate.RowsFromRemotes(m.store.Remotes()))
	m.syncViewport()
}

func (m *Model) syncViewport() {
	m.list.EnsureCursorVisible(m.maxVisibleRows())
}

// selected resolves the cursor row to its store entry.
func (m *Model) selected() (int, remote.Remote, bool) {
	row, ok := m.list.Current()
	if !ok {
		return 0, remote.Remote{}, false
	}
	entry, ok := m.store.At(row.Index)
	if !ok {
		return 0, remote.Remote{}, false
	}
	return row.Index, entry, true
}

// quit signals the worker and leaves the front-end loop.
func (m *Model) quit() tea.Cmd {
	events.UI.Quit()
	m.quitting = true
	m.bus.Shutdown()
	return tea.Quit
}
