package ui

import (
	"fmt"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ketchdev/ketch/internal/logging/events"
	"github.com/ketchdev/ketch/internal/remote"
	uistate "github.com/ketchdev/ketch/internal/ui/state"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	// Hard interrupt: wins over every mode.
	if keyMsg.String() == "ctrl+c" {
		return m.quit()
	}
	switch m.mode {
	case ModeError:
		return m.handleErrorKey(keyMsg)
	case ModeConfirmDelete:
		return m.handleConfirmDeleteKey(keyMsg)
	case ModeEdit:
		return m.handleEditKey(keyMsg)
	default:
		return m.handleBrowseKey(keyMsg)
	}
}

func (m *Model) handleErrorKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter", "q":
		m.dismissError()
	}
	return nil
}

func (m *Model) handleConfirmDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "enter":
		m.confirmDelete()
	case "n", "esc", "q":
		m.setMode(ModeBrowse)
	}
	return nil
}

func (m *Model) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	if m.filtering && m.handleFilterKey(msg) {
		return nil
	}
	switch msg.String() {
	case "q":
		return m.quit()
	case "/":
		m.filtering = true
		return nil
	case "esc":
		if m.list.Filter != "" {
			m.list.SetFilter("", 0)
			m.syncViewport()
			events.Filter.Cleared()
		}
		return nil
	case "up", "k":
		if m.list.MoveUp() {
			events.UI.Cursor(m.list.Cursor)
			m.syncViewport()
		}
	case "down", "j":
		if m.list.MoveDown() {
			events.UI.Cursor(m.list.Cursor)
			m.syncViewport()
		}
	case "home":
		if m.list.MoveHome() {
			m.syncViewport()
		}
	case "end":
		if m.list.MoveEnd() {
			m.syncViewport()
		}
	case "enter", "right":
		return m.triggerJob()
	case "e":
		m.startEdit()
	case "d":
		m.requestDelete()
	case "c":
		m.duplicateSelected()
	}
	return nil
}

// handleFilterKey routes input to the fuzzy filter while it is active.
// Navigation and trigger keys still work so a match can be acted on directly.
func (m *Model) handleFilterKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.list.SetFilter("", 0)
		m.syncViewport()
		events.Filter.Cleared()
		return true
	case tea.KeyEnter:
		m.filtering = false
		return true
	case tea.KeyBackspace:
		if m.list.DeleteFilterRuneBackward() {
			m.syncViewport()
			events.Filter.Backspace(m.list.Filter)
		}
		return true
	case tea.KeySpace:
		if m.list.InsertFilterText(" ") {
			m.syncViewport()
			events.Filter.Append(m.list.Filter)
		}
		return true
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return false
			}
		}
		if m.list.InsertFilterText(string(msg.Runes)) {
			m.syncViewport()
			events.Filter.Append(m.list.Filter)
		}
		return true
	}
	return false
}

// triggerJob submits a sync for the selected remote, or raises a modal error
// when an endpoint is missing. No command is sent in the error case.
func (m *Model) triggerJob() tea.Cmd {
	_, entry, ok := m.selected()
	if !ok {
		return nil
	}
	if !entry.HasSource() {
		m.raiseError("Remote doesn't have a source, edit it first")
		return nil
	}
	if !entry.HasDest() {
		m.raiseError("Remote doesn't have a destination, edit it first")
		return nil
	}
	events.UI.TriggerJob(entry.Name, entry.Source, entry.Dest)
	if m.verbose {
		m.infoMsg = fmt.Sprintf("Sync of %s requested", entry.Name)
	}
	return m.bus.Submit(entry.Name, entry.Source, entry.Dest)
}

func (m *Model) requestDelete() {
	index, entry, ok := m.selected()
	if !ok {
		return
	}
	if entry.Origin == remote.OriginDiscovered {
		m.raiseError(fmt.Sprintf("Remote %q comes from the engine configuration and cannot be deleted", entry.Name))
		return
	}
	m.confirmIndex = index
	m.setMode(ModeConfirmDelete)
}

func (m *Model) confirmDelete() {
	entry, _ := m.store.At(m.confirmIndex)
	if err := m.store.Delete(m.confirmIndex); err != nil {
		m.raiseError(err.Error())
		return
	}
	events.UI.Delete(entry.Name)
	m.refreshRows()
	if err := m.store.Save(); err != nil {
		m.raiseError("Failed to save remotes: " + err.Error())
		return
	}
	m.setMode(ModeBrowse)
}

func (m *Model) duplicateSelected() {
	index, entry, ok := m.selected()
	if !ok {
		return
	}
	if entry.Origin == remote.OriginDiscovered {
		m.raiseError(fmt.Sprintf("Remote %q comes from the engine configuration and cannot be duplicated", entry.Name))
		return
	}
	if err := m.store.Duplicate(index); err != nil {
		m.raiseError(err.Error())
		return
	}
	events.UI.Duplicate(entry.Name)
	m.refreshRows()
}

func (m *Model) startEdit() {
	index, entry, ok := m.selected()
	if !ok {
		return
	}
	m.editIndex = index
	m.editOriginal = entry
	m.editor = uistate.NewEditBuffer(entry)
	events.Edit.Open(entry.Name)
	m.setMode(ModeEdit)
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	if m.editor == nil {
		m.setMode(ModeBrowse)
		return nil
	}
	switch msg.Type {
	case tea.KeyEsc:
		m.editor = nil
		events.Edit.Cancel()
		m.setMode(ModeBrowse)
		return nil
	case tea.KeyEnter:
		m.commitEdit()
		return nil
	case tea.KeyTab, tea.KeyDown:
		m.editor.NextField()
		events.Edit.Field(m.editor.Active.String())
		return nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.editor.PrevField()
		events.Edit.Field(m.editor.Active.String())
		return nil
	case tea.KeyLeft:
		m.editor.MoveLeft()
		return nil
	case tea.KeyRight:
		m.editor.MoveRight()
		return nil
	case tea.KeyBackspace:
		m.editor.DeleteBeforeCursor()
		return nil
	case tea.KeySpace:
		m.editor.Insert(" ")
		return nil
	case tea.KeyRunes:
		if msg.Alt {
			return nil
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return nil
			}
		}
		m.editor.Insert(string(msg.Runes))
		return nil
	}
	return nil
}

// commitEdit applies the buffer to the store. Editing an engine-owned entry
// never mutates it: the result becomes a new user entry at the head.
func (m *Model) commitEdit() {
	edited := m.editor.Remote()
	replaced := m.editOriginal.Origin != remote.OriginDiscovered
	if replaced {
		if err := m.store.Replace(m.editIndex, edited); err != nil {
			m.raiseError(err.Error())
			return
		}
	} else {
		m.store.InsertFront(edited)
	}
	events.Edit.Commit(edited.Name, replaced)
	m.editor = nil
	m.refreshRows()
	if err := m.store.Save(); err != nil {
		m.raiseError("Failed to save remotes: " + err.Error())
		return
	}
	m.setMode(ModeBrowse)
}
