package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/ketchdev/ketch/internal/format/table"
	"github.com/ketchdev/ketch/internal/tracker"
	uistate "github.com/ketchdev/ketch/internal/ui/state"
)

const (
	jobsPaneMaxRows = 8
	reservedRows    = 7 // header, filter, table header, jobs title, modal, footer, padding
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.mode == ModeEdit && m.editor != nil {
		return m.viewEditor()
	}
	lines := make([]string, 0, 32)
	lines = append(lines, render(styles.Header, "ketch — remote sync"))
	if filter := m.filterLine(); filter != "" {
		lines = append(lines, filter)
	}
	lines = append(lines, m.remoteTableLines()...)
	lines = append(lines, "")
	lines = append(lines, m.jobsPaneLines()...)
	if modal := m.modalLines(); len(modal) > 0 {
		lines = append(lines, "")
		lines = append(lines, modal...)
	} else if m.infoMsg != "" {
		lines = append(lines, "", render(styles.Info, m.infoMsg))
	}
	if m.showFooter {
		lines = append(lines, "", render(styles.Footer, m.footerHint()))
	}
	return m.clipLines(lines)
}

func (m *Model) maxVisibleRows() int {
	if m.height <= 0 {
		return 0
	}
	visible := m.height - reservedRows - m.jobsPaneHeight()
	if visible < 3 {
		visible = 3
	}
	return visible
}

func (m *Model) jobsPaneHeight() int {
	n := m.jobs.Len()
	if n == 0 {
		return 1
	}
	if n > jobsPaneMaxRows {
		return jobsPaneMaxRows
	}
	return n
}

func (m *Model) filterLine() string {
	if !m.filtering && m.list.Filter == "" {
		return ""
	}
	prompt := render(styles.FilterPrompt, "» ")
	if m.list.Filter == "" && m.filtering {
		return prompt + render(styles.FilterPlaceholder, "(type to filter remotes)")
	}
	return prompt + render(styles.Filter, m.list.Filter)
}

// remoteTableLines renders the visible window of the remote table with the
// selection row highlighted.
func (m *Model) remoteTableLines() []string {
	rows := m.list.Rows
	if len(rows) == 0 {
		msg := "(no remotes)"
		if m.list.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", m.list.Filter)
		}
		return []string{render(styles.Info, msg)}
	}

	start := 0
	visible := rows
	if maxRows := m.maxVisibleRows(); maxRows > 0 && len(rows) > maxRows {
		start = m.list.ViewportOffset
		if start < 0 {
			start = 0
		}
		if start+maxRows > len(rows) {
			start = len(rows) - maxRows
		}
		visible = rows[start : start+maxRows]
	}

	cells := make([][]string, 0, len(visible)+1)
	cells = append(cells, []string{"NAME", "SOURCE", "DESTINATION", "ORIGIN"})
	for _, row := range visible {
		origin := "user"
		if row.Discovered {
			origin = "engine"
		}
		cells = append(cells, []string{row.Name, row.Source, row.Dest, origin})
	}
	formatted := table.Format(cells, nil)

	lines := make([]string, 0, len(formatted))
	lines = append(lines, render(styles.Header, m.clip(formatted[0])))
	for i, text := range formatted[1:] {
		row := visible[i]
		style := styles.Item
		if row.Discovered {
			style = styles.Discovered
		}
		if start+i == m.list.Cursor {
			style = styles.SelectedItem
		}
		lines = append(lines, render(style, m.clip("  "+text)))
	}
	return lines
}

// jobsPaneLines renders the latest snapshot of tracked jobs.
func (m *Model) jobsPaneLines() []string {
	lines := []string{render(styles.JobsTitle, "Jobs")}
	entries := m.jobs.Entries()
	if len(entries) == 0 {
		return append(lines, render(styles.Info, "  (no jobs this session)"))
	}
	if len(entries) > jobsPaneMaxRows {
		entries = entries[len(entries)-jobsPaneMaxRows:]
	}
	cells := make([][]string, 0, len(entries))
	for _, e := range entries {
		cells = append(cells, []string{
			fmt.Sprintf("#%d", e.Key.ID),
			e.Key.Name,
			jobPhaseLabel(e.State),
			jobDurationLabel(e.State),
			jobDetailLabel(e.State),
		})
	}
	formatted := table.Format(cells, []table.Alignment{
		table.AlignRight, table.AlignLeft, table.AlignLeft, table.AlignRight, table.AlignLeft,
	})
	for i, text := range formatted {
		lines = append(lines, render(jobStyle(entries[i].State), m.clip("  "+text)))
	}
	return lines
}

func jobPhaseLabel(s tracker.State) string {
	if s.Phase == tracker.PhaseDone {
		if s.Status.Success {
			return "done"
		}
		return "failed"
	}
	return s.Phase.String()
}

func jobDurationLabel(s tracker.State) string {
	if s.Phase == tracker.PhaseSent {
		return "-"
	}
	return fmt.Sprintf("%.1fs", s.Status.Duration)
}

func jobDetailLabel(s tracker.State) string {
	if s.Status.Error != "" {
		return s.Status.Error
	}
	return s.Status.StartTime
}

func jobStyle(s tracker.State) *lipgloss.Style {
	if s.Phase == tracker.PhaseDone {
		if s.Status.Success {
			return styles.JobDone
		}
		return styles.JobFailed
	}
	return styles.JobWaiting
}

func (m *Model) modalLines() []string {
	switch m.mode {
	case ModeError:
		return []string{
			render(styles.Error, m.clip("Error: "+m.errMsg)),
			render(styles.Footer, "press esc to dismiss"),
		}
	case ModeConfirmDelete:
		name := ""
		if entry, ok := m.store.At(m.confirmIndex); ok {
			name = entry.Name
		}
		return []string{
			render(styles.Prompt, fmt.Sprintf("Delete remote %q? [y/n]", name)),
		}
	}
	return nil
}

func (m *Model) viewEditor() string {
	b := m.editor
	lines := []string{
		render(styles.Header, "Edit remote"),
		"",
		m.editorFieldLine(uistate.FieldName, "Name", b.Name),
		m.editorFieldLine(uistate.FieldSource, "Source", b.Source),
		m.editorFieldLine(uistate.FieldDest, "Destination", b.Dest),
		"",
		render(styles.Footer, "tab: next field • enter: save • esc: cancel"),
	}
	return m.clipLines(lines)
}

func (m *Model) editorFieldLine(field uistate.Field, label, value string) string {
	labelStyle := styles.EditLabel
	if m.editor.Active == field {
		labelStyle = styles.EditActiveLabel
	}
	prefix := render(labelStyle, fmt.Sprintf("%-12s", label+":"))
	if m.editor.Active != field {
		return prefix + render(styles.Item, value)
	}
	runes := []rune(value)
	pos := m.editor.Cursor
	if pos < 0 {
		pos = 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}
	before := render(styles.Item, string(runes[:pos]))
	caretRune := " "
	var after string
	if pos < len(runes) {
		caretRune = string(runes[pos])
		after = render(styles.Item, string(runes[pos+1:]))
	}
	return prefix + before + m.renderEditCursor(caretRune) + after
}

func (m *Model) renderEditCursor(char string) string {
	if char == "" {
		char = " "
	}
	m.editCursor.SetChar(char)
	if m.editCursor.Blink {
		return render(styles.Item, char)
	}
	if styles.Cursor != nil {
		return styles.Cursor.Render(char)
	}
	return lipgloss.NewStyle().Reverse(true).Render(char)
}

func (m *Model) footerHint() string {
	switch m.mode {
	case ModeConfirmDelete:
		return "y: delete • n: keep"
	case ModeError:
		return "esc: dismiss"
	default:
		return "enter: sync • e: edit • c: duplicate • d: delete • /: filter • q: quit"
	}
}

func (m *Model) clip(text string) string {
	if m.width <= 0 {
		return text
	}
	return truncate.StringWithTail(text, uint(m.width), "…")
}

func (m *Model) clipLines(lines []string) string {
	if m.height > 0 && len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}

func render(style *lipgloss.Style, text string) string {
	if style == nil || text == "" {
		return text
	}
	return style.Render(text)
}
