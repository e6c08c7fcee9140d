// Package state holds front-end view state: the remote list with its cursor,
// filter, and viewport, and the edit buffer used while editing an entry.
package state

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ketchdev/ketch/internal/remote"
)

// Row is one line of the remote table. Index is the entry's position in the
// backing store, which survives filtering.
type Row struct {
	Index      int
	Name       string
	Source     string
	Dest       string
	Discovered bool
}

// RowsFromRemotes converts store entries into display rows.
func RowsFromRemotes(remotes []remote.Remote) []Row {
	rows := make([]Row, len(remotes))
	for i, r := range remotes {
		rows[i] = Row{
			Index:      i,
			Name:       r.Name,
			Source:     r.Source,
			Dest:       r.Dest,
			Discovered: r.Origin == remote.OriginDiscovered,
		}
	}
	return rows
}

// List tracks the visible remote rows along with selection cursor, fuzzy
// filter, and viewport offset.
type List struct {
	Full           []Row
	Rows           []Row
	Filter         string
	FilterCursor   int
	Cursor         int
	ViewportOffset int
}

// NewList builds a list over the given rows with the cursor on the first row.
func NewList(rows []Row) *List {
	l := &List{}
	l.SetRows(rows)
	return l
}

// SetRows replaces the backing rows, reapplying the filter and clamping the
// cursor.
func (l *List) SetRows(rows []Row) {
	l.Full = append([]Row(nil), rows...)
	l.applyFilter()
}

// Current returns the row under the cursor.
func (l *List) Current() (Row, bool) {
	if len(l.Rows) == 0 || l.Cursor < 0 || l.Cursor >= len(l.Rows) {
		return Row{}, false
	}
	return l.Rows[l.Cursor], true
}

// MoveUp moves the selection cursor up one row, clamped at the top.
func (l *List) MoveUp() bool {
	if len(l.Rows) == 0 || l.Cursor <= 0 {
		return false
	}
	l.Cursor--
	return true
}

// MoveDown moves the selection cursor down one row, clamped at the bottom.
func (l *List) MoveDown() bool {
	if len(l.Rows) == 0 || l.Cursor >= len(l.Rows)-1 {
		return false
	}
	l.Cursor++
	return true
}

// MoveHome moves the cursor to the first row.
func (l *List) MoveHome() bool {
	if len(l.Rows) == 0 || l.Cursor == 0 {
		return false
	}
	l.Cursor = 0
	return true
}

// MoveEnd moves the cursor to the last row.
func (l *List) MoveEnd() bool {
	n := len(l.Rows)
	if n == 0 || l.Cursor == n-1 {
		return false
	}
	l.Cursor = n - 1
	return true
}

// EnsureCursorVisible adjusts the viewport offset so the cursor stays inside
// a window of maxVisible rows.
func (l *List) EnsureCursorVisible(maxVisible int) {
	if len(l.Rows) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	if l.Cursor >= len(l.Rows) {
		l.Cursor = len(l.Rows) - 1
	}
	if maxVisible <= 0 {
		l.ViewportOffset = 0
		return
	}
	maxOffset := len(l.Rows) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if l.ViewportOffset > maxOffset {
		l.ViewportOffset = maxOffset
	}
	if l.ViewportOffset < 0 {
		l.ViewportOffset = 0
	}
	if l.Cursor < l.ViewportOffset {
		l.ViewportOffset = l.Cursor
	}
	if upper := l.ViewportOffset + maxVisible - 1; l.Cursor > upper {
		l.ViewportOffset = l.Cursor - maxVisible + 1
		if l.ViewportOffset > maxOffset {
			l.ViewportOffset = maxOffset
		}
	}
}

// FilterCursorPos returns the clamped rune offset of the filter cursor.
func (l *List) FilterCursorPos() int {
	runes := []rune(l.Filter)
	if l.FilterCursor < 0 {
		return 0
	}
	if l.FilterCursor > len(runes) {
		return len(runes)
	}
	return l.FilterCursor
}

// SetFilter replaces the filter query and cursor and reapplies the match.
func (l *List) SetFilter(query string, cursor int) {
	l.Filter = query
	runes := []rune(query)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	l.FilterCursor = cursor
	l.applyFilter()
}

// InsertFilterText inserts text into the filter at the cursor position.
func (l *List) InsertFilterText(text string) bool {
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	runes := []rune(l.Filter)
	pos := l.FilterCursorPos()
	updated := make([]rune, 0, len(runes)+len(insert))
	updated = append(updated, runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, runes[pos:]...)
	l.SetFilter(string(updated), pos+len(insert))
	return true
}

// DeleteFilterRuneBackward deletes a rune before the filter cursor.
func (l *List) DeleteFilterRuneBackward() bool {
	runes := []rune(l.Filter)
	pos := l.FilterCursorPos()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	updated := append(runes[:pos-1], runes[pos:]...)
	l.SetFilter(string(updated), pos-1)
	return true
}

func (l *List) applyFilter() {
	l.Rows = filterRows(l.Full, l.Filter)
	if len(l.Rows) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	if l.Cursor >= len(l.Rows) {
		l.Cursor = len(l.Rows) - 1
	}
	if l.ViewportOffset > len(l.Rows)-1 {
		l.ViewportOffset = 0
	}
}

// filterRows returns the rows matching the query by fuzzy rank over names,
// falling back to a substring match over all columns.
func filterRows(rows []Row, query string) []Row {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return append([]Row(nil), rows...)
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, names)
	if len(ranks) > 0 {
		matched := make(map[int]struct{}, len(ranks))
		for _, rank := range ranks {
			matched[rank.OriginalIndex] = struct{}{}
		}
		filtered := make([]Row, 0, len(matched))
		for i, row := range rows {
			if _, ok := matched[i]; ok {
				filtered = append(filtered, row)
			}
		}
		if len(filtered) > 0 {
			return filtered
		}
	}
	lower := strings.ToLower(trimmed)
	filtered := make([]Row, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Name), lower) ||
			strings.Contains(strings.ToLower(row.Source), lower) ||
			strings.Contains(strings.ToLower(row.Dest), lower) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
