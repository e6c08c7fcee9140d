package state

import "github.com/ketchdev/ketch/internal/remote"

// Field identifies which edit buffer field is active.
type Field int

const (
	FieldName Field = iota
	FieldSource
	FieldDest
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldSource:
		return "source"
	case FieldDest:
		return "dest"
	}
	return "unknown"
}

// EditBuffer holds the text and cursor state for editing a remote across its
// three fields. The cursor is a rune index into the active field, always in
// [0, rune count]; byte offsets are computed only at the point of mutation.
type EditBuffer struct {
	Active Field
	Cursor int

	Name   string
	Source string
	Dest   string
}

// NewEditBuffer populates a buffer from an existing remote. The name field is
// active with the cursor at its end.
func NewEditBuffer(r remote.Remote) *EditBuffer {
	b := &EditBuffer{
		Name:   r.Name,
		Source: r.Source,
		Dest:   r.Dest,
		Active: FieldName,
	}
	b.ResetToEnd()
	return b
}

// Text returns the active field's text.
func (b *EditBuffer) Text() string {
	switch b.Active {
	case FieldSource:
		return b.Source
	case FieldDest:
		return b.Dest
	}
	return b.Name
}

func (b *EditBuffer) setText(text string) {
	switch b.Active {
	case FieldSource:
		b.Source = text
	case FieldDest:
		b.Dest = text
	default:
		b.Name = text
	}
}

func (b *EditBuffer) clampCursor() int {
	n := len([]rune(b.Text()))
	if b.Cursor < 0 {
		b.Cursor = 0
	}
	if b.Cursor > n {
		b.Cursor = n
	}
	return b.Cursor
}

// Insert places text at the cursor and advances the cursor past it.
func (b *EditBuffer) Insert(text string) bool {
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	runes := []rune(b.Text())
	pos := b.clampCursor()
	updated := make([]rune, 0, len(runes)+len(insert))
	updated = append(updated, runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, runes[pos:]...)
	b.setText(string(updated))
	b.Cursor = pos + len(insert)
	return true
}

// DeleteBeforeCursor removes the rune immediately left of the cursor. The
// string is rebuilt from the rune sequence, so multi-byte boundaries are
// never split.
func (b *EditBuffer) DeleteBeforeCursor() bool {
	runes := []rune(b.Text())
	pos := b.clampCursor()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	updated := make([]rune, 0, len(runes)-1)
	updated = append(updated, runes[:pos-1]...)
	updated = append(updated, runes[pos:]...)
	b.setText(string(updated))
	b.Cursor = pos - 1
	return true
}

// MoveLeft moves the cursor one rune left.
func (b *EditBuffer) MoveLeft() bool {
	if b.clampCursor() == 0 {
		return false
	}
	b.Cursor--
	return true
}

// MoveRight moves the cursor one rune right.
func (b *EditBuffer) MoveRight() bool {
	pos := b.clampCursor()
	if pos >= len([]rune(b.Text())) {
		return false
	}
	b.Cursor = pos + 1
	return true
}

// ResetToEnd places the cursor after the last rune of the active field.
// Called whenever the active field changes.
func (b *EditBuffer) ResetToEnd() {
	b.Cursor = len([]rune(b.Text()))
}

// NextField activates the next field in Name, Source, Dest order, wrapping.
func (b *EditBuffer) NextField() {
	switch b.Active {
	case FieldName:
		b.Active = FieldSource
	case FieldSource:
		b.Active = FieldDest
	default:
		b.Active = FieldName
	}
	b.ResetToEnd()
}

// PrevField activates the previous field, wrapping.
func (b *EditBuffer) PrevField() {
	switch b.Active {
	case FieldName:
		b.Active = FieldDest
	case FieldDest:
		b.Active = FieldSource
	default:
		b.Active = FieldName
	}
	b.ResetToEnd()
}

// Remote builds a user-origin configuration from the buffer contents.
func (b *EditBuffer) Remote() remote.Remote {
	return remote.Remote{
		Name:   b.Name,
		Source: b.Source,
		Dest:   b.Dest,
		Origin: remote.OriginUser,
	}
}
