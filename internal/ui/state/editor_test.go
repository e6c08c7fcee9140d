package state

import (
	"testing"

	"github.com/ketchdev/ketch/internal/remote"
)

func TestNewEditBufferStartsOnNameAtEnd(t *testing.T) {
	b := NewEditBuffer(remote.Remote{Name: "café", Source: "a:", Dest: "b:"})
	if b.Active != FieldName {
		t.Fatalf("expected name field active, got %v", b.Active)
	}
	if b.Cursor != 4 {
		t.Fatalf("expected cursor after last rune, got %d", b.Cursor)
	}
}

func TestInsertMultiByteRuneAtCursor(t *testing.T) {
	b := NewEditBuffer(remote.Remote{Name: "cafe"})
	b.MoveLeft()
	if !b.Insert("é") {
		t.Fatalf("expected insert to succeed")
	}
	if b.Name != "cafée" {
		t.Fatalf("expected cafée, got %q", b.Name)
	}
	if b.Cursor != 4 {
		t.Fatalf("expected cursor advanced past insert, got %d", b.Cursor)
	}
}

func TestDeleteBeforeCursorRemovesWholeRune(t *testing.T) {
	b := NewEditBuffer(remote.Remote{Name: "é"})
	if !b.DeleteBeforeCursor() {
		t.Fatalf("expected delete to succeed")
	}
	if b.Name != "" {
		t.Fatalf("expected empty name, got %q", b.Name)
	}
	if b.Cursor != 0 {
		t.Fatalf("expected cursor at 0, got %d", b.Cursor)
	}
}

func TestDeleteAtStartIsNoOp(t *testing.T) {
	b := NewEditBuffer(remote.Remote{Name: "abc"})
	b.Cursor = 0
	if b.DeleteBeforeCursor() {
		t.Fatalf("expected delete at position 0 to be refused")
	}
	if b.Name != "abc" {
		t.Fatalf("expected text unchanged, got %q", b.Name)
	}
}

func TestCursorMovementClamps(t *testing.T) {
	b := NewEditBuffer(remote.Remote{Name: "ab"})
	if b.MoveRight() {
		t.Fatalf("expected move right at end to be refused")
	}
	b.Cursor = 0
	if b.MoveLeft() {
		t.Fatalf("expected move left at start to be refused")
	}
	if !b.MoveRight() || b.Cursor != 1 {
		t.Fatalf("expected cursor at 1, got %d", b.Cursor)
	}
}

func TestFieldCyclingWrapsAndResetsCursor(t *testing.T) {
	b := NewEditBuffer(remote.Remote{Name: "n", Source: "source", Dest: "d"})
	b.NextField()
	if b.Active != FieldSource {
		t.Fatalf("expected source active, got %v", b.Active)
	}
	if b.Cursor != 6 {
		t.Fatalf("expected cursor at end of source, got %d", b.Cursor)
	}
	b.NextField()
	b.NextField()
	if b.Active != FieldName {
		t.Fatalf("expected wrap back to name, got %v", b.Active)
	}
	b.PrevField()
	if b.Active != FieldDest {
		t.Fatalf("expected wrap back to dest, got %v", b.Active)
	}
}

func TestInsertTargetsActiveField(t *testing.T) {
	b := NewEditBuffer(remote.Remote{Name: "n", Source: "s", Dest: "d"})
	b.NextField()
	b.Insert("3:")
	if b.Source != "s3:" {
		t.Fatalf("expected source edited, got %q", b.Source)
	}
	if b.Name != "n" || b.Dest != "d" {
		t.Fatalf("other fields must be untouched: %q %q", b.Name, b.Dest)
	}
}

func TestRemoteBuildsUserEntry(t *testing.T) {
	b := NewEditBuffer(remote.Remote{Name: "n", Source: "s:", Dest: "d:", Origin: remote.OriginDiscovered})
	r := b.Remote()
	if r.Origin != remote.OriginUser {
		t.Fatalf("edited result must be user origin, got %v", r.Origin)
	}
	if r.Name != "n" || r.Source != "s:" || r.Dest != "d:" {
		t.Fatalf("unexpected remote %+v", r)
	}
}

func TestUnmodifiedBufferRoundTripsExactly(t *testing.T) {
	original := remote.Remote{Name: "héllo", Source: "sørce:", Dest: "dêst:", Origin: remote.OriginUser}
	b := NewEditBuffer(original)
	b.NextField()
	b.NextField()
	b.NextField()
	if got := b.Remote(); got != original {
		t.Fatalf("expected identical round trip, got %+v", got)
	}
}
