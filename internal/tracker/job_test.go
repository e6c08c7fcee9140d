package tracker

import (
	"testing"

	"github.com/ketchdev/ketch/internal/rclone"
)

func TestJobKeyCompareOrdersByIDFirst(t *testing.T) {
	low := JobKey{ID: 1, Name: "zzz"}
	high := JobKey{ID: 2, Name: "aaa"}
	if low.Compare(high) != -1 {
		t.Fatalf("expected id to dominate ordering")
	}
	if high.Compare(low) != 1 {
		t.Fatalf("expected reverse comparison to flip sign")
	}
}

func TestJobKeyCompareFallsBackToFields(t *testing.T) {
	a := JobKey{ID: 1, Name: "a", Source: "s", Dest: "d"}
	b := JobKey{ID: 1, Name: "a", Source: "s", Dest: "e"}
	if a.Compare(b) != -1 {
		t.Fatalf("expected dest to break the tie")
	}
	if a.Compare(a) != 0 {
		t.Fatalf("expected equal keys to compare 0")
	}
}

func TestJobsSetKeepsKeyOrder(t *testing.T) {
	var jobs Jobs
	jobs.Set(JobKey{ID: 9}, State{Phase: PhaseSent})
	jobs.Set(JobKey{ID: 3}, State{Phase: PhaseSent})
	jobs.Set(JobKey{ID: 7}, State{Phase: PhaseSent})

	entries := jobs.Entries()
	want := []uint64{3, 7, 9}
	for i, id := range want {
		if entries[i].Key.ID != id {
			t.Fatalf("expected id %d at position %d, got %d", id, i, entries[i].Key.ID)
		}
	}
}

func TestJobsSetUpdatesExistingEntry(t *testing.T) {
	var jobs Jobs
	key := JobKey{ID: 7, Name: "backup"}
	jobs.Set(key, State{Phase: PhaseSent})
	jobs.Set(key, State{Phase: PhasePending, Status: rclone.Status{ID: 7}})
	if jobs.Len() != 1 {
		t.Fatalf("expected update in place, got %d entries", jobs.Len())
	}
	state, ok := jobs.Lookup(key)
	if !ok || state.Phase != PhasePending {
		t.Fatalf("expected pending state, got %+v", state)
	}
}

func TestJobsDoneEntriesAreImmutable(t *testing.T) {
	var jobs Jobs
	key := JobKey{ID: 7}
	done := State{Phase: PhaseDone, Status: rclone.Status{Finished: true, Success: true, Duration: 12.5}}
	jobs.Set(key, done)
	jobs.Set(key, State{Phase: PhasePending})

	state, _ := jobs.Lookup(key)
	if state.Phase != PhaseDone {
		t.Fatalf("done entry was overwritten: %+v", state)
	}
	if state.Status.Duration != 12.5 {
		t.Fatalf("done status was overwritten: %+v", state.Status)
	}
}

func TestAnyWaiting(t *testing.T) {
	var jobs Jobs
	if jobs.AnyWaiting() {
		t.Fatalf("empty mapping must not report waiting jobs")
	}
	jobs.Set(JobKey{ID: 1}, State{Phase: PhaseDone})
	if jobs.AnyWaiting() {
		t.Fatalf("all-done mapping must not report waiting jobs")
	}
	jobs.Set(JobKey{ID: 2}, State{Phase: PhasePending})
	if !jobs.AnyWaiting() {
		t.Fatalf("pending job must report waiting")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	var jobs Jobs
	jobs.Set(JobKey{ID: 1}, State{Phase: PhaseSent})
	snapshot := jobs.Clone()
	jobs.Set(JobKey{ID: 1}, State{Phase: PhasePending})

	state, _ := snapshot.Lookup(JobKey{ID: 1})
	if state.Phase != PhaseSent {
		t.Fatalf("snapshot must not observe later writes, got %v", state.Phase)
	}
}
