package tracker

import "github.com/ketchdev/ketch/internal/rclone"

// JobKey identifies one submitted synchronization job. Keys are totally
// ordered: engine-assigned id first, then the remaining fields. ID 0 is the
// placeholder used before the engine assigns a real id; the tracker re-keys
// the entry immediately after submission.
type JobKey struct {
	ID     uint64
	Name   string
	Source string
	Dest   string
}

// Compare returns -1, 0 or 1 ordering k against other.
func (k JobKey) Compare(other JobKey) int {
	switch {
	case k.ID < other.ID:
		return -1
	case k.ID > other.ID:
		return 1
	}
	for _, pair := range [][2]string{
		{k.Name, other.Name},
		{k.Source, other.Source},
		{k.Dest, other.Dest},
	} {
		if pair[0] < pair[1] {
			return -1
		}
		if pair[0] > pair[1] {
			return 1
		}
	}
	return 0
}

// Phase is the lifecycle stage of a tracked job. Transitions are monotonic:
// Sent, then zero or more Pending updates, then Done. Done is terminal.
type Phase int

const (
	PhaseSent Phase = iota
	PhasePending
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseSent:
		return "sent"
	case PhasePending:
		return "pending"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// State couples a phase with the engine's last reported status. Status is the
// zero value until the first successful poll.
type State struct {
	Phase  Phase
	Status rclone.Status
}

// Entry is one key/state pair of a Jobs mapping.
type Entry struct {
	Key   JobKey
	State State
}

// Jobs is an ordered mapping from JobKey to State, kept sorted by key. The
// tracker worker is its only writer; everyone else holds value snapshots.
type Jobs struct {
	entries []Entry
}

// Len returns the number of tracked jobs.
func (j Jobs) Len() int {
	return len(j.entries)
}

// Entries returns the entries in key order. The slice is a copy.
func (j Jobs) Entries() []Entry {
	return append([]Entry(nil), j.entries...)
}

// Lookup returns the state for key.
func (j Jobs) Lookup(key JobKey) (State, bool) {
	for _, e := range j.entries {
		if e.Key == key {
			return e.State, true
		}
	}
	return State{}, false
}

// AnyWaiting reports whether any job is still Sent or Pending.
func (j Jobs) AnyWaiting() bool {
	for _, e := range j.entries {
		if e.State.Phase != PhaseDone {
			return true
		}
	}
	return false
}

// Set inserts or updates the state for key, preserving key order. Updates to
// an entry already Done are ignored: finished jobs are immutable for the rest
// of the session.
func (j *Jobs) Set(key JobKey, state State) {
	for i, e := range j.entries {
		cmp := key.Compare(e.Key)
		if cmp == 0 {
			if e.State.Phase == PhaseDone {
				return
			}
			j.entries[i].State = state
			return
		}
		if cmp < 0 {
			j.entries = append(j.entries, Entry{})
			copy(j.entries[i+1:], j.entries[i:])
			j.entries[i] = Entry{Key: key, State: state}
			return
		}
	}
	j.entries = append(j.entries, Entry{Key: key, State: state})
}

// Clone returns a deep copy suitable for publishing as a snapshot.
func (j Jobs) Clone() Jobs {
	return Jobs{entries: append([]Entry(nil), j.entries...)}
}
