package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ketchdev/ketch/internal/rclone"
)

type fakeEngine struct {
	mu        sync.Mutex
	syncID    uint64
	syncErr   error
	statuses  map[uint64]rclone.Status
	statusErr error
	listIDs   []uint64
	listErr   error
}

func (f *fakeEngine) Sync(src, dest string, async bool) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.syncErr != nil {
		return 0, f.syncErr
	}
	return f.syncID, nil
}

func (f *fakeEngine) JobStatus(id uint64) (rclone.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return rclone.Status{}, f.statusErr
	}
	return f.statuses[id], nil
}

func (f *fakeEngine) JobList() ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listIDs, f.listErr
}

func (f *fakeEngine) ListRemotes() ([]string, error) {
	return nil, nil
}

func (f *fakeEngine) setStatus(id uint64, status rclone.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = map[uint64]rclone.Status{}
	}
	f.statuses[id] = status
}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case evt, ok := <-events:
		if !ok {
			t.Fatalf("event channel closed while waiting for an event")
		}
		return evt
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for an event")
	}
	return nil
}

func waitClosed(t *testing.T, events <-chan Event) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for the event channel to close")
		}
	}
}

func TestSubmittedJobReachesDone(t *testing.T) {
	engine := &fakeEngine{syncID: 7}
	engine.setStatus(7, rclone.Status{ID: 7, Finished: false})

	trk := New(engine, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trk.Start(ctx)

	trk.Commands() <- Submit{Name: "backup", Source: "local:/src", Dest: "s3:dst", Token: uuid.New()}

	key := JobKey{ID: 7, Name: "backup", Source: "local:/src", Dest: "s3:dst"}

	// First snapshot: the job exists under the engine-assigned id.
	var state State
	for {
		snap, ok := nextEvent(t, trk.Events()).(Snapshot)
		if !ok {
			t.Fatalf("expected snapshot event")
		}
		if state, ok = snap.Jobs.Lookup(key); ok {
			break
		}
	}
	if state.Phase != PhaseSent && state.Phase != PhasePending {
		t.Fatalf("expected job waiting, got %v", state.Phase)
	}

	engine.setStatus(7, rclone.Status{ID: 7, Finished: true, Success: true, Duration: 12.5})

	for {
		snap, ok := nextEvent(t, trk.Events()).(Snapshot)
		if !ok {
			t.Fatalf("expected snapshot event")
		}
		state, ok := snap.Jobs.Lookup(key)
		if !ok {
			t.Fatalf("job disappeared from snapshot")
		}
		if state.Phase == PhaseDone {
			if !state.Status.Success || state.Status.Duration != 12.5 {
				t.Fatalf("unexpected final status %+v", state.Status)
			}
			break
		}
	}

	trk.Commands() <- Shutdown{}
	if err := trk.Join(); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
	waitClosed(t, trk.Events())
}

func TestSubmitTransportErrorKeepsWorkerAlive(t *testing.T) {
	engine := &fakeEngine{syncErr: errors.New("connection refused")}

	trk := New(engine, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trk.Start(ctx)

	trk.Commands() <- Submit{Name: "backup", Source: "a:", Dest: "b:", Token: uuid.New()}

	evt := nextEvent(t, trk.Events())
	failed, ok := evt.(SubmitFailed)
	if !ok {
		t.Fatalf("expected SubmitFailed, got %T", evt)
	}
	if failed.Name != "backup" {
		t.Fatalf("expected failure for backup, got %q", failed.Name)
	}

	// The worker must still accept commands afterwards.
	trk.Commands() <- Shutdown{}
	if err := trk.Join(); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}

func TestSubmitDecodeErrorIsFatal(t *testing.T) {
	engine := &fakeEngine{syncErr: &rclone.DecodeError{Method: "sync/sync", Err: errors.New("bad payload")}}

	trk := New(engine, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trk.Start(ctx)

	trk.Commands() <- Submit{Name: "backup", Source: "a:", Dest: "b:", Token: uuid.New()}

	evt := nextEvent(t, trk.Events())
	terminated, ok := evt.(Terminated)
	if !ok {
		t.Fatalf("expected Terminated, got %T", evt)
	}
	if !rclone.IsDecodeError(terminated.Err) {
		t.Fatalf("expected decode error, got %v", terminated.Err)
	}
	if err := trk.Join(); !rclone.IsDecodeError(err) {
		t.Fatalf("expected worker to exit with decode error, got %v", err)
	}
	waitClosed(t, trk.Events())
}

func TestPollDecodeErrorIsFatal(t *testing.T) {
	engine := &fakeEngine{syncID: 5}
	engine.statusErr = &rclone.DecodeError{Method: "job/status", Err: errors.New("bad payload")}

	trk := New(engine, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trk.Start(ctx)

	trk.Commands() <- Submit{Name: "backup", Source: "a:", Dest: "b:", Token: uuid.New()}

	sawTerminated := false
	for !sawTerminated {
		switch evt := nextEvent(t, trk.Events()).(type) {
		case Snapshot:
		case Terminated:
			if !rclone.IsDecodeError(evt.Err) {
				t.Fatalf("expected decode error, got %v", evt.Err)
			}
			sawTerminated = true
		default:
			t.Fatalf("unexpected event %T", evt)
		}
	}
	if err := trk.Join(); !rclone.IsDecodeError(err) {
		t.Fatalf("expected worker to exit with decode error, got %v", err)
	}
}

func TestPollTransportErrorIsRetried(t *testing.T) {
	engine := &fakeEngine{syncID: 3}
	engine.statusErr = errors.New("connection reset")

	trk := New(engine, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trk.Start(ctx)

	trk.Commands() <- Submit{Name: "backup", Source: "a:", Dest: "b:", Token: uuid.New()}

	key := JobKey{ID: 3, Name: "backup", Source: "a:", Dest: "b:"}

	// While the engine is unreachable the entry stays in its last phase.
	snap, ok := nextEvent(t, trk.Events()).(Snapshot)
	if !ok {
		t.Fatalf("expected snapshot event")
	}
	if state, ok := snap.Jobs.Lookup(key); !ok || state.Phase != PhaseSent {
		t.Fatalf("expected job to stay sent during outage, got %+v", state)
	}

	// Engine recovers; the next polls complete the job.
	engine.mu.Lock()
	engine.statusErr = nil
	engine.mu.Unlock()
	engine.setStatus(3, rclone.Status{ID: 3, Finished: true, Success: true})

	for {
		snap, ok := nextEvent(t, trk.Events()).(Snapshot)
		if !ok {
			t.Fatalf("expected snapshot event")
		}
		if state, ok := snap.Jobs.Lookup(key); ok && state.Phase == PhaseDone {
			break
		}
	}

	trk.Commands() <- Shutdown{}
	if err := trk.Join(); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}

func TestAdoptsJobsAlreadyRunningInEngine(t *testing.T) {
	engine := &fakeEngine{listIDs: []uint64{42}}
	engine.setStatus(42, rclone.Status{ID: 42, Finished: true, Success: true, Duration: 3})

	trk := New(engine, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trk.Start(ctx)

	key := JobKey{ID: 42, Name: "(engine)"}
	for {
		snap, ok := nextEvent(t, trk.Events()).(Snapshot)
		if !ok {
			t.Fatalf("expected snapshot event")
		}
		if state, ok := snap.Jobs.Lookup(key); ok && state.Phase == PhaseDone {
			break
		}
	}

	trk.Commands() <- Shutdown{}
	if err := trk.Join(); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}

func TestClosedCommandChannelStopsWorker(t *testing.T) {
	trk := New(&fakeEngine{}, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trk.Start(ctx)

	close(trk.Commands())
	if err := trk.Join(); err != nil {
		t.Fatalf("expected clean stop on closed commands, got %v", err)
	}
	waitClosed(t, trk.Events())
}
