// Package tracker runs the background worker that submits sync jobs to the
// engine, polls their status, and publishes snapshots to the front end. The
// worker owns the job mapping outright; the two sides share nothing but a
// pair of channels.
package tracker

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/ketchdev/ketch/internal/logging/events"
	"github.com/ketchdev/ketch/internal/rclone"
)

// adoptedJobName labels jobs discovered via job/list that were started
// outside this session.
const adoptedJobName = "(engine)"

// Command is a front end to worker message.
type Command interface{ isCommand() }

// Submit asks the worker to start a sync job. The key it produces carries the
// placeholder id 0 until the engine assigns a real one.
type Submit struct {
	Name   string
	Source string
	Dest   string
	Token  uuid.UUID
}

func (Submit) isCommand() {}

// Key returns the pre-submission placeholder key for the job.
func (s Submit) Key() JobKey {
	return JobKey{ID: 0, Name: s.Name, Source: s.Source, Dest: s.Dest}
}

// Shutdown asks the worker to stop after the current cycle.
type Shutdown struct{}

func (Shutdown) isCommand() {}

// Event is a worker to front end message.
type Event interface{ isEvent() }

// Snapshot carries a complete, self-consistent copy of the job mapping.
type Snapshot struct {
	Jobs Jobs
}

func (Snapshot) isEvent() {}

// SubmitFailed reports that a submission was rejected or lost in transport.
// The worker never retries a submission; re-triggering is a user action.
type SubmitFailed struct {
	Name string
	Err  error
}

func (SubmitFailed) isEvent() {}

// Terminated reports a fatal worker error. It is the last event before the
// worker exits; clean shutdown closes the event channel without one.
type Terminated struct {
	Err error
}

func (Terminated) isEvent() {}

// Tracker drives the poll-or-wait loop against the engine.
type Tracker struct {
	engine   rclone.Engine
	interval time.Duration

	commands chan Command
	evts     chan Event
	done     chan error

	jobs    Jobs
	retry   *backoff.ExponentialBackOff
	degrade bool
}

// New builds a tracker polling the engine at the given interval while jobs
// are outstanding.
func New(engine rclone.Engine, interval time.Duration) *Tracker {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = interval
	retry.MaxInterval = 16 * interval
	retry.MaxElapsedTime = 0
	return &Tracker{
		engine:   engine,
		interval: interval,
		commands: make(chan Command, 16),
		evts:     make(chan Event, 16),
		done:     make(chan error, 1),
		retry:    retry,
	}
}

// Commands returns the channel the front end submits commands on.
func (t *Tracker) Commands() chan<- Command {
	return t.commands
}

// Events returns the channel snapshots and termination events arrive on. It
// is closed when the worker exits.
func (t *Tracker) Events() <-chan Event {
	return t.evts
}

// Start launches the worker goroutine. Join reports its result.
func (t *Tracker) Start(ctx context.Context) {
	go func() {
		t.done <- t.Run(ctx)
	}()
}

// Join blocks until the worker has exited and returns its error, if any.
func (t *Tracker) Join() error {
	return <-t.done
}

// Run executes the worker loop until a Shutdown command, a closed command
// channel, context cancellation, or a fatal error. Exported for tests; most
// callers use Start/Join.
func (t *Tracker) Run(ctx context.Context) error {
	defer close(t.evts)
	t.adoptEngineJobs()

	for {
		if !t.jobs.AnyWaiting() {
			// Idle: no polling cost, block until the front end speaks.
			select {
			case <-ctx.Done():
				events.Tracker.Stopped(nil)
				return nil
			case cmd, ok := <-t.commands:
				if !ok {
					events.Tracker.Stopped(nil)
					return nil
				}
				if stop, err := t.handle(ctx, cmd); stop || err != nil {
					events.Tracker.Stopped(err)
					return err
				}
			}
			continue
		}

		if err := t.pollWaiting(); err != nil {
			t.publish(ctx, Terminated{Err: err})
			events.Tracker.Stopped(err)
			return err
		}
		if !t.publish(ctx, Snapshot{Jobs: t.jobs.Clone()}) {
			events.Tracker.Stopped(nil)
			return nil
		}

		// Consume at most one command per cycle; otherwise sleep out the
		// poll interval. The interval stretches while the engine is
		// unreachable and snaps back on the first good poll.
		timer := time.NewTimer(t.sleepInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			events.Tracker.Stopped(nil)
			return nil
		case cmd, ok := <-t.commands:
			timer.Stop()
			if !ok {
				events.Tracker.Stopped(nil)
				return nil
			}
			if stop, err := t.handle(ctx, cmd); stop || err != nil {
				events.Tracker.Stopped(err)
				return err
			}
		case <-timer.C:
		}
	}
}

// adoptEngineJobs picks up jobs already running in the engine so their
// progress shows alongside jobs submitted here. Transport errors are ignored;
// the sweep is best effort.
func (t *Tracker) adoptEngineJobs() {
	ids, err := t.engine.JobList()
	if err != nil || len(ids) == 0 {
		return
	}
	for _, id := range ids {
		t.jobs.Set(JobKey{ID: id, Name: adoptedJobName}, State{Phase: PhaseSent})
	}
	events.Tracker.Adopted(ids)
}

// pollWaiting refreshes every entry that is not yet Done. Transport errors
// leave the entry untouched and are retried next cycle, forever. A decode
// error is fatal.
func (t *Tracker) pollWaiting() error {
	sawTransportError := false
	for _, e := range t.jobs.Entries() {
		if e.State.Phase == PhaseDone {
			continue
		}
		status, err := t.engine.JobStatus(e.Key.ID)
		if err != nil {
			if rclone.IsDecodeError(err) {
				return err
			}
			events.Tracker.PollError(e.Key.ID, err)
			sawTransportError = true
			continue
		}
		phase := PhasePending
		if status.Finished {
			phase = PhaseDone
		}
		if phase != e.State.Phase {
			events.Tracker.Transition(e.Key.ID, phase.String())
		}
		t.jobs.Set(e.Key, State{Phase: phase, Status: status})
	}
	if sawTransportError {
		t.degrade = true
	} else if t.degrade {
		t.degrade = false
		t.retry.Reset()
	}
	return nil
}

func (t *Tracker) sleepInterval() time.Duration {
	if t.degrade {
		return t.retry.NextBackOff()
	}
	return t.interval
}

// handle applies one command. It reports stop=true for an orderly shutdown
// and a non-nil error for a fatal one.
func (t *Tracker) handle(ctx context.Context, cmd Command) (stop bool, err error) {
	switch c := cmd.(type) {
	case Shutdown:
		return true, nil
	case Submit:
		events.Tracker.Submit(c.Token.String(), c.Name, c.Source, c.Dest)
		id, err := t.engine.Sync(c.Source, c.Dest, true)
		if err != nil {
			if rclone.IsDecodeError(err) {
				t.publish(ctx, Terminated{Err: err})
				return false, err
			}
			events.Tracker.SubmitFailed(c.Token.String(), err)
			t.publish(ctx, SubmitFailed{Name: c.Name, Err: err})
			return false, nil
		}
		events.Tracker.Submitted(c.Token.String(), id)
		key := c.Key()
		key.ID = id
		t.jobs.Set(key, State{Phase: PhaseSent})
		t.publish(ctx, Snapshot{Jobs: t.jobs.Clone()})
		return false, nil
	}
	return false, nil
}

// publish delivers an event without ever blocking the loop: when the front
// end lags, the oldest buffered event is dropped to make room. Snapshots are
// full-state, so losing a stale one is harmless. Returns false only when the
// context is already cancelled.
func (t *Tracker) publish(ctx context.Context, e Event) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case t.evts <- e:
			return true
		default:
		}
		select {
		case <-t.evts:
		default:
		}
	}
}
