package events

import "github.com/ketchdev/ketch/internal/logging"

type TrackerTracer struct{}

type RPCTracer struct{}

var (
	Tracker = TrackerTracer{}
	RPC     = RPCTracer{}
)

func (TrackerTracer) Submit(token, name, source, dest string) {
	logging.Trace("tracker.submit", map[string]interface{}{
		"token":  token,
		"name":   name,
		"source": source,
		"dest":   dest,
	})
}

func (TrackerTracer) Submitted(token string, jobID uint64) {
	logging.Trace("tracker.submitted", map[string]interface{}{"token": token, "job": jobID})
}

func (TrackerTracer) SubmitFailed(token string, err error) {
	if err == nil {
		return
	}
	logging.Trace("tracker.submit-failed", map[string]interface{}{
		"token": token,
		"error": err.Error(),
	})
}

func (TrackerTracer) Transition(jobID uint64, phase string) {
	logging.Trace("tracker.transition", map[string]interface{}{"job": jobID, "phase": phase})
}

func (TrackerTracer) PollError(jobID uint64, err error) {
	if err == nil {
		return
	}
	logging.Trace("tracker.poll-error", map[string]interface{}{
		"job":   jobID,
		"error": err.Error(),
	})
}

func (TrackerTracer) Adopted(jobIDs []uint64) {
	logging.Trace("tracker.adopted", map[string]interface{}{"jobs": jobIDs})
}

func (TrackerTracer) Stopped(err error) {
	payload := map[string]interface{}{}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("tracker.stop", payload)
}

func (RPCTracer) Call(method string) {
	logging.Trace("rpc.call", map[string]interface{}{"method": method})
}

func (RPCTracer) CallError(method string, err error) {
	if err == nil {
		return
	}
	logging.Trace("rpc.error", map[string]interface{}{"method": method, "error": err.Error()})
}
