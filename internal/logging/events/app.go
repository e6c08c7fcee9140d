package events

import "github.com/ketchdev/ketch/internal/logging"

type AppTracer struct{}

type StoreTracer struct{}

var (
	App   = AppTracer{}
	Store = StoreTracer{}
)

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Seeded(discovered int, total int) {
	logging.Trace("app.seeded", map[string]interface{}{
		"discovered": discovered,
		"total":      total,
	})
}

func (AppTracer) Shutdown(err error) {
	payload := map[string]interface{}{}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("app.shutdown", payload)
}

func (StoreTracer) Loaded(path string, entries int) {
	logging.Trace("store.load", map[string]interface{}{"path": path, "entries": entries})
}

func (StoreTracer) Saved(path string, entries int) {
	logging.Trace("store.save", map[string]interface{}{"path": path, "entries": entries})
}
