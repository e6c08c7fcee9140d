package events

import "github.com/ketchdev/ketch/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type EditTracer struct{}

var (
	UI     = UITracer{}
	Filter = FilterTracer{}
	Edit   = EditTracer{}
)

func (UITracer) ModeChange(from, to string) {
	logging.Trace("ui.mode", map[string]interface{}{"from": from, "to": to})
}

func (UITracer) Cursor(pos int) {
	logging.Trace("ui.cursor", map[string]interface{}{"cursor": pos})
}

func (UITracer) TriggerJob(name, source, dest string) {
	logging.Trace("ui.trigger", map[string]interface{}{
		"name":   name,
		"source": source,
		"dest":   dest,
	})
}

func (UITracer) Error(msg string) {
	logging.Trace("ui.error", map[string]interface{}{"message": msg})
}

func (UITracer) Delete(name string) {
	logging.Trace("ui.delete", map[string]interface{}{"name": name})
}

func (UITracer) Duplicate(name string) {
	logging.Trace("ui.duplicate", map[string]interface{}{"name": name})
}

func (UITracer) Quit() {
	logging.Trace("ui.quit", nil)
}

func (FilterTracer) Cleared() {
	logging.Trace("filter.clear", nil)
}

func (FilterTracer) Append(filter string) {
	logging.Trace("filter.append", map[string]interface{}{"filter": filter})
}

func (FilterTracer) Backspace(filter string) {
	logging.Trace("filter.backspace", map[string]interface{}{"filter": filter})
}

func (EditTracer) Open(name string) {
	logging.Trace("edit.open", map[string]interface{}{"name": name})
}

func (EditTracer) Field(field string) {
	logging.Trace("edit.field", map[string]interface{}{"field": field})
}

func (EditTracer) Commit(name string, replaced bool) {
	logging.Trace("edit.commit", map[string]interface{}{"name": name, "replaced": replaced})
}

func (EditTracer) Cancel() {
	logging.Trace("edit.cancel", nil)
}
