package trace

import "errors"

// MultiTracer fans events out to several tracers. Its level is the most
// verbose level among them.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	m := &MultiTracer{tracers: tracers, level: level}
	for _, tr := range tracers {
		m.level = max(m.level, tr.Level())
	}
	return m
}

// Emit gives every tracer its own copy of ev; rings keep the pointer.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error { return t.each(Tracer.Flush) }
func (t *MultiTracer) Close() error { return t.each(Tracer.Close) }

// each runs op on every tracer, even after a failure.
func (t *MultiTracer) each(op func(Tracer) error) error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, op(tr))
	}
	return errors.Join(errs...)
}

// Ring returns the first ring among the underlying tracers.
func (t *MultiTracer) Ring() (*RingTracer, bool) {
	for _, tr := range t.tracers {
		if r, ok := RingOf(tr); ok {
			return r, true
		}
	}
	return nil, false
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
