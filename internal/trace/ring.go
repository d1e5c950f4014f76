package trace

import (
	"fmt"
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory so that they can be
// dumped when a run fails.
type RingTracer struct {
	mu      sync.Mutex
	buf     []Event
	written uint64 // events stored since creation
	level   Level
}

// NewRingTracer creates a ring holding up to capacity events (4096 when
// capacity is not positive).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	stored := *ev
	stored.Seq = NextSeq()
	stored.Attrs = append([]Attr(nil), ev.Attrs...)
	t.buf[t.written%uint64(len(t.buf))] = stored
	t.written++
}

// Len returns the number of stored events.
func (t *RingTracer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(min(t.written, uint64(len(t.buf))))
}

// Dropped returns how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.written <= uint64(len(t.buf)) {
		return 0
	}
	return t.written - uint64(len(t.buf))
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := uint64(len(t.buf))
	if t.written <= size {
		return append([]Event(nil), t.buf[:t.written]...)
	}
	start := t.written % size
	out := make([]Event, 0, size)
	out = append(out, t.buf[start:]...)
	return append(out, t.buf[:start]...)
}

// Dump writes the stored events to w, preceded by a line counting the
// events lost to wrap-around when there are any.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	if dropped := t.Dropped(); dropped > 0 && format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "... %d earlier events dropped\n", dropped); err != nil {
			return err
		}
	}
	for _, ev := range t.Snapshot() {
		data := FormatEvent(&ev, format)
		if data == nil {
			continue
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
