package trace

import (
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits a liveness event at a fixed interval. Heartbeats with no
// span end in between point at a stalled analysis; each one reports the
// number of live goroutines and the heap in use.
type Heartbeat struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartHeartbeat starts emitting to tracer. It returns nil when tracing is
// disabled or interval is not positive; Stop accepts a nil Heartbeat.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{stop: make(chan struct{}), done: make(chan struct{})}
	go h.run(tracer, interval)
	return h
}

func (h *Heartbeat) run(tracer Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var beats uint64
	var mem runtime.MemStats
	for {
		select {
		case <-h.stop:
			return
		case now := <-ticker.C:
			beats++
			runtime.ReadMemStats(&mem)
			tracer.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				SpanID: NextSpanID(),
				Name:   "heartbeat",
				Detail: "#" + strconv.FormatUint(beats, 10),
				Attrs: []Attr{
					{Key: "goroutines", Value: strconv.Itoa(runtime.NumGoroutine())},
					{Key: "heap_kb", Value: strconv.FormatUint(mem.HeapInuse/1024, 10)},
				},
			})
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine to exit.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
