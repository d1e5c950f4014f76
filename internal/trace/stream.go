package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes every event to a writer as it arrives. Output that is
// not a terminal stream is buffered until Flush.
type StreamTracer struct {
	mu     sync.Mutex
	dst    io.Writer
	buf    *bufio.Writer // nil for stderr and stdout
	level  Level
	format Format
}

// NewStreamTracer creates a StreamTracer writing to w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	t := &StreamTracer{dst: w, level: level, format: format}
	if !isStdStream(w) {
		t.buf = bufio.NewWriter(w)
	}
	return t
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)
	// трассировка не должна ронять анализ, ошибки записи игнорируются
	if t.buf != nil {
		_, _ = t.buf.Write(data)
		return
	}
	_, _ = t.dst.Write(data)
}

// Flush writes buffered events to the destination.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.buf == nil {
		return nil
	}
	return t.buf.Flush()
}

// Close flushes and closes the destination. Standard streams stay open.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.dst.(io.Closer); ok && t.buf != nil {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
