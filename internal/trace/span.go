package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return spanCounter.Add(1) }

// Span is an open begin/end pair. A span that is filtered out by the level
// is inert: End and WithExtra do nothing and ID returns 0.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	file    string
	name    string
	started time.Time
	attrs   []Attr
}

var inert = &Span{}

// Begin starts a root or child span of parent and emits its begin event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, SpanContext{SpanID: parent})
}

// Start begins a span under the current span of ctx, inheriting its file,
// and returns a context in which the new span is current.
//
//	span, ctx := trace.Start(ctx, trace.ScopePass, "omp_analyze")
//	defer span.End("")
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	parent := CurrentSpan(ctx)
	s := begin(FromContext(ctx), scope, name, parent)
	if s.id == 0 {
		return s, ctx
	}
	return s, s.Context(ctx)
}

func begin(t Tracer, scope Scope, name string, parent SpanContext) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return inert
	}
	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  parent.SpanID,
		scope:   scope,
		file:    parent.File,
		name:    name,
		started: time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		File:     s.file,
		Name:     s.name,
		Detail:   detail,
		Attrs:    s.attrs,
	}
}

// End emits the end event carrying detail and the collected attributes,
// and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.started)
}

// WithExtra sets an attribute reported with the end event. Setting a key
// twice keeps the last value.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	for i := range s.attrs {
		if s.attrs[i].Key == key {
			s.attrs[i].Value = value
			return s
		}
	}
	s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	return s
}

// ID returns the span ID, 0 for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Context returns ctx with s as the current span.
func (s *Span) Context(ctx context.Context) context.Context {
	if s == nil || s.id == 0 {
		return ctx
	}
	return WithSpanContext(ctx, SpanContext{SpanID: s.id, File: s.file})
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name string, parent uint64, detail string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		SpanID:   NextSpanID(),
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}
