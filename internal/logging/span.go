package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times one backend call or unit of work within a request.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
	done   bool
}

// StartSpan opens a child span. A trace identifier is minted when ctx has none.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := FromContext(ctx)

	if TraceIDFromContext(ctx) == "" {
		traceID := uuid.NewString()
		ctx = WithTraceID(ctx, traceID)
		logger = logger.With(slog.String("trace_id", traceID))
	}

	spanID := uuid.NewString()
	attrs := []any{slog.String("span_id", spanID), slog.String("span_name", name)}
	if parent := SpanIDFromContext(ctx); parent != "" {
		attrs = append(attrs, slog.String("parent_span_id", parent))
	}
	logger = logger.With(attrs...)

	ctx = WithSpanID(WithLogger(ctx, logger), spanID)
	return ctx, &Span{name: name, logger: logger, start: time.Now()}
}

// End records a successful completion. Only the first End or EndErr logs.
func (s *Span) End() {
	if s == nil || s.done {
		return
	}
	s.done = true
	s.logger.Debug("span completed", slog.Duration("duration", time.Since(s.start)))
}

// EndErr records a failed completion.
func (s *Span) EndErr(err error) {
	if s == nil || s.done {
		return
	}
	s.done = true
	s.logger.Warn("span failed", slog.Duration("duration", time.Since(s.start)), slog.Any("error", err))
}
