package slogx

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/coursedesk/pkg/idx"
)

type ctxKey struct{}

type reqIDKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// WithRequestID pins the request id used for the next outgoing call and adds
// it to the contextual logger.
func WithRequestID(ctx context.Context, reqID idx.ID) context.Context {
	l := FromContext(ctx)
	ctx = context.WithValue(ctx, reqIDKey{}, reqID)
	return WithContext(ctx, l.With("req_id", reqID.String()))
}

// RequestIDFromContext returns the pinned request id, if any.
func RequestIDFromContext(ctx context.Context) (idx.ID, bool) {
	id, ok := ctx.Value(reqIDKey{}).(idx.ID)
	return id, ok && !id.IsZero()
}
