package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/coursedesk/pkg/idx"
)

// RequestIDHeader carries the correlation id to the Directory Store.
const RequestIDHeader = "X-Request-ID"

// Transport logs every outgoing request and stamps it with a request id.
// A nil Base uses http.DefaultTransport; a nil Logger falls back to the
// contextual logger of each request.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	ctx := req.Context()
	reqID, ok := RequestIDFromContext(ctx)
	if !ok {
		reqID = idx.New(idx.KindRequest)
	}

	logger := t.Logger
	if logger == nil {
		logger = FromContext(ctx)
	}
	logger = logger.With(
		"req_id", reqID.String(),
		"method", req.Method,
		"path", req.URL.Path,
	)

	// RoundTrippers must not mutate the caller's request.
	out := req.Clone(ctx)
	if out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, reqID.String())
	}

	start := time.Now()
	resp, err := base.RoundTrip(out)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		logger.Warn("directory_request_failed", "duration_ms", duration, "error", err)
		return nil, err
	}

	logger.Debug("directory_request",
		"status", resp.StatusCode,
		"duration_ms", duration,
	)
	return resp, nil
}
