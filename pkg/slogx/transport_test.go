package slogx_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/coursedesk/pkg/idx"
	"github.com/aussiebroadwan/coursedesk/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestTransportStampsRequestID(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(slogx.RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := &http.Client{Transport: &slogx.Transport{Logger: logger}}

	t.Run("generates an id when none is pinned", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/users", nil)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()

		id, err := idx.Parse(seen)
		require.NoError(t, err)
		require.Equal(t, idx.KindRequest, id.Kind())
		require.Empty(t, req.Header.Get(slogx.RequestIDHeader), "caller request must not be mutated")
		require.Contains(t, buf.String(), `"path":"/users"`)
	})

	t.Run("uses the id pinned on the context", func(t *testing.T) {
		pinned := idx.New(idx.KindRequest)
		ctx := slogx.WithRequestID(context.Background(), pinned)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/courses", nil)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()

		require.Equal(t, pinned.String(), seen)
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, slogx.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, slogx.ParseLevel("warning"))
	require.Equal(t, slog.LevelError, slogx.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, slogx.ParseLevel("nonsense"))
}
