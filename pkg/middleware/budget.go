package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ganzorig/mishil/pkg/logger"
	"github.com/ganzorig/mishil/pkg/response"
)

// bufferedWriter captures the handler's full response so nothing reaches the
// client until the handler beats the budget.
type bufferedWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) WriteHeader(code int) { b.status = code }

func (b *bufferedWriter) Write(p []byte) (int, error) { return b.body.Write(p) }

func (b *bufferedWriter) flush(w http.ResponseWriter) {
	for k, vs := range b.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(b.status)
	w.Write(b.body.Bytes()) //nolint:errcheck
}

// Budget enforces a wall-clock limit per request. Serverless platforms kill
// the whole process at their own deadline; answering 504 just before that
// gives the client a real response instead of a dropped connection.
//
// The deadline also lands on the request context, so downstream store calls
// observe it and abort instead of running past the budget.
func Budget(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// WebSocket upgrades are long-lived and need the raw
			// connection; no budget applies.
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()

			buf := newBufferedWriter()
			done := make(chan struct{})
			go func() {
				defer close(done)
				defer func() {
					if err := recover(); err != nil {
						logger.WithCtx(ctx).Error("panic in budgeted handler", "error", err)
						buf.status = http.StatusInternalServerError
					}
				}()
				next.ServeHTTP(buf, r.WithContext(ctx))
			}()

			select {
			case <-done:
				buf.flush(w)
			case <-ctx.Done():
				logger.WithCtx(ctx).Warn("request exceeded budget",
					"method", r.Method, "path", r.URL.Path, "budget", limit.String())
				response.Error(w, http.StatusGatewayTimeout, "Request timed out")
			}
		})
	}
}
