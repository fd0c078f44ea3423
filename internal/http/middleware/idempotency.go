package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// IdempotencyStore is the subset of the redis-backed store the middleware needs.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.buf.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Requests without the header pass straight through, and store failures
// fail open: the request proceeds as if the key were new.
func Idempotency(store IdempotencyStore, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if raw, err := store.Get(r.Context(), key); err == nil && raw != "" {
				var stored storedResponse
				if json.Unmarshal([]byte(raw), &stored) == nil {
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("Idempotency-Replayed", "true")
					w.WriteHeader(stored.Status)
					w.Write([]byte(stored.Body))
					return
				}
			}

			rw := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			// Only successful outcomes are worth replaying.
			if rw.status < 300 {
				raw, err := json.Marshal(storedResponse{Status: rw.status, Body: rw.buf.String()})
				if err == nil {
					_ = store.Set(r.Context(), key, string(raw), ttl)
				}
			}
		})
	}
}
