package web

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/time/rate"
)

const opSendMessage = "send-message"

// entry tracks a per-key rate limiter and when it was last used.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter is a keyed rate limiter, one rate.Limiter per client ip.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	rate    rate.Limit
	burst   int
}

func NewLimiter(r rate.Limit, burst int) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		rate:    r,
		burst:   burst,
	}
}

// Allow checks whether a request for the given key is allowed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = time.Now()
	l.mu.Unlock()
	return e.limiter.Allow()
}

// evict entries idle since before cutoff.
func (l *Limiter) evict(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// Janitor evicts entries idle for more than 30 minutes, every interval.
func (l *Limiter) Janitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			l.evict(now.Add(-30 * time.Minute))
		}
	}
}

// turnRateLimit rate-limits turn submissions by client ip.
func (s *Server) turnRateLimit(ctx huma.Context, next func(huma.Context)) {
	if ctx.Operation().OperationID != opSendMessage {
		next(ctx)
		return
	}
	if !s.limiter.Allow(clientIP(ctx.Header("X-Real-IP"), ctx.RemoteAddr())) {
		ctx.SetHeader("Content-Type", "application/problem+json")
		ctx.SetStatus(http.StatusTooManyRequests)
		ctx.BodyWriter().Write([]byte(`{"title":"Too Many Requests","status":429,"detail":"Rate limit exceeded. Try again shortly."}`))
		return
	}
	next(ctx)
}

// clientIP prefers X-Real-IP, set by a reverse proxy, and falls back to the
// remote address without its port.
func clientIP(realIP, remoteAddr string) string {
	if realIP = strings.TrimSpace(realIP); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack is needed by the websocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not implement http.Hijacker")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"ip", clientIP(r.Header.Get("X-Real-IP"), r.RemoteAddr),
		)
	})
}
