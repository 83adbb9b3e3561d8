package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const clientIdleTTL = 5 * time.Minute

// RateLimitConfig bounds the request rate a single client may sustain
// against the RPC surface.
type RateLimitConfig struct {
	RequestsPerMinute float64
	Burst             int
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-client token bucket keyed by the caller's
// network identity. Idle clients are pruned so the map stays bounded.
type RateLimiter struct {
	cfg    RateLimitConfig
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*clientEntry
	now     func() time.Time
}

func NewRateLimiter(cfg RateLimitConfig, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[string]*clientEntry),
		now:     time.Now,
	}
}

// Middleware rejects requests exceeding the configured rate with 429. A
// non-positive rate disables limiting entirely.
func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if l == nil || l.cfg.RequestsPerMinute <= 0 {
				next.ServeHTTP(w, req)
				return
			}
			client := clientAddress(req)
			if !l.allow(client) {
				l.logger.Warn("rate limit exceeded", "client", client, "path", req.URL.Path)
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func (l *RateLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.pruneLocked(now)
	entry, ok := l.clients[client]
	if !ok {
		perSecond := l.cfg.RequestsPerMinute / 60.0
		burst := l.cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		entry = &clientEntry{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
		l.clients[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

func (l *RateLimiter) pruneLocked(now time.Time) {
	for client, entry := range l.clients {
		if now.Sub(entry.lastSeen) > clientIdleTTL {
			delete(l.clients, client)
		}
	}
}

// clientAddress identifies the caller, trusting proxy headers when present
// so limits track the originating client rather than the proxy.
func clientAddress(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := forwarded
		if comma := strings.IndexByte(forwarded, ','); comma >= 0 {
			first = forwarded[:comma]
		}
		if parsed := net.ParseIP(strings.TrimSpace(first)); parsed != nil {
			return parsed.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
