package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/utafrali/FoodStore/pkg/httputil"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client-IP token bucket. Idle visitors are
// evicted by a background sweep that stops with Stop.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
	// trusted lists the proxies whose forwarding headers are believed.
	trusted []netip.Prefix

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithTrustedProxies makes the limiter key requests arriving from one of
// prefixes by the forwarded client address. Requests from any other peer are
// keyed by their connection address whatever headers they carry.
func WithTrustedProxies(prefixes ...netip.Prefix) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.trusted = append(rl.trusted, prefixes...)
	}
}

// ParseTrustedProxies parses CIDRs or bare addresses such as "10.0.0.0/8"
// and "127.0.0.1".
func ParseTrustedProxies(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// NewRateLimiter allows rps requests per second with the given burst per IP.
func NewRateLimiter(rps float64, burst int, ttl time.Duration, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the eviction goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

// Allow reports whether a request from ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = rl.now()
	rl.mu.Unlock()
	return v.limiter.Allow()
}

// Middleware rejects over-limit requests with 429.
func (rl *RateLimiter) Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := rl.clientIP(r)
			if !rl.Allow(ip) {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "1")
				httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Response{
					Message: "Too many requests. Please try again later.",
					Code:    "RATE_LIMITED",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) sweepLoop() {
	defer close(rl.done)
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.ttl {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// clientIP returns the connection address unless the peer is a trusted
// proxy. Behind one, X-Forwarded-For is walked from the right and the first
// untrusted hop wins, so a client cannot choose its key by prepending
// addresses. X-Real-IP is the fallback when the chain has no usable hop.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !rl.isTrusted(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		var leftmost string
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			addr = addr.Unmap()
			leftmost = addr.String()
			if !rl.isTrustedAddr(addr) {
				return leftmost
			}
		}
		if leftmost != "" {
			return leftmost
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if addr, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return addr.Unmap().String()
		}
	}
	return peer
}

func (rl *RateLimiter) isTrusted(host string) bool {
	if len(rl.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return rl.isTrustedAddr(addr.Unmap())
}

func (rl *RateLimiter) isTrustedAddr(addr netip.Addr) bool {
	for _, p := range rl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
