package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware. Zero-valued fields fall back to
// the defaults the storefront and admin pages need.
type CORSConfig struct {
	// AllowedOrigins lists exact origins; "*" admits any origin.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge           int
	AllowCredentials bool
	// Environment "development" admits any origin regardless of AllowedOrigins.
	Environment string
}

var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	defaultCORSHeaders = []string{"Accept", "Authorization", "Content-Type", "token", CorrelationHeader}
)

const defaultCORSMaxAge = 3600

// DefaultCORSConfig admits every origin, which is what a local storefront on
// another port needs.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: defaultCORSMethods,
		AllowedHeaders: defaultCORSHeaders,
		ExposedHeaders: []string{CorrelationHeader},
		MaxAge:         defaultCORSMaxAge,
		Environment:    "development",
	}
}

// corsPolicy is a CORSConfig with its header values rendered once.
type corsPolicy struct {
	anyOrigin   bool
	origins     []string
	static      http.Header
	credentials bool
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	methods := orDefault(cfg.AllowedMethods, defaultCORSMethods)
	headers := orDefault(cfg.AllowedHeaders, defaultCORSHeaders)
	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = defaultCORSMaxAge
	}

	static := http.Header{}
	static.Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))
	static.Set("Access-Control-Allow-Headers", strings.Join(headers, ", "))
	static.Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
	if len(cfg.ExposedHeaders) > 0 {
		static.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposedHeaders, ", "))
	}
	if cfg.AllowCredentials {
		static.Set("Access-Control-Allow-Credentials", "true")
	}

	return corsPolicy{
		anyOrigin:   cfg.Environment == "development" || slices.Contains(cfg.AllowedOrigins, "*"),
		origins:     cfg.AllowedOrigins,
		static:      static,
		credentials: cfg.AllowCredentials,
	}
}

func orDefault(v, fallback []string) []string {
	if len(v) == 0 {
		return fallback
	}
	return v
}

// apply writes the CORS headers for a request from origin.
func (p corsPolicy) apply(h http.Header, origin string) {
	switch {
	case p.anyOrigin:
		h.Set("Access-Control-Allow-Origin", "*")
	case origin != "" && slices.Contains(p.origins, origin):
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	}
	for k, v := range p.static {
		h[k] = slices.Clone(v)
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

// CORS sets Cross-Origin Resource Sharing headers and answers preflight
// requests with 204 without reaching next.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	policy := newCORSPolicy(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy.apply(w.Header(), r.Header.Get("Origin"))
			if isPreflight(r) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
