package security

import (
	"fmt"
	"net/http"
	"strings"
)

// HTMXOrigin serves the htmx script loaded by the page layout.
const HTMXOrigin = "https://unpkg.com"

// apiPolicy applies to JSON responses, which never load subresources.
const apiPolicy = "default-src 'none'; frame-ancestors 'none'"

// HeadersConfig describes the security headers sent with every response.
type HeadersConfig struct {
	// ScriptOrigins are allowed to serve scripts besides 'self'.
	ScriptOrigins []string
	// InlineStyles permits style attributes; progress bars set their width inline.
	InlineStyles bool

	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	FrameOptions        string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string

	// APIPrefix marks the JSON routes. Empty treats every path as a page.
	APIPrefix string
}

// DefaultHeadersConfig returns the policy for the ledger pages and API.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		ScriptOrigins: []string{HTMXOrigin},
		InlineStyles:  true,

		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,

		FrameOptions:        "DENY",
		ReferrerPolicy:      "same-origin",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:   "same-origin",
		CrossOriginResource: "same-origin",

		APIPrefix: "/api/",
	}
}

// PagePolicy builds the Content-Security-Policy for HTML pages. Forms and
// htmx requests only ever target this origin.
func (c HeadersConfig) PagePolicy() string {
	script := append([]string{"'self'"}, c.ScriptOrigins...)
	style := []string{"'self'"}
	if c.InlineStyles {
		style = append(style, "'unsafe-inline'")
	}
	return strings.Join([]string{
		"default-src 'self'",
		"script-src " + strings.Join(script, " "),
		"style-src " + strings.Join(style, " "),
		"img-src 'self' data:",
		"connect-src 'self'",
		"object-src 'none'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}, "; ")
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	config     HeadersConfig
	pagePolicy string
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	return &HeadersMiddleware{
		config:     config,
		pagePolicy: config.PagePolicy(),
	}
}

// Middleware returns the HTTP middleware function
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.applyHeaders(w, r)
		next.ServeHTTP(w, r)
	})
}

func (h *HeadersMiddleware) applyHeaders(w http.ResponseWriter, r *http.Request) {
	headers := w.Header()
	headers.Set("X-Content-Type-Options", "nosniff")
	headers.Set("X-Frame-Options", h.config.FrameOptions)
	headers.Set("Referrer-Policy", h.config.ReferrerPolicy)
	headers.Set("Permissions-Policy", h.config.PermissionsPolicy)
	headers.Set("Cross-Origin-Opener-Policy", h.config.CrossOriginOpener)
	headers.Set("Cross-Origin-Resource-Policy", h.config.CrossOriginResource)

	if h.config.APIPrefix != "" && strings.HasPrefix(r.URL.Path, h.config.APIPrefix) {
		// ledger figures change with every mutation
		headers.Set("Content-Security-Policy", apiPolicy)
		headers.Set("Cache-Control", "no-store")
	} else {
		headers.Set("Content-Security-Policy", h.pagePolicy)
	}

	if r.TLS != nil && h.config.HSTSMaxAge > 0 {
		hsts := fmt.Sprintf("max-age=%d", h.config.HSTSMaxAge)
		if h.config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		headers.Set("Strict-Transport-Security", hsts)
	}
}

// StaticAssetMiddleware adds caching headers for the embedded static files.
// They are not fingerprinted, so caches must revalidate after maxAge.
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
