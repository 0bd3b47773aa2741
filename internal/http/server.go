package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/cors"

	"fintrack/internal/aggregate"
	"fintrack/internal/confirm"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// Ledger is the part of services.LedgerService the handlers use.
type Ledger interface {
	Snapshot() *services.Snapshot
	Warnings() []services.LoadWarning
	AddTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (bool, error)
	AddBudget(ctx context.Context, draft core.BudgetDraft) (core.Budget, error)
	DeleteBudget(ctx context.Context, id string) (bool, error)
}

// Server serves the HTML pages and the JSON API over a Ledger.
type Server struct {
	http.Server
	ledger    Ledger
	engine    *aggregate.Engine
	confirm   confirm.Provider
	templates *template.Template
	logger    *log.Logger
	now       func() time.Time
	ping      func(context.Context) error

	rateLimitPerMinute int
	corsOrigins        []string

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithEngine sets the aggregate engine; the default one has no cache.
func WithEngine(e *aggregate.Engine) Option {
	return func(s *Server) { s.engine = e }
}

// WithConfirm replaces the confirmation provider used by deletes. The
// default answers from the request's confirm field.
func WithConfirm(p confirm.Provider) Option {
	return func(s *Server) { s.confirm = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRateLimit sets the mutating requests allowed per client per minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) { s.rateLimitPerMinute = perMinute }
}

// WithCORSOrigins sets the origins allowed to call /api/.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithReadiness adds a dependency check to /readyz.
func WithReadiness(ping func(context.Context) error) Option {
	return func(s *Server) { s.ping = ping }
}

// WithClock sets the clock used to pick the current budget period.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, ledger Ledger, opts ...Option) *Server {
	s := &Server{
		ledger:  ledger,
		confirm: confirm.ContextAnswer{},
		now:     time.Now,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentHTTP)
	if s.engine == nil {
		s.engine = aggregate.NewEngine(nil, aggregate.DefaultRecentLimit)
	}

	rlConfig := ratelimit.DefaultConfig()
	if s.rateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = s.rateLimitPerMinute
	}
	s.rateLimiter = ratelimit.NewLimiter(rlConfig)
	s.securityDetector = security.NewDetector(s.logger)
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, s.logger)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates",
			log.FieldError, err,
			log.FieldComponent, log.ComponentTemplate)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /transactions", s.handleTransactionsPage)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /transactions/{id}/delete", s.handleDeleteTransaction)
	mux.HandleFunc("DELETE /transactions/{id}/delete", s.handleDeleteTransaction)
	mux.HandleFunc("GET /budgets", s.handleBudgetsPage)
	mux.HandleFunc("POST /budgets", s.handleCreateBudget)
	mux.HandleFunc("POST /budgets/{id}/delete", s.handleDeleteBudget)
	mux.HandleFunc("DELETE /budgets/{id}/delete", s.handleDeleteBudget)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/dashboard", s.handleAPIDashboard)
	api.HandleFunc("GET /api/transactions", s.handleAPIListTransactions)
	api.HandleFunc("POST /api/transactions", s.handleAPICreateTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleAPIDeleteTransaction)
	api.HandleFunc("GET /api/budgets/progress", s.handleAPIBudgetProgress)
	api.HandleFunc("POST /api/budgets", s.handleAPICreateBudget)
	api.HandleFunc("DELETE /api/budgets/{id}", s.handleAPIDeleteBudget)
	mux.Handle("/api/", cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{trace.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(api))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	if isAPI(r) {
		writeJSON(w, r, http.StatusTooManyRequests, apiError{Error: "Rate limit exceeded. Please try again later."})
		return
	}
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// today is the reference day for budget periods.
func (s *Server) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Server) dashboard() core.Dashboard {
	snap := s.ledger.Snapshot()
	return s.engine.Dashboard(snap.Version, snap.Transactions, snap.Budgets, s.today())
}

// render executes a page template with the given status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name)
	}
}

var templateFuncs = template.FuncMap{
	"money": formatMoney,
	"width": barWidth,
	"pct": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v)
	},
	"status": func(p core.BudgetProgress) string {
		return string(p.Status())
	},
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
