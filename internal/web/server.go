package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/burnerhq/burner/internal/config"
	"github.com/burnerhq/burner/internal/csvexport"
	"github.com/burnerhq/burner/internal/daily"
	"github.com/burnerhq/burner/internal/index"
	"github.com/burnerhq/burner/internal/records"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates the HTTP server for the burner web UI. The calendar
// index follows store changes until ctx is done.
func NewServer(ctx context.Context, store *records.Store, cfg *config.Config, logger *slog.Logger, version, bind string, port int) (*http.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	h, err := newHandlers(ctx, store, cfg, logger, version)
	if err != nil {
		return nil, err
	}

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           securityHeaders(routes(h, staticSub)),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// newHandlers builds handlers with a calendar index that is loaded from the
// store and kept current by a watcher goroutine.
func newHandlers(ctx context.Context, store *records.Store, cfg *config.Config, logger *slog.Logger, version string) (*Handlers, error) {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}

	cal, err := newCalendarIndex(ctx, store, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Handlers{
		store:     store,
		cfg:       cfg,
		cal:       cal,
		renderer:  NewRenderer(templateSub, version, logger),
		formatter: csvexport.FromConfig(cfg),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// newCalendarIndex covers calendar_months_back months before the current
// month through the end of next month.
func newCalendarIndex(ctx context.Context, store *records.Store, cfg *config.Config, logger *slog.Logger) (*index.Cache, error) {
	first, _ := daily.MonthBounds(time.Now(), store.Location())
	start := first.AddDate(0, -cfg.MonthsBack(), 0)
	_, end := daily.MonthBounds(first.AddDate(0, 1, 0), store.Location())

	cal, err := index.New(start, end, store.Location())
	if err != nil {
		return nil, err
	}

	// Subscribe before loading so no change between the two is missed.
	sub := store.Subscribe(records.DefaultSubscriptionBuffer)
	if err := cal.Load(ctx, store); err != nil {
		sub.Close()
		return nil, err
	}

	go func() {
		if err := cal.Watch(ctx, sub); err != nil && ctx.Err() == nil {
			logger.Error("calendar index watcher stopped", "error", err)
		}
	}()

	logger.Info("calendar index loaded",
		"start", start.Format(daily.DayLayout),
		"end", end.Format(daily.DayLayout),
		"entries", cal.Len())
	return cal, nil
}

func routes(h *Handlers, staticSub fs.FS) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
	mux.HandleFunc("GET /calendar", h.HandleCalendar)
	mux.HandleFunc("GET /days/{date}", h.HandleDay)
	mux.HandleFunc("POST /days/{date}", h.HandleSaveDay)
	mux.HandleFunc("GET /export.csv", h.HandleExport)
	mux.HandleFunc("GET /report", h.HandleReport)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))
	return mux
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is done or SIGINT/SIGTERM arrives, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("burner UI running", "url", "http://"+srv.Addr)
	if strings.HasPrefix(srv.Addr, "0.0.0.0") || strings.HasPrefix(srv.Addr, "[::]") || strings.HasPrefix(srv.Addr, ":") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
