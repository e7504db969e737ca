// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/devlog/internal/api"
	"github.com/starford/devlog/internal/blog"
	"github.com/starford/devlog/internal/browse"
	"github.com/starford/devlog/internal/catalog"
	"github.com/starford/devlog/internal/markdown"
	"github.com/starford/devlog/internal/mcpserver"
	"github.com/starford/devlog/internal/prefs"
	"github.com/starford/devlog/internal/resolver"
	"github.com/starford/devlog/internal/sse"
	"github.com/starford/devlog/internal/storage"
	"github.com/starford/devlog/internal/theme"
)

// core is the shared object graph of every run mode.
type core struct {
	cfg      *Config
	logger   *slog.Logger
	catalog  *catalog.Store
	files    *storage.FS
	db       *prefs.DB
	resolver *resolver.Resolver
	service  *blog.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// buildCore loads the catalog, opens storage and the preference DB, and
// wires the blog service. events may be nil.
func buildCore(ctx context.Context, cfg *Config, logger *slog.Logger, events blog.EventPublisher) (*core, error) {
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("content_base_url", cfg.Content.BaseURL),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	catalog.LogMalformedDates(cat, logger)
	store := catalog.NewStore(cat)
	logger.Info("Catalog loaded",
		slog.Int("sections", len(cat.Sections())),
		slog.Int("posts", cat.Len()))

	// Ensure content directory exists.
	if err := os.MkdirAll(cfg.Content.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}
	files, err := storage.NewFS(cfg.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	var content storage.ContentStore = files
	if cfg.Content.Remote() {
		remote, err := storage.NewHTTP(cfg.Content.BaseURL, cfg.Content.Timeout,
			storage.WithMaxBodyBytes(cfg.Content.MaxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("init remote content: %w", err)
		}
		content = remote
	} else {
		verifyContent(cat, files, logger)
	}

	db, err := prefs.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init preferences: %w", err)
	}

	themes := theme.Init(ctx, db, cfg.Theme.Mode(), logger)
	res := resolver.New(store, content, logger)
	svc := blog.NewService(store, res, themes, markdown.NewHTMLRenderer(), events, logger)

	return &core{
		cfg:      cfg,
		logger:   logger,
		catalog:  store,
		files:    files,
		db:       db,
		resolver: res,
		service:  svc,
	}, nil
}

func (c *core) Close() error {
	return c.db.Close()
}

// watch reloads the catalog until ctx is done, if enabled.
func (c *core) watch(ctx context.Context, cb catalog.ReloadCallback) error {
	if !c.cfg.Catalog.Watch {
		return nil
	}
	if err := catalog.Watch(ctx, c.catalog, c.cfg.Catalog.Path, c.logger, cb); err != nil {
		c.logger.Error("catalog watcher failed", slog.String("error", err.Error()))
	}
	return nil
}

func verifyContent(cat *catalog.Catalog, files *storage.FS, logger *slog.Logger) {
	missing := catalog.MissingContent(cat, files.Exists)
	for _, p := range missing {
		logger.Warn("content missing, post will render without a body",
			slog.String("section", p.Section),
			slog.Int("id", p.ID),
			slog.String("content_path", p.ContentPath))
	}
	logger.Info("Content verified",
		slog.String("content_root", files.Root()),
		slog.Int("posts", cat.Len()),
		slog.Int("missing", len(missing)))
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(app.stdout, cfg.App.LogLevel)

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.ReloadThrottle)
	defer broker.Close()

	c, err := buildCore(ctx, cfg, logger, broker)
	if err != nil {
		return err
	}
	defer c.Close()

	content := api.NewContentHandler(c.files)
	apiRouter := api.NewRouter(c.service, broker, content)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := c.db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Raw post bodies.
	r.Get(api.ContentPrefix+"/*", content.ServeFile)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start catalog watcher with SSE callback.
	g.Go(func() error {
		return c.watch(gCtx, func(cat *catalog.Catalog) {
			broker.PublishCatalogReload(sse.CatalogStats{
				Sections: len(cat.Sections()),
				Posts:    cat.Len(),
			})
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio. Logs go to stderr since stdout
// carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.stderr, app.config.App.LogLevel)

	c, err := buildCore(ctx, app.config, logger, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = c.watch(watchCtx, nil) }()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.service).ServeStdio()
}

// RunBrowse starts an interactive terminal reader on the configured streams.
func RunBrowse(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	// Keep the terminal readable: only warnings and errors, on stderr.
	level := max(app.config.App.LogLevel, slog.LevelWarn)
	logger := newLogger(app.stderr, level)

	c, err := buildCore(ctx, app.config, logger, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	term, err := markdown.NewTerminalRenderer(markdown.DefaultWrap)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reader := browse.New(ctx, c.service, c.resolver, term, app.stdout, logger)
	defer reader.Close()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.watch(gCtx, func(*catalog.Catalog) { reader.Refresh() })
	})
	g.Go(func() error {
		defer cancel()
		return reader.Run(gCtx, app.stdin)
	})
	return g.Wait()
}
