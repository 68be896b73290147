// Package server provides HTTP server lifecycle management. It separates
// the concept of "routes" from "servers": route providers contribute routes,
// the manager combines them into HTTP servers and handles startup and
// graceful shutdown. The public API server and the internal admin server run
// on separate ports with separate routers.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gateline/gateline/pkg/config"
	"github.com/gateline/gateline/pkg/middleware"
)

// RouteProvider allows components to register their routes on the shared
// public router. The router may be shared with other providers.
type RouteProvider interface {
	// RegisterRoutes adds this component's routes to the router.
	RegisterRoutes(router *gin.Engine)

	// Name returns the component name for logging
	Name() string
}

// AdminRouteProvider contributes routes to the internal admin server.
type AdminRouteProvider interface {
	RegisterAdminRoutes(router gin.IRouter)
	Name() string
}

// Manager manages the public and admin HTTP servers
type Manager struct {
	cfg    *config.Config
	logger *zap.Logger

	providers      []RouteProvider
	adminProviders []AdminRouteProvider

	httpServer  *http.Server
	adminServer *http.Server

	httpRouter *gin.Engine
}

// NewManager creates a new server manager
func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger,
	}
}

// AddProvider adds a RouteProvider to the manager.
// Call this before Start() to register all components.
func (m *Manager) AddProvider(p RouteProvider) {
	m.providers = append(m.providers, p)
	m.logger.Debug("Added route provider", zap.String("name", p.Name()))
}

// AddAdminProvider adds an admin API provider. Ignored unless the admin
// server is enabled in config.
func (m *Manager) AddAdminProvider(p AdminRouteProvider) {
	m.adminProviders = append(m.adminProviders, p)
	m.logger.Debug("Added admin route provider", zap.String("name", p.Name()))
}

// Start builds routers and starts the HTTP servers
func (m *Manager) Start(ctx context.Context) error {
	if m.cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	m.httpRouter = m.buildRouter()

	for _, p := range m.providers {
		m.logger.Info("Registering routes", zap.String("component", p.Name()))
		p.RegisterRoutes(m.httpRouter)
	}

	m.addStatusEndpoints(m.httpRouter)
	m.addStaticRoutes(m.httpRouter)

	httpAddr := m.cfg.Server.Address()
	m.httpServer = &http.Server{
		Addr:         httpAddr,
		Handler:      m.httpRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		m.logger.Info("HTTP server listening", zap.String("address", httpAddr))
		if err := m.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	if m.cfg.Admin.Port > 0 {
		if err := m.startAdminServer(); err != nil {
			return fmt.Errorf("failed to start admin server: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down all servers
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error

	if m.httpServer != nil {
		if err := m.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	if m.adminServer != nil {
		if err := m.adminServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// buildRouter creates a new router with common middleware
func (m *Manager) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(m.logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     m.cfg.CORS.AllowedOrigins,
		AllowMethods:     m.cfg.CORS.AllowedMethods,
		AllowHeaders:     m.cfg.CORS.AllowedHeaders,
		AllowCredentials: m.cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(m.cfg.CORS.MaxAge) * time.Second,
	}))
	if m.cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.NewRateLimiter(m.cfg.RateLimit, m.logger)))
	}
	return router
}

// addStatusEndpoints adds /health and /status routes
func (m *Manager) addStatusEndpoints(router *gin.Engine) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "gateline",
		})
	}
	router.GET("/health", handler)
	router.GET("/status", handler)
}

// addStaticRoutes serves the static directory and the custom 404 page
// through NoRoute, so static files never shadow registered API routes.
func (m *Manager) addStaticRoutes(router *gin.Engine) {
	staticDir := m.cfg.Server.StaticDir
	notFound := m.cfg.Server.NotFoundPage

	router.NoRoute(func(c *gin.Context) {
		if staticDir != "" && c.Request.Method == http.MethodGet {
			rel := strings.TrimPrefix(filepath.Clean(c.Request.URL.Path), "/")
			// Clean above collapses any ".." segments; reject the ones
			// that survive at the front.
			if !strings.HasPrefix(rel, "..") {
				path := filepath.Join(staticDir, rel)
				if info, err := os.Stat(path); err == nil && !info.IsDir() {
					c.File(path)
					return
				}
			}
		}
		if notFound != "" {
			c.Status(http.StatusNotFound)
			c.File(notFound)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// startAdminServer starts the internal admin API server
func (m *Manager) startAdminServer() error {
	adminRouter := gin.New()
	adminRouter.Use(gin.Recovery())
	adminRouter.Use(middleware.RequestLogger(m.logger.Named("admin")))
	adminRouter.Use(middleware.AdminAuth(m.cfg.Admin.Secret, m.logger))

	for _, p := range m.adminProviders {
		m.logger.Info("Registering admin routes", zap.String("component", p.Name()))
		p.RegisterAdminRoutes(adminRouter)
	}

	adminAddr := m.cfg.AdminAddress()
	m.adminServer = &http.Server{
		Addr:         adminAddr,
		Handler:      adminRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		m.logger.Info("Admin server listening", zap.String("address", adminAddr))
		if err := m.adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Admin server error", zap.Error(err))
		}
	}()

	return nil
}

// HTTPRouter returns the main HTTP router.
// Useful for components that need to add routes after construction.
func (m *Manager) HTTPRouter() *gin.Engine {
	return m.httpRouter
}
