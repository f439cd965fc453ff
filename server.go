package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/meatshop_console/apiclient"
	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/middlewares"
	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS (comma-separated).
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if config.IsProduction() {
		if allowedOrigins == "" {
			// no allowlist: deny every cross-origin request
			config.GetLogger().Warn("CORS_ALLOWED_ORIGINS is not set; cross-origin requests are denied")
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", middlewares.HeaderCorrelationId, middlewares.HeaderIdempotencyKey)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.HeaderCorrelationId, headerArchiveURL)
	return corsConfig
}

func rateLimiterFromEnv() *middlewares.RateLimiter {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		return nil
	}
	limit := int64(600)
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	windowSec := int64(60)
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			windowSec = n
		}
	}
	return middlewares.NewRateLimiter(config.GetRedisDB, limit, time.Duration(windowSec)*time.Second)
}

// newRouter wires every console endpoint against b.
func newRouter(b models.Backend, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.RequestContextMiddleware())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.Use(cors.New(corsConfig()))
	if limiter := rateLimiterFromEnv(); limiter != nil {
		r.Use(limiter.RateLimitMiddleware)
	}
	r.Use(middlewares.LoaderMiddleware(b))
	r.Use(middlewares.ErrorLogger(logger))
	r.Use(gin.Recovery())

	api := r.Group("/api")
	registerPartyRoutes(api.Group("/clients"), b, models.PartyKindClient)
	registerPartyRoutes(api.Group("/suppliers"), b, models.PartyKindSupplier)
	registerProductRoutes(api.Group("/products"), b)
	registerDocumentRoutes(api.Group("/purchases"), b, models.DocumentKindPurchase)
	registerDocumentRoutes(api.Group("/sales"), b, models.DocumentKindSale)
	registerReportRoutes(api, b)
	api.GET("/history", listHistory)

	r.NoRoute(customNotFoundHandler)
	return r
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	backend, err := apiclient.NewClientFromEnv()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "API_BASE_URL"}).Fatal(err.Error())
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newRouter(backend, logger),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Optional dependencies connect after the port is open; each one left unset is simply disabled.
	if err := config.ConnectRedisWithRetry(sigCtx); err != nil && !errors.Is(err, config.ErrRedisDisabled) {
		config.LogError(logger, "server.go", "main", "ConnectRedisWithRetry", nil, err)
	}
	if err := config.ConnectDatabaseWithRetry(); err != nil {
		if !errors.Is(err, config.ErrDatabaseDisabled) {
			config.LogError(logger, "server.go", "main", "ConnectDatabaseWithRetry", nil, err)
		}
	} else if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateTable(); err != nil {
			config.LogError(logger, "server.go", "main", "MigrateTable", nil, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"info":     "Console Started",
		"api":      backend.BaseURL(),
		"redis":    config.GetRedisDB() != nil,
		"history":  config.GetDB() != nil,
		"events":   config.EventsEnabled(),
		"archives": config.ExportBucket() != "",
	}).Info("listening on :", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	config.ClosePubSub()
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
	if db := config.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
