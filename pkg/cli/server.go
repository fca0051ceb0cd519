package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	urfave "github.com/urfave/cli/v2"
)

var portFlag = &urfave.IntFlag{
	Name:    "port",
	Aliases: []string{"p"},
	Usage:   "Port on which to run the API server (optional, defaults to the configured port)",
}

var serverCmd = &urfave.Command{
	Name:   "server",
	Usage:  "Run the analysis API server",
	Flags:  []urfave.Flag{portFlag},
	Action: runServerCmd,
}

func runServerCmd(c *urfave.Context) error {
	app := getConfig(c)

	port := c.Int(portFlag.Name)
	if port == 0 {
		port = app.Config.Port
	}

	if !c.Bool(debugFlag.Name) {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/v1")
	v1.GET("/health", healthHandler)
	v1.POST("/predict", app.predictHandler)
	v1.POST("/explain", app.explainHandler)
	v1.POST("/analyze/text", app.analyzeTextHandler)
	v1.POST("/analyze/image", app.analyzeImageHandler)
	v1.GET("/history", app.historyHandler)
	v1.GET("/history/:id", app.historyItemHandler)
	v1.GET("/verdicts", app.verdictsHandler)
	v1.GET("/cache/stats", app.cacheStatsHandler)
	v1.POST("/cache/clear", app.cacheClearHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
