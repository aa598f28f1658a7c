package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ganot/interview-etl/internal/config"
	"github.com/ganot/interview-etl/internal/mcp"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run the MCP server over stdio (default) or streamable HTTP.

Configuration comes from INTERVIEW_ETL_* environment variables and an optional
YAML file named by INTERVIEW_ETL_CONFIG_PATH. Flags override both.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("transport", "", "Transport mode: stdio or http")
	serveCmd.Flags().Int("port", 0, "HTTP listen port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	// stdout carries the protocol in stdio mode, so logs never go there.
	a, err := newApp(cmd.Context(), cmd.ErrOrStderr(), func(cfg *config.Config) {
		if transport != "" {
			cfg.Transport.Mode = transport
		}
		if port != 0 {
			cfg.Server.Port = port
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Workspaces: a.workspaces,
			Jobs:       a.jobs,
			Constructs: a.constructs,
		},
		TransportMode: a.cfg.Transport.Mode,
		Logger:        a.logger,
	})

	switch a.cfg.Transport.Mode {
	case "http":
		return runHTTPMode(a.logger, mcpServer, a.cfg.Server.Host, a.cfg.Server.Port)
	default:
		return runStdioMode(a.logger, mcpServer)
	}
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or a signal arrives.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mcp.NewHTTPHandler(mcpServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(logger, httpServer, errCh)
}

func waitForShutdown(logger *slog.Logger, server *http.Server, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
