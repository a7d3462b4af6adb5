// Command rdpcapture dials an RDP server, drives the core connection and
// session state machines to completion, and serves the decoded desktop as a
// live preview over a websocket — the demonstration harness for the pure
// core packages under internal/core.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rcarmo/go-rdp-core/internal/config"
	"github.com/rcarmo/go-rdp-core/internal/corelog"
)

func main() {
	var opts config.Options
	flag.StringVar(&opts.ConfigFile, "config", "", "path to a YAML config file")
	flag.StringVar(&opts.Host, "host", "", "RDP server host")
	flag.IntVar(&opts.Port, "port", 0, "RDP server port")
	flag.StringVar(&opts.Username, "username", "", "RDP username")
	flag.StringVar(&opts.Password, "password", "", "RDP password")
	flag.StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn, or error")
	flag.Parse()

	cfg, err := config.Load(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rdpcapture:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	sink := corelog.SlogSink(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	h := newHub(sink)
	go serveHub(h, cfg.ListenAddr, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Info("dialing", "addr", addr)

	wc, err := dialWireConn(ctx, addr)
	if err != nil {
		logger.Error("dial failed", "error", err)
		os.Exit(1)
	}
	defer wc.raw.Close()

	result, err := runConnect(ctx, wc, cfg.Conn, sink)
	if err != nil {
		logger.Error("connect failed", "error", err)
		os.Exit(1)
	}
	logger.Info("connected", "desktop_width", result.DesktopWidth, "desktop_height", result.DesktopHeight)

	if err := runSession(ctx, wc, result, h, sink); err != nil {
		logger.Error("session ended", "error", err)
		os.Exit(1)
	}
	logger.Info("session ended cleanly")
}

func serveHub(h *hub, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	logger.Info("preview listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("preview server stopped", "error", err)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
