package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"sweet-shop/internal/app"
	"sweet-shop/internal/config"
	"sweet-shop/internal/logger"
)

func main() {
	flags := pflag.NewFlagSet("storefront", pflag.ExitOnError)
	envFile := flags.String("env-file", "", "path to a .env file (default: ./.env if present)")
	port := flags.StringP("port", "p", "", "listen port, overrides SERVER_PORT")
	noColor := flags.Bool("no-color", false, "disable colored log output")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: storefront [flags]\n\nServes the sweet shop page state against SWEETS_API_URL.\n\nFlags:\n")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*envFile)
	if err != nil {
		setLogger(slog.LevelInfo, *noColor)
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.ServerPort = *port
	}
	setLogger(logger.ParseLevel(cfg.LogLevel), *noColor)

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

func setLogger(level slog.Level, noColor bool) {
	handler := logger.NewPrettyHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if noColor {
		handler = handler.WithoutColor()
	}
	slog.SetDefault(slog.New(handler))
}
