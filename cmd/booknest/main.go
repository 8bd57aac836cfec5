package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"booknest/internal/app"
	"booknest/internal/config"
	"booknest/internal/terminal"

	"github.com/urfave/cli/v2"
)

func main() {
	a := &cli.App{
		Name:  "booknest",
		Usage: "bookstore admin client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "backend", Usage: "firebase, postgres or memory (overrides BOOKNEST_BACKEND)"},
			&cli.StringFlag{Name: "cache", Usage: "session cache file (overrides BOOKNEST_CACHE_PATH)"},
			&cli.StringFlag{Name: "log-level", Usage: "overrides BOOKNEST_LOG_LEVEL"},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.RunContext(ctx, os.Args); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	config.LoadEnvFiles()
	overrides := map[string]string{
		"backend":   "BOOKNEST_BACKEND",
		"cache":     "BOOKNEST_CACHE_PATH",
		"log-level": "BOOKNEST_LOG_LEVEL",
	}
	for flag, env := range overrides {
		if v := c.String(flag); v != "" {
			if err := os.Setenv(env, v); err != nil {
				return err
			}
		}
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	backend, err := app.Open(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	console := terminal.NewConsole(os.Stdin, os.Stdout)
	return terminal.NewApp(app.Wire(backend, logger), console, logger).Run(c.Context)
}
