package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"booknest/internal/app"
	"booknest/internal/config"
	"booknest/internal/ingest"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	a := &cli.App{
		Name:  "seed",
		Usage: "top the inventory up with Open Library titles",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max", Value: 25, Usage: "target inventory size"},
			&cli.StringSliceFlag{Name: "subject", Value: cli.NewStringSlice("fiction", "science", "history"), Usage: "Open Library subjects to search"},
			&cli.IntFlag{Name: "batch", Value: 20, Usage: "ISBNs per Open Library request"},
			&cli.StringFlag{Name: "price", Value: "499.00", Usage: "price for seeded books"},
			&cli.IntFlag{Name: "quantity", Value: 5, Usage: "stock for seeded books"},
			&cli.StringFlag{Name: "email", EnvVars: []string{"BOOKNEST_SEED_EMAIL"}, Usage: "admin email, needed when the backend requires sign-in"},
			&cli.StringFlag{Name: "password", EnvVars: []string{"BOOKNEST_SEED_PASSWORD"}, Usage: "admin password"},
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
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	backend, err := app.Open(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	svc := app.Wire(backend, logger)

	if email := c.String("email"); email != "" {
		if _, err := svc.Auth.Login(c.Context, email, c.String("password")); err != nil {
			return err
		}
		defer func() {
			if err := svc.Auth.Logout(context.Background()); err != nil {
				logger.WithError(err).Warn("logout after seeding")
			}
		}()
	}

	seeder := ingest.NewService(backend.Metadata, svc.Books, ingest.Config{
		BooksMax:  c.Int("max"),
		Subjects:  c.StringSlice("subject"),
		BatchSize: c.Int("batch"),
		Price:     c.String("price"),
		Quantity:  c.Int("quantity"),
		Status:    "available",
		Type:      "Paperback",
	}, logger)

	report, err := seeder.Run(c.Context)
	logger.WithFields(logrus.Fields{
		"status":   report.Status,
		"existing": report.Existing,
		"fetched":  report.BooksFetched,
		"added":    report.BooksAdded,
		"errors":   len(report.Errors),
		"duration": report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("seed finished")
	return err
}
