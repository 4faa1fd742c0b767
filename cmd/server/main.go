// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/pickleclub/internal/availability"
	"github.com/codr1/pickleclub/internal/booking"
	"github.com/codr1/pickleclub/internal/config"
	"github.com/codr1/pickleclub/internal/db"
	"github.com/codr1/pickleclub/internal/email"
	"github.com/codr1/pickleclub/internal/lockmap"
	"github.com/codr1/pickleclub/internal/members"
	"github.com/codr1/pickleclub/internal/metrics"
	"github.com/codr1/pickleclub/internal/notify"
	"github.com/codr1/pickleclub/internal/ratelimit"
	"github.com/codr1/pickleclub/internal/scheduler"
	"github.com/codr1/pickleclub/internal/tournaments"
	"github.com/codr1/pickleclub/internal/wallet"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string, debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// app holds everything the HTTP server and background jobs share.
type app struct {
	cfg       *config.Config
	db        *db.DB
	metrics   *metrics.Metrics
	publisher notify.Publisher
	limiter   *ratelimit.Limiter
	hours     availability.Hours

	bookings *booking.Manager
	planner  *booking.Planner
	ledger   *wallet.Ledger
	registry *tournaments.Registry
	bracket  *tournaments.Bracket
	members  *members.Service
	sweeper  *scheduler.Sweeper

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	hours, err := availability.ParseHours(cfg.Booking.OpensAt, cfg.Booking.ClosesAt)
	if err != nil {
		return nil, fmt.Errorf("operating hours: %w", err)
	}
	a.hours = hours

	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("booking timezone: %w", err)
	}

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = database
	a.closers = append(a.closers, database.Close)

	if cfg.Features.EnableMetrics {
		a.metrics = metrics.New()
	}

	if err := a.setupPublishers(ctx); err != nil {
		a.Close()
		return nil, err
	}

	// Booking, wallet and tournament writes for one member share this map.
	locks := lockmap.New()

	a.bookings = booking.NewManager(database, booking.Options{
		Hours:     hours,
		Publisher: a.publisher,
		Metrics:   a.metrics,
		Locks:     locks,
		HoldTTL:   cfg.Booking.PendingTTL,
	})
	a.planner = booking.NewPlanner(a.bookings, cfg.Booking.MaxRecurringDays)
	a.ledger = wallet.NewLedger(database, wallet.Options{
		RequireDepositApproval: cfg.Wallet.RequireDepositApproval,
		Publisher:              a.publisher,
		Metrics:                a.metrics,
		Locks:                  locks,
	})
	tournamentOpts := tournaments.Options{
		Publisher: a.publisher,
		Metrics:   a.metrics,
		Locks:     locks,
	}
	a.registry = tournaments.NewRegistry(database, tournamentOpts)
	a.bracket = tournaments.NewBracket(database, tournamentOpts)
	a.members = members.NewService(database, members.Options{Region: cfg.Members.PhoneRegion})

	a.limiter = ratelimit.New(&ratelimit.Config{
		RequestsPerMinute: cfg.Wallet.RequestsPerMinute,
		Burst:             cfg.Wallet.Burst,
	})
	a.closers = append(a.closers, func() error {
		a.limiter.Close()
		return nil
	})

	a.sweeper = scheduler.NewSweeper(database, scheduler.SweeperOptions{
		PendingTTL: cfg.Booking.PendingTTL,
		Location:   location,
		Publisher:  a.publisher,
		Metrics:    a.metrics,
	})

	return a, nil
}

func (a *app) setupPublishers(ctx context.Context) error {
	var publishers notify.Multi
	for _, driver := range a.cfg.Notifications.Drivers {
		switch strings.ToLower(driver) {
		case "log":
			publishers = append(publishers, notify.NewLogPublisher())
		case "amqp":
			p, err := notify.NewAMQPPublisher(a.cfg.Notifications.AMQPURL, a.cfg.Notifications.Exchange)
			if err != nil {
				return fmt.Errorf("amqp publisher: %w", err)
			}
			publishers = append(publishers, p)
			a.closers = append(a.closers, p.Close)
		case "ses":
			client, err := email.NewSESClient(
				ctx,
				os.Getenv("AWS_ACCESS_KEY_ID"),
				os.Getenv("AWS_SECRET_ACCESS_KEY"),
				a.cfg.Notifications.SESRegion,
				a.cfg.Notifications.Sender,
			)
			if err != nil {
				return fmt.Errorf("ses client: %w", err)
			}
			publishers = append(publishers, notify.NewEmailPublisher(client, a.cfg.Notifications.Sender, a.cfg.App.Name))
		}
	}
	if len(publishers) == 0 {
		publishers = append(publishers, notify.NewLogPublisher())
	}
	a.publisher = publishers
	log.Info().Strs("drivers", a.cfg.Notifications.Drivers).Msg("Notification publishers configured")
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Error().Err(err).Msg("Failed to release resource")
		}
	}
	a.closers = nil
}

func startScheduler(a *app) error {
	if err := scheduler.Init(); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if err := scheduler.RegisterSweeper(a.sweeper, a.cfg.Scheduler.SweepInterval); err != nil {
		return fmt.Errorf("register sweeper: %w", err)
	}
	return scheduler.Start()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment, cfg.Features.EnableDebug)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	if err := startScheduler(a); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	server := newServer(a)

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		a.Close()
		os.Exit(1)
	}
}
