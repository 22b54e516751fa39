package cmd

import (
	"context"
	"fmt"
	"time"

	"casino/economy-bot/api"
	"casino/economy-bot/application"
	"casino/economy-bot/bot"
	"casino/economy-bot/bot/features/blackjack"
	"casino/economy-bot/bot/features/roulette"
	"casino/economy-bot/config"
	"casino/economy-bot/database"
	"casino/economy-bot/domain"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/domain/utils"
	"casino/economy-bot/infrastructure"
	"casino/economy-bot/infrastructure/observability"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run initializes and starts the application, blocking until ctx is cancelled
func Run(ctx context.Context) error {
	cfg := config.Get()
	log.WithField("environment", cfg.Environment).Info("Starting economy bot...")

	// Schema first, so a bad migration never meets live traffic
	if err := database.MigrateUp(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Metrics disabled")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to flush metrics")
		}
	}()

	publisher, subscriber, closeEvents, err := setupEvents(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeEvents()

	uowFactory := infrastructure.NewUnitOfWorkFactoryWrapper(db,
		infrastructure.NewMetricsEventPublisher(publisher, observability.GetMetrics()))
	tx := application.NewTransactor(uowFactory)

	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	members := bot.NewMemberDirectory(session)
	rng := utils.DefaultRandom()

	scheduler := application.NewGrantScheduler(tx, members)
	services := bot.Services{
		Economy:   application.NewEconomy(tx, rng, members),
		Shop:      application.NewShopDesk(tx, rng, members),
		Crates:    application.NewCrateOpener(tx, rng, members, scheduler),
		Blackjack: application.NewBlackjackTable(tx, rng, members),
		Roulette:  application.NewRouletteTable(tx, rng, members, roulette.NewAnnouncer(session)),
	}

	discordBot, err := bot.New(bot.Config{Token: cfg.DiscordToken, GuildID: cfg.GuildID}, session, members, services)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	defer func() {
		if err := discordBot.Close(); err != nil {
			log.WithError(err).Warn("Error closing Discord session")
		}
	}()

	// Timers live in memory, rebuild them from the database
	if err := scheduler.Start(ctx); err != nil {
		log.WithError(err).Error("Failed to recover temporary role grants")
	}
	defer scheduler.Stop()
	if err := services.Roulette.RecoverRounds(ctx); err != nil {
		log.WithError(err).Error("Failed to recover roulette rounds")
	}
	defer services.Roulette.Stop()

	timeouts := application.NewBlackjackTimeoutWorker(tx, services.Blackjack, blackjack.NewResponderFactory(session))
	stopTimeouts := timeouts.Start(ctx)
	defer stopTimeouts()

	if subscriber != nil {
		if err := application.RegisterApplicationSubscriptions(subscriber, application.NewEventAuditor(0)); err != nil {
			return fmt.Errorf("failed to register application subscriptions: %w", err)
		}
		if err := bot.RegisterBotSubscriptions(subscriber, discordBot); err != nil {
			return fmt.Errorf("failed to register bot subscriptions: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		server := api.NewServer(services.Roulette, services.Shop, services.Crates, scheduler)
		return server.ListenAndServe(gctx, cfg.AdminAPIPort)
	})

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	err = g.Wait()
	log.Info("Shutting down...")
	return err
}

// setupEvents connects the event bus. With NATS disabled events are dropped and nothing is subscribed.
func setupEvents(ctx context.Context, cfg *config.Config) (interfaces.EventPublisher, domain.EventSubscriber, func(), error) {
	if !cfg.NATSEnabled {
		log.Info("NATS disabled, economy events will not be streamed")
		return infrastructure.NewNoopEventPublisher(), nil, func() {}, nil
	}

	client := infrastructure.NewNATSClient(infrastructure.NATSClientConfigFrom(cfg))
	if err := client.Connect(ctx); err != nil {
		return nil, nil, nil, err
	}

	mapper := infrastructure.NewEventSubjectMapper()
	publisher := infrastructure.NewNATSEventPublisher(client, mapper)
	if err := publisher.EnsureEconomyEventStream(client); err != nil {
		client.Close()
		return nil, nil, nil, fmt.Errorf("failed to ensure economy event stream: %w", err)
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Error closing NATS connection")
		}
	}
	return publisher, infrastructure.NewNATSEventSubscriber(client, mapper), closeFn, nil
}
