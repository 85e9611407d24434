package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pizza-palace/api"
	"pizza-palace/bot"
	"pizza-palace/config"
	"pizza-palace/db"
	"pizza-palace/events"
	"pizza-palace/logger"
	"pizza-palace/models"
	"pizza-palace/services"
	"pizza-palace/store"
)

type stores struct {
	menu   services.MenuStore
	carts  services.CartStore
	orders services.OrderStore
	authn  services.Authenticator
	close  func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(ctx, cfg, log); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		return
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}

func runMigrate(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	pool, err := db.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	return applyMigrations(ctx, pool, log)
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.Storage.Driver != "postgres" {
		mem := store.NewMemory()
		authn, err := services.NewDemoAuthenticator(services.DemoAccounts)
		if err != nil {
			return nil, err
		}
		return &stores{menu: mem, carts: mem, orders: mem, authn: authn, close: func() {}}, nil
	}

	pool, err := db.Open(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.AutoMigrate {
		if err := applyMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	users := store.NewUsers(pool)
	if err := users.SeedDemoUsers(ctx, services.DemoAccounts); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seed users: %w", err)
	}
	pg := store.NewPostgres(pool)
	return &stores{menu: pg, carts: pg, orders: pg, authn: users, close: pool.Close}, nil
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	var notifiers services.MultiNotifier
	var adminBot *bot.AdminBot
	if cfg.Telegram.Token != "" && cfg.Telegram.AdminChatID != 0 {
		adminBot, err = bot.New(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
		if err != nil {
			return err
		}
		notifiers = append(notifiers, adminBot)
	}
	if cfg.RabbitMQ.URL != "" {
		pub, err := events.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			return err
		}
		defer pub.Close()
		notifiers = append(notifiers, pub)
	}

	pricing := services.Pricing{TaxRate: cfg.Pricing.TaxRate, DeliveryFee: cfg.Pricing.DeliveryFee}
	catalog := services.NewCatalog(st.menu)
	if cfg.Storage.SeedMenu {
		n, err := store.SeedMenu(ctx, catalog)
		if err != nil {
			return fmt.Errorf("seed menu: %w", err)
		}
		if n > 0 {
			log.Info("menu_seeded", zap.Int("items", n))
		}
	}
	carts := services.NewCartService(st.carts, catalog,
		services.WithLinePolicy(models.LinePolicy(cfg.Checkout.LinePolicy)),
		services.WithCartPricing(pricing),
	)
	ledger := services.NewLedger(st.orders,
		services.WithNotifier(notifiers),
		services.WithLedgerLogger(log),
		services.WithDeliveryETA(cfg.Checkout.DeliveryETA),
	)
	checkout := services.NewCheckout(carts, ledger, pricing, cfg.Checkout.ProcessingDelay)
	sessions := services.NewSessions(cfg.HTTP.SessionTTL)
	auth := services.NewAuth(st.authn, services.NewLoginThrottle(), sessions)

	if adminBot != nil {
		go adminBot.Start(ctx, ledger)
		log.Info("telegram_bot_started", zap.Int64("admin_chat_id", cfg.Telegram.AdminChatID))
	}
	go pruneSessions(ctx, sessions, log)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewServer(catalog, carts, checkout, ledger, auth, log).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http_listening", zap.String("addr", cfg.HTTP.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func pruneSessions(ctx context.Context, sessions *services.Sessions, log *zap.Logger) {
	t := time.NewTicker(10 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sessions.Prune(); n > 0 {
				log.Debug("sessions_pruned", zap.Int("count", n))
			}
		}
	}
}
