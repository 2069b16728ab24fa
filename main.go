package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/example/skillbuilder/internal/auth"
	"github.com/example/skillbuilder/internal/bot"
	"github.com/example/skillbuilder/internal/catalog"
	"github.com/example/skillbuilder/internal/chatbot"
	"github.com/example/skillbuilder/internal/config"
	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/internal/excel"
	"github.com/example/skillbuilder/internal/forum"
	"github.com/example/skillbuilder/internal/httpapi"
	"github.com/example/skillbuilder/internal/logger"
	"github.com/example/skillbuilder/internal/progress"
	"github.com/example/skillbuilder/internal/quiz"
	"github.com/example/skillbuilder/internal/scheduler"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "skillbuilder",
	Short:         "Skill Builder learning platform",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		log, err = logger.New(cfg.LogMode)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

var (
	serveNoBot  bool
	serveNoHTTP bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot, the HTTP API and the digest scheduler",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoBot, "no-bot", false, "Do not start the Telegram bot")
	serveCmd.Flags().BoolVar(&serveNoHTTP, "no-http", false, "Do not start the HTTP API")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the store and the services built on it
type app struct {
	store     database.Store
	catalog   *catalog.Service
	progress  *progress.Service
	forum     *forum.Service
	quiz      *quiz.Service
	auth      *auth.Service
	sessions  *auth.Sessions
	responder *chatbot.Responder
	reporter  *excel.Reporter
}

func newApp(ctx context.Context) (*app, error) {
	store, err := database.Open(ctx, cfg.Database.Type, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Database.Type, err)
	}
	authSvc, err := auth.NewService()
	if err != nil {
		store.Close()
		return nil, err
	}
	progressSvc := progress.NewService(store)
	quizSvc := quiz.NewService(store)
	return &app{
		store:     store,
		catalog:   catalog.NewService(store),
		progress:  progressSvc,
		forum:     forum.NewService(store),
		quiz:      quizSvc,
		auth:      authSvc,
		sessions:  auth.NewSessions(),
		responder: chatbot.NewResponder(),
		reporter:  excel.NewReporter(progressSvc, quizSvc),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			log.Info("Received signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	log.Info("Store ready", "type", cfg.Database.Type)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Component stopped with error", "component", name, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancel()
			}
		}()
	}

	if !serveNoHTTP {
		if err := cfg.ValidateHTTP(); err != nil {
			return err
		}
	}

	if !serveNoBot {
		if cfg.Telegram.Token == "" {
			return errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
		}
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
		log.Info("Authorized on account", "username", api.Self.UserName)

		b := bot.New(api, bot.Services{
			Catalog:   a.catalog,
			Progress:  a.progress,
			Forum:     a.forum,
			Quiz:      a.quiz,
			Auth:      a.auth,
			Sessions:  a.sessions,
			Responder: a.responder,
			Reporter:  a.reporter,
		}, &bot.BotConfig{
			ChatMinDelay:  cfg.Chat.MinDelay,
			ChatMaxDelay:  cfg.Chat.MaxDelay,
			AdminUserIDs:  cfg.Telegram.AdminUserIDs,
			UpdateTimeout: bot.DefaultConfig().UpdateTimeout,
		}, log)

		if cfg.Scheduler.Enabled {
			sched := scheduler.New(cfg.Scheduler, b, a.sessions, a.progress, log)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()
			b.SetDigests(sched)
		}

		updates := api.GetUpdatesChan(b.NewUpdateConfig())
		run("bot", func() error {
			defer api.StopReceivingUpdates()
			return b.Run(ctx, updates)
		})
	}

	if !serveNoHTTP {
		server := httpapi.New(httpapi.Services{
			Catalog:   a.catalog,
			Progress:  a.progress,
			Forum:     a.forum,
			Quiz:      a.quiz,
			Auth:      a.auth,
			Tokens:    auth.NewTokenIssuer(cfg.HTTP.JWTSecret, cfg.HTTP.TokenTTL),
			Responder: a.responder,
			Reporter:  a.reporter,
		}, httpapi.Config{
			Addr:           cfg.HTTP.Addr,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			ChatMinDelay:   cfg.Chat.MinDelay,
			ChatMaxDelay:   cfg.Chat.MaxDelay,
		}, log)
		run("http", func() error { return server.Run(ctx) })
	}

	log.Info("Skill Builder started. Press Ctrl+C to stop.")
	wg.Wait()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	log.Info("Skill Builder stopped successfully")
	return nil
}
