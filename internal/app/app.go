// Package app wires the bot together: storage, Telegram router, EMS client,
// scheduler and the HTTP endpoints.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/oldtora/ppshiftsbot/internal/config"
	"github.com/oldtora/ppshiftsbot/internal/ems"
	"github.com/oldtora/ppshiftsbot/internal/metrics"
	"github.com/oldtora/ppshiftsbot/internal/scheduler"
	"github.com/oldtora/ppshiftsbot/internal/store"
	"github.com/oldtora/ppshiftsbot/internal/telegram"
)

type App struct {
	cfg       config.Config
	log       *zap.Logger
	bot       *tgbotapi.BotAPI
	httpSrv   *http.Server
	repo      store.Repo
	router    *telegram.Router
	collector *metrics.Collector
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv, collector: collector}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting shift bot",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("timezone", a.cfg.Timezone),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	a.router = telegram.NewRouter(a.bot, a.log, a.repo, a.cfg)

	source := ems.NewClient(a.cfg.EMSAPIURL, a.cfg.EMSAPIKey)
	if source.Mock() {
		a.log.Warn("EMS API not configured, serving mock roster")
	}

	sched := scheduler.New(scheduler.Config{
		Location:     a.cfg.Location(),
		FetchTimes:   a.cfg.FetchTimes,
		TickInterval: a.cfg.TickInterval(),
		CutoffHour:   a.cfg.CutoffHour,
	}, a.repo, source, a.router, a.collector, a.log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sched.Run(ctx)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
