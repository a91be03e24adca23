package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"PairFeed/internal/collector"
	"PairFeed/internal/config"
	"PairFeed/internal/forecast"
	"PairFeed/internal/logger"
	"PairFeed/internal/notifier"
	"PairFeed/internal/pipeline"
	"PairFeed/internal/recorder"
	"PairFeed/internal/writer"
)

// app holds the wired components shared by run and schedule.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	runner   *pipeline.Runner
	telegram *notifier.TelegramNotifier
	recorder recorder.Recorder
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, err
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", fetcher.Name()).Str("symbol", cfg.DataSource.Symbol).Msg("data source ready")

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	var (
		tn  *notifier.TelegramNotifier
		rep pipeline.Reporter = notifier.NoopNotifier{}
	)
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		rep = tn
	}

	var fc *forecast.Forecaster
	if !cfg.Forecast.Disabled {
		fc = forecast.NewForecaster(cfg.Forecast.MinPoints, time.Now, log)
	}

	opts := pipeline.Options{
		Symbol:         cfg.DataSource.Symbol,
		InvertedSymbol: cfg.DataSource.InvertedSymbol,
		Tag:            cfg.DataSource.Tag,
		InvertedTag:    cfg.DataSource.InvertedTag,
		Intraday:       target(cfg.Intraday.Window()),
		Daily:          target(cfg.Daily.Window()),
		Horizon:        cfg.Forecast.Horizon,
		NoForecast:     cfg.Forecast.Disabled,
	}
	runner := pipeline.NewRunner(opts, fetcher, writer.NewFileWriter(cfg.Output.Dir), fc, rec, rep, time.Now, log)

	return &app{cfg: cfg, log: log, runner: runner, telegram: tn, recorder: rec}, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close recorder")
	}
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	switch cfg.DataSource.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.DataSource.BaseURL, cfg.Proxy), nil
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
	case "mock":
		return &collector.MockFetcher{Price: 0.65}, nil
	default:
		return nil, fmt.Errorf("unknown data source provider %q", cfg.DataSource.Provider)
	}
}

func target(w config.Window) pipeline.Target {
	return pipeline.Target{
		Window:  collector.Window{Period: w.Period, Interval: w.Interval},
		FileTag: w.FileTag,
	}
}
