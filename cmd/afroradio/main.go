package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/babycommando/afroradio/internal/app"
	"github.com/babycommando/afroradio/internal/config"
	"github.com/babycommando/afroradio/internal/directory"
	"github.com/babycommando/afroradio/internal/logging"
	"github.com/babycommando/afroradio/internal/mediakeys"
	"github.com/babycommando/afroradio/internal/player"
	"github.com/babycommando/afroradio/internal/presence"
	"github.com/babycommando/afroradio/internal/storage"
	"github.com/babycommando/afroradio/internal/ui"
)

/* ─────────────  main  ───────────── */

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: "+config.DefaultPath()+")")
	envFile := flag.String("env", ".env", "dotenv file with AFRORADIO_* overrides")
	country := flag.String("country", "", "country to load on start")
	flag.Parse()

	if err := run(*configPath, *envFile, *country); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(configPath, envFile, country string) error {
	environ, err := config.Environ(os.Environ(), envFile)
	if err != nil {
		return err
	}
	cfg, errs := config.Load(configPath, environ)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if country != "" {
		cfg.Country = country
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var dir directory.Directory = directory.NewClient(directory.Config{
		BaseURL:     cfg.Directory.BaseURL,
		UserAgent:   cfg.Directory.UserAgent,
		Timeout:     cfg.Directory.Timeout,
		MaxAttempts: cfg.Directory.MaxAttempts,
	}, logger)
	if cfg.Directory.CacheTTL > 0 {
		dir = directory.NewCached(dir, cfg.Directory.CacheTTL, logger)
	}

	var repo app.FavoritesRepository
	db, err := storage.Open(cfg.Favorites.Path, logger)
	if err != nil {
		logger.Warn("favorites will not be saved", zap.Error(err))
	} else {
		defer db.Close()
		repo = db
	}

	discord := presence.Connect(cfg.Discord.AppID, logger)
	defer discord.Close()

	a := app.New(app.Options{
		Directory:  dir,
		Engine:     player.NewBeepEngine(nil, cfg.Directory.UserAgent, logger),
		Repository: repo,
		Presence:   discord,
		Logger:     logger,
	})
	defer a.Close()
	a.SetVolume(cfg.Volume)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	restoreCtx, restoreCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := a.RestoreFavorites(restoreCtx); err != nil {
		logger.Warn("could not restore favorites", zap.Error(err))
	}
	restoreCancel()

	if cfg.MediaKeys.Signals {
		go mediakeys.New(mediakeys.NewSignalSource(), a, logger).Run(ctx)
	}

	logger.Info("starting", zap.String("country", cfg.Country), zap.Int("volume", cfg.Volume))
	if _, err := tea.NewProgram(ui.New(a, cfg.Country), tea.WithAltScreen()).Run(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
