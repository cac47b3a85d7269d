package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/dmitrijs2005/soraprompter/internal/account"
	"github.com/dmitrijs2005/soraprompter/internal/admin"
	"github.com/dmitrijs2005/soraprompter/internal/buildinfo"
	"github.com/dmitrijs2005/soraprompter/internal/client/cli"
	"github.com/dmitrijs2005/soraprompter/internal/client/config"
	"github.com/dmitrijs2005/soraprompter/internal/client/storage"
	"github.com/dmitrijs2005/soraprompter/internal/clock"
	"github.com/dmitrijs2005/soraprompter/internal/extractor"
	"github.com/dmitrijs2005/soraprompter/internal/generation"
	"github.com/dmitrijs2005/soraprompter/internal/logging"
	"github.com/dmitrijs2005/soraprompter/internal/session"
	"github.com/dmitrijs2005/soraprompter/internal/store"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.NewTextLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	loc, err := clock.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn(ctx, "close storage", "error", err)
		}
	}()

	clk := clock.Real{}

	var codec session.Codec = session.PlainCodec{}
	if cfg.SessionSecret != "" {
		codec, err = session.NewJWTCodec([]byte(cfg.SessionSecret), cfg.SessionTTL, clk)
		if err != nil {
			return err
		}
	}

	st := store.NewKVStore(backend.Repo, codec)
	accounts := account.NewService(st, clk, loc, logger.With("component", "account"))

	ex := extractor.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.ExtractTimeout, http.DefaultClient)
	gen := generation.NewService(accounts, ex, clk, logger.With("component", "generation"))
	adm := admin.NewService(st, clk, loc, []byte(cfg.AdminPassword))

	logger.Debug(ctx, "starting", "storage", backend.Name, "timezone", loc.String())

	app := cli.NewApp(cli.Deps{
		Accounts:       accounts,
		Generator:      gen,
		Admin:          adm,
		Clock:          clk,
		Location:       loc,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	})
	app.Run(ctx)
	return nil
}
