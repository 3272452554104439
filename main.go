package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"marketfetcher/internal/aucoffre"
	"marketfetcher/internal/config"
	"marketfetcher/internal/diagnostics"
	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/ft"
	"marketfetcher/internal/ratelimit"
	"marketfetcher/internal/refresh"
	"marketfetcher/internal/resolver"
	"marketfetcher/internal/scrape"
	"marketfetcher/internal/store"
	"marketfetcher/internal/veracash"
	"marketfetcher/internal/yahoo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	// Handle interrupt signals for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("received interrupt signal, shutting down")
		cancel()
	}()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	httpClient := fetcher.NewClient(fetcher.Options{
		UserAgent: cfg.UserAgent,
		Logger:    log,
	})
	limiter := ratelimit.New()
	diag := diagnostics.NewRecorder(cfg.DebugFilePath, log)

	var parser scrape.Parser = scrape.GoqueryParser{}
	if !cfg.ScrapingEnabled {
		parser = scrape.DisabledParser{}
	}

	yahooClient := yahoo.NewClient(yahoo.Config{
		ChartBaseURL:  cfg.YahooChartBaseURL,
		QuoteBaseURL:  cfg.YahooQuoteBaseURL,
		SearchBaseURL: cfg.YahooSearchBaseURL,
	}, httpClient, limiter, log)

	ftClient := ft.NewClient(ft.Config{
		FundsURL:      cfg.FTFundsURL,
		ETFURL:        cfg.FTETFURL,
		LabelSelector: cfg.FTLabelSelector,
		ValueSelector: cfg.FTValueSelector,
	}, httpClient, parser, limiter, log)

	anchors := make(map[string]veracash.Anchor, len(cfg.VeracashAnchors))
	for kind, a := range cfg.VeracashAnchors {
		anchors[kind] = veracash.Anchor{Search: a.Search, Floor: a.Floor}
	}
	veracashClient := veracash.NewClient(veracash.Config{
		URL:     cfg.VeracashURL,
		Anchors: anchors,
	}, httpClient, parser, limiter, log)

	coins := make([]aucoffre.CoinConfig, 0, len(cfg.Coins))
	for _, c := range cfg.Coins {
		coins = append(coins, aucoffre.CoinConfig{
			Key:         c.Key,
			URL:         c.URL,
			SearchText:  c.SearchText,
			DisplayName: c.DisplayName,
			Divisor:     c.Divisor,
		})
	}
	coinClient := aucoffre.NewClient(coins, httpClient, parser, limiter, log)

	benchmarks := make([]resolver.BenchmarkConfig, 0, len(cfg.Benchmarks))
	for _, b := range cfg.Benchmarks {
		benchmarks = append(benchmarks, resolver.BenchmarkConfig{Name: b.Name, Symbol: b.Symbol})
	}

	service := resolver.NewService(yahooClient, ftClient, veracashClient, coinClient, benchmarks, diag, log)
	runner := refresh.NewRunner(st, service, time.Duration(cfg.BatchDelayMS)*time.Millisecond, log)

	log.Info().Msg("refreshing prices for stored instruments")
	summary, err := runner.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("batch refresh interrupted")
	}

	fmt.Printf("refreshed %d instrument(s), %d failure(s)\n", summary.Succeeded, summary.Failed)
	for id, reason := range summary.Failures {
		fmt.Printf("  %s: %s\n", id, reason)
	}
}
