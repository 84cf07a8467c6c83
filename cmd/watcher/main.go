package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-watch-listings/config"
	"github.com/aluiziolira/go-watch-listings/fetch"
	"github.com/aluiziolira/go-watch-listings/models"
	"github.com/aluiziolira/go-watch-listings/notify"
	"github.com/aluiziolira/go-watch-listings/robots"
	"github.com/aluiziolira/go-watch-listings/state"
	"github.com/aluiziolira/go-watch-listings/watch"
)

func main() {
	config.LoadDotenv()

	defaultCfg := config.DefaultConfig()
	urlDefault := defaultCfg.SearchURL
	if value, ok := config.EnvString("WATCHER_URL"); ok {
		urlDefault = value
	}
	stateDefault := defaultCfg.StatePath
	if value, ok := config.EnvString("WATCHER_STATE"); ok {
		stateDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("WATCHER_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	maxPriceDefault := boundOrSentinel(defaultCfg.Match.MaxPriceGBP)
	if value, ok, err := config.EnvInt("WATCHER_MAX_PRICE"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid WATCHER_MAX_PRICE: %v\n", err)
		os.Exit(1)
	} else if ok {
		maxPriceDefault = value
	}

	searchURL := flag.String("url", urlDefault, "Search-results URL to monitor")
	statePath := flag.String("state", stateDefault, "Path of the seen-set state file")
	matchFile := flag.String("match-file", "", "YAML file with match rules (overrides match flags)")
	maxPrice := flag.Int("max-price", maxPriceDefault, "Maximum price in GBP (-1 disables)")
	maxMileage := flag.Int("max-mileage", -1, "Maximum mileage (-1 disables)")
	minYear := flag.Int("min-year", -1, "Minimum registration year (-1 disables)")
	includeKeywords := flag.String("include", "", "Comma-separated keywords, at least one must appear")
	excludeKeywords := flag.String("exclude", "", "Comma-separated keywords, none may appear")
	timeout := flag.Duration("timeout", defaultCfg.Timeout, "Fetch timeout")
	delayMin := flag.Duration("delay-min", defaultCfg.DelayMin, "Minimum polite delay before fetching")
	delayMax := flag.Duration("delay-max", defaultCfg.DelayMax, "Maximum polite delay before fetching")
	static := flag.Bool("static", false, "Fetch over plain HTTP instead of a headless browser")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaultCfg
	cfg.SearchURL = *searchURL
	cfg.StatePath = *statePath
	cfg.Timeout = *timeout
	cfg.DelayMin = *delayMin
	cfg.DelayMax = *delayMax
	cfg.Rendered = !*static
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if value, ok := config.EnvString("TELEGRAM_BOT_TOKEN"); ok {
		cfg.TelegramToken = value
	}
	if value, ok := config.EnvString("TELEGRAM_CHAT_ID"); ok {
		cfg.TelegramChatID = value
	}

	if *matchFile != "" {
		match, err := config.LoadMatchFile(*matchFile)
		if err != nil {
			slog.Error("loading match rules", slog.Any("error", err))
			os.Exit(1)
		}
		cfg.Match = match
	} else {
		cfg.Match = models.MatchConfig{
			MaxPriceGBP:     optionalBound(*maxPrice),
			MaxMileage:      optionalBound(*maxMileage),
			MinYear:         optionalBound(*minYear),
			IncludeKeywords: splitKeywords(*includeKeywords),
			ExcludeKeywords: splitKeywords(*excludeKeywords),
		}
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting watcher run",
		slog.String("url", cfg.SearchURL),
		slog.String("state", cfg.StatePath),
		slog.Bool("rendered", cfg.Rendered),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := watch.NewMetrics()
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	var fetcher fetch.Fetcher
	if cfg.Rendered {
		fetcher = fetch.NewRenderedFetcher(cfg.UserAgent, cfg.Timeout)
	} else {
		fetcher = fetch.NewStaticFetcher(cfg.UserAgent, cfg.Timeout)
	}
	policy := robots.NewChecker(cfg.Timeout, cfg.RobotsAgent)
	notifier := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, 20*time.Second, os.Stdout)
	store := state.NewStore(cfg.StatePath)

	runner := watch.NewRunner(cfg, fetcher, policy, notifier, store, metrics)
	summary, err := runner.Run(ctx)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", shutdownErr))
		}
		cancel()
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("Interrupted.")
			os.Exit(130)
		}
		slog.Error("watcher run failed", slog.Any("error", err))
		os.Exit(1)
	}

	printSummary(summary)
}

func printSummary(summary *models.RunSummary) {
	if summary.Skipped {
		fmt.Println("Run skipped: robots policy denied fetching the search URL.")
		return
	}
	fmt.Printf("Run summary: found=%d new=%d new_matches=%d parse_failures=%d\n",
		summary.Found, summary.New, summary.NewMatches, summary.ParseFailures)
}

func optionalBound(value int) *int {
	if value < 0 {
		return nil
	}
	return &value
}

func boundOrSentinel(bound *int) int {
	if bound == nil {
		return -1
	}
	return *bound
}

func splitKeywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
