// Command crawl runs a one-shot keyword crawl and writes records to a
// JSONL file, without starting the HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/maltedev/amazon-search-scraper/internal/browser"
	"github.com/maltedev/amazon-search-scraper/internal/config"
	"github.com/maltedev/amazon-search-scraper/internal/crawler"
	"github.com/maltedev/amazon-search-scraper/internal/detector"
	"github.com/maltedev/amazon-search-scraper/internal/enricher"
	"github.com/maltedev/amazon-search-scraper/internal/metrics"
	"github.com/maltedev/amazon-search-scraper/internal/models"
	"github.com/maltedev/amazon-search-scraper/internal/navigator"
	"github.com/maltedev/amazon-search-scraper/internal/pipeline"
)

func main() {
	var (
		keywords         = flag.String("keywords", "", "Comma-separated search keywords (required)")
		country          = flag.String("country", "US", "Marketplace: US, UK, DE, FR, JP")
		maxItems         = flag.Int("items", 50, "Maximum items per keyword")
		maxPages         = flag.Int("pages", 3, "Maximum pages per keyword (1-20)")
		minRating        = flag.Float64("min-rating", 0, "Minimum rating filter")
		minReviews       = flag.Int("min-reviews", 0, "Minimum review count filter")
		excludeSponsored = flag.Bool("exclude-sponsored", false, "Drop sponsored placements")
		fetchDetails     = flag.Bool("details", false, "Enrich top records from detail pages")
		maxDetailItems   = flag.Int("detail-items", 5, "Maximum records to enrich per keyword")
		output           = flag.String("output", "output/records.jsonl", "Output JSONL file")
		headless         = flag.Bool("headless", true, "Run browser in headless mode")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *keywords == "" {
		fmt.Fprintln(os.Stderr, "Please provide keywords with -keywords")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	in := &config.Input{
		Keywords:           strings.Split(*keywords, ","),
		MaxItemsPerKeyword: *maxItems,
		MaxPages:           *maxPages,
		Country:            *country,
		MinRating:          *minRating,
		MinReviews:         *minReviews,
		ExcludeSponsored:   *excludeSponsored,
		FetchDetails:       *fetchDetails,
		MaxDetailItems:     *maxDetailItems,
	}
	in.ApplyDefaults()
	if err := in.Validate(); err != nil {
		logger.Error("invalid input", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received, finishing current page")
		cancel()
	}()

	b, err := browser.New(&browser.Options{
		Headless:       *headless && cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		ProxyServer:    cfg.Browser.ProxyServer,
		Marketplace:    models.ParseMarketplace(*country),
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	pool := browser.NewPool(b, 1)
	defer pool.Close()

	sink, err := pipeline.NewJSONLSink(*output)
	if err != nil {
		logger.Error("failed to open output", "error", err)
		os.Exit(1)
	}
	defer sink.Close()

	m := metrics.New()
	det := detector.New()
	limiter := rate.NewLimiter(rate.Every(cfg.Crawl.RateInterval), cfg.Crawl.RateBurst)
	navOpts := navigator.Options{
		NavTimeout:  cfg.Crawl.NavTimeout,
		MaxAttempts: cfg.Crawl.MaxNavAttempts,
		SettleDelay: cfg.Crawl.SettleDelay,
	}

	for _, task := range in.Tasks() {
		if ctx.Err() != nil {
			break
		}

		nav := navigator.New(pool, det, limiter, m, navOpts)
		enr := enricher.New(nav, m)
		orch := crawler.New(nav, enr, m, crawler.Options{AbortAfter: cfg.Crawl.AbortAfter})

		summary, err := orch.Run(ctx, task, sink)
		nav.Close()
		if err != nil {
			logger.Error("keyword crawl failed", "keyword", task.Keyword, "error", err)
			continue
		}
		logger.Info("keyword done",
			"keyword", summary.Keyword,
			"status", string(summary.Status),
			"pages", summary.PagesFetched,
			"emitted", summary.Emitted)
	}
}
