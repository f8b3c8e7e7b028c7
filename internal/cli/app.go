package cmd

import (
	"log/slog"

	"github.com/rohmanhakim/billtext/internal/build"
	"github.com/rohmanhakim/billtext/internal/cache"
	"github.com/rohmanhakim/billtext/internal/config"
	"github.com/rohmanhakim/billtext/internal/discovery"
	"github.com/rohmanhakim/billtext/internal/document"
	"github.com/rohmanhakim/billtext/internal/extract"
	"github.com/rohmanhakim/billtext/internal/fetcher"
	"github.com/rohmanhakim/billtext/internal/ingest"
	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/internal/ocr"
	"github.com/rohmanhakim/billtext/internal/render"
	"github.com/rohmanhakim/billtext/internal/storage"
	"github.com/rohmanhakim/billtext/pkg/execrun"
	"github.com/rohmanhakim/billtext/pkg/limiter"
	"github.com/rohmanhakim/billtext/pkg/retry"
	"github.com/rohmanhakim/billtext/pkg/timeutil"
)

/*
app holds the wired pipeline for one CLI invocation.

Both caches live exactly as long as the app, so every cache hit
observed by a command comes from the same process.
*/
type app struct {
	cfg          config.Config
	logger       *slog.Logger
	discovery    *discovery.BillDiscovery
	orchestrator *ingest.Orchestrator
	textSink     *storage.TextSink
}

func newApp(cfg config.Config, logger *slog.Logger) *app {
	recorder := metadata.NewRecorder(logger)

	backoffParam := timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	)
	retryParam := retry.NewRetryParam(
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempt(),
		backoffParam,
	)
	rateLimiter := limiter.NewConcurrentRateLimiter(
		cfg.BaseDelay(),
		cfg.Jitter(),
		cfg.RandomSeed(),
		backoffParam,
	)
	httpFetcher := fetcher.NewHttpFetcher(recorder, rateLimiter)
	agent := build.UserAgent(cfg.UserAgent())

	listingCache := cache.NewMemoryCache[string, []discovery.Bill](
		cfg.ListingCacheTTL(),
		cfg.ListingCacheMaxEntries(),
	)
	billDiscovery := discovery.NewBillDiscovery(
		recorder,
		httpFetcher,
		listingCache,
		discovery.NewParam(
			cfg.ListingURL(),
			cfg.BaseURL(),
			agent,
			cfg.ListingTimeout(),
			cfg.DocumentPathSegments(),
		),
		retryParam,
	)

	runner := execrun.NewExecRunner(logger)
	rasterizer := render.NewPopplerRasterizer(
		runner,
		resolveBinary(logger, cfg.PdftoppmPath(), "pdftoppm"),
	)
	engine := ocr.NewTesseractEngine(
		runner,
		resolveBinary(logger, cfg.TesseractPath(), "tesseract"),
		cfg.OCRLanguage(),
		cfg.OCRTimeout(),
	)
	pageExtractor := extract.NewPageExtractor(
		recorder,
		rasterizer,
		engine,
		extract.NewParam(cfg.DigitalThreshold(), cfg.OCRDPI(), cfg.OCRLanguage()),
	)

	documents := document.NewDocumentFetcher(
		recorder,
		httpFetcher,
		document.NewParam(agent, cfg.DocumentTimeout()),
		retryParam,
	)
	extractionCache := cache.NewMemoryCache[string, ingest.Outcome](
		cfg.ExtractionCacheTTL(),
		cfg.ExtractionCacheMaxEntries(),
	)
	orchestrator := ingest.NewOrchestrator(
		recorder,
		documents,
		pageExtractor,
		extractionCache,
		ingest.NewParam(cfg.MaxPages(), cfg.PageWorkers()),
	)

	return &app{
		cfg:          cfg,
		logger:       logger,
		discovery:    billDiscovery,
		orchestrator: orchestrator,
		textSink:     storage.NewTextSink(recorder),
	}
}

// resolveBinary never fails: an undetected tool is logged and left to fail
// at the first scanned page.
func resolveBinary(logger *slog.Logger, explicitPath string, name string) string {
	path, err := execrun.Locate(explicitPath, name)
	if err != nil {
		logger.Warn("external tool unavailable", slog.String("tool", name), slog.String("error", err.Error()))
		if explicitPath != "" {
			return explicitPath
		}
		return name
	}
	return path
}
