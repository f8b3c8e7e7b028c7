package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rohmanhakim/billtext/internal/build"
	"github.com/rohmanhakim/billtext/internal/config"
	"github.com/spf13/cobra"
)

const defaultEnvFile = ".env"

var (
	cfgFile          string
	logLevel         string
	logFormat        string
	envFile          string
	listingURL       string
	baseURL          string
	userAgent        string
	listingTimeout   time.Duration
	documentTimeout  time.Duration
	baseDelay        time.Duration
	jitter           time.Duration
	randomSeed       int64
	maxAttempt       int
	maxPages         int
	digitalThreshold int
	ocrDPI           int
	ocrLanguage      string
	tesseractPath    string
	pdftoppmPath     string
	pageWorkers      int
	outputDir        string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "billtext",
	Short: "Discover legislative bills and extract their text.",
	Long: `billtext scrapes the National Assembly bills listing for PDF documents
and turns them into plain text.

Each page is read digitally when the PDF carries a usable text layer and is
rasterized and sent through OCR otherwise. Results are cached for the
lifetime of the process.`,
	Version:       build.FullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// a failed extraction has already printed its own message
		if !errors.Is(err, ErrExtractionFailed) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// ExecuteArgs runs the command tree against args, writing to out and errOut.
func ExecuteArgs(args []string, out io.Writer, errOut io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	flags.StringVar(&envFile, "env-file", defaultEnvFile, "dotenv file loaded before reading BILLTEXT_* variables")
	flags.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.StringVar(&logFormat, "log-format", "text", "log format: text or json")
	flags.StringVar(&listingURL, "listing-url", "", "page listing the bills")
	flags.StringVar(&baseURL, "base-url", "", "origin used to resolve relative document links (defaults to the listing origin)")
	flags.StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	flags.DurationVar(&listingTimeout, "listing-timeout", 0, "timeout for the listing request")
	flags.DurationVar(&documentTimeout, "document-timeout", 0, "timeout for document downloads")
	flags.DurationVar(&baseDelay, "base-delay", 0, "base delay between HTTP requests to the same host")
	flags.DurationVar(&jitter, "jitter", 0, "random jitter added to base delay")
	flags.Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	flags.IntVar(&maxAttempt, "max-attempt", 0, "attempts per request, 1 disables retrying")
	flags.IntVar(&digitalThreshold, "digital-threshold", -1, "characters a page needs to skip OCR")
	flags.IntVar(&ocrDPI, "ocr-dpi", 0, "rasterization resolution for OCR")
	flags.StringVar(&ocrLanguage, "ocr-language", "", "tesseract language, e.g. eng or eng+swa")
	flags.StringVar(&tesseractPath, "tesseract-path", "", "tesseract executable (auto-detected on PATH when empty)")
	flags.StringVar(&pdftoppmPath, "pdftoppm-path", "", "pdftoppm executable (auto-detected on PATH when empty)")
	flags.IntVar(&pageWorkers, "page-workers", 0, "pages extracted concurrently")
}

// InitConfigWithError layers the configuration: defaults or the config file,
// then BILLTEXT_* environment variables, then flags.
func InitConfigWithError() (config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			// only the implicit .env may be absent
			if !errors.Is(err, fs.ErrNotExist) || envFile != defaultEnvFile {
				return config.Config{}, fmt.Errorf("error loading env file %s: %w", envFile, err)
			}
		}
	}

	var configBuilder *config.Config
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		configBuilder = &cfg
	} else {
		configBuilder = config.WithDefault()
	}

	configBuilder = configBuilder.WithEnv(os.LookupEnv)

	if listingURL != "" {
		parsed, err := parseFlagURL("listing-url", listingURL)
		if err != nil {
			return config.Config{}, err
		}
		configBuilder = configBuilder.WithListingURL(parsed).WithBaseURL(url.URL{})
	}

	if baseURL != "" {
		parsed, err := parseFlagURL("base-url", baseURL)
		if err != nil {
			return config.Config{}, err
		}
		configBuilder = configBuilder.WithBaseURL(parsed)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if listingTimeout > 0 {
		configBuilder = configBuilder.WithListingTimeout(listingTimeout)
	}

	if documentTimeout > 0 {
		configBuilder = configBuilder.WithDocumentTimeout(documentTimeout)
	}

	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if maxAttempt > 0 {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}

	if maxPages > 0 {
		configBuilder = configBuilder.WithMaxPages(maxPages)
	}

	if digitalThreshold >= 0 {
		configBuilder = configBuilder.WithDigitalThreshold(digitalThreshold)
	}

	if ocrDPI > 0 {
		configBuilder = configBuilder.WithOCRDPI(ocrDPI)
	}

	if ocrLanguage != "" {
		configBuilder = configBuilder.WithOCRLanguage(ocrLanguage)
	}

	if tesseractPath != "" {
		configBuilder = configBuilder.WithTesseractPath(tesseractPath)
	}

	if pdftoppmPath != "" {
		configBuilder = configBuilder.WithPdftoppmPath(pdftoppmPath)
	}

	if pageWorkers > 0 {
		configBuilder = configBuilder.WithPageWorkers(pageWorkers)
	}

	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func parseFlagURL(flag string, raw string) (url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, fmt.Errorf("%w: --%s: %s", config.ErrInvalidConfig, flag, err.Error())
	}
	return *parsed, nil
}

// newLogger builds the slog logger selected by --log-level and --log-format.
func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", logLevel)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(logFormat) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", logFormat)
	}
}

func ResetFlags() {
	cfgFile = ""
	envFile = ""
	logLevel = "warn"
	logFormat = "text"
	listingURL = ""
	baseURL = ""
	userAgent = ""
	listingTimeout = 0
	documentTimeout = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
	maxAttempt = 0
	maxPages = 0
	digitalThreshold = -1
	ocrDPI = 0
	ocrLanguage = ""
	tesseractPath = ""
	pdftoppmPath = ""
	pageWorkers = 0
	outputDir = ""
	jsonOutput = false
	documentURL = ""
	billQuery = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetEnvFileForTest(path string) {
	envFile = path
}

func SetListingURLForTest(raw string) {
	listingURL = raw
}

func SetBaseURLForTest(raw string) {
	baseURL = raw
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetMaxPagesForTest(pages int) {
	maxPages = pages
}

func SetDigitalThresholdForTest(chars int) {
	digitalThreshold = chars
}

func SetOCRDPIForTest(dpi int) {
	ocrDPI = dpi
}

func SetPageWorkersForTest(workers int) {
	pageWorkers = workers
}

func SetMaxAttemptForTest(attempts int) {
	maxAttempt = attempts
}

func SetTesseractPathForTest(path string) {
	tesseractPath = path
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}
