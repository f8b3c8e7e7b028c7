package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	DefaultListingURL = "https://www.parliament.go.ke/the-national-assembly/house-business/bills"
	DefaultBaseURL    = "https://www.parliament.go.ke"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	EnvTesseractPath = "BILLTEXT_TESSERACT_PATH"
	EnvPdftoppmPath  = "BILLTEXT_PDFTOPPM_PATH"
	EnvListingURL    = "BILLTEXT_LISTING_URL"
	EnvUserAgent     = "BILLTEXT_USER_AGENT"
)

type Config struct {
	//===============
	//  Source
	//===============
	// Page that lists the bills.
	listingURL url.URL
	// Origin against which relative document links are resolved.
	baseURL url.URL
	// Path fragments that mark a link as a document even without a .pdf suffix.
	documentPathSegments []string

	//===============
	// Fetch
	//===============
	listingTimeout  time.Duration
	documentTimeout time.Duration
	// User agent sent with every request. In raw string
	userAgent string

	//===============
	// Politeness
	//===============
	// Minimum waiting time between two requests to the same host. Zero disables it.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// Maximum attempts per request. 1 means no automatic retry.
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Caches
	//===============
	listingCacheTTL           time.Duration
	listingCacheMaxEntries    int
	extractionCacheTTL        time.Duration
	extractionCacheMaxEntries int

	//===============
	// Extraction
	//===============
	// Pages read per document when the caller does not say.
	maxPages int
	// A page's digital text must be longer than this many characters to skip OCR.
	digitalThreshold int
	ocrDPI           int
	ocrLanguage      string
	// Per page, per OCR invocation.
	ocrTimeout time.Duration
	// Empty means auto-detect from PATH.
	tesseractPath string
	pdftoppmPath  string
	// Pages extracted concurrently within one document.
	pageWorkers int

	//===============
	// Output
	//===============
	// Directory that receives extracted text files. Empty disables writing.
	outputDir string
}

type configDTO struct {
	ListingURL                string        `json:"listingUrl,omitempty"`
	BaseURL                   string        `json:"baseUrl,omitempty"`
	DocumentPathSegments      []string      `json:"documentPathSegments,omitempty"`
	ListingTimeout            time.Duration `json:"listingTimeout,omitempty"`
	DocumentTimeout           time.Duration `json:"documentTimeout,omitempty"`
	UserAgent                 string        `json:"userAgent,omitempty"`
	BaseDelay                 time.Duration `json:"baseDelay,omitempty"`
	Jitter                    time.Duration `json:"jitter,omitempty"`
	RandomSeed                int64         `json:"randomSeed,omitempty"`
	MaxAttempt                int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration    time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier         float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration        time.Duration `json:"backoffMaxDuration,omitempty"`
	ListingCacheTTL           time.Duration `json:"listingCacheTtl,omitempty"`
	ListingCacheMaxEntries    int           `json:"listingCacheMaxEntries,omitempty"`
	ExtractionCacheTTL        time.Duration `json:"extractionCacheTtl,omitempty"`
	ExtractionCacheMaxEntries int           `json:"extractionCacheMaxEntries,omitempty"`
	MaxPages                  int           `json:"maxPages,omitempty"`
	DigitalThreshold          *int          `json:"digitalThreshold,omitempty"`
	OCRDPI                    int           `json:"ocrDpi,omitempty"`
	OCRLanguage               string        `json:"ocrLanguage,omitempty"`
	OCRTimeout                time.Duration `json:"ocrTimeout,omitempty"`
	TesseractPath             string        `json:"tesseractPath,omitempty"`
	PdftoppmPath              string        `json:"pdftoppmPath,omitempty"`
	PageWorkers               int           `json:"pageWorkers,omitempty"`
	OutputDir                 string        `json:"outputDir,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg := WithDefault()

	if dto.ListingURL != "" {
		u, err := parseHTTPURL("listingUrl", dto.ListingURL)
		if err != nil {
			return Config{}, err
		}
		cfg.listingURL = u
		cfg.baseURL = url.URL{}
	}
	if dto.BaseURL != "" {
		u, err := parseHTTPURL("baseUrl", dto.BaseURL)
		if err != nil {
			return Config{}, err
		}
		cfg.baseURL = u
	}
	if len(dto.DocumentPathSegments) > 0 {
		cfg.documentPathSegments = dto.DocumentPathSegments
	}

	// For other fields, only override if non-zero value is provided
	if dto.ListingTimeout != 0 {
		cfg.listingTimeout = dto.ListingTimeout
	}
	if dto.DocumentTimeout != 0 {
		cfg.documentTimeout = dto.DocumentTimeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.BaseDelay != 0 {
		cfg.baseDelay = dto.BaseDelay
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.ListingCacheTTL != 0 {
		cfg.listingCacheTTL = dto.ListingCacheTTL
	}
	if dto.ListingCacheMaxEntries != 0 {
		cfg.listingCacheMaxEntries = dto.ListingCacheMaxEntries
	}
	if dto.ExtractionCacheTTL != 0 {
		cfg.extractionCacheTTL = dto.ExtractionCacheTTL
	}
	if dto.ExtractionCacheMaxEntries != 0 {
		cfg.extractionCacheMaxEntries = dto.ExtractionCacheMaxEntries
	}
	if dto.MaxPages != 0 {
		cfg.maxPages = dto.MaxPages
	}
	// zero is a meaningful threshold, so presence is what counts
	if dto.DigitalThreshold != nil {
		cfg.digitalThreshold = *dto.DigitalThreshold
	}
	if dto.OCRDPI != 0 {
		cfg.ocrDPI = dto.OCRDPI
	}
	if dto.OCRLanguage != "" {
		cfg.ocrLanguage = dto.OCRLanguage
	}
	if dto.OCRTimeout != 0 {
		cfg.ocrTimeout = dto.OCRTimeout
	}
	if dto.TesseractPath != "" {
		cfg.tesseractPath = dto.TesseractPath
	}
	if dto.PdftoppmPath != "" {
		cfg.pdftoppmPath = dto.PdftoppmPath
	}
	if dto.PageWorkers != 0 {
		cfg.pageWorkers = dto.PageWorkers
	}
	if dto.OutputDir != "" {
		cfg.outputDir = dto.OutputDir
	}

	return cfg.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config targeting the National Assembly bills listing.
func WithDefault() *Config {
	listingURL, _ := url.Parse(DefaultListingURL)
	baseURL, _ := url.Parse(DefaultBaseURL)

	defaultConfig := Config{
		listingURL:                *listingURL,
		baseURL:                   *baseURL,
		documentPathSegments:      []string{"sites/default/files"},
		listingTimeout:            15 * time.Second,
		documentTimeout:           30 * time.Second,
		userAgent:                 DefaultUserAgent,
		baseDelay:                 0,
		jitter:                    0,
		randomSeed:                time.Now().UnixNano(),
		maxAttempt:                1,
		backoffInitialDuration:    500 * time.Millisecond,
		backoffMultiplier:         2.0,
		backoffMaxDuration:        10 * time.Second,
		listingCacheTTL:           7 * 24 * time.Hour,
		listingCacheMaxEntries:    1,
		extractionCacheTTL:        180 * 24 * time.Hour,
		extractionCacheMaxEntries: 40,
		maxPages:                  50,
		digitalThreshold:          50,
		ocrDPI:                    300,
		ocrLanguage:               "eng",
		ocrTimeout:                2 * time.Minute,
		tesseractPath:             "",
		pdftoppmPath:              "",
		pageWorkers:               1,
		outputDir:                 "",
	}
	return &defaultConfig
}

// WithEnv applies BILLTEXT_* overrides found through lookup (usually os.LookupEnv).
// Empty values are ignored.
func (c *Config) WithEnv(lookup func(string) (string, bool)) *Config {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get(EnvTesseractPath); ok {
		c.tesseractPath = v
	}
	if v, ok := get(EnvPdftoppmPath); ok {
		c.pdftoppmPath = v
	}
	if v, ok := get(EnvUserAgent); ok {
		c.userAgent = v
	}
	if v, ok := get(EnvListingURL); ok {
		if u, err := url.Parse(v); err == nil {
			// a moved listing drags the base origin along with it
			c.listingURL = *u
			c.baseURL = url.URL{}
		}
	}
	return c
}

func (c *Config) WithListingURL(u url.URL) *Config {
	c.listingURL = u
	return c
}

func (c *Config) WithBaseURL(u url.URL) *Config {
	c.baseURL = u
	return c
}

func (c *Config) WithDocumentPathSegments(segments []string) *Config {
	c.documentPathSegments = segments
	return c
}

func (c *Config) WithListingTimeout(timeout time.Duration) *Config {
	c.listingTimeout = timeout
	return c
}

func (c *Config) WithDocumentTimeout(timeout time.Duration) *Config {
	c.documentTimeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithListingCache(ttl time.Duration, maxEntries int) *Config {
	c.listingCacheTTL = ttl
	c.listingCacheMaxEntries = maxEntries
	return c
}

func (c *Config) WithExtractionCache(ttl time.Duration, maxEntries int) *Config {
	c.extractionCacheTTL = ttl
	c.extractionCacheMaxEntries = maxEntries
	return c
}

func (c *Config) WithMaxPages(pages int) *Config {
	c.maxPages = pages
	return c
}

func (c *Config) WithDigitalThreshold(chars int) *Config {
	c.digitalThreshold = chars
	return c
}

func (c *Config) WithOCRDPI(dpi int) *Config {
	c.ocrDPI = dpi
	return c
}

func (c *Config) WithOCRLanguage(language string) *Config {
	c.ocrLanguage = language
	return c
}

func (c *Config) WithOCRTimeout(timeout time.Duration) *Config {
	c.ocrTimeout = timeout
	return c
}

func (c *Config) WithTesseractPath(path string) *Config {
	c.tesseractPath = path
	return c
}

func (c *Config) WithPdftoppmPath(path string) *Config {
	c.pdftoppmPath = path
	return c
}

func (c *Config) WithPageWorkers(workers int) *Config {
	c.pageWorkers = workers
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) Build() (Config, error) {
	if c.listingURL.Scheme != "http" && c.listingURL.Scheme != "https" {
		return Config{}, fmt.Errorf("%w: listing URL must be http(s), got %q", ErrInvalidConfig, c.listingURL.String())
	}
	// an unset base falls back to the listing's origin
	if c.baseURL.Host == "" {
		c.baseURL = url.URL{Scheme: c.listingURL.Scheme, Host: c.listingURL.Host}
	}
	if c.maxPages < 1 {
		return Config{}, fmt.Errorf("%w: maxPages must be positive, got %d", ErrInvalidConfig, c.maxPages)
	}
	if c.digitalThreshold < 0 {
		return Config{}, fmt.Errorf("%w: digitalThreshold cannot be negative", ErrInvalidConfig)
	}
	if c.ocrDPI < 1 {
		return Config{}, fmt.Errorf("%w: ocrDpi must be positive, got %d", ErrInvalidConfig, c.ocrDPI)
	}
	if c.pageWorkers < 1 {
		return Config{}, fmt.Errorf("%w: pageWorkers must be at least 1, got %d", ErrInvalidConfig, c.pageWorkers)
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1, got %d", ErrInvalidConfig, c.maxAttempt)
	}
	if c.listingCacheMaxEntries < 1 || c.extractionCacheMaxEntries < 1 {
		return Config{}, fmt.Errorf("%w: cache capacities must be at least 1", ErrInvalidConfig)
	}
	return *c, nil
}

func parseHTTPURL(field string, raw string) (url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return url.URL{}, fmt.Errorf("%w: %s must be http(s), got %q", ErrInvalidConfig, field, raw)
	}
	return *u, nil
}

func (c Config) ListingURL() url.URL {
	return c.listingURL
}

func (c Config) BaseURL() url.URL {
	return c.baseURL
}

func (c Config) DocumentPathSegments() []string {
	segments := make([]string, len(c.documentPathSegments))
	copy(segments, c.documentPathSegments)
	return segments
}

func (c Config) ListingTimeout() time.Duration {
	return c.listingTimeout
}

func (c Config) DocumentTimeout() time.Duration {
	return c.documentTimeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) ListingCacheTTL() time.Duration {
	return c.listingCacheTTL
}

func (c Config) ListingCacheMaxEntries() int {
	return c.listingCacheMaxEntries
}

func (c Config) ExtractionCacheTTL() time.Duration {
	return c.extractionCacheTTL
}

func (c Config) ExtractionCacheMaxEntries() int {
	return c.extractionCacheMaxEntries
}

func (c Config) MaxPages() int {
	return c.maxPages
}

func (c Config) DigitalThreshold() int {
	return c.digitalThreshold
}

func (c Config) OCRDPI() int {
	return c.ocrDPI
}

func (c Config) OCRLanguage() string {
	return c.ocrLanguage
}

func (c Config) OCRTimeout() time.Duration {
	return c.ocrTimeout
}

func (c Config) TesseractPath() string {
	return c.tesseractPath
}

func (c Config) PdftoppmPath() string {
	return c.pdftoppmPath
}

func (c Config) PageWorkers() int {
	return c.pageWorkers
}

func (c Config) OutputDir() string {
	return c.outputDir
}
