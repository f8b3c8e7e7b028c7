package cmd_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	cmd "github.com/rohmanhakim/billtext/internal/cli"
	"github.com/rohmanhakim/billtext/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestInitConfigNoFlags tests that InitConfigWithError returns the defaults when no flag is set
func TestInitConfigNoFlags(t *testing.T) {
	cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)

	defaultCfg, err := config.WithDefault().Build()
	require.NoError(t, err)

	gotListing := cfg.ListingURL()
	wantListing := defaultCfg.ListingURL()
	assert.Equal(t, wantListing.String(), gotListing.String())
	assert.Equal(t, defaultCfg.MaxPages(), cfg.MaxPages())
	assert.Equal(t, defaultCfg.DigitalThreshold(), cfg.DigitalThreshold())
	assert.Equal(t, defaultCfg.OCRDPI(), cfg.OCRDPI())
	assert.Equal(t, defaultCfg.PageWorkers(), cfg.PageWorkers())
	assert.Equal(t, defaultCfg.MaxAttempt(), cfg.MaxAttempt())
	assert.Empty(t, cfg.OutputDir())
}

func TestInitConfigWithListingURL(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetListingURLForTest("http://127.0.0.1:8080/bills")

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)

	listing := cfg.ListingURL()
	base := cfg.BaseURL()
	assert.Equal(t, "http://127.0.0.1:8080/bills", listing.String())
	assert.Equal(t, "http://127.0.0.1:8080", base.String(), "base follows the listing origin")
}

func TestInitConfigWithBaseURL(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetListingURLForTest("https://example.org/bills")
	cmd.SetBaseURLForTest("https://files.example.org")

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)

	base := cfg.BaseURL()
	assert.Equal(t, "https://files.example.org", base.String())
}

func TestInitConfigWithInvalidListingURL(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetListingURLForTest("ftp://example.org/bills")

	_, err := cmd.InitConfigWithError()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInitConfigWithExtractionFlags(t *testing.T) {
	tests := []struct {
		name   string
		apply  func()
		assert func(t *testing.T, cfg config.Config)
	}{
		{
			name:  "max pages",
			apply: func() { cmd.SetMaxPagesForTest(10) },
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 10, cfg.MaxPages())
			},
		},
		{
			name:  "zero digital threshold is honoured",
			apply: func() { cmd.SetDigitalThresholdForTest(0) },
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 0, cfg.DigitalThreshold())
			},
		},
		{
			name:  "ocr dpi",
			apply: func() { cmd.SetOCRDPIForTest(200) },
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 200, cfg.OCRDPI())
			},
		},
		{
			name:  "page workers",
			apply: func() { cmd.SetPageWorkersForTest(4) },
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 4, cfg.PageWorkers())
			},
		},
		{
			name:  "max attempt",
			apply: func() { cmd.SetMaxAttemptForTest(3) },
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 3, cfg.MaxAttempt())
			},
		},
		{
			name:  "user agent",
			apply: func() { cmd.SetUserAgentForTest("billtext-test/1.0") },
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "billtext-test/1.0", cfg.UserAgent())
			},
		},
		{
			name:  "output dir",
			apply: func() { cmd.SetOutputDirForTest("out") },
			assert: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "out", cfg.OutputDir())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd.ResetFlags()
			tt.apply()

			cfg, err := cmd.InitConfigWithError()
			require.NoError(t, err)
			tt.assert(t, cfg)
		})
	}
}

func TestInitConfigWithConfigFile(t *testing.T) {
	cmd.ResetFlags()
	path := writeFile(t, "config.json", `{
		"listingUrl": "https://example.org/bills",
		"maxPages": 20,
		"documentTimeout": 60000000000
	}`)
	cmd.SetConfigFileForTest(path)
	cmd.SetMaxPagesForTest(5)

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)

	listing := cfg.ListingURL()
	assert.Equal(t, "https://example.org/bills", listing.String())
	assert.Equal(t, 60*time.Second, cfg.DocumentTimeout())
	assert.Equal(t, 5, cfg.MaxPages(), "flags override the file")
}

func TestInitConfigWithNonExistentFile(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetConfigFileForTest(filepath.Join(t.TempDir(), "missing.json"))

	_, err := cmd.InitConfigWithError()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrFileDoesNotExist)
}

func TestInitConfigWithInvalidConfigFile(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetConfigFileForTest(writeFile(t, "config.json", `{"maxPages": `))

	_, err := cmd.InitConfigWithError()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigParsingFail)
}

func TestInitConfigWithEnvFile(t *testing.T) {
	cmd.ResetFlags()
	tesseract := writeFile(t, "tesseract", "#!/bin/sh\n")
	envPath := writeFile(t, ".env", config.EnvTesseractPath+"="+tesseract+"\n")
	t.Cleanup(func() { os.Unsetenv(config.EnvTesseractPath) })
	cmd.SetEnvFileForTest(envPath)

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)
	assert.Equal(t, tesseract, cfg.TesseractPath())
}

func TestInitConfigWithMissingDefaultEnvFile(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetEnvFileForTest(".env")

	_, err := cmd.InitConfigWithError()
	require.NoError(t, err)
}

func TestInitConfigWithEnvFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		envFile func(t *testing.T) string
	}{
		{
			name: "explicit file does not exist",
			envFile: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "billtext.env")
			},
		},
		{
			name: "malformed file",
			envFile: func(t *testing.T) string {
				return writeFile(t, "billtext.env", "{not: dotenv}\n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd.ResetFlags()
			path := tt.envFile(t)
			cmd.SetEnvFileForTest(path)

			_, err := cmd.InitConfigWithError()
			require.Error(t, err)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestInitConfigFlagOverridesEnv(t *testing.T) {
	cmd.ResetFlags()
	t.Setenv(config.EnvTesseractPath, "/from/env/tesseract")
	cmd.SetTesseractPathForTest("/from/flag/tesseract")

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)
	assert.Equal(t, "/from/flag/tesseract", cfg.TesseractPath())
}

func TestResetFlags(t *testing.T) {
	cmd.SetMaxPagesForTest(7)
	cmd.SetListingURLForTest("https://example.org/bills")
	cmd.SetDigitalThresholdForTest(0)

	cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)
	listing := cfg.ListingURL()
	assert.Equal(t, config.DefaultListingURL, listing.String())
	assert.Equal(t, 50, cfg.MaxPages())
	assert.Equal(t, 50, cfg.DigitalThreshold())
}
