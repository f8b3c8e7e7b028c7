package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rohmanhakim/billtext/internal/extract"
	"github.com/rohmanhakim/billtext/internal/ingest"
	"github.com/rohmanhakim/billtext/pkg/hashutil"
	"github.com/spf13/cobra"
)

// ErrExtractionFailed is returned after a failed Outcome has been printed.
var ErrExtractionFailed = errors.New("extraction failed")

var (
	documentURL string
	billQuery   string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the text of one bill PDF.",
	Long: `extract downloads one bill PDF and prints its text.

The document is chosen with --url, or with --bill which runs discovery and
picks the first bill whose title contains the given text (case-insensitive).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (documentURL == "") == (billQuery == "") {
			return errors.New("exactly one of --url or --bill is required")
		}

		a, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		target, err := a.resolveTarget(ctx)
		if err != nil {
			return err
		}

		outcome := a.orchestrator.ExtractDocument(ctx, target, a.cfg.MaxPages())
		if !outcome.IsSuccess() {
			fmt.Fprintln(cmd.ErrOrStderr(), outcome.Message())
			return ErrExtractionFailed
		}

		if a.cfg.OutputDir() != "" {
			writeResult, writeErr := a.textSink.Write(a.cfg.OutputDir(), target, outcome.Text(), hashutil.HashAlgoBLAKE3)
			if writeErr != nil {
				return writeErr
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", writeResult.Path())
		}

		fmt.Fprintln(cmd.ErrOrStderr(), summarize(outcome.Report()))
		fmt.Fprint(cmd.OutOrStdout(), outcome.Text())
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&documentURL, "url", "", "URL of the bill PDF")
	extractCmd.Flags().StringVar(&billQuery, "bill", "", "title substring of a discovered bill")
	extractCmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum number of pages to read (default 50)")
	extractCmd.Flags().StringVar(&outputDir, "output-dir", "", "also write the text to <output-dir>/<url hash>.txt")
	rootCmd.AddCommand(extractCmd)
}

func (a *app) resolveTarget(ctx context.Context) (url.URL, error) {
	if documentURL != "" {
		parsed, err := url.Parse(documentURL)
		if err != nil {
			return url.URL{}, fmt.Errorf("invalid --url: %w", err)
		}
		return *parsed, nil
	}

	bills, err := a.discovery.Catalog(ctx)
	if err != nil {
		return url.URL{}, fmt.Errorf("cannot look up %q: %w", billQuery, err)
	}
	needle := strings.ToLower(billQuery)
	for _, bill := range bills {
		if strings.Contains(strings.ToLower(bill.Title()), needle) {
			return bill.URL(), nil
		}
	}
	return url.URL{}, fmt.Errorf("no bill title contains %q", billQuery)
}

func summarize(report ingest.Report) string {
	return fmt.Sprintf(
		"pages %d/%d: digital %d, ocr %d, unextractable %d",
		report.VisitedPages(),
		report.TotalPages(),
		report.Count(extract.ProvenanceDigital),
		report.Count(extract.ProvenanceOCR),
		report.Count(extract.ProvenanceUnextractable),
	)
}
