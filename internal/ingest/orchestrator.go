package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rohmanhakim/billtext/internal/cache"
	"github.com/rohmanhakim/billtext/internal/document"
	"github.com/rohmanhakim/billtext/internal/extract"
	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/pkg/urlutil"
	"golang.org/x/sync/errgroup"
)

/*
Responsibilities

- Serve repeated (url, maxPages) requests from the extraction cache
- Fetch and open the document, failing fast on retrieval errors
- Run at most maxPages pages through the page extractor
- Join the page texts in page order

Only successes are cached. Retrieval failures and NoTextFound are returned
to the caller and computed again on the next call.

With more than one page worker the pages run through a bounded errgroup.
Results land in a slice indexed by page, so completion order never leaks
into the text, and the cache write waits for every page to settle.
*/

const DefaultMaxPages = 50

type PageExtractor interface {
	ExtractPage(ctx context.Context, page extract.Page) extract.PageResult
}

type Param struct {
	defaultMaxPages int
	pageWorkers     int
}

func NewParam(defaultMaxPages int, pageWorkers int) Param {
	if defaultMaxPages <= 0 {
		defaultMaxPages = DefaultMaxPages
	}
	if pageWorkers < 1 {
		pageWorkers = 1
	}
	return Param{
		defaultMaxPages: defaultMaxPages,
		pageWorkers:     pageWorkers,
	}
}

type Orchestrator struct {
	metadataSink metadata.MetadataSink
	source       document.Source
	extractor    PageExtractor
	cache        cache.Cache[string, Outcome]
	param        Param
}

func NewOrchestrator(
	metadataSink metadata.MetadataSink,
	source document.Source,
	extractor PageExtractor,
	extractionCache cache.Cache[string, Outcome],
	param Param,
) *Orchestrator {
	return &Orchestrator{
		metadataSink: metadataSink,
		source:       source,
		extractor:    extractor,
		cache:        extractionCache,
		param:        param,
	}
}

// ExtractDocument returns the text of the document at documentUrl, reading
// at most maxPages pages. maxPages <= 0 selects the configured default.
func (o *Orchestrator) ExtractDocument(ctx context.Context, documentUrl url.URL, maxPages int) Outcome {
	if maxPages <= 0 {
		maxPages = o.param.defaultMaxPages
	}

	key := cacheKey(documentUrl, maxPages)
	if cached, ok := o.cache.Get(key); ok {
		o.metadataSink.RecordCacheLookup("extraction", key, true)
		return cached
	}
	o.metadataSink.RecordCacheLookup("extraction", key, false)

	start := time.Now()

	handle, err := o.source.Fetch(ctx, documentUrl)
	if err != nil {
		return failureFromDocument(err)
	}
	defer handle.Close()

	pagesToRead := min(handle.NumPages(), maxPages)
	results := o.extractPages(ctx, handle, pagesToRead)

	var sb strings.Builder
	provenance := make([]extract.Provenance, 0, len(results))
	for _, result := range results {
		provenance = append(provenance, result.Provenance())
		text := strings.TrimSpace(result.Text())
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		o.metadataSink.RecordError(
			time.Now(),
			"ingest",
			"Orchestrator.ExtractDocument",
			metadata.CauseNoText,
			fmt.Sprintf("no text in %d of %d pages", pagesToRead, handle.NumPages()),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, documentUrl.String()),
				metadata.NewAttr(metadata.AttrDigest, handle.Digest()),
			},
		)
		return Fail(NoTextFound, noTextDetail)
	}

	outcome := Success(sb.String(), Report{
		totalPages: handle.NumPages(),
		provenance: provenance,
		digest:     handle.Digest(),
		duration:   time.Since(start),
	})
	o.cache.Put(key, outcome)
	return outcome
}

func (o *Orchestrator) extractPages(ctx context.Context, handle document.Handle, pagesToRead int) []extract.PageResult {
	results := make([]extract.PageResult, pagesToRead)
	docUrl := handle.URL()

	extractOne := func(i int) {
		result := o.extractor.ExtractPage(ctx, handle.Page(i))
		results[i] = result
		o.metadataSink.RecordPage(
			docUrl.String(),
			i,
			string(result.Provenance()),
			utf8.RuneCountInString(result.Text()),
			result.Duration(),
		)
	}

	if o.param.pageWorkers <= 1 || pagesToRead <= 1 {
		for i := 0; i < pagesToRead; i++ {
			extractOne(i)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(o.param.pageWorkers)
	for i := 0; i < pagesToRead; i++ {
		i := i
		g.Go(func() error {
			extractOne(i)
			return nil
		})
	}
	// page failures are absorbed into results, so Wait never reports one
	_ = g.Wait()
	return results
}

func cacheKey(documentUrl url.URL, maxPages int) string {
	canonical := urlutil.Canonicalize(documentUrl)
	return fmt.Sprintf("%s|%d", canonical.String(), maxPages)
}
