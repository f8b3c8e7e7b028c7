package extract

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/internal/ocr"
	"github.com/rohmanhakim/billtext/internal/render"
	"github.com/rohmanhakim/billtext/pkg/failure"
)

/*
Per-page policy, evaluated in order:

 1. Digital: read the page's embedded text layer. Accept it when the trimmed
    text is longer than the threshold (strictly greater).
 2. OCR: otherwise render the page and run the OCR engine. Accept any
    non-blank text.

A page that passes neither phase is unextractable. That is recorded and
returned, never raised: the document loop simply moves on.
*/

type Rasterizer interface {
	Rasterize(ctx context.Context, src render.Source, dpi int) (render.Image, failure.ClassifiedError)
}

type PageExtractor struct {
	metadataSink metadata.MetadataSink
	rasterizer   Rasterizer
	engine       ocr.Engine
	param        Param
}

func NewPageExtractor(
	metadataSink metadata.MetadataSink,
	rasterizer Rasterizer,
	engine ocr.Engine,
	param Param,
) *PageExtractor {
	return &PageExtractor{
		metadataSink: metadataSink,
		rasterizer:   rasterizer,
		engine:       engine,
		param:        param,
	}
}

func (e *PageExtractor) ExtractPage(ctx context.Context, page Page) PageResult {
	start := time.Now()
	index := page.Index()

	if text, ok := e.digital(page); ok {
		return PageResult{
			index:      index,
			text:       text,
			provenance: ProvenanceDigital,
			duration:   time.Since(start),
		}
	}

	text, err := e.recognize(ctx, page)
	if err != nil {
		e.recordPageError(index, err)
		return PageResult{
			index:      index,
			provenance: ProvenanceUnextractable,
			err:        err,
			duration:   time.Since(start),
		}
	}

	return PageResult{
		index:      index,
		text:       text,
		provenance: ProvenanceOCR,
		duration:   time.Since(start),
	}
}

// digital returns the trimmed text layer and whether it clears the threshold.
// A page whose text layer cannot be read is treated as having none.
func (e *PageExtractor) digital(page Page) (string, bool) {
	raw, err := page.Text()
	if err != nil {
		return "", false
	}
	text := strings.TrimSpace(raw)
	return text, utf8.RuneCountInString(text) > e.param.digitalThreshold
}

func (e *PageExtractor) recognize(ctx context.Context, page Page) (string, *PageError) {
	index := page.Index()

	image, renderErr := e.rasterizer.Rasterize(ctx, page, e.param.dpi)
	if renderErr != nil {
		return "", &PageError{
			Message: renderErr.Error(),
			Cause:   ErrCauseRenderFailed,
			Page:    index,
			Err:     renderErr,
		}
	}

	result, ocrErr := e.engine.Recognize(ctx, ocr.Input{
		Image:    image.Data,
		Format:   image.Format,
		DPI:      image.DPI,
		Language: e.param.language,
	})
	if ocrErr != nil {
		return "", &PageError{
			Message: ocrErr.Error(),
			Cause:   ErrCauseOCRFailed,
			Page:    index,
			Err:     ocrErr,
		}
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", &PageError{
			Message: fmt.Sprintf("%s produced only whitespace", e.engine.Name()),
			Cause:   ErrCauseOCREmpty,
			Page:    index,
		}
	}
	return text, nil
}

func (e *PageExtractor) recordPageError(index int, err *PageError) {
	e.metadataSink.RecordError(
		time.Now(),
		"extract",
		"PageExtractor.ExtractPage",
		mapPageErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrPage, fmt.Sprintf("%d", index+1)),
			metadata.NewAttr(metadata.AttrEngine, e.engine.Name()),
		},
	)
}
