package extract

import (
	"time"

	"github.com/rohmanhakim/billtext/internal/render"
	"github.com/rohmanhakim/billtext/pkg/failure"
)

// Page is what the extractor needs from an opened document page:
// its embedded text layer and a way to render it.
type Page interface {
	render.Source
	Text() (string, error)
}

type Provenance string

const (
	ProvenanceDigital       Provenance = "digital"
	ProvenanceOCR           Provenance = "ocr"
	ProvenanceUnextractable Provenance = "unextractable"
)

// PageResult is the outcome for one page. Text is trimmed and empty
// unless the provenance is digital or ocr.
type PageResult struct {
	index      int
	text       string
	provenance Provenance
	err        failure.ClassifiedError
	duration   time.Duration
}

func (r PageResult) Index() int {
	return r.index
}

func (r PageResult) Text() string {
	return r.text
}

func (r PageResult) Provenance() Provenance {
	return r.provenance
}

// Err is the page-local failure behind an unextractable page, if any.
func (r PageResult) Err() failure.ClassifiedError {
	return r.err
}

func (r PageResult) Duration() time.Duration {
	return r.duration
}

// NewPageResultForTest builds a PageResult for tests in other packages.
func NewPageResultForTest(index int, text string, provenance Provenance) PageResult {
	return PageResult{index: index, text: text, provenance: provenance}
}

type Param struct {
	digitalThreshold int
	dpi              int
	language         string
}

func NewParam(digitalThreshold int, dpi int, language string) Param {
	return Param{
		digitalThreshold: digitalThreshold,
		dpi:              dpi,
		language:         language,
	}
}

func DefaultParam() Param {
	return NewParam(50, 300, "eng")
}
