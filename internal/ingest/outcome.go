package ingest

import (
	"fmt"
	"time"

	"github.com/rohmanhakim/billtext/internal/extract"
)

// ErrorKind is the failure taxonomy of one extraction call.
type ErrorKind int

const (
	NetworkError ErrorKind = iota + 1
	InvalidContentType
	ParseError
	// PageOCRError is page-local. It shows up in a Report, never as an Outcome kind.
	PageOCRError
	NoTextFound
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkError:
		return "NetworkError"
	case InvalidContentType:
		return "InvalidContentType"
	case ParseError:
		return "ParseError"
	case PageOCRError:
		return "PageOCRError"
	case NoTextFound:
		return "NoTextFound"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Outcome is either a success carrying the aggregated text or a failure
// carrying its kind and a short human-readable detail. It is immutable.
type Outcome struct {
	success bool
	text    string
	kind    ErrorKind
	detail  string
	report  Report
}

func Success(text string, report Report) Outcome {
	return Outcome{success: true, text: text, report: report}
}

func Fail(kind ErrorKind, detail string) Outcome {
	return Outcome{kind: kind, detail: detail}
}

func (o Outcome) IsSuccess() bool {
	return o.success
}

func (o Outcome) Text() string {
	return o.text
}

// Kind is zero for a success.
func (o Outcome) Kind() ErrorKind {
	return o.kind
}

func (o Outcome) Detail() string {
	return o.detail
}

func (o Outcome) Report() Report {
	return o.report
}

// Message renders the outcome as one string: the text itself on success,
// or a line starting with "Error:" on failure.
func (o Outcome) Message() string {
	if o.success {
		return o.text
	}
	return "Error: " + o.detail
}

// Report describes how a successful extraction was produced.
type Report struct {
	totalPages int
	provenance []extract.Provenance
	digest     string
	duration   time.Duration
}

func (r Report) TotalPages() int {
	return r.totalPages
}

func (r Report) VisitedPages() int {
	return len(r.provenance)
}

// Provenance lists, per visited page in order, which phase produced its text.
func (r Report) Provenance() []extract.Provenance {
	out := make([]extract.Provenance, len(r.provenance))
	copy(out, r.provenance)
	return out
}

func (r Report) Count(p extract.Provenance) int {
	n := 0
	for _, got := range r.provenance {
		if got == p {
			n++
		}
	}
	return n
}

func (r Report) Digest() string {
	return r.digest
}

func (r Report) Duration() time.Duration {
	return r.duration
}
