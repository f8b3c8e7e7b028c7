package extract

import (
	"fmt"

	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/pkg/failure"
)

type PageErrorCause string

const (
	ErrCauseRenderFailed PageErrorCause = "render failed"
	ErrCauseOCRFailed    PageErrorCause = "ocr failed"
	ErrCauseOCREmpty     PageErrorCause = "ocr returned no text"
)

// PageError is always page-local. It never aborts a document.
type PageError struct {
	Message string
	Cause   PageErrorCause
	Page    int
	Err     error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page error: page %d: %s: %s", e.Page+1, e.Cause, e.Message)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

func (e *PageError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapPageErrorToMetadataCause is observational only.
func mapPageErrorToMetadataCause(err *PageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseRenderFailed, ErrCauseOCRFailed:
		return metadata.CauseOCRFailure
	case ErrCauseOCREmpty:
		return metadata.CauseNoText
	default:
		return metadata.CauseUnknown
	}
}
