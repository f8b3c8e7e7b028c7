package document

import (
	"fmt"

	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/pkg/failure"
)

type DocumentErrorCause string

const (
	ErrCauseNetwork            DocumentErrorCause = "network"
	ErrCauseInvalidContentType DocumentErrorCause = "invalid content type"
	ErrCauseParse              DocumentErrorCause = "parse"
)

type DocumentError struct {
	Message   string
	Retryable bool
	Cause     DocumentErrorCause
	// StatusCode is the HTTP status when the server answered.
	StatusCode int
	// ContentType is the declared type of a rejected payload.
	ContentType string
	Err         error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document error: %s: %s", e.Cause, e.Message)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func (e *DocumentError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapDocumentErrorToMetadataCause is observational only.
func mapDocumentErrorToMetadataCause(err *DocumentError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNetwork:
		return metadata.CauseNetworkFailure
	case ErrCauseInvalidContentType:
		return metadata.CauseContentInvalid
	case ErrCauseParse:
		return metadata.CauseParseFailure
	default:
		return metadata.CauseUnknown
	}
}
