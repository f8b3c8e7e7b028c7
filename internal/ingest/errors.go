package ingest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rohmanhakim/billtext/internal/document"
	"github.com/rohmanhakim/billtext/pkg/failure"
)

const noTextDetail = "Downloaded PDF, but neither digital extraction nor OCR found text."

// failureFromDocument turns a retrieval failure into an Outcome
// whose detail names the HTTP status or the rejected content type.
func failureFromDocument(err failure.ClassifiedError) Outcome {
	var docErr *document.DocumentError
	if !errors.As(err, &docErr) {
		return Fail(NetworkError, fmt.Sprintf("Could not download document: %v", err))
	}

	switch docErr.Cause {
	case document.ErrCauseInvalidContentType:
		return Fail(InvalidContentType, fmt.Sprintf("Content received was not PDF (%s).", docErr.ContentType))
	case document.ErrCauseParse:
		return Fail(ParseError, fmt.Sprintf("Downloaded file could not be opened as a PDF: %v", docErr.Err))
	default:
		if docErr.StatusCode != 0 {
			return Fail(NetworkError, fmt.Sprintf("HTTP %d %s during download.",
				docErr.StatusCode, http.StatusText(docErr.StatusCode)))
		}
		return Fail(NetworkError, fmt.Sprintf("Could not download document: %v", docErr.Err))
	}
}
