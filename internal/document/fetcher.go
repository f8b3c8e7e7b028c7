package document

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rohmanhakim/billtext/internal/fetcher"
	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/pkg/failure"
	"github.com/rohmanhakim/billtext/pkg/retry"
)

/*
Responsibilities

- Download a document with the PDF content policy
- Reject 2xx responses that declare anything other than a PDF
- Open the payload for page-wise access

A rejected content type never reaches the PDF reader.
*/

// Source is the document retrieval boundary used by the orchestrator.
type Source interface {
	Fetch(ctx context.Context, documentUrl url.URL) (Handle, failure.ClassifiedError)
}

type Param struct {
	userAgent string
	timeout   time.Duration
}

func NewParam(userAgent string, timeout time.Duration) Param {
	return Param{
		userAgent: userAgent,
		timeout:   timeout,
	}
}

type DocumentFetcher struct {
	metadataSink metadata.MetadataSink
	fetcher      fetcher.Fetcher
	param        Param
	retryParam   retry.RetryParam
}

func NewDocumentFetcher(
	metadataSink metadata.MetadataSink,
	pdfFetcher fetcher.Fetcher,
	param Param,
	retryParam retry.RetryParam,
) *DocumentFetcher {
	return &DocumentFetcher{
		metadataSink: metadataSink,
		fetcher:      pdfFetcher,
		param:        param,
		retryParam:   retryParam,
	}
}

func (f *DocumentFetcher) Fetch(ctx context.Context, documentUrl url.URL) (Handle, failure.ClassifiedError) {
	doc, err := f.fetch(ctx, documentUrl)
	if err != nil {
		f.metadataSink.RecordError(
			time.Now(),
			"document",
			"DocumentFetcher.Fetch",
			mapDocumentErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, documentUrl.String()),
			},
		)
		return nil, err
	}
	return doc, nil
}

func (f *DocumentFetcher) fetch(ctx context.Context, documentUrl url.URL) (*Document, *DocumentError) {
	fetchParam := fetcher.NewFetchParam(documentUrl, f.param.userAgent, f.param.timeout, fetcher.PDFContent)

	result, fetchErr := f.fetcher.Fetch(ctx, fetchParam, f.retryParam)
	if fetchErr != nil {
		return nil, fromFetchError(fetchErr)
	}

	doc, err := Open(documentUrl, result.Body())
	if err != nil {
		return nil, &DocumentError{
			Message:    fmt.Sprintf("payload is not a readable PDF: %v", err),
			Retryable:  false,
			Cause:      ErrCauseParse,
			StatusCode: result.Code(),
			Err:        err,
		}
	}
	return doc, nil
}

func fromFetchError(err failure.ClassifiedError) *DocumentError {
	docErr := &DocumentError{
		Message:   err.Error(),
		Retryable: err.Severity() == failure.SeverityRecoverable,
		Cause:     ErrCauseNetwork,
		Err:       err,
	}

	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) {
		docErr.StatusCode = fetchErr.StatusCode
		if fetchErr.IsContentRejection() {
			docErr.Cause = ErrCauseInvalidContentType
			docErr.ContentType = fetchErr.ContentType
			docErr.Retryable = false
		}
	}
	return docErr
}
