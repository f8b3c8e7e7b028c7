package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/pkg/failure"
	"github.com/rohmanhakim/billtext/pkg/limiter"
	"github.com/rohmanhakim/billtext/pkg/retry"
	"github.com/rohmanhakim/billtext/pkg/timeutil"
)

/*
Responsibilities

- Perform HTTP GET requests with a per-request timeout
- Apply the user agent and the Accept hint of the content policy
- Classify responses (status code, declared content type)
- Keep requests to one host polite when a rate limiter is configured

The fetcher never parses content; it only returns bytes and metadata.
A response rejected by the content policy is never read past its headers.
*/

type HttpFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	rateLimiter  limiter.RateLimiter
}

func NewHttpFetcher(
	metadataSink metadata.MetadataSink,
	rateLimiter limiter.RateLimiter,
) *HttpFetcher {
	return &HttpFetcher{
		metadataSink: metadataSink,
		httpClient:   &http.Client{},
		rateLimiter:  rateLimiter,
	}
}

// WithHTTPClient swaps the underlying client (tests, custom transports).
func (h *HttpFetcher) WithHTTPClient(client *http.Client) *HttpFetcher {
	h.httpClient = client
	return h
}

func (h *HttpFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HttpFetcher.Fetch"
	startTime := time.Now()

	outcome := retry.Retry(ctx, retryParam, func() (FetchResult, failure.ClassifiedError) {
		return h.politeFetch(ctx, fetchParam)
	})

	duration := time.Since(startTime)

	var statusCode int
	var contentType string
	var sizeBytes uint64

	if outcome.IsFailure() {
		var fetchErr *FetchError
		if errors.As(outcome.Err(), &fetchErr) {
			statusCode = fetchErr.StatusCode
			contentType = fetchErr.ContentType
		}
	} else {
		result := outcome.Value()
		statusCode = result.Code()
		contentType = result.ContentType()
		sizeBytes = result.SizeByte()
	}

	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		contentType,
		outcome.Attempts(),
		sizeBytes,
	)

	if outcome.IsFailure() {
		h.recordError(callerMethod, fetchParam.fetchUrl, outcome.Err())
		return FetchResult{}, outcome.Err()
	}

	result := outcome.Value()
	result.attempts = outcome.Attempts()
	return result, nil
}

func (h *HttpFetcher) recordError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	cause := metadata.CauseUnknown
	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
		metadata.NewAttr(metadata.AttrHost, fetchUrl.Host),
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		cause = mapFetchErrorToMetadataCause(fetchErr)
		if fetchErr.StatusCode != 0 {
			attrs = append(attrs, metadata.NewAttr(metadata.AttrHTTPStatus, fmt.Sprintf("%d", fetchErr.StatusCode)))
		}
	}

	var retryErr *retry.RetryError
	if errors.As(err, &retryErr) {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrMessage, retryErr.Error()))
	}

	h.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		cause,
		err.Error(),
		attrs,
	)
}

// politeFetch waits out the host's politeness delay, performs one request and
// feeds the response class back into the limiter.
func (h *HttpFetcher) politeFetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError) {
	host := fetchParam.fetchUrl.Hostname()

	if h.rateLimiter != nil {
		if err := timeutil.SleepContext(ctx, h.rateLimiter.ResolveDelay(host)); err != nil {
			return FetchResult{}, &FetchError{
				Message:   fmt.Sprintf("cancelled while waiting for %s: %v", host, err),
				Retryable: false,
				Cause:     ErrCauseNetworkFailure,
			}
		}
		h.rateLimiter.MarkLastFetchAsNow(host)
	}

	result, err := h.performFetch(ctx, fetchParam)

	if h.rateLimiter != nil {
		var fetchErr *FetchError
		switch {
		case err == nil:
			h.rateLimiter.ResetBackoff(host)
		case errors.As(err, &fetchErr) &&
			(fetchErr.Cause == ErrCauseRequestTooMany || fetchErr.Cause == ErrCauseRequest5xx):
			h.rateLimiter.Backoff(host)
		}
	}

	return result, err
}

func (h *HttpFetcher) performFetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError) {
	if fetchParam.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, fetchParam.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchParam.fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	for key, value := range requestHeaders(fetchParam.userAgent, fetchParam.policy) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return FetchResult{}, &FetchError{
				Message:   fmt.Sprintf("request timed out after %s", fetchParam.timeout),
				Retryable: true,
				Cause:     ErrCauseTimeout,
			}
		}
		// Network/transport errors are retryable
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	if fetchErr := classifyStatus(resp.StatusCode); fetchErr != nil {
		return FetchResult{}, fetchErr
	}

	contentType := resp.Header.Get("Content-Type")
	if !fetchParam.policy.Allows(contentType) {
		return FetchResult{}, &FetchError{
			Message:     fmt.Sprintf("expected %s content, got %q", fetchParam.policy.name, contentType),
			Retryable:   false,
			Cause:       ErrCauseContentTypeInvalid,
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return FetchResult{}, &FetchError{
				Message:    fmt.Sprintf("body read timed out after %s", fetchParam.timeout),
				Retryable:  true,
				Cause:      ErrCauseTimeout,
				StatusCode: resp.StatusCode,
			}
		}
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Retryable:  true,
			Cause:      ErrCauseReadResponseBodyError,
			StatusCode: resp.StatusCode,
		}
	}

	return FetchResult{
		url:  fetchParam.fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			contentType:         contentType,
			transferredSizeByte: uint64(len(body)),
		},
	}, nil
}

// classifyStatus returns nil for 2xx.
func classifyStatus(statusCode int) *FetchError {
	switch {
	case statusCode >= 500:
		return &FetchError{
			Message:    fmt.Sprintf("server error: %d", statusCode),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusTooManyRequests:
		return &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusForbidden:
		return &FetchError{
			Message:    "access forbidden (403)",
			Retryable:  false,
			Cause:      ErrCauseRequestPageForbidden,
			StatusCode: statusCode,
		}

	case statusCode >= 400:
		return &FetchError{
			Message:    fmt.Sprintf("client error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequest4xx,
			StatusCode: statusCode,
		}

	case statusCode >= 300:
		// http.Client follows redirects; landing here means the chain was cut
		return &FetchError{
			Message:    fmt.Sprintf("redirect error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: statusCode,
		}

	case statusCode < 200:
		return &FetchError{
			Message:    fmt.Sprintf("unexpected status: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseNetworkFailure,
			StatusCode: statusCode,
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func requestHeaders(userAgent string, policy ContentPolicy) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          policy.accept,
		"Accept-Language": "en-US,en;q=0.5",
		"DNT":             "1",
		"Connection":      "keep-alive",
	}
}
