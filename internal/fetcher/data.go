package fetcher

import (
	"net/url"
	"strings"
	"time"
)

// ContentPolicy describes what a caller is willing to receive:
// the Accept hint sent with the request and the check applied to
// the declared Content-Type of a 2xx response.
type ContentPolicy struct {
	name    string
	accept  string
	allowed []string
}

var (
	// HTMLContent accepts HTML pages only.
	HTMLContent = ContentPolicy{
		name:    "html",
		accept:  "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		allowed: []string{"text/html", "application/xhtml"},
	}

	// ListingContent asks for HTML but parses whatever a 2xx listing declares.
	ListingContent = ContentPolicy{
		name:   "listing",
		accept: "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	}

	// PDFContent accepts portable documents only.
	PDFContent = ContentPolicy{
		name:    "pdf",
		accept:  "application/pdf,*/*;q=0.5",
		allowed: []string{"application/pdf"},
	}
)

func (p ContentPolicy) Name() string {
	return p.name
}

func (p ContentPolicy) Accept() string {
	return p.accept
}

// Allows reports whether contentType contains one of the allowed media types.
// A policy without allowed types accepts anything.
func (p ContentPolicy) Allows(contentType string) bool {
	if len(p.allowed) == 0 {
		return true
	}
	contentType = strings.ToLower(contentType)
	for _, mediaType := range p.allowed {
		if strings.Contains(contentType, mediaType) {
			return true
		}
	}
	return false
}

// HTTP boundary

type FetchParam struct {
	fetchUrl  url.URL
	userAgent string
	timeout   time.Duration
	policy    ContentPolicy
}

func NewFetchParam(
	fetchUrl url.URL,
	userAgent string,
	timeout time.Duration,
	policy ContentPolicy,
) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
		timeout:   timeout,
		policy:    policy,
	}
}

func (p FetchParam) URL() url.URL {
	return p.fetchUrl
}

func (p FetchParam) Timeout() time.Duration {
	return p.timeout
}

func (p FetchParam) Policy() ContentPolicy {
	return p.policy
}

type FetchResult struct {
	url      url.URL
	body     []byte
	meta     ResponseMeta
	attempts int
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) ContentType() string {
	return f.meta.contentType
}

func (f *FetchResult) SizeByte() uint64 {
	return f.meta.transferredSizeByte
}

func (f *FetchResult) Attempts() int {
	return f.attempts
}

type ResponseMeta struct {
	statusCode          int
	contentType         string
	transferredSizeByte uint64
}

// NewFetchResultForTest builds a FetchResult for tests in other packages.
func NewFetchResultForTest(
	url url.URL,
	body []byte,
	statusCode int,
	contentType string,
) FetchResult {
	return FetchResult{
		url:  url,
		body: body,
		meta: ResponseMeta{
			statusCode:          statusCode,
			contentType:         contentType,
			transferredSizeByte: uint64(len(body)),
		},
		attempts: 1,
	}
}
