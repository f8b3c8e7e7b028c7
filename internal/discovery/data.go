package discovery

import (
	"encoding/json"
	"net/url"
	"time"
)

// Bill is one catalog entry: a display title and the absolute URL of its document.
type Bill struct {
	title string
	url   url.URL
}

func NewBill(title string, billUrl url.URL) Bill {
	return Bill{title: title, url: billUrl}
}

func (b Bill) Title() string {
	return b.title
}

func (b Bill) URL() url.URL {
	return b.url
}

func (b Bill) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}{
		Title: b.title,
		URL:   b.url.String(),
	})
}

// Param fixes where and how the listing is fetched and what a document link looks like.
type Param struct {
	listingUrl   url.URL
	baseUrl      url.URL
	userAgent    string
	timeout      time.Duration
	pathSegments []string
}

func NewParam(
	listingUrl url.URL,
	baseUrl url.URL,
	userAgent string,
	timeout time.Duration,
	pathSegments []string,
) Param {
	return Param{
		listingUrl:   listingUrl,
		baseUrl:      baseUrl,
		userAgent:    userAgent,
		timeout:      timeout,
		pathSegments: pathSegments,
	}
}

func (p Param) ListingURL() url.URL {
	return p.listingUrl
}

// parseStats counts links at each filter stage.
type parseStats struct {
	candidates int
	accepted   int
}
