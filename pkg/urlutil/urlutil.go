package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Resolve turns href into an absolute URL against base. Relative, root-relative
// and protocol-relative references are supported; absolute references are
// returned unchanged (apart from parsing).
func Resolve(base url.URL, href string) (url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return url.URL{}, fmt.Errorf("parse href %q: %w", href, err)
	}
	resolved := base.ResolveReference(ref)
	return *resolved, nil
}

// Origin returns scheme://host of u with no path.
func Origin(u url.URL) url.URL {
	return url.URL{Scheme: u.Scheme, Host: u.Host}
}

// Canonicalize maps equivalent spellings of a document URL onto one key:
//   - scheme and host are lowercased
//   - default ports are dropped (:80 for http, :443 for https)
//   - the fragment is removed
//
// Path and query are kept as-is because they identify the document.
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = strings.ToLower(canonical.Scheme)
	canonical.Host = strings.ToLower(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""

	return canonical
}

// IsHTTP reports whether u uses http or https.
func IsHTTP(u url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}
