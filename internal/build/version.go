package build

import "strings"

// Stamped with -ldflags "-X github.com/rohmanhakim/billtext/internal/build.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

const product = "billtext"

// FullVersion returns "Version+Commit", e.g. "1.0.0+abc123".
func FullVersion() string {
	return Version + "+" + Commit
}

// ProductToken is the "billtext/<version>" token appended to outgoing user agents.
func ProductToken() string {
	if Version == "" {
		return product
	}
	return product + "/" + Version
}

// UserAgent appends the product token to base unless it is already there.
func UserAgent(base string) string {
	base = strings.TrimSpace(base)
	token := ProductToken()
	switch {
	case base == "":
		return token
	case strings.Contains(base, product+"/") || strings.HasSuffix(base, " "+product):
		return base
	default:
		return base + " " + token
	}
}
