package metadata

import (
	"log/slog"
	"time"
)

/*
Metadata is write-only.
No component may read metadata to influence pipeline decisions.

Allowed values:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Hashes, status codes, durations, page indexes
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		attempts int,
		sizeBytes uint64,
	)

	// RecordPage reports which extraction phase produced a page's text.
	RecordPage(
		documentUrl string,
		pageIndex int,
		provenance string,
		chars int,
		duration time.Duration,
	)

	RecordCacheLookup(cacheName string, key string, hit bool)

	RecordDiscovery(listingUrl string, candidates int, accepted int, bills int)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

// Recorder is the production sink. Every event becomes one structured slog record.
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	args := []any{
		slog.Time("observed_at", observedAt),
		slog.String("package", packageName),
		slog.String("action", action),
		slog.String("cause", cause.String()),
		slog.String("details", details),
	}
	r.logger.Error("pipeline error", append(args, attrArgs(attrs)...)...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	attempts int,
	sizeBytes uint64,
) {
	r.logger.Info("fetch",
		slog.String(string(AttrURL), fetchUrl),
		slog.Int(string(AttrHTTPStatus), httpStatus),
		slog.Int64("duration_ms", duration.Milliseconds()),
		slog.String("content_type", contentType),
		slog.Int("attempts", attempts),
		slog.Uint64("size_bytes", sizeBytes),
	)
}

func (r *Recorder) RecordPage(
	documentUrl string,
	pageIndex int,
	provenance string,
	chars int,
	duration time.Duration,
) {
	r.logger.Info("page extracted",
		slog.String(string(AttrURL), documentUrl),
		slog.Int(string(AttrPage), pageIndex+1),
		slog.String("provenance", provenance),
		slog.Int("chars", chars),
		slog.Int64("duration_ms", duration.Milliseconds()),
	)
}

func (r *Recorder) RecordCacheLookup(cacheName string, key string, hit bool) {
	r.logger.Debug("cache lookup",
		slog.String("cache", cacheName),
		slog.String("key", key),
		slog.Bool("hit", hit),
	)
}

func (r *Recorder) RecordDiscovery(listingUrl string, candidates int, accepted int, bills int) {
	r.logger.Info("discovery",
		slog.String(string(AttrURL), listingUrl),
		slog.Int("candidates", candidates),
		slog.Int("accepted", accepted),
		slog.Int("bills", bills),
	)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	args := []any{
		slog.String("kind", string(kind)),
		slog.String("path", path),
	}
	r.logger.Info("artifact written", append(args, attrArgs(attrs)...)...)
}

func attrArgs(attrs []Attribute) []any {
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, slog.String(string(a.Key), a.Value))
	}
	return args
}

// NoopSink implements MetadataSink and discards everything.
// Tests (or quiet callers) inject it instead of a Recorder.
type NoopSink struct{}

func (n *NoopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}

func (n *NoopSink) RecordFetch(string, int, time.Duration, string, int, uint64) {}

func (n *NoopSink) RecordPage(string, int, string, int, time.Duration) {}

func (n *NoopSink) RecordCacheLookup(string, string, bool) {}

func (n *NoopSink) RecordDiscovery(string, int, int, int) {}

func (n *NoopSink) RecordArtifact(ArtifactKind, string, []Attribute) {}
