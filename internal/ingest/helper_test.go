package ingest_test

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rohmanhakim/billtext/internal/document"
	"github.com/rohmanhakim/billtext/internal/extract"
	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/pkg/failure"
	"github.com/stretchr/testify/mock"
)

// sourceMock is a testify mock for document.Source
type sourceMock struct {
	mock.Mock
}

func (s *sourceMock) Fetch(ctx context.Context, documentUrl url.URL) (document.Handle, failure.ClassifiedError) {
	args := s.Called(documentUrl.String())
	var handle document.Handle
	if args.Get(0) != nil {
		handle = args.Get(0).(document.Handle)
	}
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return handle, err
}

// fakeHandle is an opened document with a fixed page count
type fakeHandle struct {
	url    url.URL
	pages  int
	closed atomic.Bool
}

func newFakeHandle(rawUrl string, pages int) *fakeHandle {
	u, _ := url.Parse(rawUrl)
	return &fakeHandle{url: *u, pages: pages}
}

func (h *fakeHandle) URL() url.URL { return h.url }

func (h *fakeHandle) NumPages() int { return h.pages }

func (h *fakeHandle) Page(i int) extract.Page { return fakePage{index: i} }

func (h *fakeHandle) Digest() string { return "digest" }

func (h *fakeHandle) SizeBytes() int { return 0 }

func (h *fakeHandle) Close() error {
	h.closed.Store(true)
	return nil
}

type fakePage struct {
	index int
}

func (p fakePage) Index() int { return p.index }

func (p fakePage) DocumentPath() (string, error) { return "/tmp/fake.pdf", nil }

func (p fakePage) Text() (string, error) { return "", nil }

// scriptedExtractor returns a fixed result per page index and counts calls
type scriptedExtractor struct {
	mu      sync.Mutex
	results map[int]extract.PageResult
	visited []int
	delay   func(index int) time.Duration
}

func (s *scriptedExtractor) ExtractPage(ctx context.Context, page extract.Page) extract.PageResult {
	index := page.Index()
	if s.delay != nil {
		time.Sleep(s.delay(index))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visited = append(s.visited, index)
	if r, ok := s.results[index]; ok {
		return r
	}
	return extract.NewPageResultForTest(index, "", extract.ProvenanceUnextractable)
}

func (s *scriptedExtractor) visitedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visited)
}

// pageSink counts page events; it is shared by concurrent workers
type pageSink struct {
	metadata.NoopSink
	mu    sync.Mutex
	pages int
}

func (s *pageSink) RecordPage(documentUrl string, pageIndex int, provenance string, chars int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages++
}
