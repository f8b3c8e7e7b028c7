package document

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/rohmanhakim/billtext/internal/extract"
	"github.com/rohmanhakim/billtext/pkg/fileutil"
	"github.com/rohmanhakim/billtext/pkg/hashutil"
)

// Handle is an opened, page-addressable document.
type Handle interface {
	URL() url.URL
	NumPages() int
	// Page returns the page at zero-based index i.
	Page(i int) extract.Page
	Digest() string
	SizeBytes() int
	Close() error
}

// Document is a PDF held in memory. The payload is only written to disk
// when a page needs rendering, and Close removes that file again.
type Document struct {
	url    url.URL
	data   []byte
	reader *pdf.Reader
	pages  int
	digest string

	// the pdf reader is not safe for concurrent use
	readMu sync.Mutex

	fileOnce sync.Once
	filePath string
	fileErr  error
}

// Open parses data as a PDF. A malformed payload can make the reader panic,
// which is reported as an error.
func Open(sourceUrl url.URL, data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	return &Document{
		url:    sourceUrl,
		data:   data,
		reader: reader,
		pages:  reader.NumPage(),
		digest: hashutil.Fingerprint(data),
	}, nil
}

func (d *Document) URL() url.URL {
	return d.url
}

func (d *Document) NumPages() int {
	return d.pages
}

func (d *Document) Digest() string {
	return d.digest
}

func (d *Document) SizeBytes() int {
	return len(d.data)
}

func (d *Document) Page(i int) extract.Page {
	return &page{doc: d, index: i}
}

func (d *Document) Close() error {
	d.readMu.Lock()
	defer d.readMu.Unlock()
	if d.filePath == "" {
		return nil
	}
	err := os.Remove(d.filePath)
	d.filePath = ""
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (d *Document) path() (string, error) {
	d.fileOnce.Do(func() {
		path, err := fileutil.WriteTemp("billtext-*.pdf", d.data)
		if err != nil {
			d.fileErr = err
			return
		}
		d.readMu.Lock()
		d.filePath = path
		d.readMu.Unlock()
	})
	if d.fileErr != nil {
		return "", d.fileErr
	}

	d.readMu.Lock()
	defer d.readMu.Unlock()
	if d.filePath == "" {
		return "", fmt.Errorf("document %s is closed", d.url.String())
	}
	return d.filePath, nil
}

func (d *Document) pageText(index int) (text string, err error) {
	d.readMu.Lock()
	defer d.readMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("page %d: pdf reader panic: %v", index+1, r)
		}
	}()

	if index < 0 || index >= d.pages {
		return "", fmt.Errorf("page %d out of range (document has %d)", index+1, d.pages)
	}
	p := d.reader.Page(index + 1)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

type page struct {
	doc   *Document
	index int
}

func (p *page) Index() int {
	return p.index
}

func (p *page) Text() (string, error) {
	return p.doc.pageText(p.index)
}

func (p *page) DocumentPath() (string, error) {
	return p.doc.path()
}
