package storage

// WriteResult describes one text file written for a document.
type WriteResult struct {
	urlHash     string // file name without the .txt suffix
	path        string
	contentHash string
	sizeBytes   int
}

func NewWriteResult(
	urlHash string,
	path string,
	contentHash string,
	sizeBytes int,
) WriteResult {
	return WriteResult{
		urlHash:     urlHash,
		path:        path,
		contentHash: contentHash,
		sizeBytes:   sizeBytes,
	}
}

func (w *WriteResult) URLHash() string {
	return w.urlHash
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}

func (w *WriteResult) SizeBytes() int {
	return w.sizeBytes
}
