package storage

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/rohmanhakim/billtext/internal/metadata"
	"github.com/rohmanhakim/billtext/pkg/failure"
	"github.com/rohmanhakim/billtext/pkg/fileutil"
	"github.com/rohmanhakim/billtext/pkg/hashutil"
	"github.com/rohmanhakim/billtext/pkg/urlutil"
)

/*
Responsibilities
- Persist extracted document text
- Ensure deterministic filenames

Output Characteristics
- One file per document: <outputDir>/<first 12 hex of hash(canonical url)>.txt
- Idempotent, overwrite-safe reruns
*/

const urlHashLength = 12

type Sink interface {
	Write(
		outputDir string,
		documentUrl url.URL,
		text string,
		hashAlgo hashutil.HashAlgo,
	) (WriteResult, failure.ClassifiedError)
}

type TextSink struct {
	metadataSink metadata.MetadataSink
}

func NewTextSink(
	metadataSink metadata.MetadataSink,
) *TextSink {
	return &TextSink{
		metadataSink: metadataSink,
	}
}

func (s *TextSink) Write(
	outputDir string,
	documentUrl url.URL,
	text string,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(outputDir, documentUrl, text, hashAlgo)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"TextSink.Write",
			mapStorageErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, documentUrl.String()),
				metadata.NewAttr(metadata.AttrWritePath, err.Path),
			},
		)
		return WriteResult{}, err
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactText,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, documentUrl.String()),
			metadata.NewAttr(metadata.AttrDigest, writeResult.ContentHash()),
			metadata.NewAttr(metadata.AttrSizeBytes, strconv.Itoa(writeResult.SizeBytes())),
		},
	)
	return writeResult, nil
}

func write(
	outputDir string,
	documentUrl url.URL,
	text string,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, *StorageError) {
	canonicalUrl := urlutil.Canonicalize(documentUrl)

	urlHashFull, err := hashutil.HashBytes([]byte(canonicalUrl.String()), hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseHashComputationFailed,
		}
	}
	urlHash := urlHashFull[:urlHashLength]

	if err := fileutil.EnsureDir(outputDir); err != nil {
		return WriteResult{}, &StorageError{
			Message: err.Error(),
			Cause:   ErrCausePathError,
			Path:    outputDir,
		}
	}

	fullPath := filepath.Join(outputDir, urlHash+".txt")
	if err := os.WriteFile(fullPath, []byte(text), 0644); err != nil {
		cause := ErrCauseWriteFailure
		retryable := false
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      fullPath,
		}
	}

	contentHash, _ := hashutil.HashBytes([]byte(text), hashAlgo)
	return NewWriteResult(urlHash, fullPath, contentHash, len(text)), nil
}
