package ocr

import (
	"fmt"

	"github.com/rohmanhakim/billtext/pkg/failure"
)

type OCRErrorCause string

const (
	ErrCauseEmptyInput   OCRErrorCause = "empty input"
	ErrCauseEngineFailed OCRErrorCause = "engine failed"
	ErrCauseTimeout      OCRErrorCause = "timeout"
)

type OCRError struct {
	Message   string
	Retryable bool
	Cause     OCRErrorCause
}

func (e *OCRError) Error() string {
	return fmt.Sprintf("ocr error: %s: %s", e.Cause, e.Message)
}

func (e *OCRError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
