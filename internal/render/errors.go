package render

import (
	"fmt"

	"github.com/rohmanhakim/billtext/pkg/failure"
)

type RenderErrorCause string

const (
	ErrCauseSourceUnavailable RenderErrorCause = "source unavailable"
	ErrCauseRasterizerFailed  RenderErrorCause = "rasterizer failed"
	ErrCauseEmptyImage        RenderErrorCause = "empty image"
)

type RenderError struct {
	Message   string
	Retryable bool
	Cause     RenderErrorCause
	Page      int
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error: page %d: %s: %s", e.Page+1, e.Cause, e.Message)
}

func (e *RenderError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
