package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/billtext/pkg/execrun"
	"github.com/rohmanhakim/billtext/pkg/failure"
)

// Input is one rasterized page handed to an engine.
type Input struct {
	Image    []byte
	Format   string
	DPI      int
	Language string
}

type Result struct {
	Text     string
	Engine   string
	Duration time.Duration
}

type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, failure.ClassifiedError)
}

// TesseractEngine drives the tesseract CLI, feeding the image on stdin
// and reading plain text from stdout.
type TesseractEngine struct {
	runner   execrun.Runner
	binary   string
	language string
	timeout  time.Duration
}

func NewTesseractEngine(
	runner execrun.Runner,
	binary string,
	language string,
	timeout time.Duration,
) *TesseractEngine {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{
		runner:   runner,
		binary:   binary,
		language: language,
		timeout:  timeout,
	}
}

func (t *TesseractEngine) Name() string {
	return "tesseract"
}

func (t *TesseractEngine) Recognize(ctx context.Context, input Input) (Result, failure.ClassifiedError) {
	if len(input.Image) == 0 {
		return Result{}, &OCRError{
			Message: "empty image",
			Cause:   ErrCauseEmptyInput,
		}
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	language := input.Language
	if language == "" {
		language = t.language
	}

	args := []string{"stdin", "stdout", "-l", language}
	if input.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(input.DPI))
	}

	start := time.Now()
	stdout, stderr, err := t.runner.Run(ctx, bytes.NewReader(input.Image), t.binary, args...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Result{}, &OCRError{
				Message:   fmt.Sprintf("tesseract exceeded %s", t.timeout),
				Retryable: true,
				Cause:     ErrCauseTimeout,
			}
		}
		return Result{}, &OCRError{
			Message: fmt.Sprintf("%v: %s", err, strings.TrimSpace(string(stderr))),
			Cause:   ErrCauseEngineFailed,
		}
	}

	return Result{
		Text:     string(stdout),
		Engine:   t.Name(),
		Duration: time.Since(start),
	}, nil
}
