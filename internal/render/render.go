package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rohmanhakim/billtext/pkg/execrun"
	"github.com/rohmanhakim/billtext/pkg/failure"
)

// Source is one page of a document that lives on disk.
type Source interface {
	// Index is the zero-based page index.
	Index() int
	// DocumentPath returns the path of the whole document file.
	DocumentPath() (string, error)
}

type Image struct {
	Data   []byte
	Format string
	DPI    int
}

// PopplerRasterizer renders single pages with poppler's pdftoppm.
type PopplerRasterizer struct {
	runner execrun.Runner
	binary string
}

func NewPopplerRasterizer(runner execrun.Runner, binary string) *PopplerRasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	return &PopplerRasterizer{
		runner: runner,
		binary: binary,
	}
}

// Rasterize renders page src at dpi into a PNG image.
func (p *PopplerRasterizer) Rasterize(ctx context.Context, src Source, dpi int) (Image, failure.ClassifiedError) {
	docPath, err := src.DocumentPath()
	if err != nil {
		return Image{}, &RenderError{
			Message: fmt.Sprintf("document file unavailable: %v", err),
			Cause:   ErrCauseSourceUnavailable,
			Page:    src.Index(),
		}
	}

	workDir, err := os.MkdirTemp("", "billtext-render-*")
	if err != nil {
		return Image{}, &RenderError{
			Message: err.Error(),
			Cause:   ErrCauseSourceUnavailable,
			Page:    src.Index(),
		}
	}
	defer os.RemoveAll(workDir)

	pageNumber := strconv.Itoa(src.Index() + 1)
	outputRoot := filepath.Join(workDir, "page")

	_, stderr, err := p.runner.Run(ctx, nil, p.binary,
		"-f", pageNumber,
		"-l", pageNumber,
		"-r", strconv.Itoa(dpi),
		"-png",
		"-singlefile",
		docPath,
		outputRoot,
	)
	if err != nil {
		return Image{}, &RenderError{
			Message:   fmt.Sprintf("%v: %s", err, strings.TrimSpace(string(stderr))),
			Retryable: ctx.Err() == nil,
			Cause:     ErrCauseRasterizerFailed,
			Page:      src.Index(),
		}
	}

	data, err := os.ReadFile(outputRoot + ".png")
	if err != nil || len(data) == 0 {
		return Image{}, &RenderError{
			Message: fmt.Sprintf("no image produced for page %s", pageNumber),
			Cause:   ErrCauseEmptyImage,
			Page:    src.Index(),
		}
	}

	return Image{
		Data:   data,
		Format: "png",
		DPI:    dpi,
	}, nil
}
