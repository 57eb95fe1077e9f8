// Package capture defines the screen-capture collaborator interface.
// Real OS capture is out of scope for the core; this package only carries
// the contract plus a file-backed implementation useful for local
// development and tests.
package capture

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Bounds is a screen-absolute pixel rectangle. A zero value means "capture
// the whole screen".
type Bounds struct {
	X, Y, W, H int
}

// ImageHandle is an opaque handle to a captured frame. The core never
// inspects pixels directly; it only needs the image's dimensions to hand
// to the OCR engine and to normalize bboxes.
type ImageHandle struct {
	Width, Height int
	// Img is the decoded image, present for implementations that can
	// offer in-memory pixel access (the FileCapturer below). Nil is
	// valid: remote/native capturers may only expose dimensions plus an
	// opaque blob the OCR engine collaborator understands on its own.
	Img image.Image
}

// Capturer is the external collaborator that produces a screenshot.
type Capturer interface {
	Capture(ctx context.Context, bounds Bounds) (ImageHandle, error)
}

// FileCapturer reads a fixed image off disk. Useful for replaying a
// captured screenshot in local runs and tests; never used as the OS
// capture bridge.
type FileCapturer struct {
	Path string
}

func NewFileCapturer(path string) *FileCapturer {
	return &FileCapturer{Path: path}
}

func (f *FileCapturer) Capture(ctx context.Context, _ Bounds) (ImageHandle, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return ImageHandle{}, fmt.Errorf("open capture file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return ImageHandle{}, fmt.Errorf("decode capture file: %w", err)
	}
	b := img.Bounds()
	return ImageHandle{Width: b.Dx(), Height: b.Dy(), Img: img}, nil
}
