package pdfraster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
)

// Render implements Strategy. Pages are rendered sequentially through the
// single session; the first page failure aborts the whole document.
func (s *engineStrategy) Render(ctx context.Context, in Input, opts ConversionOptions, progress ProgressFunc) (*ConversionResult, error) {
	if err := s.session.Configure(ctx, s.locator); err != nil {
		return nil, fmt.Errorf("%w: configuring %s: %v", ErrRenderFailed, s.locator.Name(), err)
	}

	doc, err := s.session.OpenDocument(ctx, in.Document)
	if err != nil {
		return nil, fmt.Errorf("%w: opening document: %v", ErrRenderFailed, err)
	}
	defer doc.Close()

	count := doc.PageCount()
	if count < 1 {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, ErrNoPages)
	}

	images := make([]PageImage, 0, count)
	for i := 0; i < count; i++ {
		// Cancellation is honored between pages, never mid-page.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrRenderFailed, i+1, err)
		}

		img, err := s.renderPage(ctx, doc, i, opts)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
		progress.report(s.Name(), i+1, count)
	}

	return &ConversionResult{
		Success:   true,
		Images:    images,
		PageCount: count,
		Strategy:  s.Name(),
	}, nil
}

func (s *engineStrategy) renderPage(ctx context.Context, doc EngineDocument, index int, opts ConversionOptions) (PageImage, error) {
	page, err := doc.Page(ctx, index)
	if err != nil {
		return PageImage{}, fmt.Errorf("%w: page %d: %v", ErrRenderFailed, index+1, err)
	}

	w, h := page.Size()
	bitmap, err := page.Render(ctx, effectiveScale(w, h, opts))
	if err != nil {
		return PageImage{}, fmt.Errorf("%w: page %d: %v", ErrRenderFailed, index+1, err)
	}
	if bitmap == nil || bitmap.Bounds().Empty() {
		return PageImage{}, fmt.Errorf("%w: page %d: empty bitmap", ErrRenderFailed, index+1)
	}

	return newPageImage(index, bitmap, opts)
}

// effectiveScale returns opts.Scale reduced so that the rendered page fits
// within MaxWidth x MaxHeight. The same factor applies to both axes, so the
// aspect ratio is preserved.
func effectiveScale(width, height float64, opts ConversionOptions) float64 {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	if width <= 0 || height <= 0 {
		return scale
	}
	if opts.MaxWidth > 0 && width*scale > float64(opts.MaxWidth) {
		scale = float64(opts.MaxWidth) / width
	}
	if opts.MaxHeight > 0 && height*scale > float64(opts.MaxHeight) {
		scale = float64(opts.MaxHeight) / height
	}
	return scale
}

// newPageImage encodes a bitmap into a PageImage.
func newPageImage(index int, img image.Image, opts ConversionOptions) (PageImage, error) {
	data, err := encodeImage(img, opts.Format, opts.Quality)
	if err != nil {
		return PageImage{}, fmt.Errorf("%w: page %d: %v", ErrRenderFailed, index+1, err)
	}
	b := img.Bounds()
	return PageImage{
		Index:  index,
		Data:   data,
		Format: normalizeFormat(opts.Format),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// encodeImage encodes img as PNG or JPEG. Quality applies to JPEG only.
func encodeImage(img image.Image, format string, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	switch normalizeFormat(format) {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
	case FormatPNG, "":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	return buf.Bytes(), nil
}

// jpegQuality maps 0.1-1.0 to the encoder's 1-100 range.
func jpegQuality(q float64) int {
	if q <= 0 {
		q = DefaultQuality
	}
	n := int(math.Round(q * 100))
	return min(max(n, 1), 100)
}

// decodeImage decodes PNG or JPEG bytes.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
