package pdfraster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"regexp"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder geometry: US Letter in points, rendered like a page at scale 1.
const (
	placeholderWidth  = 612.0
	placeholderHeight = 792.0

	placeholderMargin = 24
	maxTextScale      = 3

	// maxEstimatedPages caps the page-count heuristic.
	maxEstimatedPages = 2000
)

var (
	pageObjectPattern = regexp.MustCompile(`/Type\s*/Page\b`)
	pageCountPattern  = regexp.MustCompile(`/Count\s+(\d+)`)

	placeholderInk    = color.Gray{Y: 60}
	placeholderBorder = color.Gray{Y: 200}
)

// Render implements Strategy. It produces one placeholder per estimated
// page and fails only if an image cannot be encoded.
func (s *degradedStrategy) Render(ctx context.Context, in Input, opts ConversionOptions, progress ProgressFunc) (*ConversionResult, error) {
	count := estimatePageCount(in.Document)
	scale := effectiveScale(placeholderWidth, placeholderHeight, opts)
	w := int(placeholderWidth * scale)
	h := int(placeholderHeight * scale)

	images := make([]PageImage, 0, count)
	for i := 0; i < count; i++ {
		img := drawPlaceholder(w, h, placeholderLines(in, i, count))
		data, err := encodeImage(img, opts.Format, opts.Quality)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrPlaceholderSynthesis, i+1, err)
		}
		images = append(images, PageImage{
			Index:  i,
			Data:   data,
			Format: normalizeFormat(opts.Format),
			Width:  w,
			Height: h,
		})
		progress.report(s.Name(), i+1, count)
	}

	warnings := []string{
		"rendering engine unavailable: " + s.reason,
		fmt.Sprintf("page count estimated from raw bytes (%d); automatic detection may be limited, fields can be placed manually", count),
	}

	return &ConversionResult{
		Success:   true,
		Images:    images,
		PageCount: count,
		Strategy:  s.Name(),
		Warnings:  warnings,
		Reason:    s.reason,
	}, nil
}

// estimatePageCount scans raw bytes for page objects. It is approximate:
// pages inside compressed object streams are invisible to it, and stale
// objects from incremental updates are counted. Without page objects it
// falls back to the largest /Count entry, then to 1.
func estimatePageCount(data []byte) int {
	n := len(pageObjectPattern.FindAllIndex(data, maxEstimatedPages+1))
	if n == 0 {
		for _, m := range pageCountPattern.FindAllSubmatch(data, -1) {
			if c, err := strconv.Atoi(string(m[1])); err == nil && c > n {
				n = c
			}
		}
	}
	return min(max(n, 1), maxEstimatedPages)
}

// placeholderLines returns the diagnostic text for one page.
func placeholderLines(in Input, index, count int) []string {
	name := in.Name
	if name == "" {
		name = "(unnamed document)"
	}
	return []string{
		"PREVIEW UNAVAILABLE",
		"",
		"File: " + name,
		"Size: " + humanSize(len(in.Document)),
		fmt.Sprintf("Page %d of %d (estimated)", index+1, count),
		"",
		"The document could not be rendered automatically.",
		"Use manual field placement for this page.",
	}
}

// drawPlaceholder draws a white page with a border and centered text.
// Text is drawn with the fixed 7x13 face and upscaled.
func drawPlaceholder(w, h int, lines []string) *image.RGBA {
	w, h = max(w, 1), max(h, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	if w > 2*placeholderMargin && h > 2*placeholderMargin {
		frame := image.Rect(placeholderMargin, placeholderMargin, w-placeholderMargin, h-placeholderMargin)
		strokeRect(dst, frame, 2, placeholderBorder)
	}

	face := basicfont.Face7x13
	advance := face.Advance
	lineHeight := face.Height + 4

	maxChars := max((w-2*placeholderMargin-8)/advance, 1)
	longest := 0
	for i, line := range lines {
		if len(line) > maxChars {
			lines[i] = line[:maxChars]
		}
		longest = max(longest, len(lines[i]))
	}
	if longest == 0 {
		return dst
	}

	text := image.NewRGBA(image.Rect(0, 0, longest*advance+8, len(lines)*lineHeight+8))
	draw.Draw(text, text.Bounds(), image.White, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  text,
		Src:  image.NewUniform(placeholderInk),
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(4, 4+face.Ascent+i*lineHeight)
		d.DrawString(line)
	}

	tb := text.Bounds()
	factor := min((w-2*placeholderMargin)/tb.Dx(), (h-2*placeholderMargin)/tb.Dy(), maxTextScale)
	factor = max(factor, 1)
	sw, sh := tb.Dx()*factor, tb.Dy()*factor
	x0 := (w - sw) / 2
	y0 := max((h-sh)/3, 0)
	draw.NearestNeighbor.Scale(dst, image.Rect(x0, y0, x0+sw, y0+sh), text, tb, draw.Over, nil)

	return dst
}

// strokeRect draws a rectangle outline of the given thickness.
func strokeRect(dst draw.Image, r image.Rectangle, t int, c color.Color) {
	src := image.NewUniform(c)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), src, image.Point{}, draw.Src)
}

// humanSize formats a byte count.
func humanSize(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d bytes", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB (%d bytes)", float64(n)/float64(div), "KMGT"[exp], n)
}
