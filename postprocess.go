package pdfraster

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"golang.org/x/image/draw"
)

// Post-processing constants.
const (
	contrastFactor   = 1.2
	brightnessFactor = 1.1
	contrastPivot    = 128.0

	lumaR          = 0.299
	lumaG          = 0.587
	lumaB          = 0.114
	binarizeCutoff = 128.0
)

// ImagePostProcessor applies optional enhancements to rendered pages:
// a size clamp, a fixed contrast and brightness lift, and binarization
// for OCR.
// It is best-effort: any failure returns the input unchanged.
type ImagePostProcessor struct {
	logger *slog.Logger
}

// NewImagePostProcessor returns a post-processor. A nil logger discards.
func NewImagePostProcessor(logger *slog.Logger) *ImagePostProcessor {
	if logger == nil {
		logger = discardLogger()
	}
	return &ImagePostProcessor{logger: logger}
}

// Process returns the enhanced image. Binarized output is always PNG
// grayscale since JPEG cannot keep a strictly two-level image.
func (p *ImagePostProcessor) Process(img PageImage, opts ConversionOptions) (out PageImage) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("post-processing panicked", slog.Int("page", img.Index+1), slog.Any("panic", r))
			out = img
		}
	}()

	opts = opts.withDefaults()
	oversized := img.Width > opts.MaxWidth || img.Height > opts.MaxHeight
	if !oversized && !opts.EnhanceContrast && !opts.Binarize {
		return img
	}

	src, err := decodeImage(img.Data)
	if err != nil {
		p.logger.Warn("post-processing skipped", slog.Int("page", img.Index+1), slog.String("error", err.Error()))
		return img
	}

	var result image.Image = src
	if oversized {
		result = clampSize(result, opts.MaxWidth, opts.MaxHeight)
	}
	if opts.EnhanceContrast {
		result = adjustContrast(result)
	}

	format := normalizeFormat(img.Format)
	if opts.Binarize {
		result = binarize(result)
		format = FormatPNG
	}

	data, err := encodeImage(result, format, opts.Quality)
	if err != nil {
		p.logger.Warn("post-processing skipped", slog.Int("page", img.Index+1), slog.String("error", err.Error()))
		return img
	}

	b := result.Bounds()
	return PageImage{
		Index:  img.Index,
		Data:   data,
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}
}

// clampSize scales img down to fit maxW x maxH, preserving aspect ratio.
func clampSize(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	scale := effectiveScale(float64(b.Dx()), float64(b.Dy()), ConversionOptions{Scale: 1, MaxWidth: maxW, MaxHeight: maxH})
	if scale >= 1 {
		return img
	}
	w := max(int(float64(b.Dx())*scale), 1)
	h := max(int(float64(b.Dy())*scale), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// adjustContrast applies contrast around the mid-point, then brightness,
// to every color channel. Alpha is kept.
//
// The brightness factor shifts the result upward, so this is not a uniform
// contrast increase: tones in [88,128) move toward or past mid-gray
// (120 becomes 130), while tones at or above the pivot and deep shadows
// spread away from it.
func adjustContrast(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	for i := 0; i+3 < len(dst.Pix); i += 4 {
		dst.Pix[i] = contrastChannel(dst.Pix[i])
		dst.Pix[i+1] = contrastChannel(dst.Pix[i+1])
		dst.Pix[i+2] = contrastChannel(dst.Pix[i+2])
	}
	return dst
}

func contrastChannel(v uint8) uint8 {
	f := ((float64(v)-contrastPivot)*contrastFactor + contrastPivot) * brightnessFactor
	return clampByte(f)
}

// binarize converts to grayscale with standard luma weights and thresholds
// at binarizeCutoff. The output holds only 0 and 255.
func binarize(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			luma := lumaR*float64(c.R) + lumaG*float64(c.G) + lumaB*float64(c.B)
			v := uint8(0)
			if luma >= binarizeCutoff {
				v = 255
			}
			dst.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: v})
		}
	}
	return dst
}

func clampByte(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(math.Round(f))
	}
}
