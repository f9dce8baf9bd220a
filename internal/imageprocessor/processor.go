package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	defaultQuality = 80
	defaultMaxSide = 800
	// maxSourcePixels bounds how much memory a single decode may take.
	maxSourcePixels = 40_000_000
)

var (
	ErrNotImage    = errors.New("file is not a supported image")
	ErrImageTooBig = errors.New("image dimensions are too large")
)

// Processor re-encodes uploads as JPEG no larger than a maxSide square.
type Processor struct {
	quality int
	maxSide int
}

func NewProcessor(quality, maxSide int) *Processor {
	p := &Processor{quality: quality, maxSide: maxSide}
	if p.quality <= 0 || p.quality > 100 {
		p.quality = defaultQuality
	}
	if p.maxSide <= 0 {
		p.maxSide = defaultMaxSide
	}
	return p
}

// ToJPEG accepts JPEG, PNG or WebP input. The aspect ratio is kept and
// images that already fit are not enlarged. The header is checked before
// the pixels are decoded.
func (p *Processor) ToJPEG(reader io.Reader) (*bytes.Buffer, error) {
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(reader, &header))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width*cfg.Height > maxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooBig, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(io.MultiReader(&header, reader))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, p.fit(img), &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return &out, nil
}

// targetSize scales w x h down to fit maxSide on the longer edge.
func (p *Processor) targetSize(w, h int) (int, int) {
	longest := max(w, h)
	if longest <= p.maxSide {
		return w, h
	}
	return max(1, w*p.maxSide/longest), max(1, h*p.maxSide/longest)
}

func (p *Processor) fit(img image.Image) image.Image {
	src := img.Bounds()
	w, h := p.targetSize(src.Dx(), src.Dy())
	if w == src.Dx() && h == src.Dy() {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}
