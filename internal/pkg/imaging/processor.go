package imaging

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Result describes a processed image
type Result struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
	Resized  bool
}

// Config for image processing
type Config struct {
	MaxWidth  int // Max width for stored images (default 2000)
	MaxHeight int // Max height for stored images (default 2000)
	Quality   int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:  2000,
		MaxHeight: 2000,
		Quality:   85,
	}
}

// Processor handles image processing
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	def := DefaultConfig()
	if config.MaxWidth <= 0 {
		config.MaxWidth = def.MaxWidth
	}
	if config.MaxHeight <= 0 {
		config.MaxHeight = def.MaxHeight
	}
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = def.Quality
	}
	return &Processor{config: config}
}

// Fit downscales images larger than the configured bounds, keeping the aspect
// ratio. Images within bounds are returned byte for byte.
func (p *Processor) Fit(data []byte, mimeType string) (*Result, error) {
	format, err := formatFromMime(mimeType)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	result := &Result{
		Data:     data,
		MimeType: mimeType,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}
	if result.Width <= p.config.MaxWidth && result.Height <= p.config.MaxHeight {
		return result, nil
	}

	resized := imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(p.config.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	result.Data = buf.Bytes()
	result.Width = resized.Bounds().Dx()
	result.Height = resized.Bounds().Dy()
	result.Resized = true
	return result, nil
}

func formatFromMime(mimeType string) (imaging.Format, error) {
	switch mimeType {
	case "image/jpeg":
		return imaging.JPEG, nil
	case "image/png":
		return imaging.PNG, nil
	case "image/gif":
		return imaging.GIF, nil
	default:
		return 0, fmt.Errorf("unsupported image type %q", mimeType)
	}
}
