package synth

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/abaddouh/fakeimg/internal/config"
	"github.com/abaddouh/fakeimg/internal/errors"
)

type Format string

const (
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
)

// ParseFormat maps a file extension (with or without the dot) to a Format.
func ParseFormat(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "gif":
		return FormatGIF, nil
	case "bmp":
		return FormatBMP, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", ext)
	}
}

// ContentType is the MIME type of encoded images in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatGIF:
		return "image/gif"
	case FormatBMP:
		return "image/bmp"
	default:
		return "image/jpeg"
	}
}

// Local renders "{width}x{height}" centered on a solid background.
type Local struct {
	Background  color.RGBA
	Foreground  color.RGBA
	FontDivisor int
	MinFontSize int
	Quality     int
	Format      Format

	fonts *fontSource
}

// fontSource parses the label font once and shares it between copies.
type fontSource struct {
	path string
	once sync.Once
	font *opentype.Font
	err  error
}

var goRegular = &fontSource{}

func (s *fontSource) load() (*opentype.Font, error) {
	s.once.Do(func() {
		data := goregular.TTF
		if s.path != "" {
			data, s.err = os.ReadFile(s.path)
			if s.err != nil {
				s.err = errors.Wrap(errors.KindRendering, "load font", s.path, "read font file", s.err)
				return
			}
		}
		s.font, s.err = opentype.Parse(data)
		if s.err != nil {
			s.err = errors.Wrap(errors.KindRendering, "load font", s.path, "parse font", s.err)
		}
	})
	return s.font, s.err
}

// Layout is where the label lands on the canvas.
type Layout struct {
	Label    string
	FontSize int
	// Bounds is the label's bounding box in canvas coordinates. It may
	// extend past the canvas for very small images.
	Bounds image.Rectangle
	// Dot is the baseline origin passed to the font drawer.
	Dot image.Point
}

func NewLocal(cfg config.LocalConfig) (*Local, error) {
	bg, err := ParseHex(cfg.Background)
	if err != nil {
		return nil, fmt.Errorf("local background: %w", err)
	}
	fg, err := ParseHex(cfg.Foreground)
	if err != nil {
		return nil, fmt.Errorf("local foreground: %w", err)
	}

	fonts := goRegular
	if cfg.FontPath != "" {
		fonts = &fontSource{path: cfg.FontPath}
	}

	return &Local{
		Background:  bg,
		Foreground:  fg,
		FontDivisor: cfg.FontDivisor,
		MinFontSize: cfg.MinFontSize,
		Quality:     cfg.JPEGQuality,
		Format:      FormatJPEG,
		fonts:       fonts,
	}, nil
}

// WithColors returns a copy of l drawing with the given colors and format.
// The parsed font is shared.
func (l *Local) WithColors(bg, fg color.RGBA, format Format) *Local {
	return &Local{
		Background:  bg,
		Foreground:  fg,
		FontDivisor: l.FontDivisor,
		MinFontSize: l.MinFontSize,
		Quality:     l.Quality,
		Format:      format,
		fonts:       l.fonts,
	}
}

// FontSize is width/divisor, never below the configured minimum.
func (l *Local) FontSize(width int) int {
	divisor := l.FontDivisor
	if divisor <= 0 {
		divisor = 10
	}
	size := width / divisor
	if size < max(l.MinFontSize, 1) {
		size = max(l.MinFontSize, 1)
	}
	return size
}

func (l *Local) loadFont() (*opentype.Font, error) {
	if l.fonts == nil {
		return goRegular.load()
	}
	return l.fonts.load()
}

func (l *Local) face(size int) (font.Face, error) {
	f, err := l.loadFont()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindRendering, "load font", "", fmt.Sprintf("create face at size %d", size), err)
	}
	return face, nil
}

func layout(face font.Face, label string, size, width, height int) Layout {
	b, _ := font.BoundString(face, label)
	minX, minY := b.Min.X.Floor(), b.Min.Y.Floor()
	textW, textH := b.Max.X.Ceil()-minX, b.Max.Y.Ceil()-minY

	x := (width - textW) / 2
	y := (height - textH) / 2

	return Layout{
		Label:    label,
		FontSize: size,
		Bounds:   image.Rect(x, y, x+textW, y+textH),
		Dot:      image.Pt(x-minX, y-minY),
	}
}

// Layout measures the label for a width x height canvas without drawing it.
func (l *Local) Layout(width, height int) (Layout, error) {
	size := l.FontSize(width)
	face, err := l.face(size)
	if err != nil {
		return Layout{}, err
	}
	defer face.Close()

	return layout(face, fmt.Sprintf("%dx%d", width, height), size, width, height), nil
}

// Render draws the placeholder raster.
func (l *Local) Render(width, height int) (*image.RGBA, Layout, error) {
	if width <= 0 || height <= 0 {
		return nil, Layout{}, errors.New(errors.KindRendering, "render", "",
			fmt.Sprintf("invalid canvas %dx%d", width, height))
	}

	size := l.FontSize(width)
	face, err := l.face(size)
	if err != nil {
		return nil, Layout{}, err
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(l.Background), image.Point{}, draw.Src)

	lay := layout(face, fmt.Sprintf("%dx%d", width, height), size, width, height)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(l.Foreground),
		Face: face,
		Dot:  fixed.P(lay.Dot.X, lay.Dot.Y),
	}
	d.DrawString(lay.Label)

	return img, lay, nil
}

func (l *Local) Synthesize(_ context.Context, width, height int) ([]byte, error) {
	img, _, err := l.Render(width, height)
	if err != nil {
		return nil, err
	}
	return l.encode(img)
}

func (l *Local) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch l.Format {
	case FormatJPEG, "":
		quality := l.Quality
		if quality <= 0 {
			quality = jpeg.DefaultQuality
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatGIF:
		err = gif.Encode(&buf, img, nil)
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	default:
		err = fmt.Errorf("unsupported format %q", l.Format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.KindEncoding, "encode", "", string(l.Format), err)
	}

	return buf.Bytes(), nil
}
