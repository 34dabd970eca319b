package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	OGImageWidth  = 1200
	OGImageHeight = 630
)

// OGCard is the content of one generated share image.
type OGCard struct {
	Title    string
	Subtitle string
	Brand    string
	Colors   ThemeColors
	RTL      bool
	// Background is drawn cover-fit under a dark overlay when set.
	Background image.Image
}

type OGRenderer interface {
	Render(card OGCard) ([]byte, error)
}

type ogRenderer struct {
	title *truetype.Font
	body  *truetype.Font
}

// NewOGRenderer uses the Go fonts unless fontPath points at a TTF file.
// The Go fonts carry no Arabic glyphs; deployments serving "ar" should
// configure a font that does.
func NewOGRenderer(fontPath string) (OGRenderer, error) {
	titleTTF, bodyTTF := gobold.TTF, goregular.TTF
	if p := strings.TrimSpace(fontPath); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read og font: %w", err)
		}
		titleTTF, bodyTTF = raw, raw
	}
	title, err := truetype.Parse(titleTTF)
	if err != nil {
		return nil, fmt.Errorf("parse og title font: %w", err)
	}
	body, err := truetype.Parse(bodyTTF)
	if err != nil {
		return nil, fmt.Errorf("parse og body font: %w", err)
	}
	return &ogRenderer{title: title, body: body}, nil
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
}

func (r *ogRenderer) Render(card OGCard) ([]byte, error) {
	const (
		w      = float64(OGImageWidth)
		h      = float64(OGImageHeight)
		margin = 80.0
	)
	dc := gg.NewContext(OGImageWidth, OGImageHeight)

	bg := hexOr(card.Colors.Primary, color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff})
	fg := color.Color(color.White)
	dc.SetColor(bg)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	if card.Background != nil {
		dc.DrawImage(coverFit(card.Background, OGImageWidth, OGImageHeight), 0, 0)
		dc.SetColor(color.NRGBA{A: 0xa0})
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
	} else if contrastText(card.Colors.Primary) == "#111111" {
		fg = color.Black
	}

	accent := hexOr(card.Colors.Accent, color.NRGBA{R: 0xb4, G: 0x53, B: 0x09, A: 0xff})
	dc.SetColor(accent)
	dc.DrawRectangle(0, h-16, w, 16)
	dc.Fill()

	x, ax := margin, 0.0
	if card.RTL {
		x, ax = w-margin, 1.0
	}
	dc.SetColor(fg)

	dc.SetFontFace(face(r.title, 64))
	title := strings.TrimSpace(card.Title)
	lines := dc.WordWrap(title, w-2*margin)
	if len(lines) > 3 {
		lines = lines[:3]
		lines[2] = strings.TrimSpace(lines[2]) + "…"
	}
	y := 180.0
	for _, line := range lines {
		dc.DrawStringAnchored(line, x, y, ax, 0)
		y += 78
	}

	if sub := strings.TrimSpace(card.Subtitle); sub != "" {
		dc.SetFontFace(face(r.body, 32))
		sublines := dc.WordWrap(sub, w-2*margin)
		if len(sublines) > 2 {
			sublines = sublines[:2]
		}
		y += 12
		for _, line := range sublines {
			dc.DrawStringAnchored(line, x, y, ax, 0)
			y += 42
		}
	}

	if brand := strings.TrimSpace(card.Brand); brand != "" {
		dc.SetFontFace(face(r.title, 36))
		dc.SetColor(accent)
		dc.DrawStringAnchored(brand, x, h-60, ax, 0)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode og png: %w", err)
	}
	return buf.Bytes(), nil
}

// coverFit scales src to fill w x h and crops the overflow around the center.
func coverFit(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw == 0 || sh == 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	crop := b
	if sw*h > sh*w {
		cw := sh * w / h
		x0 := b.Min.X + (sw-cw)/2
		crop = image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	} else {
		ch := sw * h / w
		y0 := b.Min.Y + (sh-ch)/2
		crop = image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)
	return dst
}

func hexOr(s string, fallback color.NRGBA) color.NRGBA {
	r, g, b, ok := parseHexColor(s)
	if !ok {
		return fallback
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
