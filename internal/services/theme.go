package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

type Stylesheet struct {
	CSS  string
	ETag string
}

type ThemeService interface {
	Stylesheet(ctx context.Context) (*Stylesheet, error)
}

type themeService struct {
	settings SettingsService
}

func NewThemeService(settings SettingsService) ThemeService {
	return &themeService{settings: settings}
}

func (s *themeService) Stylesheet(ctx context.Context) (*Stylesheet, error) {
	row, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	css := RenderThemeCSS(themeColors(row))
	sum := sha256.Sum256([]byte(css))
	return &Stylesheet{CSS: css, ETag: `"` + hex.EncodeToString(sum[:8]) + `"`}, nil
}

// RenderThemeCSS emits the :root custom properties consumed by the storefront.
func RenderThemeCSS(t ThemeColors) string {
	var b strings.Builder
	b.WriteString(":root{")
	for _, kv := range [][2]string{
		{"--color-primary", t.Primary},
		{"--color-secondary", t.Secondary},
		{"--color-accent", t.Accent},
		{"--color-background", t.Background},
		{"--color-text", t.Text},
		{"--font-family", t.FontFamily},
	} {
		fmt.Fprintf(&b, "%s:%s;", kv[0], kv[1])
	}
	b.WriteString("}\n")
	return b.String()
}

// contrastText picks black or white text for a #rgb/#rrggbb background.
func contrastText(bg string) string {
	r, g, b, ok := parseHexColor(bg)
	if !ok {
		return "#ffffff"
	}
	// ITU-R BT.601 luma
	if 0.299*float64(r)+0.587*float64(g)+0.114*float64(b) > 150 {
		return "#111111"
	}
	return "#ffffff"
}

func parseHexColor(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
