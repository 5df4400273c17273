package favicon

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand/v2"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	simpleSize  = 16
	complexSize = 80
)

// Fallback returns the generated icon for pageURL. Colours are created on
// first use and persisted, so a URL keeps its look across runs.
func (r *Resolver) Fallback(pageURL string) Icon {
	if r.complex() {
		return Icon{DataURL: ComplexTile(r.fallbackColors(pageURL)), Fallback: true}
	}
	return Icon{DataURL: SimpleTile(r.tabColor(pageURL)), Fallback: true}
}

func (r *Resolver) tabColor(pageURL string) string {
	if r.cache != nil {
		if c, ok, err := r.cache.TabColor(pageURL); err == nil && ok && c != "" {
			return c
		}
	}
	c := RandomColor()
	if r.cache != nil {
		if err := r.cache.SetTabColor(pageURL, c); err != nil {
			log.Warn("Storing fallback colour failed", "url", pageURL, "error", err)
		}
	}
	return c
}

func (r *Resolver) fallbackColors(pageURL string) []string {
	if r.cache != nil {
		if c, ok, err := r.cache.FallbackColors(pageURL); err == nil && ok && len(c) == 4 {
			return c
		}
	}
	c := []string{RandomColor(), RandomColor(), RandomColor(), RandomColor()}
	if r.cache != nil {
		if err := r.cache.SetFallbackColors(pageURL, c); err != nil {
			log.Warn("Storing fallback colours failed", "url", pageURL, "error", err)
		}
	}
	return c
}

// RandomColor returns an uppercase #RRGGBB colour.
func RandomColor() string {
	const digits = "0123456789ABCDEF"
	var b strings.Builder
	b.WriteByte('#')
	for range 6 {
		b.WriteByte(digits[rand.IntN(16)])
	}
	return b.String()
}

// SimpleTile renders a 16x16 PNG filled with one colour.
func SimpleTile(hex string) string {
	img := image.NewRGBA(image.Rect(0, 0, simpleSize, simpleSize))
	fill(img, img.Bounds(), hex)
	return encodePNG(img)
}

// ComplexTile renders an 80x80 PNG split into a 2x2 grid: top-left,
// top-right, bottom-left, bottom-right.
func ComplexTile(colors []string) string {
	img := image.NewRGBA(image.Rect(0, 0, complexSize, complexSize))
	half := complexSize / 2
	quads := []image.Rectangle{
		image.Rect(0, 0, half, half),
		image.Rect(half, 0, complexSize, half),
		image.Rect(0, half, half, complexSize),
		image.Rect(half, half, complexSize, complexSize),
	}
	for i, q := range quads {
		hex := "#000000"
		if i < len(colors) {
			hex = colors[i]
		}
		fill(img, q, hex)
	}
	return encodePNG(img)
}

func fill(img draw.Image, r image.Rectangle, hex string) {
	c, err := ParseColor(hex)
	if err != nil {
		c = color.RGBA{A: 0xff}
	}
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// ParseColor parses #RGB or #RRGGBB.
func ParseColor(hex string) (color.RGBA, error) {
	h := "#" + strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 4 && len(h) != 7 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", hex)
	}
	c, err := colorful.Hex(h)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", hex)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func encodePNG(img image.Image) string {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory RGBA image does not fail.
		panic(err)
	}
	return EncodeDataURL("image/png", buf.Bytes())
}
