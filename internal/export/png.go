package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	pngMargin   = 48
	pngFontSize = 11
	pngDPI      = 144
)

// WritePNG rasterizes the preview text onto a white canvas
func WritePNG(w io.Writer, p *Preview) error {
	if err := loadFonts(); err != nil {
		return err
	}
	lines := TextLines(p)
	if err := checkGlyphs(monoFont, lines); err != nil {
		return err
	}

	face, err := opentype.NewFace(monoFont, &opentype.FaceOptions{
		Size:    pngFontSize,
		DPI:     pngDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create png font face: %w", err)
	}
	defer face.Close()

	m := face.Metrics()
	lineHeight := m.Height.Ceil()

	maxWidth := fixed.Int26_6(0)
	for _, l := range lines {
		if adv := font.MeasureString(face, l); adv > maxWidth {
			maxWidth = adv
		}
	}
	width := pngMargin*2 + maxWidth.Ceil()
	height := pngMargin*2 + len(lines)*lineHeight

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	for i, l := range lines {
		d.Dot = fixed.P(pngMargin, pngMargin+i*lineHeight+m.Ascent.Ceil())
		d.DrawString(l)
	}

	if err := png.Encode(w, dst); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
