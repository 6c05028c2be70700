package export

import (
	"errors"
	"fmt"
	"sync"
	"unicode"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrUnsupportedText is returned when a document holds characters the
// embedded fonts have no glyph for. Nothing is written in that case.
var ErrUnsupportedText = errors.New("text contains characters the export font cannot draw")

const pdfFontFamily = "go"

// fonts are parsed once; sfnt.Font is safe for concurrent use with separate buffers
var (
	fontsOnce   sync.Once
	regularFont *sfnt.Font
	monoFont    *sfnt.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regularFont, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		monoFont, fontsErr = opentype.Parse(gomono.TTF)
	})
	if fontsErr != nil {
		return fmt.Errorf("failed to load export font: %w", fontsErr)
	}
	return nil
}

// checkGlyphs fails on the first rune in lines that f cannot draw
func checkGlyphs(f *sfnt.Font, lines []string) error {
	var buf sfnt.Buffer
	for _, l := range lines {
		for _, r := range l {
			if unicode.IsControl(r) || unicode.IsSpace(r) {
				continue
			}
			idx, err := f.GlyphIndex(&buf, r)
			if err != nil {
				return fmt.Errorf("failed to look up glyph %q: %w", r, err)
			}
			if idx == 0 {
				return fmt.Errorf("%w: %q (U+%04X) in %q", ErrUnsupportedText, r, r, l)
			}
		}
	}
	return nil
}

// previewStrings lists every string a preview renders, in layout order
func previewStrings(p *Preview) []string {
	out := []string{p.Title, p.Number, p.Date, p.Shipping, p.Total, p.Notes}
	out = append(out, p.Seller...)
	out = append(out, p.Customer...)
	for _, r := range p.Rows {
		out = append(out, r.Description, r.Quantity, r.UnitPrice, r.LineTotal)
	}
	return out
}

var pdfFontStyles = []struct {
	style string
	ttf   []byte
}{
	{"", goregular.TTF},
	{"B", gobold.TTF},
	{"I", goitalic.TTF},
}
