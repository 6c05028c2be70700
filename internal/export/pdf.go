package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the preview as a single A4 page (more if the items overflow)
func WritePDF(w io.Writer, p *Preview) error {
	if err := loadFonts(); err != nil {
		return err
	}
	if err := checkGlyphs(regularFont, previewStrings(p)); err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	for _, fs := range pdfFontStyles {
		pdf.AddUTF8FontFromBytes(pdfFontFamily, fs.style, fs.ttf)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to embed pdf font: %w", err)
	}
	pdf.SetTitle(p.Title+" "+p.Number, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont(pdfFontFamily, "B", 20)
	pdf.CellFormat(0, 10, p.Title, "", 1, "R", false, 0, "")
	pdf.SetFont(pdfFontFamily, "", 10)
	pdf.CellFormat(0, 6, "No. "+p.Number, "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+p.Date, "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// Parties
	if len(p.Seller) > 0 {
		pdf.SetFont(pdfFontFamily, "B", 11)
		pdf.CellFormat(0, 6, "From", "", 1, "L", false, 0, "")
		pdf.SetFont(pdfFontFamily, "", 10)
		for _, l := range p.Seller {
			pdf.CellFormat(0, 5, l, "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}
	pdf.SetFont(pdfFontFamily, "B", 11)
	pdf.CellFormat(0, 6, "Bill to", "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFontFamily, "", 10)
	for _, l := range p.Customer {
		pdf.CellFormat(0, 5, l, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Items table
	widths := []float64{10, 80, 20, 35, 35}
	headers := []string{"#", "Description", "Qty", "Unit price", "Amount"}
	aligns := []string{"C", "L", "R", "R", "R"}

	pdf.SetFont(pdfFontFamily, "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, aligns[i], true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(pdfFontFamily, "", 10)
	for _, r := range p.Rows {
		cells := []string{fmt.Sprint(r.Index), r.Description, r.Quantity, r.UnitPrice, r.LineTotal}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// Totals
	labelW := widths[0] + widths[1] + widths[2] + widths[3]
	pdf.CellFormat(labelW, 7, "Shipping", "", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 7, p.Shipping, "", 1, "R", false, 0, "")
	pdf.SetFont(pdfFontFamily, "B", 12)
	pdf.CellFormat(labelW, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 8, p.Total, "T", 1, "R", false, 0, "")

	if p.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont(pdfFontFamily, "B", 10)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont(pdfFontFamily, "I", 10)
		pdf.MultiCell(0, 5, p.Notes, "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
