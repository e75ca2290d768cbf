package report

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"medcabinet/m/internal/expiry"
)

type rgb struct{ r, g, b int }

var (
	darkBlue   = rgb{2, 66, 117}
	lightBlue  = rgb{94, 171, 235}
	whiteSmoke = rgb{245, 245, 245}
	white      = rgb{255, 255, 255}
	black      = rgb{0, 0, 0}
	grey       = rgb{128, 128, 128}
	red        = rgb{255, 0, 0}
)

const (
	pageMargin = 36.0
	rowHeight  = 18.0
	lineHeight = 11.0
	cellPad    = 3.0
)

// PDFRenderer lays reports out as paginated A4 documents.
type PDFRenderer struct {
	// Compress deflates page content streams.
	Compress bool
}

// NewPDFRenderer returns a PDFRenderer with compressed output.
func NewPDFRenderer() PDFRenderer {
	return PDFRenderer{Compress: true}
}

// Render writes rep as a PDF. The header row repeats on every page, rows
// alternate between two fills, expired rows are printed in red and rows with
// an unparseable date in grey italics. Cell text wraps inside its column and
// each row grows to fit its tallest cell.
func (r PDFRenderer) Render(w io.Writer, rep Report) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle(rep.Title, true)
	pdf.SetCreator("medcabinet", true)
	pdf.SetCreationDate(rep.GeneratedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, pageHeight := pdf.GetPageSize()
	columns := max(len(rep.Header), len(Header))
	widths := fitWidths(normalizeWidths(rep.ColumnWidths, columns), pageWidth-2*pageMargin)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 28, tr(rep.Title), "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 14, "Created on: "+rep.GeneratedAt.Format(expiry.Layout), "", 1, "L", false, 0, "")
	pdf.Ln(12)

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(darkBlue.r, darkBlue.g, darkBlue.b)
		pdf.SetTextColor(white.r, white.g, white.b)
		pdf.SetDrawColor(grey.r, grey.g, grey.b)
		pdf.SetLineWidth(0.5)
		for i, h := range rep.Header {
			pdf.CellFormat(widths[i], rowHeight+4, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	drawHeader()
	freshPage := true

	for i, row := range rep.Rows {
		text, style := black, ""
		switch {
		case row.IsExpired:
			text = red
		case row.Status == expiry.Unparseable:
			text, style = grey, "I"
		}
		pdf.SetFont("Helvetica", style, 9)

		cells := row.Cells()
		lines := make([][]string, len(cells))
		height := rowHeight
		for j, cell := range cells {
			lines[j] = wrapText(pdf, tr, cell, widths[j]-2*cellPad)
			height = max(height, float64(len(lines[j]))*lineHeight+2*cellPad)
		}

		if !freshPage && pdf.GetY()+height > pageHeight-pageMargin {
			pdf.AddPage()
			drawHeader()
			pdf.SetFont("Helvetica", style, 9)
		}
		freshPage = false

		fill := whiteSmoke
		if i%2 == 1 {
			fill = lightBlue
		}
		pdf.SetFillColor(fill.r, fill.g, fill.b)
		pdf.SetTextColor(text.r, text.g, text.b)

		x, y := pageMargin, pdf.GetY()
		for j := range cells {
			pdf.Rect(x, y, widths[j], height, "FD")
			top := y + (height-float64(len(lines[j]))*lineHeight)/2
			for k, line := range lines[j] {
				pdf.SetXY(x, top+float64(k)*lineHeight)
				pdf.CellFormat(widths[j], lineHeight, line, "", 0, "C", false, 0, "")
			}
			x += widths[j]
		}
		pdf.SetXY(pageMargin, y+height)
	}

	return pdf.Output(w)
}

// normalizeWidths returns n widths, using minColumnWidth wherever widths has
// no usable entry.
func normalizeWidths(widths []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = minColumnWidth
		if i < len(widths) && widths[i] > 0 {
			out[i] = widths[i]
		}
	}
	return out
}

// fitWidths scales widths down proportionally so they fit into avail.
func fitWidths(widths []float64, avail float64) []float64 {
	var total float64
	for _, w := range widths {
		total += w
	}
	out := append([]float64(nil), widths...)
	if total <= avail || total == 0 {
		return out
	}
	scale := avail / total
	for i := range out {
		out[i] *= scale
	}
	return out
}

// wrapText breaks s into lines no wider than width using the current font.
// Words wider than a line are split between characters. Lines come back
// translated for the core fonts.
func wrapText(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) []string {
	fits := func(text string) bool {
		return pdf.GetStringWidth(tr(text)) <= width
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		current := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if fits(candidate) {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, tr(current))
				current = ""
			}
			for word != "" && !fits(word) {
				runes := []rune(word)
				cut := 1
				for cut < len(runes) && fits(string(runes[:cut+1])) {
					cut++
				}
				lines = append(lines, tr(string(runes[:cut])))
				word = string(runes[cut:])
			}
			current = word
		}
		if current != "" || len(lines) == 0 {
			lines = append(lines, tr(current))
		}
	}
	return lines
}
