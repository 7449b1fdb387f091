package export

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

const (
	pdfMargin   = 18.0
	pdfFontSize = 9.0
	pdfRowH     = 16.0
	pdfFont     = "MMFont"
	fallback    = "Helvetica"
)

var (
	columnWidths = [8]float64{35, 80, 60, 320, 95, 95, 110, 160}
	// Header cells are all centered. Body: No, Date, Time, Description and
	// Note centered; amounts right-aligned.
	bodyAlign = [8]string{"C", "C", "C", "C", "R", "R", "R", "C"}
)

// Title is the heading printed above the statement table.
func Title(p ledger.Period) string {
	return numfmt.Localize(int(p.Month)) + "/" + numfmt.Localize(p.Year) + "အတွက်ဝင်ငွေ/သုံးငွေစာရင်းချုပ်"
}

// WritePDF renders rows as a landscape A4 table. fontPath should point to a
// TrueType font with Myanmar glyphs; when it is empty or cannot be loaded the
// document is set in Helvetica and usedFallback is true.
func WritePDF(w io.Writer, p ledger.Period, rows []ledger.Row, fontPath string) (usedFallback bool, err error) {
	if fontPath != "" {
		font, loadErr := os.ReadFile(fontPath)
		if loadErr == nil {
			pdf := buildPDF(p, rows, font)
			if !pdf.Err() {
				return false, pdf.Output(w)
			}

			loadErr = pdf.Error()
		}

		slog.Warn("failed to load pdf font, using fallback", "path", fontPath, "error", loadErr)
	}

	pdf := buildPDF(p, rows, nil)
	if pdf.Err() {
		return true, fmt.Errorf("building pdf: %w", pdf.Error())
	}

	return true, pdf.Output(w)
}

type tableWriter struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
	widths    [8]float64
	pageH     float64
}

func buildPDF(p ledger.Period, rows []ledger.Row, font []byte) *fpdf.Fpdf {
	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(Title(p), true)

	tw := &tableWriter{pdf: pdf, translate: func(s string) string { return s }}

	family := fallback
	if font != nil {
		pdf.AddUTF8FontFromBytes(pdfFont, "", font)
		family = pdfFont
	} else {
		// Core fonts are cp1252; unknown runes degrade instead of corrupting the stream.
		tw.translate = pdf.UnicodeTranslatorFromDescriptor("")
	}

	if pdf.Err() {
		return pdf
	}

	pageW, pageH := pdf.GetPageSize()
	tw.pageH = pageH
	tw.widths = fitWidths(pageW - 2*pdfMargin)

	pdf.AddPage()
	pdf.SetFont(family, "", 14)
	pdf.CellFormat(0, 22, tw.translate(Title(p)), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont(family, "", pdfFontSize)
	pdf.SetLineWidth(0.25)
	pdf.SetDrawColor(209, 213, 219)
	tw.header()

	for _, r := range rows {
		if pdf.GetY()+pdfRowH > tw.pageH-pdfMargin {
			pdf.AddPage()
			tw.header()
		}

		if r.IsSeparator() {
			tw.separator(r.Description)
			continue
		}

		tw.row(r)
	}

	return pdf
}

// fitWidths scales columnWidths down proportionally when they exceed avail.
func fitWidths(avail float64) [8]float64 {
	var total float64
	for _, w := range columnWidths {
		total += w
	}

	widths := columnWidths
	if total <= avail {
		return widths
	}

	for i := range widths {
		widths[i] *= avail / total
	}

	return widths
}

func (tw *tableWriter) header() {
	tw.pdf.SetFillColor(229, 231, 235)
	tw.pdf.SetTextColor(17, 24, 39)

	for i, c := range Columns {
		tw.pdf.CellFormat(tw.widths[i], pdfRowH, tw.translate(c), "1", 0, "C", true, 0, "")
	}

	tw.pdf.Ln(-1)
}

func (tw *tableWriter) row(r ledger.Row) {
	cells := textCells(r)

	fill := r.Highlight
	if fill {
		tw.pdf.SetFillColor(254, 243, 199)
	}

	for i, c := range cells {
		tw.pdf.CellFormat(tw.widths[i], pdfRowH, tw.translate(c), "1", 0, bodyAlign[i], fill, 0, "")
	}

	tw.pdf.Ln(-1)
}

func (tw *tableWriter) separator(caption string) {
	var total float64
	for _, w := range tw.widths {
		total += w
	}

	tw.pdf.CellFormat(total, pdfRowH, tw.translate(caption), "1", 1, "C", false, 0, "")
}
