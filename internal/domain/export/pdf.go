package export

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF converts assembled document text into a PDF. Free-plan exports
// carry a diagonal watermark on every page.
func RenderPDF(text string, opts Options) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	if opts.Watermark {
		pdf.SetHeaderFunc(func() {
			stampWatermark(pdf)
		})
	}

	pdf.AddPage()

	for _, line := range ParseLines(text) {
		switch line.Kind {
		case LineHeading:
			switch line.Level {
			case 1:
				pdf.SetFont("Helvetica", "B", 18)
			case 2:
				pdf.SetFont("Helvetica", "B", 14)
			default:
				pdf.SetFont("Helvetica", "B", 12)
			}
			pdf.MultiCell(0, 8, line.Text, "", "L", false)
			pdf.Ln(2)
		case LineBullet:
			pdf.SetFont("Helvetica", "", 11)
			pdf.Cell(6, 6, "-")
			pdf.MultiCell(0, 6, line.Text, "", "L", false)
		case LineParagraph:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, line.Text, "", "L", false)
		case LineBlank:
			pdf.Ln(3)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stampWatermark(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 60)
	pdf.SetTextColor(225, 225, 225)
	pdf.TransformBegin()
	pdf.TransformRotate(45, 105, 148)
	pdf.Text(55, 160, WatermarkText)
	pdf.TransformEnd()
	pdf.SetTextColor(0, 0, 0)
}
