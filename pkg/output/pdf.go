package output

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/business-case/pkg/format"
	"github.com/iwvelando/business-case/pkg/mathutil"
)

// Page geometry in millimetres for an A4 landscape page.
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	plotLeft     = 28.0
	plotRight    = pageWidth - 15.0
	plotTop      = 48.0
	plotBottom   = pageHeight - 28.0
	xTickCount   = 8
	yTickCount   = 5
	labelsPerRow = 3
)

type rgb struct{ r, g, b int }

// PDFChart draws the density of every run on one chart with a dashed line
// and label at each run's mean, then writes the document to w.
func PDFChart(w io.Writer, reports []RunReport) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Business Case Calculator", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, "Business Case Calculator", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")

	xMin, xMax, yMax, ok := chartBounds(reports)
	if !ok {
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 20, "No finite results to display", "", 1, "C", false, 0, "")
		return finish(pdf, w)
	}

	xOf := func(v float64) float64 {
		return plotLeft + (v-xMin)/(xMax-xMin)*(plotRight-plotLeft)
	}
	yOf := func(p float64) float64 {
		return plotBottom - p/yMax*(plotBottom-plotTop)
	}

	drawAxes(pdf, xMin, xMax, yMax, xOf, yOf)

	for i, r := range reports {
		c := parseColor(r.Color)
		pdf.SetDrawColor(c.r, c.g, c.b)
		pdf.SetLineWidth(0.6)
		pdf.SetDashPattern([]float64{}, 0)
		for j := 1; j < len(r.Density); j++ {
			prev, cur := r.Density[j-1], r.Density[j]
			pdf.Line(xOf(prev.Center()), yOf(prev.Percent), xOf(cur.Center()), yOf(cur.Percent))
		}

		mean := r.Summary.Mean
		if !mathutil.IsFinite(mean) {
			continue
		}
		pdf.SetLineWidth(0.5)
		pdf.SetDashPattern([]float64{2, 1.5}, 0)
		pdf.Line(xOf(mean), plotTop, xOf(mean), plotBottom)

		label := fmt.Sprintf("%s Mean: %s", r.Name, format.Percent(mean))
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(c.r, c.g, c.b)
		lx := xOf(mean) - pdf.GetStringWidth(label)/2
		ly := plotTop - 3 - float64(i%labelsPerRow)*5
		pdf.Text(lx, ly, label)
	}
	pdf.SetDashPattern([]float64{}, 0)

	return finish(pdf, w)
}

func finish(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func drawAxes(pdf *fpdf.Fpdf, xMin, xMax, yMax float64, xOf, yOf func(float64) float64) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Line(plotLeft, plotBottom, plotRight, plotBottom)
	pdf.Line(plotLeft, plotBottom, plotLeft, plotTop)

	pdf.SetFont("Arial", "", 8)
	for i := 0; i <= xTickCount; i++ {
		v := xMin + (xMax-xMin)*float64(i)/xTickCount
		x := xOf(v)
		pdf.Line(x, plotBottom, x, plotBottom+1.5)
		label := format.Percent(v)
		pdf.Text(x-pdf.GetStringWidth(label)/2, plotBottom+5, label)
	}
	for i := 0; i <= yTickCount; i++ {
		p := yMax * float64(i) / yTickCount
		y := yOf(p)
		pdf.Line(plotLeft-1.5, y, plotLeft, y)
		label := strconv.FormatFloat(p, 'f', 1, 64) + "%"
		pdf.Text(plotLeft-2.5-pdf.GetStringWidth(label), y+1, label)
	}

	pdf.SetFont("Arial", "B", 10)
	title := "Net Savings"
	pdf.Text((plotLeft+plotRight)/2-pdf.GetStringWidth(title)/2, plotBottom+12, title)
	pdf.TransformBegin()
	pdf.TransformRotate(90, 10, (plotTop+plotBottom)/2)
	pdf.Text(10, (plotTop+plotBottom)/2, "Probability")
	pdf.TransformEnd()
}

// chartBounds returns the shared x axis and the y ceiling over all densities.
func chartBounds(reports []RunReport) (xMin, xMax, yMax float64, ok bool) {
	xMin, xMax = math.Inf(1), math.Inf(-1)
	for _, r := range reports {
		for _, b := range r.Density {
			xMin = math.Min(xMin, b.Low)
			xMax = math.Max(xMax, b.High)
			yMax = math.Max(yMax, b.Percent)
		}
	}
	if math.IsInf(xMin, 1) || xMax <= xMin || yMax <= 0 {
		return 0, 0, 0, false
	}
	return xMin, xMax, yMax * 1.1, true
}

// parseColor decodes "#RRGGBB", falling back to black.
func parseColor(hex string) rgb {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return rgb{}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rgb{}
	}
	return rgb{r: int(v >> 16 & 0xFF), g: int(v >> 8 & 0xFF), b: int(v & 0xFF)}
}
