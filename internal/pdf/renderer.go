// Package pdf lays out the check-in report as a paginated A4 document:
// branded header on every page, an optional employee info box, a fixed
// four-column table with row striping, and a footer pass that stamps the
// generation time and "page X of Y" once the total is known.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-pdf/fpdf"

	"guard-monitor/backend/internal/domain/checkin"
)

const (
	title            = "Sistema de Monitoramento"
	subtitleFirst    = "Relatório de Check-ins"
	subtitleOverflow = "Continuação do Relatório"

	margin     = 15.0
	rowHeight  = 7.0
	headerBand = 30.0 // vertical space reserved for the page header
	footerBand = 25.0 // vertical space reserved for the page footer

	addressMaxChars = 50
)

// EmployeeInfo feeds the bordered info box rendered on single-employee
// reports.
type EmployeeInfo struct {
	Name  string
	Phone string
	Email string
	Role  string // display name, already mapped
}

type Meta struct {
	StartLabel string // dd/mm/yyyy
	EndLabel   string
	Employee   *EmployeeInfo
	LogoPath   string
}

type Renderer struct {
	// Now is the clock used for the footer's generation timestamp;
	// injectable so rendering is reproducible under test.
	Now func() time.Time
	// RowsPerPage overrides the computed row budget when positive.
	RowsPerPage int
}

func NewRenderer() *Renderer {
	return &Renderer{Now: time.Now}
}

// Render produces the document bytes and the final page count.
func (r *Renderer) Render(records []checkin.Record, meta Meta) ([]byte, int, error) {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(now)
	doc.SetModificationDate(now)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := doc.GetPageSize()
	usableW := pageW - 2*margin

	// Logo bytes are loaded once up front; a missing asset degrades to a
	// solid rectangle instead of aborting the render.
	var logo []byte
	if meta.LogoPath != "" {
		if b, err := os.ReadFile(meta.LogoPath); err == nil {
			logo = b
		}
	}
	if logo != nil {
		doc.RegisterImageOptionsReader("logo", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(logo))
	}

	doc.SetAutoPageBreak(false, 0)
	doc.AliasNbPages("{nb}")
	doc.SetFooterFunc(func() {
		doc.SetDrawColor(200, 200, 200)
		doc.SetLineWidth(0.5)
		doc.Line(margin, pageH-20, pageW-margin, pageH-20)

		doc.SetFont("Helvetica", "", 8)
		doc.SetTextColor(128, 128, 128)
		generated := fmt.Sprintf("Relatório gerado em: %s às %s", now.Format("02/01/2006"), now.Format("15:04"))
		doc.Text(margin, pageH-12, tr(generated))

		pageLabel := fmt.Sprintf("Página %d de {nb}", doc.PageNo())
		doc.SetXY(margin, pageH-16)
		doc.CellFormat(usableW, 5, tr(pageLabel), "", 0, "R", false, 0, "")
	})

	addHeader := func(subtitle string) float64 {
		if logo != nil {
			doc.ImageOptions("logo", margin, 15, 20, 20, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		} else {
			doc.SetFillColor(203, 173, 108)
			doc.Rect(margin, 15, 20, 20, "F")
		}

		doc.SetFont("Helvetica", "B", 16)
		doc.SetTextColor(0, 51, 102)
		doc.Text(margin+25, 25, tr(title))

		doc.SetFont("Helvetica", "", 12)
		doc.SetTextColor(102, 102, 102)
		doc.Text(margin+25, 32, tr(subtitle))

		doc.SetDrawColor(200, 200, 200)
		doc.SetLineWidth(0.5)
		doc.Line(margin, 40, pageW-margin, 40)

		return 45
	}

	colWidths := [4]float64{40, 30, 30, 85}
	headers := [4]string{"Nome do Funcionário", "Data do Check-in", "Hora", "Endereço de Localização"}

	addTableHeader := func(y float64) float64 {
		doc.SetFillColor(0, 51, 102)
		doc.SetTextColor(255, 255, 255)
		doc.SetFont("Helvetica", "B", 9)
		doc.SetXY(margin, y)
		for i, h := range headers {
			doc.CellFormat(colWidths[i], 8, tr(h), "", 0, "C", true, 0, "")
		}
		return y + 8
	}

	addRow := func(rec checkin.Record, rowIndex int, y float64) float64 {
		// Striping follows the global row index, so the banding parity
		// carries across page breaks.
		if rowIndex%2 == 0 {
			doc.SetFillColor(245, 245, 245)
		} else {
			doc.SetFillColor(255, 255, 255)
		}
		doc.Rect(margin, y, usableW, rowHeight, "F")

		doc.SetTextColor(0, 0, 0)
		doc.SetFontSize(8)

		x := margin
		doc.SetFont("Helvetica", "B", 8)
		doc.Text(x+2, y+4.5, tr(rec.Username))
		x += colWidths[0]

		doc.SetFont("Helvetica", "", 8)
		doc.Text(x+2, y+4.5, rec.Timestamp.Format("02/01/2006"))
		x += colWidths[1]

		doc.Text(x+2, y+4.5, rec.Timestamp.Format("15:04"))
		x += colWidths[2]

		doc.Text(x+2, y+4.5, tr(truncate(rec.Address, addressMaxChars)))

		return y + rowHeight
	}

	rowBudget := r.RowsPerPage
	if rowBudget <= 0 {
		rowBudget = int((pageH - headerBand - footerBand) / rowHeight)
	}

	doc.AddPage()
	y := addHeader(subtitleFirst)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(0, 0, 0)
	doc.Text(margin, y, tr(fmt.Sprintf("Período: %s a %s", meta.StartLabel, meta.EndLabel)))
	y += 8

	if meta.Employee != nil {
		y = addEmployeeBox(doc, tr, meta.Employee, y, usableW)
	} else {
		doc.SetFont("Helvetica", "B", 11)
		doc.SetTextColor(0, 51, 102)
		doc.Text(margin, y, tr("Relatório Geral - Todos os Funcionários"))
		y += 8
	}

	y = addTableHeader(y)

	for i, rec := range records {
		if i > 0 && i%rowBudget == 0 {
			doc.AddPage()
			y = addHeader(subtitleOverflow)
			y = addTableHeader(y)
		}
		y = addRow(rec, i, y)
	}

	y += 5
	doc.SetFont("Helvetica", "B", 10)
	doc.SetTextColor(0, 0, 0)
	doc.Text(margin, y, tr(fmt.Sprintf("Total de registros: %d", len(records))))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), doc.PageCount(), nil
}

func addEmployeeBox(doc *fpdf.Fpdf, tr func(string) string, emp *EmployeeInfo, y, usableW float64) float64 {
	doc.SetDrawColor(220, 220, 220)
	doc.SetFillColor(245, 245, 245)
	doc.SetLineWidth(0.3)
	doc.RoundedRect(margin, y, usableW, 20, 3, "1234", "FD")

	col1 := margin + 5
	col2 := margin + usableW/2

	orDefault := func(s string) string {
		if s == "" {
			return "Não informado"
		}
		return s
	}

	doc.SetFontSize(8)
	doc.SetTextColor(0, 0, 0)

	doc.SetFont("Helvetica", "B", 8)
	doc.Text(col1, y+7, "Nome:")
	doc.Text(col2, y+7, "Telefone:")
	doc.SetFont("Helvetica", "", 8)
	doc.Text(col1+15, y+7, tr(orDefault(emp.Name)))
	doc.Text(col2+20, y+7, tr(orDefault(emp.Phone)))

	doc.SetFont("Helvetica", "B", 8)
	doc.Text(col1, y+14, "Email:")
	doc.Text(col2, y+14, tr("Função:"))
	doc.SetFont("Helvetica", "", 8)
	doc.Text(col1+15, y+14, tr(orDefault(emp.Email)))
	doc.Text(col2+20, y+14, tr(orDefault(emp.Role)))

	return y + 22
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
