package infra

// pdf.go — payroll statements rendered with go-pdf/fpdf. Output files land in
// storagePath/nomina_{vendor}_{year}_{month}.pdf and are attached to the
// notification email.

import (
	"fmt"
	"os"
	"path/filepath"

	"vitalexa/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

type PDFGenerator struct {
	storagePath string
}

func NewPDFGenerator(storagePath string) *PDFGenerator {
	return &PDFGenerator{storagePath: storagePath}
}

// GeneratePayrollPDF renders the monthly statement for one vendor and returns
// the absolute path of the file.
func (g *PDFGenerator) GeneratePayrollPDF(p *model.Payroll, vendorName string) (string, error) {
	if err := os.MkdirAll(g.storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("nomina_%s_%d_%02d.pdf", p.VendedorID, p.Year, p.Month)
	filePath := filepath.Join(g.storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Liquidacion mensual", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("%s — %02d/%d", vendorName, p.Month, p.Year), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	row := func(label string, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(contentW*0.6, 6, label, "B", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 6, value, "B", 1, "R", false, 0, "")
	}
	money := func(d decimal.Decimal) string { return "$ " + d.StringFixed(2) }
	yesNo := func(b bool) string {
		if b {
			return "SI"
		}
		return "NO"
	}

	// ── Sales ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Ventas", "", 1, "L", false, 0, "")
	row("Vendido en el mes", money(p.TotalSold), false)
	row("Transferencias recibidas", money(p.TransferredIn), false)
	row("Meta del mes", money(p.SalesGoalTarget), false)
	row("Meta alcanzada", yesNo(p.SalesGoalMet), false)
	row("Comision por ventas", money(p.SalesCommissionAmount), true)
	pdf.Ln(3)

	// ── Collection ───────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Cobranza", "", 1, "L", false, 0, "")
	row("Vendido mes anterior", money(p.PrevMonthTotalSold), false)
	row("Cobrado en el mes", money(p.TotalCollected), false)
	row("Porcentaje de cobranza", p.CollectionPct.Mul(decimal.NewFromInt(100)).StringFixed(1)+" %", false)
	row("Umbral alcanzado", yesNo(p.CollectionGoalMet), false)
	row("Comision por cobranza", money(p.CollectionCommissionAmount), true)
	pdf.Ln(3)

	// ── General commission ───────────────────────────────────────────────────
	if p.GeneralCommissionEnabled {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW, 7, "Comision general", "", 1, "L", false, 0, "")
		row("Metas globales del mes", money(p.TotalGlobalGoals), false)
		row("Ventas de la empresa", money(p.TotalCompanySales), false)
		row("Comision general", money(p.GeneralCommissionAmount), true)
		pdf.Ln(3)
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Totales", "", 1, "L", false, 0, "")
	row("Salario base", money(p.BaseSalary), false)
	row("Total comisiones", money(p.TotalCommissions), false)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW*0.6, 8, "TOTAL A PAGAR", "T", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.4, 8, money(p.TotalPayout), "T", 1, "R", false, 0, "")

	if p.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, "Notas: "+p.Notes, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}

// GenerateMovementsPDF renders an inventory movements report, used by the
// export endpoint.
func (g *PDFGenerator) GenerateMovementsPDF(movs []model.InventoryMovement, title string) (string, error) {
	if err := os.MkdirAll(g.storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(g.storagePath, "movimientos.pdf")

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	cols := []struct {
		w     float64
		label string
	}{
		{40, "Fecha"}, {70, "Producto"}, {35, "Tipo"},
		{25, "Cantidad"}, {25, "Antes"}, {25, "Despues"}, {57, "Motivo"},
	}
	pdf.SetFont("Helvetica", "B", 8)
	for _, col := range cols {
		pdf.CellFormat(col.w, 6, col.label, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for i := range movs {
		m := &movs[i]
		pdf.CellFormat(cols[0].w, 5, m.CreatedAt.Format("02/01/2006 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1].w, 5, m.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2].w, 5, m.Tipo, "1", 0, "C", false, 0, "")
		pdf.CellFormat(cols[3].w, 5, fmt.Sprintf("%d", m.Cantidad), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[4].w, 5, fmt.Sprintf("%d", m.StockAnterior), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[5].w, 5, fmt.Sprintf("%d", m.StockNuevo), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[6].w, 5, m.Motivo, "1", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}
