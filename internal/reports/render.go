package reports

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/kpir/web"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	xlsxSheet = "Raport"
)

// File is a rendered report download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// PDFClient exposes the subset of the Gotenberg client used by the renderer.
type PDFClient interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
	Ping(ctx context.Context) error
}

// KPIRRenderer turns a register into HTML and converts it to PDF.
type KPIRRenderer struct {
	tpl    *template.Template
	client PDFClient
}

// NewKPIRRenderer parses the register template and wires the PDF client.
func NewKPIRRenderer(client PDFClient) (*KPIRRenderer, error) {
	if client == nil {
		return nil, fmt.Errorf("kpir renderer: pdf client required")
	}
	funcMap := template.FuncMap{
		"money": func(v decimal.Decimal) string { return v.StringFixed(2) },
	}
	tpl, err := template.New("kpir.html").Funcs(funcMap).ParseFS(web.Templates, "templates/reports/kpir.html")
	if err != nil {
		return nil, err
	}
	return &KPIRRenderer{tpl: tpl, client: client}, nil
}

// HTML executes the template.
func (r *KPIRRenderer) HTML(reg KPIRRegister) (string, error) {
	buf := &bytes.Buffer{}
	if err := r.tpl.Execute(buf, reg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render produces the PDF download for reg.
func (r *KPIRRenderer) Render(ctx context.Context, reg KPIRRegister) (File, error) {
	html, err := r.HTML(reg)
	if err != nil {
		return File{}, err
	}
	pdf, err := r.client.RenderHTML(ctx, html)
	if err != nil {
		return File{}, fmt.Errorf("kpir renderer: %w", err)
	}
	return File{Name: KPIRFilename(reg.Period.Title), ContentType: ContentTypePDF, Data: pdf}, nil
}

// Ping checks the PDF backend.
func (r *KPIRRenderer) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

// RenderContractorsXLSX writes the contractor summary workbook: company and
// period in the first two rows, headers in row 4 and one row per group.
func RenderContractorsXLSX(company CompanyHeader, q ContractorQuery, groups []ContractorGroup) (File, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return File{}, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return File{}, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return File{}, err
	}

	cells := map[string]any{
		"A1": "Firma", "B1": company.Name,
		"A2": "Okres", "B2": q.Label(),
	}
	headers := []string{"Kontrahent", "NIP", "Typ", "Ilość dokumentów", "Suma Netto", "Suma VAT", "Suma Brutto"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		cells[cellName(i, 4)] = h
		widths[i] = len([]rune(h))
	}
	for n, g := range groups {
		row := 5 + n
		values := []any{g.Contractor, g.TaxID, g.TypeLabel(), g.Count,
			g.Net.Round(2).InexactFloat64(), g.VAT.Round(2).InexactFloat64(), g.Gross.Round(2).InexactFloat64()}
		for i, v := range values {
			cells[cellName(i, row)] = v
		}
		for i, s := range []string{g.Contractor, g.TaxID, g.TypeLabel(), "", g.Net.StringFixed(2), g.VAT.StringFixed(2), g.Gross.StringFixed(2)} {
			if l := len([]rune(s)); l > widths[i] {
				widths[i] = l
			}
		}
	}
	for cell, v := range cells {
		if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
			return File{}, err
		}
	}

	if err := f.SetCellStyle(xlsxSheet, "A4", "G4", headerStyle); err != nil {
		return File{}, err
	}
	if len(groups) > 0 {
		last := 4 + len(groups)
		if err := f.SetCellStyle(xlsxSheet, "E5", cellName(6, last), moneyStyle); err != nil {
			return File{}, err
		}
	}
	for i, w := range widths {
		col := string(rune('A' + i))
		if err := f.SetColWidth(xlsxSheet, col, col, float64(w+2)); err != nil {
			return File{}, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        ContractorsFilename(q),
		ContentType: ContentTypeXLSX,
		Data:        buf.Bytes(),
	}, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
