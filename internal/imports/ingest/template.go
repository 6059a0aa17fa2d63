package ingest

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const templateSheet = "Leads"

// TemplateHeaders is the header row of the downloadable import template, one
// label per canonical field in Fields order. Every label is a default alias of
// its field, so a filled-in template maps without the fallback.
var TemplateHeaders = []string{"회사명", "부서", "직급", "담당자명", "연락처", "이메일", "주소", "메모"}

// WriteTemplate writes an empty .xlsx import template to w.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return err
	}

	row := make([]interface{}, len(TemplateHeaders))
	for i, label := range TemplateHeaders {
		row[i] = label
	}
	if err := f.SetSheetRow(templateSheet, "A1", &row); err != nil {
		return err
	}
	if err := f.SetColWidth(templateSheet, "A", "H", 18); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(templateSheet, "A1", "H1", style); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
