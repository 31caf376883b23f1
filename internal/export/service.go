package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"invoice-parser/internal/llm"
)

// Result is one batch entry: either an extracted invoice or the error
// that stopped it.
type Result struct {
	File    string
	Invoice *llm.InvoiceFields
	Err     error
}

// Service produces XLSX bytes for batch extraction runs.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteInvoicesXLSX renders one row per processed file. Failed files
// keep their row with the error message so a batch run is auditable.
func (s *Service) WriteInvoicesXLSX(results []Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"File",
		"Invoice Number",
		"Invoice Date",
		"Vendor",
		"Vendor GST",
		"Customer",
		"Customer GST",
		"Subtotal",
		"GST Amount",
		"Total",
		"Line Items",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range results {
		values := make([]any, len(headers))
		values[0] = r.File
		if r.Err != nil {
			values[11] = r.Err.Error()
		} else if r.Invoice != nil {
			inv := r.Invoice
			values[1] = inv.InvoiceNumber
			values[2] = inv.InvoiceDate
			values[3] = inv.VendorName
			values[4] = inv.VendorGST
			values[5] = inv.CustomerName
			values[6] = inv.CustomerGST
			values[7] = inv.Subtotal
			values[8] = inv.GSTAmount
			values[9] = inv.TotalAmount
			values[10] = len(inv.LineItems)
		}
		for i, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx_ok",
		"rows", len(results),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
