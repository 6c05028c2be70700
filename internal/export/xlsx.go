package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/andy/invoicer/internal/domain"
)

const xlsxSheet = "Invoice"

// WriteXLSX writes a workbook with one sheet holding the header fields,
// one row per item and the totals
func WriteXLSX(w io.Writer, inv *domain.Invoice, currency string) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), xlsxSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	amountStyle, err := xl.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	boldStyle, err := xl.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	header := [][]any{
		{"Invoice number", inv.InvoiceNumber},
		{"Date", inv.CreatedAt.Format("2006-01-02")},
		{"Customer", inv.CustomerName},
		{"Primary phone", inv.PrimaryPhone},
		{"Secondary phone", inv.SecondaryPhone},
		{"Address", inv.Address},
		{"Currency", currency},
	}
	for i, row := range header {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := xl.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	tableTop := len(header) + 2
	columns := []any{"#", "Description", "Quantity", "Unit price", "Amount"}
	topCell, _ := excelize.CoordinatesToCellName(1, tableTop)
	if err := xl.SetSheetRow(xlsxSheet, topCell, &columns); err != nil {
		return fmt.Errorf("failed to write columns: %w", err)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(columns), tableTop)
	_ = xl.SetCellStyle(xlsxSheet, topCell, endCell, boldStyle)

	row := tableTop
	for i, item := range inv.Items {
		if item == nil {
			continue
		}
		row++
		record := []any{
			i + 1,
			item.Description,
			item.Quantity.InexactFloat64(),
			item.UnitPrice.InexactFloat64(),
			domain.LineTotal(item.Quantity, item.UnitPrice).InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := xl.SetSheetRow(xlsxSheet, cell, &record); err != nil {
			return fmt.Errorf("failed to write item %d: %w", i+1, err)
		}
	}

	totals := [][]any{
		{"Shipping", inv.ShippingCost.InexactFloat64()},
		{"Total", inv.TotalAmount.InexactFloat64()},
	}
	for _, t := range totals {
		row++
		cell, _ := excelize.CoordinatesToCellName(4, row)
		if err := xl.SetSheetRow(xlsxSheet, cell, &t); err != nil {
			return fmt.Errorf("failed to write totals: %w", err)
		}
	}

	firstAmount, _ := excelize.CoordinatesToCellName(4, tableTop+1)
	lastAmount, _ := excelize.CoordinatesToCellName(5, row)
	_ = xl.SetCellStyle(xlsxSheet, firstAmount, lastAmount, amountStyle)
	_ = xl.SetColWidth(xlsxSheet, "A", "A", 16)
	_ = xl.SetColWidth(xlsxSheet, "B", "B", 40)
	_ = xl.SetColWidth(xlsxSheet, "C", "E", 14)

	if notes := inv.Notes; notes != "" {
		cell, _ := excelize.CoordinatesToCellName(1, row+2)
		_ = xl.SetCellValue(xlsxSheet, cell, "Notes: "+notes)
	}

	if err := xl.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
