package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/execution"
)

// ExcelReporter writes the audit workbook for an execution run.
type ExcelReporter struct{}

// NewExcelReporter creates an Excel reporter.
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

type excelStyles struct {
	header   int
	base     int
	currency int
}

// WriteAudit writes one workbook with an Orders sheet (validated plans
// and their submission outcomes) and a Rejections sheet. The file name
// carries the run timestamp so successive runs never overwrite.
func (r *ExcelReporter) WriteAudit(dir string, result *execution.BatchResult, outcomes []OrderOutcome) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audit directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("execution_%s.xlsx", time.Now().Format("20060102_150405")))

	fx := excelize.NewFile()
	defer fx.Close()

	const ordersSheet = "Orders"
	const rejectionsSheet = "Rejections"

	fx.SetSheetName(fx.GetSheetName(0), ordersSheet)
	fx.NewSheet(rejectionsSheet)

	styles, err := r.createStyles(fx)
	if err != nil {
		return "", err
	}

	if err := r.writeOrdersSheet(fx, ordersSheet, result, outcomes, styles); err != nil {
		return "", err
	}
	if err := r.writeRejectionsSheet(fx, rejectionsSheet, result, styles); err != nil {
		return "", err
	}

	if err := fx.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save audit workbook: %w", err)
	}
	return path, nil
}

func (r *ExcelReporter) createStyles(fx *excelize.File) (excelStyles, error) {
	var styles excelStyles
	var err error

	styles.header, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.base, err = fx.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "bottom", Color: "D3D3D3", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.currency, err = fx.NewStyle(&excelize.Style{
		NumFmt: 7, // Currency format with $ symbol
		Border: []excelize.Border{
			{Type: "bottom", Color: "D3D3D3", Style: 1},
		},
	})
	return styles, err
}

func (r *ExcelReporter) writeOrdersSheet(fx *excelize.File, sheet string, result *execution.BatchResult, outcomes []OrderOutcome, styles excelStyles) error {
	headers := []string{"Symbol", "Action", "Side", "Qty", "Requested", "Sizing Price", "Order ID", "Status", "Error"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.header)
	}

	for i, o := range outcomes {
		row := i + 2
		errText := ""
		if o.Err != nil {
			errText = o.Err.Error()
		}
		values := []interface{}{
			o.Plan.Symbol, string(o.Plan.Action), string(o.Plan.Side),
			o.Plan.Qty, o.Plan.Original, o.Plan.Price,
			o.OrderID, o.Status, errText,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			fx.SetCellValue(sheet, cell, v)
			if j == 5 {
				fx.SetCellStyle(sheet, cell, cell, styles.currency)
			} else {
				fx.SetCellStyle(sheet, cell, cell, styles.base)
			}
		}
	}

	fx.SetColWidth(sheet, "A", "C", 10)
	fx.SetColWidth(sheet, "D", "F", 12)
	fx.SetColWidth(sheet, "G", "I", 24)

	// Snapshot context on the side so the audit is self-contained.
	fx.SetCellValue(sheet, "K1", "Snapshot Cash")
	fx.SetCellValue(sheet, "K2", result.Snapshot.Cash)
	fx.SetCellStyle(sheet, "K1", "K1", styles.header)
	fx.SetCellStyle(sheet, "K2", "K2", styles.currency)

	return nil
}

func (r *ExcelReporter) writeRejectionsSheet(fx *excelize.File, sheet string, result *execution.BatchResult, styles excelStyles) error {
	headers := []string{"Symbol", "Action", "Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.header)
	}

	for i, rej := range result.Rejections {
		row := i + 2
		values := []interface{}{rej.Symbol, string(rej.Action), rej.Reason}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			fx.SetCellValue(sheet, cell, v)
			fx.SetCellStyle(sheet, cell, cell, styles.base)
		}
	}

	fx.SetColWidth(sheet, "A", "B", 10)
	fx.SetColWidth(sheet, "C", "C", 60)
	return nil
}
