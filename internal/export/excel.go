package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/plantdocs/formflow/internal/domain/entity"
)

const registerSheet = "Submissions"

var registerHeaders = []string{
	"Submission ID", "Template", "Department", "Status",
	"Submitted By", "Version", "Created At", "Updated At",
}

// ExcelExporter writes a submission register workbook
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// WriteRegister writes one row per submission to w as an xlsx workbook
func (e *ExcelExporter) WriteRegister(submissions []*entity.Submission, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(registerSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range registerHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		e.setCell(f, cell, header)
	}
	last, _ := excelize.CoordinatesToCellName(len(registerHeaders), 1)
	if err := f.SetCellStyle(registerSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, sub := range submissions {
		row := i + 2
		values := []string{
			sub.ID,
			sub.TemplateID,
			sub.Department,
			sub.Status.String(),
			sub.SubmittedBy,
			fmt.Sprintf("%d", sub.Version),
			sub.CreatedAt.Format("2006-01-02 15:04:05"),
			sub.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			e.setCell(f, cell, value)
		}
	}

	if err := f.SetColWidth(registerSheet, "A", "A", 38); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Wrote submission register", zap.Int("rows", len(submissions)))
	return nil
}

func (e *ExcelExporter) setCell(f *excelize.File, cell, value string) {
	if err := f.SetCellValue(registerSheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell", zap.String("cell", cell), zap.Error(err))
	}
}
