package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/plantdocs/formflow/internal/domain/entity"
	"github.com/plantdocs/formflow/internal/domain/workflow"
)

// ErrNotApproved is returned when a certificate is requested for a
// submission that has not reached the APPROVED status.
var ErrNotApproved = fmt.Errorf("submission is not approved")

// PDFOptions configures certificate generation
type PDFOptions struct {
	Title      string
	FontFamily string
	FontSize   float64
	DateFormat string
}

// DefaultPDFOptions returns the default certificate layout
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Title:      "Approved Form Submission",
		FontFamily: "Arial",
		FontSize:   10,
		DateFormat: "2006-01-02 15:04:05",
	}
}

// PDFExporter renders an approval certificate for a single submission,
// including its full workflow history.
type PDFExporter struct {
	options PDFOptions
	logger  *zap.Logger
}

// NewPDFExporter creates a new PDF exporter
func NewPDFExporter(options PDFOptions, logger *zap.Logger) *PDFExporter {
	return &PDFExporter{options: options, logger: logger}
}

// WriteCertificate renders sub as a PDF document to w.
// Only approved submissions can be exported.
func (e *PDFExporter) WriteCertificate(sub *entity.Submission, w io.Writer) error {
	if sub.Status != workflow.StateApproved {
		return fmt.Errorf("%w: %s is %s", ErrNotApproved, sub.ID, sub.Status)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	e.addTitle(pdf)
	e.addSummary(pdf, sub)
	e.addHistory(pdf, sub.Steps)
	e.addFooter(pdf)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}

	e.logger.Info("Wrote approval certificate",
		zap.String("submission_id", sub.ID),
		zap.Int("steps", len(sub.Steps)))
	return nil
}

func (e *PDFExporter) addTitle(pdf *gofpdf.Fpdf) {
	pdf.SetFont(e.options.FontFamily, "B", 16)
	pdf.CellFormat(0, 10, e.options.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func (e *PDFExporter) addSummary(pdf *gofpdf.Fpdf, sub *entity.Submission) {
	rows := [][2]string{
		{"Submission ID", sub.ID},
		{"Template", sub.TemplateID},
		{"Department", sub.Department},
		{"Submitted By", sub.SubmittedBy},
		{"Status", sub.Status.String()},
		{"Last Updated", sub.UpdatedAt.Format(e.options.DateFormat)},
	}

	pdf.SetFont(e.options.FontFamily, "", e.options.FontSize)
	for _, row := range rows {
		pdf.SetFont(e.options.FontFamily, "B", e.options.FontSize)
		pdf.CellFormat(40, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont(e.options.FontFamily, "", e.options.FontSize)
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addHistory(pdf *gofpdf.Fpdf, steps []*entity.WorkflowStep) {
	pdf.SetFont(e.options.FontFamily, "B", e.options.FontSize+1)
	pdf.CellFormat(0, 8, "Workflow History", "", 1, "L", false, 0, "")

	headers := []string{"When", "Action", "From", "To", "Actor", "Comment"}
	widths := []float64{34, 38, 28, 28, 26, 26}

	pdf.SetFont(e.options.FontFamily, "B", e.options.FontSize-1)
	pdf.SetFillColor(221, 235, 247)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(e.options.FontFamily, "", e.options.FontSize-1)
	for i, step := range steps {
		fill := i%2 == 1
		pdf.SetFillColor(242, 242, 242)
		cells := []string{
			step.OccurredAt.Format(e.options.DateFormat),
			string(step.Action),
			string(step.FromStatus),
			string(step.ToStatus),
			step.ActorID,
			step.Comment,
		}
		for j, c := range cells {
			pdf.CellFormat(widths[j], 6, c, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf) {
	pdf.Ln(8)
	pdf.SetFont(e.options.FontFamily, "I", e.options.FontSize-2)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().Format(e.options.DateFormat)), "", 1, "R", false, 0, "")
}
