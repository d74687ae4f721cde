// Package reports renders approved evaluations as PDF documents.
package reports

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"appraisal/internal/domain/evaluation"
	"appraisal/internal/domain/period"
)

// EvaluationReport bundles everything the PDF shows. Answers are the stored
// snapshots; the report never re-reads the criteria catalog.
type EvaluationReport struct {
	Evaluation evaluation.Evaluation
	Answers    []evaluation.Answer
	Period     period.Period
}

// RenderEvaluationPDF writes the result document for one evaluation. The
// caller decides who may see it; this function only formats.
func RenderEvaluationPDF(w io.Writer, report EvaluationReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Performance Evaluation Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Performance Evaluation Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s (%d)", report.Period.Name, report.Period.Year))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s, %s, %s",
		report.Evaluation.Employee.Name, report.Evaluation.Employee.Position, report.Evaluation.Employee.Department))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Manager: %s, %s", report.Evaluation.Manager.Name, report.Evaluation.Manager.Position))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", report.Evaluation.Status))
	pdf.Ln(6)
	if report.Evaluation.ManagerDecisionAt != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Decided on: %s", report.Evaluation.ManagerDecisionAt.Format("2006-01-02")))
		pdf.Ln(6)
	}
	if report.Evaluation.TotalScore != nil {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Total score: %s / 5.00", report.Evaluation.TotalScore.StringFixed(2)))
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
	}
	pdf.Ln(4)

	writeManagerSection(pdf, report.Answers)
	writeSelfSection(pdf, report.Answers)

	if report.Evaluation.ManagerComment != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Manager comment")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, report.Evaluation.ManagerComment, "", "L", false)
		pdf.Ln(4)
	}

	return pdf.Output(w)
}

func writeManagerSection(pdf *gofpdf.Fpdf, answers []evaluation.Answer) {
	var scored []evaluation.Answer
	for _, a := range answers {
		if a.RespondentType == evaluation.RespondentManager && a.CriterionID != nil {
			scored = append(scored, a)
		}
	}
	if len(scored) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Manager assessment")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(110, 7, "Criterion", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Weight", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 7, "Score", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, a := range scored {
		weight := "1"
		if a.CriterionWeightSnapshot != nil {
			weight = a.CriterionWeightSnapshot.StringFixed(2)
		}
		score := "-"
		if a.Score != nil {
			score = fmt.Sprintf("%d", *a.Score)
		}
		pdf.CellFormat(110, 7, a.CriterionNameSnapshot, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, weight, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, score, "1", 1, "C", false, 0, "")
		if a.Comment != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(160, 5, "Comment: "+a.Comment, "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
		}
	}
	pdf.Ln(4)
}

func writeSelfSection(pdf *gofpdf.Fpdf, answers []evaluation.Answer) {
	var selfAnswers []evaluation.Answer
	for _, a := range answers {
		if a.RespondentType == evaluation.RespondentCollaborator {
			selfAnswers = append(selfAnswers, a)
		}
	}
	if len(selfAnswers) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Self-assessment")
	pdf.Ln(9)

	for _, a := range selfAnswers {
		pdf.SetFont("Helvetica", "B", 10)
		question := ""
		if a.QuestionID != nil {
			question = fmt.Sprintf("Question %d", *a.QuestionID)
		}
		pdf.Cell(0, 6, question)
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, a.ResponseText, "", "L", false)
		if a.Comment != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(0, 5, a.Comment, "", "L", false)
		}
		pdf.Ln(2)
	}
	pdf.Ln(4)
}
