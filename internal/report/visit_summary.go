// Package report renders appointment documents.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/harentsoaR/docspot-api/internal/models"
)

// VisitSummary renders a one-page PDF with the appointment details and the
// doctor's visit summary.
func VisitSummary(apt *models.Appointment, doctor, customer models.UserSummary, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Visit summary", false)
	pdf.SetCreator("DocSpot", false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(20, 60, 120)
	pdf.CellFormat(0, 10, "DocSpot - Visit Summary", "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	addDetail(pdf, tr, "Appointment", apt.ID.Hex())
	addDetail(pdf, tr, "Doctor", orUnknown(doctor.Name))
	if doctor.Specialty != "" {
		addDetail(pdf, tr, "Specialty", doctor.Specialty)
	}
	if doctor.Location != "" {
		addDetail(pdf, tr, "Location", doctor.Location)
	}
	addDetail(pdf, tr, "Patient", orUnknown(customer.Name))
	addDetail(pdf, tr, "Date", apt.Date.UTC().Format("Monday, 2 January 2006"))
	addDetail(pdf, tr, "Time", apt.Time)
	addDetail(pdf, tr, "Status", strings.ToUpper(string(apt.Status)))
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.Ln(2)
	summary := apt.VisitSummary
	if strings.TrimSpace(summary) == "" {
		summary = "No visit summary has been recorded yet."
	}
	pdf.MultiCell(0, 6, tr(summary), "", "L", false)

	if len(apt.Documents) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Documents", "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, d := range apt.Documents {
			pdf.CellFormat(0, 6, tr("- "+d), "", 1, "L", false, 0, "")
		}
	}

	pdf.SetY(-25)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 6, "Generated "+generatedAt.UTC().Format(time.RFC1123), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render visit summary: %w", err)
	}
	return buf.Bytes(), nil
}

func addDetail(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(40, 8, label, "1", 0, "", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, tr(value), "1", 1, "", false, 0, "")
}

func orUnknown(s string) string {
	if s == "" {
		return "(account removed)"
	}
	return s
}
