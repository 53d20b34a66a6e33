package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Certificate holds everything rendered onto a completion certificate.
type Certificate struct {
	StudentName    string
	CourseTitle    string
	InstructorName string
	CompletedAt    time.Time
	SerialNumber   string
}

// CertificateRenderer renders completion certificates as landscape PDFs.
type CertificateRenderer struct {
	platformName string
}

// NewCertificateRenderer constructs a renderer branded with the platform name.
func NewCertificateRenderer(platformName string) *CertificateRenderer {
	if platformName == "" {
		platformName = "CursoHub"
	}
	return &CertificateRenderer{platformName: platformName}
}

// Render produces the PDF bytes for one certificate.
func (r *CertificateRenderer) Render(cert Certificate) ([]byte, error) {
	if cert.StudentName == "" || cert.CourseTitle == "" {
		return nil, fmt.Errorf("certificate requires student name and course title")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	width, height := pdf.GetPageSize()
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, width-20, height-20, "D")

	pdf.SetFont("Arial", "B", 28)
	pdf.SetY(40)
	pdf.CellFormat(0, 14, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.Ln(6)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s certifies that", r.platformName), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 22)
	pdf.Ln(4)
	pdf.CellFormat(0, 12, cert.StudentName, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.Ln(2)
	pdf.CellFormat(0, 8, "has successfully completed the course", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 16)
	pdf.Ln(2)
	pdf.CellFormat(0, 10, cert.CourseTitle, "", 1, "C", false, 0, "")

	if cert.InstructorName != "" {
		pdf.SetFont("Arial", "I", 11)
		pdf.Ln(2)
		pdf.CellFormat(0, 8, fmt.Sprintf("Instructor: %s", cert.InstructorName), "", 1, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "", 11)
	pdf.Ln(6)
	completed := cert.CompletedAt
	if completed.IsZero() {
		completed = time.Now().UTC()
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Completed on %s", completed.Format("January 2, 2006")), "", 1, "C", false, 0, "")

	if cert.SerialNumber != "" {
		pdf.SetFont("Arial", "", 8)
		pdf.SetY(height - 24)
		pdf.CellFormat(0, 6, fmt.Sprintf("Certificate no. %s", cert.SerialNumber), "", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
