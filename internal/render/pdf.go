// Package render lays out the drafted notice as a paginated PDF and
// publishes generated artifacts for one-time fetch.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
)

// Meta carries the non-body fields of the notice layout.
type Meta struct {
	Recipient string
	Subject   string
	Citations string
	Date      time.Time
}

const (
	letterhead = "NYAYA CONSUMER HELPDESK"
	title      = "NOTICE UNDER THE CONSUMER PROTECTION ACT, 2019"
	disclaimer = "Drafted electronically via Nyaya. This is an AI-assisted draft and does not constitute formal legal counsel."

	headingMaxLen = 60
)

// RenderNotice produces the PDF bytes for a notice body. Paragraphs
// that are entirely upper-case and shorter than the heading threshold
// are set as sub-headings; everything else is justified body text.
func RenderNotice(body string, meta Meta) ([]byte, error) {
	body = sanitize(body)
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("notice body is empty")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 20, 18)
	pdf.SetAutoPageBreak(true, 30)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-22)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(128, 128, 128)
		pdf.MultiCell(0, 4.5, disclaimer, "", "C", false)
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, letterhead, "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 15)
	pdf.MultiCell(0, 7, title, "", "C", false)
	pdf.Ln(4)

	date := meta.Date
	if date.IsZero() {
		date = time.Now()
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Date: "+date.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	if r := sanitize(meta.Recipient); r != "" {
		pdf.CellFormat(0, 5, "To: "+r, "", 1, "L", false, 0, "")
	}
	if s := sanitize(meta.Subject); s != "" {
		pdf.CellFormat(0, 5, "Subject: "+s, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for _, para := range paragraphs(body) {
		if isHeading(para) {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 6, para, "", "L", false)
			pdf.Ln(1)
			continue
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5.5, para, "", "J", false)
		pdf.Ln(2)
	}

	if c := sanitize(meta.Citations); c != "" {
		pdf.Ln(3)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Legal Basis", "LTR", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, c, "LBR", "L", true)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func paragraphs(body string) []string {
	var out []string
	for _, p := range strings.Split(body, "\n\n") {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isHeading reports whether a paragraph renders as a sub-heading:
// short and containing letters that are all upper-case.
func isHeading(p string) bool {
	if len([]rune(p)) >= headingMaxLen {
		return false
	}
	hasLetter := false
	for _, r := range p {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// sanitize strips control and escape sequences that would corrupt the
// layout, keeping newlines for paragraph structure.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
