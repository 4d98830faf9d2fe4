package pdfcheck

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Limits defines the validation limits for PDF uploads
type Limits struct {
	MaxFileSizeMB int
	MaxPages      int
}

// DefaultLimits fits application materials (SOPs, CVs, writing samples)
var DefaultLimits = Limits{
	MaxFileSizeMB: 25,
	MaxPages:      100,
}

// Result contains the result of PDF validation
type Result struct {
	Valid     bool
	PageCount int
	WordCount int
	FileSize  int64
	Error     string
}

// ValidatePDFBytes validates PDF content against the given limits and, when
// the PDF carries a text layer, estimates its word count.
func ValidatePDFBytes(content []byte, limits Limits) (*Result, error) {
	result := &Result{
		FileSize: int64(len(content)),
	}

	// 1. Validate file size
	maxSize := int64(limits.MaxFileSizeMB) * 1024 * 1024
	if result.FileSize > maxSize {
		result.Error = fmt.Sprintf("File size exceeds maximum allowed size of %dMB", limits.MaxFileSizeMB)
		return result, nil
	}

	// 2. Validate PDF header
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		result.Error = "Invalid PDF file: missing PDF header"
		return result, nil
	}

	content = sanitizePDF(content)

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		result.Error = fmt.Sprintf("Failed to read PDF: %v", err)
		return result, nil
	}

	// 3. Validate page count
	pageCount := pdfReader.NumPage()
	result.PageCount = pageCount

	if pageCount == 0 {
		result.Error = "PDF has no pages"
		return result, nil
	}
	if pageCount > limits.MaxPages {
		result.Error = fmt.Sprintf("PDF has %d pages, which exceeds the maximum of %d pages",
			pageCount, limits.MaxPages)
		return result, nil
	}

	// 4. Estimate word count from the text layer. Scanned PDFs have none;
	// that is not an error, the count just stays zero.
	result.WordCount = countWords(pdfReader, pageCount)

	result.Valid = true
	return result, nil
}

// sanitizePDF removes trailing garbage data from PDFs
func sanitizePDF(content []byte) []byte {
	if len(content) == 0 || !bytes.HasPrefix(content, []byte("%PDF-")) {
		return content
	}

	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		return content
	}

	pdfEnd := lastEOF + len(eofMarker)
	for pdfEnd < len(content) && (content[pdfEnd] == '\n' || content[pdfEnd] == '\r') {
		pdfEnd++
	}

	if pdfEnd < len(content) {
		return content[:pdfEnd]
	}
	return content
}

func countWords(pdfReader *pdf.Reader, pageCount int) int {
	words := 0
	for i := 1; i <= pageCount; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		words += len(strings.Fields(text))
	}
	return words
}
