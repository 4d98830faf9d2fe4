package pdfcheck

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsOversizedFile(t *testing.T) {
	limits := Limits{MaxFileSizeMB: 1, MaxPages: 10}
	content := bytes.Repeat([]byte("a"), 2*1024*1024)

	result, err := ValidatePDFBytes(content, limits)
	assert.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "exceeds maximum allowed size")
}

func TestValidateRejectsMissingHeader(t *testing.T) {
	result, err := ValidatePDFBytes([]byte("this is not a pdf"), DefaultLimits)
	assert.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "missing PDF header")
}

func TestValidateRejectsTruncatedPDF(t *testing.T) {
	// Valid header but no cross-reference table or trailer
	result, err := ValidatePDFBytes([]byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj"), DefaultLimits)
	assert.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Error)
}

func TestSanitizeTrimsTrailingGarbage(t *testing.T) {
	pdf := []byte("%PDF-1.4\nsome body\n%%EOF\n")
	garbage := append(append([]byte{}, pdf...), []byte("-----TRAILING JUNK-----")...)

	cleaned := sanitizePDF(garbage)
	assert.Equal(t, pdf, cleaned)
}

func TestSanitizeLeavesCleanPDFAlone(t *testing.T) {
	pdf := []byte("%PDF-1.4\nsome body\n%%EOF\n")
	assert.Equal(t, pdf, sanitizePDF(pdf))

	// No EOF marker at all: nothing to trim on
	noEOF := []byte("%PDF-1.4\nsome body")
	assert.Equal(t, noEOF, sanitizePDF(noEOF))

	notPDF := []byte(strings.Repeat("x", 32))
	assert.Equal(t, notPDF, sanitizePDF(notPDF))
}
