package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOCR struct {
	text     string
	err      error
	language string
}

func (f *fakeOCR) Recognize(image []byte, language string) (string, error) {
	f.language = language
	return f.text, f.err
}

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildPDF writes a one-page PDF showing text in Helvetica
func buildPDF(text string) []byte {
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtract_PlainTextReplacesInvalidBytes(t *testing.T) {
	e := NewExtractor(WithOCR(&fakeOCR{}))

	text := e.Extract([]byte("umowa\xffnajmu"), "text/plain; charset=utf-8")

	assert.Equal(t, "umowa�najmu", text)
}

func TestExtract_PlainTextStripsBOM(t *testing.T) {
	e := NewExtractor(WithOCR(&fakeOCR{}))

	assert.Equal(t, "pozew", e.Extract([]byte("\xEF\xBB\xBFpozew"), MimeText))
}

func TestExtract_Docx(t *testing.T) {
	e := NewExtractor(WithOCR(&fakeOCR{}))
	data := buildDocx(t, "Art. 1. Kodeks reguluje", "stosunki cywilnoprawne")

	text := e.Extract(data, MimeDOCX)

	assert.Equal(t, "Art. 1. Kodeks reguluje\nstosunki cywilnoprawne", text)
}

func TestExtract_CorruptInputsYieldEmpty(t *testing.T) {
	e := NewExtractor(WithOCR(&fakeOCR{}))

	assert.Empty(t, e.Extract([]byte("not a zip"), MimeDOCX))
	assert.Empty(t, e.Extract([]byte("%PDF-garbage"), MimePDF))
}

func TestExtract_PDF(t *testing.T) {
	e := NewExtractor(WithOCR(&fakeOCR{}))
	data := buildPDF("stosunki cywilnoprawne")

	assert.Equal(t, "stosunki cywilnoprawne", e.Extract(data, MimePDF))

	plain, err := pdfPlain(data)
	require.NoError(t, err)
	assert.Contains(t, plain, "stosunki cywilnoprawne")
}

func TestExtract_PDFFallsBackWhenLayoutReaderIsBlank(t *testing.T) {
	primary, fallback := primaryPDF, fallbackPDF
	t.Cleanup(func() { primaryPDF, fallbackPDF = primary, fallback })

	var fallbackCalls int
	primaryPDF = func([]byte) (string, error) { return " \n\n ", nil }
	fallbackPDF = func([]byte) (string, error) {
		fallbackCalls++
		return "tekst z drugiego czytnika", nil
	}
	e := NewExtractor(WithOCR(&fakeOCR{}))

	assert.Equal(t, "tekst z drugiego czytnika", e.Extract([]byte("%PDF-1.4"), MimePDF))
	assert.Equal(t, 1, fallbackCalls)

	primaryPDF = func([]byte) (string, error) { return "", errors.New("xref broken") }
	assert.Equal(t, "tekst z drugiego czytnika", e.Extract([]byte("%PDF-1.4"), MimePDF))
	assert.Equal(t, 2, fallbackCalls)

	primaryPDF = func([]byte) (string, error) { return "pierwszy czytnik", nil }
	assert.Equal(t, "pierwszy czytnik", e.Extract([]byte("%PDF-1.4"), MimePDF))
	assert.Equal(t, 2, fallbackCalls, "fallback is not consulted when the layout reader has text")

	fallbackPDF = func([]byte) (string, error) { return "", errors.New("also broken") }
	primaryPDF = func([]byte) (string, error) { return "", nil }
	assert.Empty(t, e.Extract([]byte("%PDF-1.4"), MimePDF))
}

func TestExtract_ImageUsesPolishOCR(t *testing.T) {
	ocr := &fakeOCR{text: "  Wyrok w imieniu Rzeczypospolitej  "}
	e := NewExtractor(WithOCR(ocr))

	text := e.Extract([]byte{0x89, 'P', 'N', 'G'}, "image/png")

	assert.Equal(t, "Wyrok w imieniu Rzeczypospolitej", text)
	assert.Equal(t, "pol", ocr.language)
}

func TestExtract_OCRFailureYieldsEmpty(t *testing.T) {
	e := NewExtractor(WithOCR(&fakeOCR{err: errors.New("tesseract missing")}))

	assert.Empty(t, e.Extract([]byte{1, 2, 3}, "image/jpeg"))
}

func TestExtract_UnknownTypeYieldsEmpty(t *testing.T) {
	e := NewExtractor(WithOCR(&fakeOCR{}))

	assert.Empty(t, e.Extract([]byte("anything"), MimeDefault))
	assert.Empty(t, e.Extract([]byte("anything"), ""))
}

func TestInferContentType(t *testing.T) {
	assert.Equal(t, MimePDF, InferContentType("Pozew.PDF"))
	assert.Equal(t, MimeDOCX, InferContentType("umowa.docx"))
	assert.Equal(t, "image/jpeg", InferContentType("skan.jpeg"))
	assert.Equal(t, MimeText, InferContentType("notatka.txt"))
	assert.Equal(t, MimeDefault, InferContentType("archiwum.7z"))
	assert.Equal(t, MimeDefault, InferContentType("bez_rozszerzenia"))
}

func TestResolveContentType(t *testing.T) {
	assert.Equal(t, MimePDF, ResolveContentType("", "a.pdf"))
	assert.Equal(t, MimePDF, ResolveContentType("application/octet-stream", "a.pdf"))
	assert.Equal(t, MimeText, ResolveContentType("Text/Plain; charset=UTF-8", "a.pdf"))
	assert.Equal(t, MimePDF, ResolveContentType("application/x-pdf", "a.bin"))
}
