package extract

import (
	"log/slog"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"lexcase-backend/metrics"
)

// Extractor turns uploaded bytes into plain text. It never fails: any
// problem is logged and yields an empty string, so the document is still
// indexed (retrievable by filename, just without content).
type Extractor struct {
	ocr    OCR
	logger *slog.Logger
}

// ExtractorOption is a functional option for Extractor
type ExtractorOption func(*Extractor)

// WithOCR sets the OCR engine used for images
func WithOCR(ocr OCR) ExtractorOption {
	return func(e *Extractor) {
		e.ocr = ocr
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an extractor using the compiled-in OCR engine by default
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		ocr:    DefaultOCR(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the plain text of content. contentType may be a declared
// Content-Type header value; callers without one should pass
// InferContentType(filename).
func (e *Extractor) Extract(content []byte, contentType string) string {
	mimeType := NormalizeContentType(contentType)

	var (
		kind string
		text string
		err  error
	)
	switch {
	case mimeType == MimePDF:
		kind = "pdf"
		text, err = e.extractPDF(content)
	case mimeType == MimeDOCX || mimeType == MimeDOC:
		kind = "docx"
		text, err = docxParagraphs(content)
	case strings.HasPrefix(mimeType, "image/"):
		kind = "image"
		text, err = e.ocr.Recognize(content, OCRLanguage)
	case mimeType == MimeText:
		kind = "text"
		text, err = decodeText(content)
	default:
		metrics.ExtractionsTotal.WithLabelValues("unsupported", "empty").Inc()
		e.logger.Debug("no extractor for content type", "content_type", mimeType)
		return ""
	}

	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues(kind, "error").Inc()
		e.logger.Warn("text extraction failed",
			"content_type", mimeType,
			"size", len(content),
			"error", err,
		)
		return ""
	}

	text = strings.TrimSpace(text)
	if text == "" {
		metrics.ExtractionsTotal.WithLabelValues(kind, "empty").Inc()
	} else {
		metrics.ExtractionsTotal.WithLabelValues(kind, "ok").Inc()
	}
	return text
}

// PDF readers, in the order they are tried
var (
	primaryPDF  = pdfByRows
	fallbackPDF = pdfPlain
)

// extractPDF tries the layout-aware reader first, then the plain reader when
// the first yields nothing (or fails).
func (e *Extractor) extractPDF(content []byte) (string, error) {
	text, err := primaryPDF(content)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		e.logger.Debug("layout pdf extraction failed, trying fallback", "error", err)
	}

	fallback, fallbackErr := fallbackPDF(content)
	if fallbackErr != nil {
		if err != nil {
			return "", err
		}
		return "", fallbackErr
	}
	return fallback, nil
}

// decodeText decodes UTF-8 (optionally BOM-prefixed), replacing invalid bytes
// with U+FFFD.
func decodeText(content []byte) (string, error) {
	decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(content)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
