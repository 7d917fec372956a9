package extract

import "errors"

// OCRLanguage is the recognition language for scanned documents
const OCRLanguage = "pol"

// ErrOCRUnavailable is returned when the binary was built without an OCR engine
var ErrOCRUnavailable = errors.New("ocr engine not available")

// OCR recognizes text in an encoded image
type OCR interface {
	Recognize(image []byte, language string) (string, error)
}

// DefaultOCR returns the engine compiled into this binary
func DefaultOCR() OCR {
	return defaultOCR()
}
