//go:build !tesseract

package extract

type unavailableOCR struct{}

func (unavailableOCR) Recognize(image []byte, language string) (string, error) {
	return "", ErrOCRUnavailable
}

func defaultOCR() OCR {
	return unavailableOCR{}
}
