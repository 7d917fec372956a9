//go:build tesseract

package extract

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// tesseractOCR runs Tesseract through gosseract; requires libtesseract and
// the traineddata for the requested language.
type tesseractOCR struct{}

func (tesseractOCR) Recognize(image []byte, language string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("failed to set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr failed: %w", err)
	}
	return text, nil
}

func defaultOCR() OCR {
	return tesseractOCR{}
}
