package extract

import (
	"mime"
	"path/filepath"
	"strings"
)

const (
	MimePDF     = "application/pdf"
	MimeDOCX    = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC     = "application/msword"
	MimeText    = "text/plain"
	MimeDefault = "application/octet-stream"
)

var extensionTypes = map[string]string{
	".pdf":  MimePDF,
	".docx": MimeDOCX,
	".doc":  MimeDOC,
	".txt":  MimeText,
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var typeAliases = map[string]string{
	"application/x-pdf": MimePDF,
	"image/jpg":         "image/jpeg",
}

// InferContentType maps a filename extension to a MIME type.
// Unknown extensions map to application/octet-stream.
func InferContentType(filename string) string {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return MimeDefault
}

// NormalizeContentType strips parameters and lower-cases a declared type
func NormalizeContentType(contentType string) string {
	t := strings.ToLower(strings.TrimSpace(contentType))
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		t = mt
	} else if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if alias, ok := typeAliases[t]; ok {
		return alias
	}
	return t
}

// ResolveContentType prefers a usable declared type and falls back to the
// extension table
func ResolveContentType(declared, filename string) string {
	t := NormalizeContentType(declared)
	if t == "" || t == MimeDefault {
		return InferContentType(filename)
	}
	return t
}
