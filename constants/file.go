package constants

import (
	"bytes"
	"strings"
)

// Source formats a document can arrive in.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
	TEXT  = "TEXT"
)

// FileTypes holds the formats the text extractor understands.
var FileTypes = []string{PDF, IMAGE, TEXT}

// AllowedExtensions holds the default allowed file extensions for COI documents.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to PDF, IMAGE or TEXT ("" if unsupported).
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "tif", "tiff":
		return IMAGE
	case "txt":
		return TEXT
	default:
		return ""
	}
}

var (
	magicPDF  = []byte("%PDF-")
	magicPNG  = []byte("\x89PNG\r\n\x1a\n")
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
	magicTIFL = []byte("II*\x00")
	magicTIFB = []byte("MM\x00*")
)

// SniffFormat guesses the format of raw document bytes from their leading magic.
// Anything unrecognised is treated as plain text.
func SniffFormat(b []byte) string {
	head := bytes.TrimLeft(b[:min(len(b), 1024)], "\xef\xbb\xbf \t\r\n")
	switch {
	case bytes.HasPrefix(head, magicPDF):
		return PDF
	case bytes.HasPrefix(b, magicPNG), bytes.HasPrefix(b, magicJPEG),
		bytes.HasPrefix(b, magicTIFL), bytes.HasPrefix(b, magicTIFB):
		return IMAGE
	default:
		return TEXT
	}
}

// ExtForFormat is the temp-file extension used when handing bytes to external tools.
func ExtForFormat(format string) string {
	switch format {
	case PDF:
		return ".pdf"
	case IMAGE:
		return ".img"
	default:
		return ".txt"
	}
}
