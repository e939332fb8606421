package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrInvalidMimeType = errors.New("file type not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// Kind groups uploads that share an allow-list
type Kind string

const (
	KindImage      Kind = "image"
	KindAttachment Kind = "attachment"
)

const mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// AllowedMimeTypes lists sniffed content types accepted per kind
var AllowedMimeTypes = map[Kind][]string{
	KindImage:      {"image/jpeg", "image/png"},
	KindAttachment: {"application/pdf", "text/plain", "image/jpeg", "image/png", mimeDocx},
}

// MaxFileSizes in bytes per kind
var MaxFileSizes = map[Kind]int64{
	KindImage:      10 * 1024 * 1024,
	KindAttachment: 20 * 1024 * 1024,
}

// ValidatedFile is an upload that passed size and type checks
type ValidatedFile struct {
	Data     []byte
	MimeType string
}

// ValidateFile reads reader fully, detects its type from content and checks
// it against the allow-list for kind. declaredName is only consulted to tell
// a .docx apart from an arbitrary zip archive.
func ValidateFile(reader io.Reader, kind Kind, declaredName string) (*ValidatedFile, error) {
	allowedTypes, ok := AllowedMimeTypes[kind]
	if !ok {
		return nil, fmt.Errorf("unknown upload kind: %s", kind)
	}
	maxSize, ok := MaxFileSizes[kind]
	if !ok {
		maxSize = 10 * 1024 * 1024 // Default 10 MB
	}

	// Read at most maxSize+1 to detect oversized files
	data, err := io.ReadAll(io.LimitReader(reader, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > maxSize {
		return nil, ErrFileTooLarge
	}

	mimeType := DetectMimeType(data, declaredName)
	for _, t := range allowedTypes {
		if t == mimeType {
			return &ValidatedFile{Data: data, MimeType: mimeType}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidMimeType, mimeType)
}

// DetectMimeType sniffs data and strips parameters such as charset
func DetectMimeType(data []byte, declaredName string) string {
	mimeType := http.DetectContentType(data)
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	// Office documents sniff as zip containers
	if mimeType == "application/zip" && strings.EqualFold(filepath.Ext(declaredName), ".docx") {
		return mimeDocx
	}
	return mimeType
}

// GetExtensionForMime returns the file extension for a MIME type
func GetExtensionForMime(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "application/pdf":
		return ".pdf"
	case "text/plain":
		return ".txt"
	case mimeDocx:
		return ".docx"
	default:
		return ""
	}
}

// MimeForExtension is the inverse of GetExtensionForMime for keys produced
// by GenerateKey. Unknown extensions map to application/octet-stream.
func MimeForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".docx":
		return mimeDocx
	default:
		return "application/octet-stream"
	}
}

// GenerateKey builds a storage key of the form prefix/yyyy/mm/<uuid><ext>.
// Uploaded file names never appear in keys.
func GenerateKey(prefix, mimeType string, now time.Time) string {
	return fmt.Sprintf("%s/%04d/%02d/%s%s",
		prefix, now.Year(), int(now.Month()), uuid.New().String(), GetExtensionForMime(mimeType))
}
