// Package audit holds the data exchanged with the Audit Service and the
// formatting rules used to present it.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileKind is the advisory type hint derived from a file's extension.
type FileKind string

const (
	KindPDF     FileKind = "pdf"
	KindPNG     FileKind = "png"
	KindJPG     FileKind = "jpg"
	KindJPEG    FileKind = "jpeg"
	KindUnknown FileKind = "unknown"
)

// AcceptedExtensions mirrors the picker filter offered to the user.
var AcceptedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg"}

// SelectedFile is the bill the user picked. It lives only in interface state.
type SelectedFile struct {
	Name      string
	Path      string
	SizeBytes int64
	Kind      FileKind
}

// NewSelectedFile stats path and describes it. Directories are rejected; the
// extension is never checked here.
func NewSelectedFile(path string) (SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SelectedFile{}, fmt.Errorf("audit: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return SelectedFile{}, fmt.Errorf("audit: %s is a directory", path)
	}
	return SelectedFile{
		Name:      info.Name(),
		Path:      path,
		SizeBytes: info.Size(),
		Kind:      KindFromName(info.Name()),
	}, nil
}

// KindFromName maps a filename to its type hint.
func KindFromName(name string) FileKind {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "pdf":
		return KindPDF
	case "png":
		return KindPNG
	case "jpg":
		return KindJPG
	case "jpeg":
		return KindJPEG
	default:
		return KindUnknown
	}
}

// ContentType returns the MIME type sent with the multipart part.
func (k FileKind) ContentType() string {
	switch k {
	case KindPDF:
		return "application/pdf"
	case KindPNG:
		return "image/png"
	case KindJPG, KindJPEG:
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// Accepted reports whether the kind is one the picker offers.
func (k FileKind) Accepted() bool {
	return k != KindUnknown && k != ""
}
