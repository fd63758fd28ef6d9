package processing

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	SourceLocal = "local"
	SourceDrive = "gdrive"
)

// FileType is the coarse modality of an ingested document.
type FileType string

const (
	TypeText  FileType = "text"
	TypePDF   FileType = "pdf"
	TypeImage FileType = "image"
	TypeAudio FileType = "audio"
	TypeSlide FileType = "slides"
	TypeOther FileType = "other"
)

var typesByExt = map[string]FileType{
	".txt":  TypeText,
	".md":   TypeText,
	".pdf":  TypePDF,
	".png":  TypeImage,
	".jpg":  TypeImage,
	".jpeg": TypeImage,
	".mp3":  TypeAudio,
	".wav":  TypeAudio,
	".m4a":  TypeAudio,
	".pptx": TypeSlide,
}

type Metadata struct {
	Path       string
	Source     string // "local" or "gdrive"
	FileType   FileType
	ImportedAt time.Time
	Title      string
}

func NewMetadata(path, source string) Metadata {
	base := filepath.Base(path)
	return Metadata{
		Path:       path,
		Source:     source,
		FileType:   TypeOf(path),
		ImportedAt: time.Now(),
		Title:      strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// TypeOf maps a path to its FileType by extension.
func TypeOf(path string) FileType {
	if t, ok := typesByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return TypeOther
}

// Supported reports whether path has an extension the extractor can read.
func Supported(path string) bool {
	return TypeOf(path) != TypeOther
}
