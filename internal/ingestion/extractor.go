package ingestion

import (
	"context"
	"os"
	"strings"

	"github.com/Divas-Gupta30/rag-agent/internal/llm"
	"github.com/Divas-Gupta30/rag-agent/internal/processing"
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoTranscriber   = errors.New("audio transcription is not configured")
)

// Extractor turns a file of any supported modality into plain text.
type Extractor struct {
	// Transcriber handles audio; nil disables audio ingestion.
	Transcriber llm.Transcriber
}

// ExtractText detects file type and returns text via direct extraction,
// OCR or transcription.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	switch processing.TypeOf(path) {
	case processing.TypeText:
		b, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Wrap(err, "read text file")
		}
		return string(b), nil
	case processing.TypePDF:
		// try text layer
		text, err := ExtractTextFromPDF(ctx, path)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		// fallback to OCR
		return ExtractTextWithOCR(ctx, path)
	case processing.TypeImage:
		return ExtractTextWithOCR(ctx, path)
	case processing.TypeAudio:
		if e.Transcriber == nil {
			return "", ErrNoTranscriber
		}
		text, err := e.Transcriber.Transcribe(ctx, path)
		return text, errors.Wrap(err, "transcribe audio")
	case processing.TypeSlide:
		return ExtractTextFromPPTX(path)
	default:
		return "", ErrUnsupportedType
	}
}
