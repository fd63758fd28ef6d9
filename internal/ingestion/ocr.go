package ingestion

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"
)

// ExtractTextWithOCR runs OCR on images or scanned PDFs.
// For PDFs we convert pages to PNGs using pdftoppm (poppler).
func ExtractTextWithOCR(ctx context.Context, path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return runTesseract(path)
	}

	tmpDir, err := os.MkdirTemp("", "rag_pdfimg")
	if err != nil {
		return "", errors.Wrap(err, "create page dir")
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	if err := exec.CommandContext(ctx, "pdftoppm", "-png", path, prefix).Run(); err != nil {
		return "", errors.Wrap(err, "pdftoppm convert failed")
	}
	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return "", err
	}
	sort.Strings(pages)

	var combined strings.Builder
	for _, p := range pages {
		t, err := runTesseract(p)
		if err != nil {
			continue
		}
		combined.WriteString(t)
		combined.WriteString("\n\n")
	}
	return strings.TrimSpace(combined.String()), nil
}

func runTesseract(imgPath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImage(imgPath); err != nil {
		return "", errors.Wrap(err, "tesseract set image")
	}
	text, err := client.Text()
	if err != nil {
		return "", errors.Wrap(err, "tesseract")
	}
	return strings.TrimSpace(text), nil
}
