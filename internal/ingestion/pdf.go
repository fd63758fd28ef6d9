package ingestion

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// ExtractTextFromPDF reads the text layer, falling back to the pdftotext CLI
// when the library finds nothing. An empty result means the PDF is scanned.
func ExtractTextFromPDF(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "open pdf")
	}
	defer f.Close()

	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return "", errors.Wrap(err, "read pdf text")
	}
	if _, err := io.Copy(&buf, b); err != nil {
		return "", errors.Wrap(err, "copy pdf text")
	}
	text := strings.TrimSpace(buf.String())
	if text == "" {
		// try pdftotext CLI if available
		out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
		if err == nil {
			return strings.TrimSpace(string(out)), nil
		}
	}
	return text, nil
}
