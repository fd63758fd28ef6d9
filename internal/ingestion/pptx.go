package ingestion

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ExtractTextFromPPTX pulls the text runs (<a:t>) out of every slide, one
// paragraph per slide, in slide order.
func ExtractTextFromPPTX(filePath string) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", errors.Wrap(err, "open pptx")
	}
	defer zr.Close()

	type slide struct {
		n    int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if n, ok := slideNumber(f.Name); ok {
			slides = append(slides, slide{n: n, file: f})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var out strings.Builder
	for _, s := range slides {
		text, err := slideText(s.file)
		if err != nil {
			return "", errors.Wrapf(err, "slide %d", s.n)
		}
		if text == "" {
			continue
		}
		fmt.Fprintf(&out, "Slide %d: %s\n\n", s.n, text)
	}
	return strings.TrimSpace(out.String()), nil
}

func slideNumber(name string) (int, bool) {
	if path.Dir(name) != "ppt/slides" {
		return 0, false
	}
	base := path.Base(name)
	if !strings.HasPrefix(base, "slide") || !strings.HasSuffix(base, ".xml") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(base, "slide"), ".xml"))
	return n, err == nil
}

func slideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var parts []string
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			inText = false
		case xml.CharData:
			if inText {
				if s := strings.TrimSpace(string(t)); s != "" {
					parts = append(parts, s)
				}
			}
		}
	}
	return strings.Join(parts, " "), nil
}
