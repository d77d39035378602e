package docparser

import (
	"strings"

	"github.com/unidoc/unioffice/document"
)

// readDocx extracts paragraph text from a .docx file, one line per
// paragraph, so the regular header and lesson markers apply unchanged.
func readDocx(path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var b strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			b.WriteString(run.Text())
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
