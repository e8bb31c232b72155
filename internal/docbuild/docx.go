// Package docbuild produces academic documents locally: a minimal OOXML
// writer for DOCX output and a LibreOffice-based PDF conversion step.
package docbuild

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"strings"

	"docgen-worker-service/internal/content"
)

// Builder writes CourseContent into DOCX files.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// BuildDocx writes the document to path. The produced file carries a title
// page, abstract, chapters, conclusion and references.
func (b *Builder) BuildDocx(c *content.CourseContent, path string) error {
	if c == nil || c.Title == "" {
		return errors.New("docbuild: empty content")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/document.xml", documentXML(c)},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			zw.Close()
			f.Close()
			os.Remove(path)
			return err
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			zw.Close()
			f.Close()
			os.Remove(path)
			return err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func documentXML(c *content.CourseContent) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	writeHeading(&b, 1, c.Title)
	if c.Subtitle != "" {
		writeHeading(&b, 2, c.Subtitle)
	}

	if c.Abstract != "" {
		writeHeading(&b, 2, "ANNOTATSIYA")
		writeParagraphs(&b, c.Abstract)
	}
	if len(c.Keywords) > 0 {
		writeParagraphs(&b, "Kalit so'zlar: "+strings.Join(c.Keywords, ", "))
	}

	if c.Introduction != "" {
		writeHeading(&b, 2, "KIRISH")
		writeParagraphs(&b, c.Introduction)
	}

	for _, ch := range c.Chapters {
		writeHeading(&b, 2, ch.Title)
		for _, sec := range ch.Sections {
			writeHeading(&b, 3, sec.Title)
			writeParagraphs(&b, sec.Body)
		}
	}

	if c.Conclusion != "" {
		writeHeading(&b, 2, "XULOSA")
		writeParagraphs(&b, c.Conclusion)
	}

	if len(c.References) > 0 {
		writeHeading(&b, 2, "FOYDALANILGAN ADABIYOTLAR")
		for i, ref := range c.References {
			writeParagraphs(&b, fmt.Sprintf("%d. %s", i+1, ref))
		}
	}

	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`)
	return b.String()
}

func writeHeading(b *strings.Builder, level int, text string) {
	fmt.Fprintf(b,
		`<w:p><w:pPr><w:pStyle w:val="Heading%d"/></w:pPr><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		level, escapeXML(text))
}

// writeParagraphs splits the text on blank lines so generated multi-paragraph
// bodies keep their structure.
func writeParagraphs(b *strings.Builder, text string) {
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		fmt.Fprintf(b,
			`<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
			escapeXML(para))
	}
}

func escapeXML(s string) string {
	return xmlReplacer.Replace(s)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"\n", " ",
)
