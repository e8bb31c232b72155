package docbuild

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const convertTimeout = 60 * time.Second

// ConvertToPDF converts a DOCX into a PDF next to it using headless
// LibreOffice. Callers treat a conversion error as non-terminal and fall back
// to delivering the DOCX.
func (b *Builder) ConvertToPDF(ctx context.Context, docxPath, pdfPath string) error {
	ctx, cancel := context.WithTimeout(ctx, convertTimeout)
	defer cancel()

	outDir := filepath.Dir(pdfPath)
	cmd := exec.CommandContext(ctx, "soffice", "--headless", "--convert-to", "pdf", "--outdir", outDir, docxPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("soffice convert: %w: %s", err, strings.TrimSpace(string(out)))
	}

	// soffice names the output after the input file.
	produced := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return fmt.Errorf("soffice convert: output missing: %w", err)
	}
	if produced != pdfPath {
		return os.Rename(produced, pdfPath)
	}
	return nil
}
