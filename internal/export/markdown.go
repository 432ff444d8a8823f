// Package export writes finished summaries to files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Document is a finished summary ready to be written out.
type Document struct {
	Title     string
	VideoID   string
	Language  string
	Model     string
	Summary   string
	CreatedAt time.Time
}

func (d Document) metaLine() string {
	var parts []string
	if d.VideoID != "" {
		parts = append(parts, "https://www.youtube.com/watch?v="+d.VideoID)
	}
	if d.Language != "" {
		parts = append(parts, d.Language)
	}
	if d.Model != "" {
		parts = append(parts, d.Model)
	}
	if !d.CreatedAt.IsZero() {
		parts = append(parts, d.CreatedAt.Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, " · ")
}

// Markdown renders the document as markdown.
func Markdown(d Document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", d.Title)
	if meta := d.metaLine(); meta != "" {
		fmt.Fprintf(&sb, "_%s_\n\n", meta)
	}
	sb.WriteString(strings.TrimSpace(d.Summary))
	sb.WriteString("\n")
	return sb.String()
}

// WriteFiles writes <base>.md and <base>.docx into dir and returns both paths.
func WriteFiles(d Document, dir, base string) (mdPath, docxPath string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	mdPath = filepath.Join(dir, base+".md")
	if err := os.WriteFile(mdPath, []byte(Markdown(d)), 0644); err != nil {
		return "", "", fmt.Errorf("write markdown: %w", err)
	}

	docxPath = filepath.Join(dir, base+".docx")
	if err := Docx(d, docxPath); err != nil {
		return mdPath, "", fmt.Errorf("write docx: %w", err)
	}
	return mdPath, docxPath, nil
}
