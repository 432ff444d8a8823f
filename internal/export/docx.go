package export

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	fontColor = "000000"
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*•]\s+(.+)$`)
)

// Docx renders a markdown summary into a styled .docx file at path.
func Docx(doc Document, path string) error {
	d, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(d.AddParagraph(""), doc.Title, true, 16)
	if meta := doc.metaLine(); meta != "" {
		d.AddParagraph("").AddText(meta).Font(fontName).Size(11).Color("555555").Italic(true)
	}

	for _, line := range strings.Split(doc.Summary, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(d.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(d.AddParagraph(""), "• "+m[1])
			continue
		}
		// Numbered items keep their numbers as written.
		addRichText(d.AddParagraph(""), trimmed)
	}

	return d.SaveTo(path)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanInline(text)).Font(fontName).Size(size).Color(fontColor)
	if bold {
		run.Bold(true)
	}
}

// addRichText writes text as runs, bolding **spans**.
func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanInline(part)).Font(fontName).Size(fontSize).Color(fontColor)
		}
		if i < len(matches) {
			p.AddText(cleanInline(matches[i][1])).Font(fontName).Size(fontSize).Color(fontColor).Bold(true)
		}
	}
}

func cleanInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
