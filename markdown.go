package paperlayout

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/ivanvanderbyl/markdown"
)

// ToMarkdown renders the reconstructed paper: bibliographic header, abstract,
// chapters, then tables and figure captions.
func (d *Document) ToMarkdown() string {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	writeFrontMatter(md, d.Metadata)

	for _, ch := range d.Chapters {
		if ch.Header != nil {
			heading(md, headingLevel(ch.Header.Text), strings.TrimSpace(ch.Header.Text))
			md.LF()
		}
		for _, p := range ch.Paragraphs {
			if text := p.Text(); text != "" {
				md.PlainText(text)
				md.LF()
			}
		}
	}

	for _, t := range d.Tables {
		convertTableToMarkdown(md, &t)
		md.LF()
	}

	for _, img := range d.Images {
		if !img.IsImage {
			continue
		}
		md.PlainText(markdown.Italic(collapseSpaces(img.CaptionText)))
		md.LF()
	}

	if err := md.Build(); err != nil {
		return ""
	}
	return buf.String()
}

// writeFrontMatter renders title, authors, DOI and abstract when known.
func writeFrontMatter(md *markdown.Markdown, meta Metadata) {
	if meta.Title != "" {
		md.H1(meta.Title)
		md.LF()
	}
	if meta.Subtitle != "" {
		md.PlainText(markdown.Italic(meta.Subtitle))
		md.LF()
	}
	if len(meta.Authors) > 0 {
		names := make([]string, 0, len(meta.Authors))
		for _, a := range meta.Authors {
			names = append(names, strings.TrimSpace(a.Given+" "+a.Family))
		}
		md.PlainText(strings.Join(names, ", "))
		md.LF()
	}
	if meta.DOI != "" {
		md.PlainText(markdown.Bold("DOI:") + " " + meta.DOI)
		md.LF()
	}
	if meta.Abstract != "" {
		md.H2("Abstract")
		md.LF()
		md.PlainText(meta.Abstract)
		md.LF()
	}
}

// headingLevel maps section numbering to a heading level: "3 Results" is
// H2, "3.1 Setup" H3 and so on. Unnumbered headers are H2.
func headingLevel(text string) int {
	fields := strings.Fields(text)
	if len(fields) == 0 || !startsWithDigit(fields[0]) {
		return 2
	}
	number := strings.TrimRight(fields[0], ".")
	for _, r := range number {
		if !unicode.IsDigit(r) && r != '.' {
			return 2
		}
	}
	return min(2+strings.Count(number, "."), 6)
}

func heading(md *markdown.Markdown, level int, text string) {
	switch level {
	case 1:
		md.H1(text)
	case 2:
		md.H2(text)
	case 3:
		md.H3(text)
	case 4:
		md.H4(text)
	case 5:
		md.H5(text)
	default:
		md.H6(text)
	}
}

// convertTableToMarkdown renders a table under its description. A header
// column is kept in every row and set in bold.
func convertTableToMarkdown(md *markdown.Markdown, t *Table) {
	if len(t.Rows) == 0 {
		return
	}
	md.PlainText(markdown.Bold(collapseSpaces(t.DescriptionText)))
	md.LF()

	width := 0
	for _, row := range t.Rows {
		width = max(width, len(row.Cells))
	}

	headerColumn := t.Header != nil && t.Header.Kind == HeaderColumn
	header := make([]string, width)
	if t.Header != nil && t.Header.Kind == HeaderRow {
		copy(header, t.HeaderTexts())
	}

	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, width)
		for i, cell := range t.RowCells(row) {
			text := strings.ReplaceAll(cell.Text, "\n", " ")
			if headerColumn && i == 0 && text != "" {
				text = markdown.Bold(text)
			}
			cells[i] = text
		}
		rows = append(rows, cells)
	}

	md.Table(markdown.TableSet{
		Header: header,
		Rows:   rows,
	})
}
