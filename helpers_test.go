package paperlayout

import (
	"context"
	"image"
	"strconv"
	"strings"

	"github.com/ivanvanderbyl/paperlayout/detect"
	"github.com/ivanvanderbyl/paperlayout/nlp"
)

// stubNLP answers language questions from plain functions. Nil functions
// fall back to: every text is a sentence, split after ". ", numbers are NUM
// and everything else is WORD.
type stubNLP struct {
	sentence func(string) bool
	split    func(string) []string
	err      error
}

func (s stubNLP) IsSentence(_ context.Context, text string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.sentence != nil {
		return s.sentence(text), nil
	}
	return true, nil
}

func (s stubNLP) ClassifyWord(_ context.Context, token string) (nlp.WordType, error) {
	if s.err != nil {
		return nlp.Unknown, s.err
	}
	if _, err := strconv.ParseFloat(token, 64); err == nil {
		return nlp.Num, nil
	}
	return nlp.Word, nil
}

func (s stubNLP) SplitSentences(_ context.Context, text string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.split != nil {
		return s.split(text), nil
	}
	var out []string
	for _, part := range strings.SplitAfter(text, ". ") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

// fakeSource serves fixed page geometry and renders a blank image of
// renderWidth pixels per page width.
type fakeSource struct {
	pages       []*PageGeometry
	renderWidth int
	rendered    []Rect
	renderErr   error
}

func (s *fakeSource) PageCount() int { return len(s.pages) }

func (s *fakeSource) PageGeometry(page int) (*PageGeometry, error) {
	return s.pages[page], nil
}

func (s *fakeSource) RenderRegion(page int, r Rect) (image.Image, error) {
	if s.renderErr != nil {
		return nil, s.renderErr
	}
	s.rendered = append(s.rendered, r)
	width := s.renderWidth
	if width == 0 {
		width = int(r.Width())
	}
	scale := float64(width) / r.Width()
	return image.NewRGBA(image.Rect(0, 0, width, int(r.Height()*scale))), nil
}

// fakeDetector returns fixed regions.
type fakeDetector struct {
	regions []detect.Region
	err     error
}

func (d fakeDetector) Detect(context.Context, image.Image) ([]detect.Region, error) {
	return d.regions, d.err
}

// span builds a horizontal span.
func span(page int, x0, y0, x1, y1 float64, text, font string, size float64) Span {
	return Span{
		Text: text,
		Font: font,
		Size: size,
		Box:  Rect{Page: page, X0: x0, Y0: y0, X1: x1, Y1: y1},
		Dir:  [2]float64{1, 0},
	}
}

// line builds a horizontal line of one span in the body font.
func line(page int, x0, y0, x1, y1 float64, text string) Line {
	return styledLine(page, x0, y0, x1, y1, text, "Times", 10)
}

func styledLine(page int, x0, y0, x1, y1 float64, text, font string, size int) Line {
	s := span(page, x0, y0, x1, y1, text, font, float64(size))
	return lineOf(s)
}

// lineOf builds a line from spans already in reading order.
func lineOf(spans ...Span) Line {
	a := &assembler{config: DefaultConfig(), charSpacing: 2}
	return a.buildLine(spans)
}

// newTestDoc builds a document with one block per line group on 600x800
// pages, then computes statistics and reading order.
func newTestDoc(blocks ...[]Line) *Document {
	doc := &Document{ID: "test"}
	pages := 0
	for _, lines := range blocks {
		for _, l := range lines {
			pages = max(pages, l.Box.Page+1)
		}
		doc.addBlock(lines)
	}
	for p := 0; p < pages; p++ {
		doc.Pages = append(doc.Pages, PageInfo{Number: p, Width: 600, Height: 800})
	}
	doc.Stats.CharSpacing = 2
	doc.Stats.LineDistance = 4
	computeStatistics(doc, DefaultConfig())
	assignReadingOrder(doc, DefaultConfig().ColumnBands)
	return doc
}

func roles(doc *Document) []Role {
	out := make([]Role, len(doc.Blocks))
	for i := range doc.Blocks {
		out[i] = doc.Blocks[i].Role()
	}
	return out
}
