package paperlayout

import (
	"context"
	"strings"
)

// splitter partitions body-text lines into chapters, paragraphs and sentences.
type splitter struct {
	doc    *Document
	config Config
	lang   nlpGuard
}

// continues is the chapter continue test between two consecutive lines. The
// lines must share a font or a size, and either sit close on one page or
// read as a wrapped sentence.
func (s *splitter) continues(prev, line Line) bool {
	if prev.Font != line.Font && prev.Size != line.Size {
		return false
	}
	maxGap := s.config.ChapterGapFactor * s.doc.Stats.LineDistance
	near := prev.Box.Page == line.Box.Page && line.AbsY0-prev.AbsY1 <= maxGap
	wrapped := startsWithLower(line.Text) && !endsWithTerminal(prev.Text)
	return near || wrapped
}

// chapters walks text and header blocks in reading order. Header blocks
// always close the current chapter.
func (s *splitter) chapters() []Chapter {
	order := readingOrder(s.doc, func(b *Block) bool {
		return b.role == RoleText || b.role == RoleHeader
	})

	var out []Chapter
	var current []int
	flush := func() {
		if len(current) > 0 {
			out = append(out, Chapter{Lines: current})
		}
		current = nil
	}

	for _, bi := range order {
		b := &s.doc.Blocks[bi]
		if b.role == RoleHeader {
			flush()
			continue
		}
		for _, li := range b.Lines {
			if len(current) > 0 && !s.continues(s.doc.Lines[current[len(current)-1]], s.doc.Lines[li]) {
				flush()
			}
			current = append(current, li)
		}
	}
	flush()
	return out
}

// paragraphs splits a chapter's lines. A line closes its paragraph unless it
// is nearly full width, runs straight into the next line, or does not end
// with a period.
func (s *splitter) paragraphs(lines []int) [][]int {
	maxWidth := 0.0
	for _, li := range lines {
		maxWidth = max(maxWidth, s.doc.Lines[li].Box.Width())
	}

	var out [][]int
	var current []int
	for i, li := range lines {
		current = append(current, li)
		if i == len(lines)-1 {
			break
		}
		line, next := s.doc.Lines[li], s.doc.Lines[lines[i+1]]
		keep := line.Box.Width() >= s.config.ParagraphWidthRatio*maxWidth ||
			s.directContinuation(line, next) ||
			!endsWithPeriod(line.Text)
		if !keep {
			out = append(out, current)
			current = nil
		}
	}
	if len(current) > 0 {
		out = append(out, current)
	}
	return out
}

// directContinuation reports whether next continues line on the same row.
func (s *splitter) directContinuation(line, next Line) bool {
	if line.Box.Page != next.Box.Page || !rowsOverlap(line.Box, next.Box) {
		return false
	}
	gap := next.Box.X0 - line.Box.X1
	return gap >= 0 && gap <= s.config.ParagraphGapFactor*s.doc.Stats.CharSpacing
}

// sentences re-flows paragraph lines and segments the text. A split is
// merged back when the previous sentence does not end with a period or ends
// with "et al.".
func (s *splitter) sentences(ctx context.Context, lines []int) []string {
	texts := make([]string, 0, len(lines))
	for _, li := range lines {
		texts = append(texts, s.doc.Lines[li].Text)
	}

	var out []string
	for _, part := range s.lang.splitSentences(ctx, joinLines(texts)) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n := len(out); n > 0 {
			prev := out[n-1]
			if !strings.HasSuffix(prev, ".") || strings.HasSuffix(prev, "et al.") {
				out[n-1] = prev + " " + part
				continue
			}
		}
		out = append(out, part)
	}
	return out
}

// build assembles chapters with paragraphs and sentences and drops chapters
// without a grammatical sentence.
func (s *splitter) build(ctx context.Context) []Chapter {
	var out []Chapter
	for _, ch := range s.chapters() {
		grammatical := false
		for _, lines := range s.paragraphs(ch.Lines) {
			p := Paragraph{Lines: lines, Sentences: s.sentences(ctx, lines)}
			for _, sentence := range p.Sentences {
				if !grammatical && s.lang.isSentence(ctx, sentence) {
					grammatical = true
				}
			}
			ch.Paragraphs = append(ch.Paragraphs, p)
		}
		if grammatical {
			out = append(out, ch)
		}
	}
	return out
}

// pruneChapters removes empty paragraphs and chapters left without any.
func pruneChapters(chapters []Chapter) []Chapter {
	out := chapters[:0]
	for _, ch := range chapters {
		paragraphs := ch.Paragraphs[:0]
		for _, p := range ch.Paragraphs {
			if len(p.Sentences) > 0 {
				paragraphs = append(paragraphs, p)
			}
		}
		ch.Paragraphs = paragraphs
		if len(ch.Paragraphs) > 0 {
			out = append(out, ch)
		}
	}
	return out
}

// joinLines re-flows line texts. A trailing hyphen is removed and the next
// line appended without a space.
func joinLines(texts []string) string {
	var b strings.Builder
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			joined := b.String()
			if strings.HasSuffix(joined, "-") {
				b.Reset()
				b.WriteString(strings.TrimSuffix(joined, "-"))
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(text)
	}
	return b.String()
}

func joinSentences(sentences []string) string {
	return strings.Join(sentences, " ")
}

// endsWithTerminal reports whether text ends a sentence.
func endsWithTerminal(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?")
}
