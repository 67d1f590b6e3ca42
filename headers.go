package paperlayout

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// minLexiconWord is the shortest word matched inside a lexicon entry, so
// that "of" or "and" never match "conflicts of interest".
const minLexiconWord = 4

// foldText normalises and case-folds text for lexical matching.
func foldText(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}

// headerMatcher holds the lexical header predicate.
type headerMatcher struct {
	maxWords int
	minChars int
	lexicon  []string
}

func newHeaderMatcher(config Config) headerMatcher {
	lexicon := make([]string, 0, len(config.HeaderLexicon))
	for _, entry := range config.HeaderLexicon {
		if e := foldText(entry); e != "" {
			lexicon = append(lexicon, e)
		}
	}
	return headerMatcher{
		maxWords: config.HeaderMaxWords,
		minChars: config.HeaderMinChars,
		lexicon:  lexicon,
	}
}

// short reports whether text is short enough and long enough to be a header.
func (m headerMatcher) short(text string) bool {
	return wordCount(text) < m.maxWords && nonSpaceCount(text) >= m.minChars
}

// inLexicon matches text against the lexicon by substring in either
// direction, case-insensitively. Unlike a plain two-way substring test, a
// word of text only matches inside an entry when it has at least
// minLexiconWord runes, so "of" never matches "conflicts of interest".
func (m headerMatcher) inLexicon(text string) bool {
	folded := foldText(text)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, entry := range m.lexicon {
		if strings.Contains(folded, entry) {
			return true
		}
		for _, w := range words {
			if len([]rune(w)) >= minLexiconWord && strings.Contains(entry, w) {
				return true
			}
		}
	}
	return false
}

// match is the header predicate for a block given the text of the block
// read before it.
func (m headerMatcher) match(text, prev string, hasPrev bool) bool {
	if !m.short(text) {
		return false
	}
	if startsWithDigit(text) && hasPrev && endsWithPeriod(prev) {
		return true
	}
	return m.inLexicon(text)
}

// claimedRegions returns the boxes of reconstructed tables and accepted images.
func claimedRegions(doc *Document) []Rect {
	var out []Rect
	for _, t := range doc.Tables {
		out = append(out, t.Box)
	}
	for _, img := range doc.Images {
		if img.IsImage {
			out = append(out, img.Box)
		}
	}
	return out
}

func insideAny(regions []Rect, r Rect) bool {
	for _, region := range regions {
		if region.Page == r.Page && insideRegion(region, r) {
			return true
		}
	}
	return false
}

// identifyHeaders claims Header for text or unclassified blocks matching the
// header predicate outside table and image regions.
func identifyHeaders(doc *Document, config Config, log *zap.Logger) int {
	m := newHeaderMatcher(config)
	regions := claimedRegions(doc)

	n := 0
	prev, hasPrev := "", false
	for _, bi := range readingOrder(doc, func(b *Block) bool { return b.role != RoleRecurring }) {
		b := &doc.Blocks[bi]
		eligible := b.role == RoleUnclassified || b.role == RoleText
		if eligible && !insideAny(regions, b.Box) && m.match(b.Text, prev, hasPrev) {
			if b.Claim(RoleHeader, stageText, "header predicate") {
				n++
			}
		}
		prev, hasPrev = b.Text, true
	}

	log.Debug("headers identified", zap.Int("headers", n))
	return n
}

// pairHeaders attaches each header, in reading order, to the chapter that
// starts closest below it within HeaderWindow line heights and has no
// header yet. Earlier headers win; the pairing is not a global optimum.
func pairHeaders(doc *Document, config Config) {
	window := config.HeaderWindow * doc.Stats.LineHeight()

	headers := readingOrder(doc, func(b *Block) bool { return b.role == RoleHeader })
	for _, bi := range headers {
		header := doc.Blocks[bi]
		best, bestDelta := -1, 0.0
		for ci := range doc.Chapters {
			ch := &doc.Chapters[ci]
			if ch.Header != nil || len(ch.Lines) == 0 {
				continue
			}
			delta := doc.Lines[ch.Lines[0]].AbsY0 - header.AbsY1
			if delta < 0 || delta > window {
				continue
			}
			if best == -1 || delta < bestDelta {
				best, bestDelta = ci, delta
			}
		}
		if best != -1 {
			doc.Chapters[best].Header = &Header{Block: bi, Text: header.Text}
		}
	}
}
