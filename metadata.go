package paperlayout

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ivanvanderbyl/paperlayout/crossref"
)

var doiRe = regexp.MustCompile(`10\.\d{4,9}/[-._;()/:\w]+`)

// findDOI returns the longest DOI in the first block on the leading pages
// that carries one. Trailing punctuation is trimmed.
func findDOI(doc *Document, pages int) string {
	for _, bi := range readingOrder(doc, func(b *Block) bool { return b.Page < pages }) {
		matches := doiRe.FindAllString(doc.Blocks[bi].Text, -1)
		if len(matches) == 0 {
			continue
		}
		best := ""
		for _, m := range matches {
			if len(m) > len(best) {
				best = m
			}
		}
		return strings.TrimRight(best, ".,;:)")
	}
	return ""
}

// crossrefLookup adapts a Crossref client to MetadataLookup.
type crossrefLookup struct {
	client *crossref.Client
}

// CrossrefLookup resolves DOIs through Crossref.
func CrossrefLookup(client *crossref.Client) MetadataLookup {
	return crossrefLookup{client: client}
}

func (l crossrefLookup) Lookup(ctx context.Context, doi string) (*Metadata, error) {
	work, err := l.client.Lookup(ctx, doi)
	if err != nil {
		return nil, err
	}
	md := &Metadata{
		DOI:       work.DOI,
		Title:     work.Title,
		Subtitle:  work.Subtitle,
		ISSN:      work.ISSN,
		Publisher: work.Publisher,
		Journal:   work.Journal,
	}
	for _, a := range work.Authors {
		md.Authors = append(md.Authors, Author{Given: a.Given, Family: a.Family})
	}
	for _, r := range work.References {
		md.References = append(md.References, Reference{DOI: r.DOI, Author: r.Author, Title: r.ArticleTitle})
	}
	return md, nil
}

// MetadataStage finds the DOI and abstract and marks bibliographic blocks.
type MetadataStage struct {
	engine *Engine
}

// Preprocess extracts the DOI from the leading pages.
func (s *MetadataStage) Preprocess(_ context.Context, doc *Document) error {
	doc.Metadata.DOI = findDOI(doc, s.engine.config.MetadataPages)
	return nil
}

// Process looks the DOI up, claims the blocks repeating the bibliographic
// record, and collects the abstract. A failed lookup leaves the fields empty.
func (s *MetadataStage) Process(ctx context.Context, doc *Document) error {
	log := s.engine.log()

	if doi := doc.Metadata.DOI; doi != "" && s.engine.lookup != nil {
		md, err := s.engine.lookup.Lookup(ctx, doi)
		if err != nil {
			log.Warn("metadata lookup failed", zap.String("doi", doi), zap.Error(unavailable(err, "metadata lookup")))
		} else if md != nil {
			abstract := doc.Metadata.Abstract
			doc.Metadata = *md
			doc.Metadata.DOI = doi
			doc.Metadata.Abstract = abstract
		}
	}

	claimed := claimBibliographic(doc, s.engine.config.MetadataPages)
	doc.Metadata.Abstract = s.abstract(doc)

	log.Debug("metadata processed",
		zap.String("doi", doc.Metadata.DOI),
		zap.Int("claimed", claimed),
		zap.Bool("abstract", doc.Metadata.Abstract != ""))
	return nil
}

// Postprocess implements Stage.
func (s *MetadataStage) Postprocess(context.Context, *Document) error { return nil }

// claimBibliographic claims Meta for blocks on the leading pages that carry
// the title, journal, DOI or ISSN, or name at least two authors.
func claimBibliographic(doc *Document, pages int) int {
	md := doc.Metadata
	var needles []string
	for _, v := range []string{md.Title, md.Journal, md.DOI, md.ISSN} {
		if v = foldText(v); v != "" {
			needles = append(needles, v)
		}
	}
	var families []string
	for _, a := range md.Authors {
		if f := foldText(a.Family); f != "" {
			families = append(families, f)
		}
	}

	n := 0
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		if b.Page >= pages {
			continue
		}
		text := foldText(b.Text)
		reason := ""
		for _, needle := range needles {
			if strings.Contains(text, needle) {
				reason = "bibliographic field"
				break
			}
		}
		if reason == "" {
			named := 0
			for _, f := range families {
				if strings.Contains(text, f) {
					named++
				}
			}
			if named >= 2 {
				reason = "author list"
			}
		}
		if reason != "" && b.Claim(RoleMeta, stageMetadata, reason) {
			n++
		}
	}
	return n
}

// abstract collects the lines following an "abstract" marker on the leading
// pages while the chapter continue test holds, and claims their blocks.
// Papers without a marker start from the first long body block instead.
func (s *MetadataStage) abstract(doc *Document) string {
	pages := s.engine.config.MetadataPages
	order := readingOrder(doc, func(b *Block) bool {
		return b.Page < pages && (b.role == RoleUnclassified || b.role == RoleText || b.role == RoleMeta)
	})

	start := -1
	for k, bi := range order {
		if strings.Contains(foldText(doc.Blocks[bi].Text), "abstract") {
			start = k
			break
		}
	}
	if start == -1 {
		start = geometricAbstract(doc, order)
	}
	if start == -1 {
		return ""
	}

	sp := &splitter{doc: doc, config: s.engine.config}
	marker := doc.Blocks[order[start]]
	var texts []string
	var prev *Line
	blocks := []int{order[start]}
	if wordCount(marker.Text) > 1 {
		for _, li := range marker.Lines {
			line := doc.Lines[li]
			texts = append(texts, line.Text)
			prev = &doc.Lines[li]
		}
	}

collect:
	for _, bi := range order[start+1:] {
		for k, li := range doc.Blocks[bi].Lines {
			line := doc.Lines[li]
			if prev != nil && !sp.continues(*prev, line) {
				if k > 0 {
					blocks = append(blocks, bi)
				}
				break collect
			}
			texts = append(texts, line.Text)
			prev = &doc.Lines[li]
		}
		blocks = append(blocks, bi)
	}

	for _, bi := range blocks {
		doc.Blocks[bi].Claim(RoleMeta, stageMetadata, "abstract")
	}
	return stripAbstractMarker(joinLines(texts))
}

// abstractMinChars is the length a block needs to open an unlabelled abstract.
const abstractMinChars = 80

// geometricAbstract returns the position in order of the first block on the
// first page that is longer than abstractMinChars and set in the body font,
// or within one point of the body size. Meta blocks are skipped. It returns
// -1 when no block qualifies.
func geometricAbstract(doc *Document, order []int) int {
	stats := doc.Stats
	for k, bi := range order {
		b := &doc.Blocks[bi]
		if b.Page != 0 || b.role == RoleMeta || utf8.RuneCountInString(b.Text) <= abstractMinChars {
			continue
		}
		normalFont := len(stats.DominantFonts) > 0 && b.Font == stats.DominantFonts[0]
		normalSize := len(stats.DominantSizes) > 0 && b.Size >= stats.DominantSizes[0]-1 && b.Size <= stats.DominantSizes[0]+1
		if normalFont || normalSize {
			return k
		}
	}
	return -1
}

// stripAbstractMarker removes a leading "Abstract" label and its punctuation.
func stripAbstractMarker(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) >= len("abstract") && strings.EqualFold(trimmed[:len("abstract")], "abstract") {
		trimmed = strings.TrimLeft(trimmed[len("abstract"):], " .:-\u2014")
	}
	return trimmed
}
