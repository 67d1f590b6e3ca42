package paperlayout

import (
	"context"
	"fmt"
	"image"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ivanvanderbyl/paperlayout/detect"
)

var tableNameRe = regexp.MustCompile(`(?i)^tab(\.|le)\s*\d+`)

// isTableDescription reports whether text opens like a table caption.
func isTableDescription(text string) bool {
	return strings.HasPrefix(foldText(text), "tab")
}

// tableRegion is a candidate table box with the detection that produced it.
type tableRegion struct {
	box    Rect
	region detect.Region
}

// TableStage finds table regions, pairs them with their descriptions and
// reconstructs their grids.
type TableStage struct {
	engine       *Engine
	descriptions []int
}

// Preprocess collects the blocks that describe a table.
func (s *TableStage) Preprocess(_ context.Context, doc *Document) error {
	s.descriptions = s.descriptions[:0]
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		if b.role != RoleRecurring && isTableDescription(b.Text) {
			s.descriptions = append(s.descriptions, i)
		}
	}
	return nil
}

// Process pairs every table region with the nearest unused description on
// its page and builds the table from the blocks inside it. Regions without
// a description are dropped.
func (s *TableStage) Process(ctx context.Context, doc *Document) error {
	if len(s.descriptions) == 0 {
		return nil
	}
	log := s.engine.log()
	index := newBlockIndex(doc)
	builder := &tableBuilder{
		doc:    doc,
		config: s.engine.config,
		lang:   s.engine.language(),
		fitter: s.engine.fitter,
	}

	isDescription := make(map[int]bool, len(s.descriptions))
	for _, bi := range s.descriptions {
		isDescription[bi] = true
	}
	used := make(map[int]bool)

	for _, region := range s.regions(ctx, doc) {
		if err := ctx.Err(); err != nil {
			return err
		}

		desc := s.nearestDescription(doc, region.box, used)
		if desc == -1 {
			log.Debug("table region without description", zap.Int("page", region.box.Page))
			continue
		}
		used[desc] = true

		descText := doc.Blocks[desc].Text
		t := Table{
			Name:            tableNameRe.FindString(strings.TrimSpace(descText)),
			Page:            region.box.Page,
			Box:             region.box,
			Region:          region.region,
			Description:     desc,
			DescriptionText: descText,
		}
		doc.Blocks[desc].Claim(RoleTable, stageTable, "table description")

		var dirs [][2]float64
		for _, bi := range index.inside(doc, region.box) {
			if isDescription[bi] || doc.Blocks[bi].role == RoleRecurring {
				continue
			}
			t.Blocks = append(t.Blocks, bi)
			doc.Blocks[bi].Claim(RoleTable, stageTable, fmt.Sprintf("inside table on page %d", t.Page+1))
			for _, line := range doc.BlockLines(bi) {
				dirs = append(dirs, line.Dir)
			}
		}
		t.Orientation = voteOrientation(dirs)

		builder.build(ctx, &t)
		doc.Tables = append(doc.Tables, t)

		log.Debug("table reconstructed",
			zap.String("name", t.Name),
			zap.Int("page", t.Page),
			zap.Int("rows", len(t.Rows)),
			zap.Int("columns", len(t.Columns)),
			zap.Int("rejected", len(t.Rejected)))
	}
	return nil
}

// Postprocess releases blocks that contributed no accepted row, drops
// tables left without rows, and resolves headers.
func (s *TableStage) Postprocess(_ context.Context, doc *Document) error {
	kept := doc.Tables[:0]
	for _, t := range doc.Tables {
		accepted := make(map[int]bool)
		for _, row := range t.Rows {
			for _, li := range row.Lines {
				accepted[li] = true
			}
		}

		blocks := t.Blocks[:0]
		for _, bi := range t.Blocks {
			contributes := false
			for _, li := range doc.Blocks[bi].Lines {
				if accepted[li] {
					contributes = true
					break
				}
			}
			if contributes {
				blocks = append(blocks, bi)
				continue
			}
			doc.Blocks[bi].Release(RoleTable, stageTable, "no accepted table row")
		}
		t.Blocks = blocks

		if len(t.Rows) == 0 {
			doc.Blocks[t.Description].Release(RoleTable, stageTable, "table without rows")
			continue
		}
		resolveHeader(&t)
		kept = append(kept, t)
	}
	doc.Tables = kept
	return nil
}

// nearestDescription returns the unused description block on box's page
// with the smallest corner distance, or -1.
func (s *TableStage) nearestDescription(doc *Document, box Rect, used map[int]bool) int {
	best, bestDist := -1, math.Inf(1)
	for _, bi := range s.descriptions {
		b := doc.Blocks[bi]
		if used[bi] || b.Page != box.Page {
			continue
		}
		if d := cornerDistance(box, b.Box); d < bestDist {
			best, bestDist = bi, d
		}
	}
	return best
}

// regions returns table regions for every page carrying a description. The
// detector is asked when configured; otherwise bordered tables are found
// from the page's rulings, and pages without any fall back to line
// segmentation. A failed detection skips the page.
func (s *TableStage) regions(ctx context.Context, doc *Document) []tableRegion {
	pages := make(map[int]bool)
	var order []int
	for _, bi := range s.descriptions {
		p := doc.Blocks[bi].Page
		if !pages[p] {
			pages[p] = true
			order = append(order, p)
		}
	}

	var out []tableRegion
	for _, p := range order {
		page := doc.Page(p)
		if s.engine.detector == nil {
			boxes, class := rulingRegions(page, s.engine.config.RulingTolerance), detect.BorderedTable
			if len(boxes) == 0 && s.engine.config.SegmentTables {
				boxes, class = segmentRegions(doc, page), detect.BorderlessTable
			}
			for _, box := range boxes {
				out = append(out, tableRegion{
					box: box,
					region: detect.Region{
						X1: box.X0, Y1: box.Y0, X2: box.X1, Y2: box.Y1,
						Score: 1, Class: class,
					},
				})
			}
			continue
		}

		regions, err := s.detect(ctx, doc, page)
		if err != nil {
			s.engine.log().Warn("table detection failed",
				zap.Int("page", p),
				zap.Error(unavailable(err, "detector")))
			continue
		}
		out = append(out, regions...)
	}
	return out
}

// detect renders a page and maps confident detections back to page units.
func (s *TableStage) detect(ctx context.Context, doc *Document, page PageInfo) ([]tableRegion, error) {
	if doc.source == nil {
		return nil, ErrNoPageSource
	}
	img, err := doc.source.RenderRegion(page.Number, Rect{Page: page.Number, X1: page.Width, Y1: page.Height})
	if err != nil {
		return nil, err
	}
	regions, err := s.engine.detector.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	factor := pixelScale(img, page.Width)
	var out []tableRegion
	for _, r := range detect.Confident(regions, s.engine.config.DetectionScore) {
		scaled := r.Scale(factor)
		box := Rect{Page: page.Number, X0: scaled.X1, Y0: scaled.Y1, X1: scaled.X2, Y1: scaled.Y2}
		if !box.Valid() {
			continue
		}
		out = append(out, tableRegion{box: box, region: r})
	}
	return out, nil
}

// pixelScale converts image pixels to page units.
func pixelScale(img image.Image, pageWidth float64) float64 {
	if w := img.Bounds().Dx(); w > 0 {
		return pageWidth / float64(w)
	}
	return 1
}
