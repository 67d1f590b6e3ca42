package paperlayout

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var figureNameRe = regexp.MustCompile(`(?i)^fig(\.|ure)\s*\d+`)

// Sides of a picture rectangle, indexing Image.Neighbours.
const (
	sideLeft = iota
	sideRight
	sideAbove
	sideBelow
)

// ImageStage pairs figure captions with the picture region around them.
type ImageStage struct {
	engine *Engine
}

// isCaption reports whether text opens like a figure caption.
func (s *ImageStage) isCaption(text string) bool {
	return strings.HasPrefix(foldText(text), "fig") &&
		utf8.RuneCountInString(text) < s.engine.config.CaptionMaxChars
}

// Preprocess claims every caption block as an image and records it.
func (s *ImageStage) Preprocess(_ context.Context, doc *Document) error {
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		if b.role == RoleRecurring || !s.isCaption(b.Text) {
			continue
		}
		b.Claim(RoleImage, stageImage, "figure caption")
		doc.Images = append(doc.Images, Image{
			Name:        figureNameRe.FindString(strings.TrimSpace(b.Text)),
			Caption:     i,
			CaptionText: b.Text,
			Page:        b.Page,
			Neighbours:  [4]int{-1, -1, -1, -1},
		})
	}
	return nil
}

// Process bounds each picture and keeps captions with at most
// CaptionMaxSentences grammatical sentences. Other captions are released
// back to body text. A caption another category has claimed since
// preprocess, such as a table, is not an image.
func (s *ImageStage) Process(ctx context.Context, doc *Document) error {
	lang := s.engine.language()
	log := s.engine.log()

	for i := range doc.Images {
		if err := ctx.Err(); err != nil {
			return err
		}
		img := &doc.Images[i]
		caption := &doc.Blocks[img.Caption]
		if caption.role != RoleImage {
			log.Debug("caption claimed elsewhere",
				zap.String("image", img.Name),
				zap.Stringer("role", caption.role))
			continue
		}

		img.Centered = isCentered(doc, img.Caption)
		img.Box, img.Neighbours = pictureRect(doc, img.Caption, img.Centered, s.engine.config.ImageWindow)

		if n := lang.countSentences(ctx, img.CaptionText); n > s.engine.config.CaptionMaxSentences {
			caption.Release(RoleImage, stageImage, fmt.Sprintf("caption has %d sentences", n))
			continue
		}
		img.IsImage = true

		for bi := range doc.Blocks {
			b := &doc.Blocks[bi]
			if b.Page != img.Page || b.role != RoleText || !cornerInside(b.Box, img.Box) {
				continue
			}
			b.Claim(RoleImage, stageImage, "inside picture of "+img.Name)
		}

		if s.engine.config.RenderImages && doc.source != nil {
			picture, err := doc.source.RenderRegion(img.Page, img.Box)
			if err != nil {
				log.Warn("failed to render picture",
					zap.Int("page", img.Page),
					zap.String("image", img.Name),
					zap.Error(err))
			} else {
				img.Picture = picture
			}
		}
	}
	return nil
}

// Postprocess implements Stage.
func (s *ImageStage) Postprocess(context.Context, *Document) error { return nil }

// isCentered reports whether a caption's horizontal center is more than 10%
// away from the center of every body-text block on its page.
func isCentered(doc *Document, caption int) bool {
	c := doc.Blocks[caption]
	cx := c.Box.CenterX()
	for bi := range doc.Blocks {
		b := &doc.Blocks[bi]
		if bi == caption || b.Page != c.Page || b.role != RoleText {
			continue
		}
		bx := b.Box.CenterX()
		if cx >= 0.9*bx && cx <= 1.1*bx {
			return false
		}
	}
	return true
}

// neighbourCandidate reports whether a block can bound a picture. Only
// blocks of more than two words count, which narrows the text, recurring,
// image and table candidate set: page numbers and axis labels never bound a
// picture.
func neighbourCandidate(b *Block) bool {
	switch b.role {
	case RoleText, RoleRecurring, RoleImage, RoleTable:
		return wordCount(b.Text) > 2
	}
	return false
}

// pictureRect finds the nearest candidate block on each side of a caption
// within the cross-axis window and bounds the picture by them. Missing sides
// fall back to the page edge. Centered captions only look above and below.
func pictureRect(doc *Document, caption int, centered bool, windowFactor float64) (Rect, [4]int) {
	c := doc.Blocks[caption].Box
	page := doc.Page(c.Page)
	window := windowFactor * doc.Stats.LineDistance

	neighbours := [4]int{-1, -1, -1, -1}
	best := [4]float64{math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1)}
	consider := func(side, bi int, dist float64) {
		if dist >= 0 && dist < best[side] {
			best[side] = dist
			neighbours[side] = bi
		}
	}

	for bi := range doc.Blocks {
		b := &doc.Blocks[bi]
		if bi == caption || b.Page != c.Page || !neighbourCandidate(b) {
			continue
		}
		r := b.Box

		if rangesIntersect(r.X0, r.X1, c.X0-window, c.X1+window) {
			if r.Y1 <= c.Y0 {
				consider(sideAbove, bi, c.Y0-r.Y1)
			}
			if r.Y0 >= c.Y1 {
				consider(sideBelow, bi, r.Y0-c.Y1)
			}
		}
		if !centered && rangesIntersect(r.Y0, r.Y1, c.Y0-window, c.Y1+window) {
			if r.X1 <= c.X0 {
				consider(sideLeft, bi, c.X0-r.X1)
			}
			if r.X0 >= c.X1 {
				consider(sideRight, bi, r.X0-c.X1)
			}
		}
	}

	box := Rect{Page: c.Page, X0: 0, Y0: 0, X1: page.Width, Y1: page.Height}
	if bi := neighbours[sideLeft]; bi != -1 {
		box.X0 = doc.Blocks[bi].Box.X1
	}
	if bi := neighbours[sideRight]; bi != -1 {
		box.X1 = doc.Blocks[bi].Box.X0
	}
	if bi := neighbours[sideAbove]; bi != -1 {
		box.Y0 = doc.Blocks[bi].Box.Y1
	}
	if bi := neighbours[sideBelow]; bi != -1 {
		box.Y1 = doc.Blocks[bi].Box.Y0
	}
	return box, neighbours
}

// cornerInside reports whether any corner of r lies strictly inside region.
func cornerInside(r, region Rect) bool {
	for _, p := range r.Corners() {
		if pointStrictlyInRect(p, region) {
			return true
		}
	}
	return false
}
