package paperlayout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ivanvanderbyl/paperlayout/detect"
	"github.com/ivanvanderbyl/paperlayout/nlp"
)

// Engine reconstructs the logical structure of papers.
type Engine struct {
	config   Config
	nlp      nlp.Model
	detector detect.Detector
	lookup   MetadataLookup
	fitter   GridFitter
	patterns []MetaPattern
}

// NewEngine creates an engine. Without WithNLP the heuristic English model is used.
func NewEngine(config Config, opts ...Option) *Engine {
	e := &Engine{config: config}
	for _, opt := range opts {
		opt(e)
	}

	if e.config.Logger == nil {
		e.config.Logger = zap.NewNop()
	}
	if e.fitter == nil {
		e.fitter = GreedyFitter{}
	}
	if e.patterns == nil {
		e.patterns = DefaultMetaPatterns()
	}
	if e.nlp == nil {
		model, err := nlp.NewHeuristic()
		if err != nil {
			e.config.Logger.Warn("heuristic nlp model unavailable", zap.Error(err))
		} else {
			e.nlp = model
		}
	}

	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

func (e *Engine) log() *zap.Logger {
	return e.config.Logger
}

// Reconstruct ingests every page of src and runs the full pipeline.
func (e *Engine) Reconstruct(ctx context.Context, src PageSource) (*Document, error) {
	doc, err := e.Ingest(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := e.Run(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Ingest reads page primitives, assembles lines and blocks, and computes the
// statistics baseline. A source without pages or spans yields an empty document.
func (e *Engine) Ingest(ctx context.Context, src PageSource) (*Document, error) {
	if src == nil {
		return nil, ErrNoPageSource
	}

	doc := &Document{
		ID:     uuid.New().String(),
		source: src,
	}
	log := e.log().With(zap.String("document_id", doc.ID))

	start := time.Now()
	pages := make([]*PageGeometry, 0, src.PageCount())
	for p := 0; p < src.PageCount(); p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		geo, err := src.PageGeometry(p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read geometry of page %d", p+1)
		}
		if err := validateGeometry(geo); err != nil {
			return nil, errors.Wrapf(err, "page %d", p+1)
		}
		for i := range geo.Spans {
			geo.Spans[i].Box.Page = geo.Number
		}
		pages = append(pages, geo)
		doc.Pages = append(doc.Pages, PageInfo{
			Number:  geo.Number,
			Width:   geo.Width,
			Height:  geo.Height,
			Rulings: geo.Rulings,
		})
	}

	a := &assembler{config: e.config, charSpacing: charSpacingOf(pages)}
	doc.Stats.CharSpacing = a.charSpacing

	type pageLines struct {
		lines   []Line
		gutters []float64
	}
	perPage := make([]pageLines, len(pages))
	var allLines []Line
	for i, geo := range pages {
		gutters := detectGutters(geo.Spans, geo.Width)
		lines := a.assembleLines(geo.Spans, gutters)
		perPage[i] = pageLines{lines: lines, gutters: gutters}
		allLines = append(allLines, lines...)
	}

	a.lineDistance = lineDistanceOf(allLines)
	doc.Stats.LineDistance = a.lineDistance

	for _, pl := range perPage {
		for _, group := range a.splitBlocks(pl.lines, pl.gutters) {
			lines := make([]Line, 0, len(group))
			for _, li := range group {
				lines = append(lines, pl.lines[li])
			}
			doc.addBlock(lines)
		}
	}

	computeStatistics(doc, e.config)
	assignReadingOrder(doc, e.config.ColumnBands)

	log.Debug("document ingested",
		zap.Int("pages", len(doc.Pages)),
		zap.Int("lines", len(doc.Lines)),
		zap.Int("blocks", len(doc.Blocks)),
		zap.Float64("char_spacing", doc.Stats.CharSpacing),
		zap.Float64("line_distance", doc.Stats.LineDistance),
		zap.Duration("duration", time.Since(start)))

	return doc, nil
}

// addBlock appends lines and the block built from them to the arenas.
func (d *Document) addBlock(lines []Line) int {
	block := BuildBlock(lines)
	block.Index = len(d.Blocks)
	for _, line := range lines {
		line.Block = block.Index
		block.Lines = append(block.Lines, len(d.Lines))
		d.Lines = append(d.Lines, line)
	}
	d.Blocks = append(d.Blocks, block)
	return block.Index
}

func validateGeometry(geo *PageGeometry) error {
	if geo == nil {
		return ErrNoPageSource
	}
	for i, span := range geo.Spans {
		if !span.Box.Valid() {
			return errors.Wrapf(ErrInvalidRect, "span %d %+v", i, span.Box)
		}
	}
	for i, ch := range geo.Chars {
		if !ch.Box.Valid() {
			return errors.Wrapf(ErrInvalidRect, "char %d %+v", i, ch.Box)
		}
	}
	return nil
}
