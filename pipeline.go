package paperlayout

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Stage names recorded in block histories.
const (
	stageText     = "text"
	stageTable    = "table"
	stageImage    = "image"
	stageMetadata = "metadata"
)

// Category is one extraction category of the pipeline.
type Category int

const (
	CategoryText Category = iota
	CategoryTable
	CategoryImage
	CategoryMetadata
)

func (c Category) String() string {
	switch c {
	case CategoryText:
		return stageText
	case CategoryTable:
		return stageTable
	case CategoryImage:
		return stageImage
	case CategoryMetadata:
		return stageMetadata
	}
	return "unknown"
}

// Stage is the capability every category implements. The engine calls each
// phase across categories in a fixed order.
type Stage interface {
	Preprocess(ctx context.Context, doc *Document) error
	Process(ctx context.Context, doc *Document) error
	Postprocess(ctx context.Context, doc *Document) error
}

// Phase orders. Later categories see the claims of earlier ones.
var (
	preprocessOrder  = []Category{CategoryText, CategoryTable, CategoryImage, CategoryMetadata}
	processOrder     = []Category{CategoryTable, CategoryMetadata, CategoryImage, CategoryText}
	postprocessOrder = []Category{CategoryTable, CategoryText}
)

// PhaseTiming records how long one category spent in one phase.
type PhaseTiming struct {
	Phase    string        `json:"phase"`
	Category string        `json:"category"`
	Duration time.Duration `json:"duration"`
}

// stages builds the closed set of category stages for one run.
func (e *Engine) stages() map[Category]Stage {
	return map[Category]Stage{
		CategoryText:     &TextStage{engine: e},
		CategoryTable:    &TableStage{engine: e},
		CategoryImage:    &ImageStage{engine: e},
		CategoryMetadata: &MetadataStage{engine: e},
	}
}

// Run executes preprocess, process and postprocess over an ingested document.
// A document is owned by one Run at a time.
func (e *Engine) Run(ctx context.Context, doc *Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	log := e.log().With(zap.String("document_id", doc.ID))
	stages := e.stages()

	phases := []struct {
		name  string
		order []Category
		call  func(Stage, context.Context, *Document) error
	}{
		{"preprocess", preprocessOrder, Stage.Preprocess},
		{"process", processOrder, Stage.Process},
		{"postprocess", postprocessOrder, Stage.Postprocess},
	}

	start := time.Now()
	for _, phase := range phases {
		for _, category := range phase.order {
			if err := ctx.Err(); err != nil {
				return err
			}
			began := time.Now()
			if err := phase.call(stages[category], ctx, doc); err != nil {
				return errors.Wrapf(err, "%s %s", category, phase.name)
			}
			timing := PhaseTiming{Phase: phase.name, Category: category.String(), Duration: time.Since(began)}
			doc.Timings = append(doc.Timings, timing)
			log.Debug("phase complete",
				zap.String("phase", timing.Phase),
				zap.String("stage", timing.Category),
				zap.Duration("duration", timing.Duration))
		}
	}

	if e.config.EnableMetricsLogging {
		log.Info("document reconstructed",
			zap.Duration("duration", time.Since(start)),
			zap.Int("pages", len(doc.Pages)),
			zap.Int("blocks", len(doc.Blocks)),
			zap.Int("chapters", len(doc.Chapters)),
			zap.Int("tables", len(doc.Tables)),
			zap.Int("images", len(doc.Images)),
			zap.String("doi", doc.Metadata.DOI))
	}
	return nil
}

// TextStage classifies body text and splits it into chapters.
type TextStage struct {
	engine *Engine
}

// Preprocess applies the metadata patterns and both duplicate passes, then
// the typographic text-area classification.
func (s *TextStage) Preprocess(_ context.Context, doc *Document) error {
	config := s.engine.config
	meta := markMetaPatterns(doc, s.engine.patterns)
	geometric := markGeometricDuplicates(doc, config.DuplicateRepeats)
	textual := markTextualDuplicates(doc, config)
	classifyTextArea(doc, config, s.engine.log())

	s.engine.log().Debug("text preprocessed",
		zap.Int("meta", meta),
		zap.Int("recurring_geometric", geometric),
		zap.Int("recurring_textual", textual))
	return nil
}

// Process finds headers and builds chapters from the remaining body text.
func (s *TextStage) Process(ctx context.Context, doc *Document) error {
	identifyHeaders(doc, s.engine.config, s.engine.log())
	sp := &splitter{doc: doc, config: s.engine.config, lang: s.engine.language()}
	doc.Chapters = sp.build(ctx)
	return ctx.Err()
}

// Postprocess drops empty chapters and pairs headers with chapters.
func (s *TextStage) Postprocess(_ context.Context, doc *Document) error {
	doc.Chapters = pruneChapters(doc.Chapters)
	pairHeaders(doc, s.engine.config)
	return nil
}
