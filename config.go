package paperlayout

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ivanvanderbyl/paperlayout/detect"
	"github.com/ivanvanderbyl/paperlayout/nlp"
)

// Config controls layout reconstruction. Zero values are not meaningful;
// start from DefaultConfig.
type Config struct {
	// RowOverlapRatio is the share of the shorter span height two spans must
	// overlap vertically to sit on one line (default: 0.5)
	RowOverlapRatio float64 `yaml:"row_overlap_ratio"`

	// SpanJoinFactor times the char spacing is the gap under which span texts
	// are joined without a space (default: 0.5)
	SpanJoinFactor float64 `yaml:"span_join_factor"`

	// BlockGapFactor times the line distance is the vertical gap that starts a
	// new block (default: 1.05)
	BlockGapFactor float64 `yaml:"block_gap_factor"`

	// DominantRatio is the relative frequency a font or size needs against the
	// previous one to stay dominant (default: 0.6)
	DominantRatio float64 `yaml:"dominant_ratio"`

	// BodyWidthRatio is the relative frequency a block width needs to join the
	// normal width set (default: 0.75)
	BodyWidthRatio float64 `yaml:"body_width_ratio"`

	// BodyWidthTolerance is the allowed deviation from the body width (default: 0.05)
	BodyWidthTolerance float64 `yaml:"body_width_tolerance"`

	// ColumnBands is the number of equal horizontal bands used for reading
	// order and column occupancy (default: 5)
	ColumnBands int `yaml:"column_bands"`

	// OccupancyRatio is the share of the average band occupancy a band needs
	// to count as a text column (default: 0.5)
	OccupancyRatio float64 `yaml:"occupancy_ratio"`

	// DuplicateRepeats is how often an identical rectangle may occur before
	// its blocks count as recurring (default: 2)
	DuplicateRepeats int `yaml:"duplicate_repeats"`

	// FuzzyWindow and FuzzyThreshold drive textual duplicate detection on long
	// texts (default: 50 runes, 0.95)
	FuzzyWindow    int     `yaml:"fuzzy_window"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`

	// HeaderMaxWords, HeaderMinChars and HeaderWindow bound header detection
	// and header-to-chapter pairing (default: 8, 3, 5 line heights)
	HeaderMaxWords int      `yaml:"header_max_words"`
	HeaderMinChars int      `yaml:"header_min_chars"`
	HeaderWindow   float64  `yaml:"header_window"`
	HeaderLexicon  []string `yaml:"header_lexicon"`

	// ChapterGapFactor times the line distance is the largest gap that keeps
	// two lines in one chapter (default: 1.25)
	ChapterGapFactor float64 `yaml:"chapter_gap_factor"`

	// ParagraphWidthRatio is the share of the widest chapter line a line needs
	// to count as full width (default: 0.95)
	ParagraphWidthRatio float64 `yaml:"paragraph_width_ratio"`

	// ParagraphGapFactor times the char spacing bounds a direct horizontal
	// continuation (default: 2)
	ParagraphGapFactor float64 `yaml:"paragraph_gap_factor"`

	// CellGapFactor times the char spacing is the gap that separates table
	// cells (default: 1.25)
	CellGapFactor float64 `yaml:"cell_gap_factor"`

	// DetectionScore is the minimum detector confidence (exclusive, default: 0.9)
	DetectionScore float64 `yaml:"detection_score"`

	// RulingTolerance is the snap distance used to cluster ruling edges (default: 3)
	RulingTolerance float64 `yaml:"ruling_tolerance"`

	// SegmentTables searches pages without rulings for borderless tables by
	// line segmentation when no detector is set (default: true)
	SegmentTables bool `yaml:"segment_tables"`

	// CaptionMaxChars, CaptionMaxSentences and ImageWindow drive the image
	// associator (default: 1000, 2, 10 line distances)
	CaptionMaxChars     int     `yaml:"caption_max_chars"`
	CaptionMaxSentences int     `yaml:"caption_max_sentences"`
	ImageWindow         float64 `yaml:"image_window"`

	// RenderImages renders accepted picture rectangles through the page source (default: false)
	RenderImages bool `yaml:"render_images"`

	// MetadataPages is the number of leading pages searched for a DOI and an
	// abstract (default: 3)
	MetadataPages int `yaml:"metadata_pages"`

	// EnableMetricsLogging logs processing time and statistics (default: false)
	EnableMetricsLogging bool `yaml:"enable_metrics_logging"`

	// Logger receives structured logs (default: no-op)
	Logger *zap.Logger `yaml:"-"`
}

// DefaultHeaderLexicon lists the section names recognised as headers.
var DefaultHeaderLexicon = []string{
	"introduction",
	"conclusion",
	"references",
	"results",
	"discussion",
	"experiment",
	"setup",
	"conflicts of interest",
	"funding",
}

// DefaultConfig returns the default reconstruction configuration.
func DefaultConfig() Config {
	return Config{
		RowOverlapRatio:     0.5,
		SpanJoinFactor:      0.5,
		BlockGapFactor:      1.05,
		DominantRatio:       0.6,
		BodyWidthRatio:      0.75,
		BodyWidthTolerance:  0.05,
		ColumnBands:         5,
		OccupancyRatio:      0.5,
		DuplicateRepeats:    2,
		FuzzyWindow:         50,
		FuzzyThreshold:      0.95,
		HeaderMaxWords:      8,
		HeaderMinChars:      3,
		HeaderWindow:        5,
		HeaderLexicon:       append([]string(nil), DefaultHeaderLexicon...),
		ChapterGapFactor:    1.25,
		ParagraphWidthRatio: 0.95,
		ParagraphGapFactor:  2,
		CellGapFactor:       1.25,
		DetectionScore:      0.9,
		RulingTolerance:     3,
		SegmentTables:       true,
		CaptionMaxChars:     1000,
		CaptionMaxSentences: 2,
		ImageWindow:         10,
		MetadataPages:       3,
		Logger:              zap.NewNop(),
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrap(err, "failed to read config")
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if config.ColumnBands <= 0 {
		return config, errors.Errorf("column_bands must be positive, got %d", config.ColumnBands)
	}
	return config, nil
}

// MetadataLookup resolves bibliographic metadata for a DOI.
type MetadataLookup interface {
	Lookup(ctx context.Context, doi string) (*Metadata, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithNLP sets the NLP collaborator.
func WithNLP(model nlp.Model) Option {
	return func(e *Engine) {
		e.nlp = model
	}
}

// WithDetector sets the table region detector. Without one, bordered tables
// are found from ruling lines.
func WithDetector(detector detect.Detector) Option {
	return func(e *Engine) {
		e.detector = detector
	}
}

// WithLookup sets the DOI metadata lookup.
func WithLookup(lookup MetadataLookup) Option {
	return func(e *Engine) {
		e.lookup = lookup
	}
}

// WithGridFitter replaces the greedy table grid fitting strategy.
func WithGridFitter(fitter GridFitter) Option {
	return func(e *Engine) {
		e.fitter = fitter
	}
}

// WithMetaPatterns replaces the built-in metadata patterns.
func WithMetaPatterns(patterns []MetaPattern) Option {
	return func(e *Engine) {
		e.patterns = patterns
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.config.Logger = logger
	}
}
