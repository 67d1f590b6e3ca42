package paperlayout

import (
	"context"
	"image"
	"io"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ProcessingMetrics contains timing and statistics for one reconstruction.
type ProcessingMetrics struct {
	TotalTime       time.Duration
	DocumentOpen    time.Duration
	PageExtractions []PageMetrics
	Phases          []PhaseTiming
	Statistics      DocumentStatistics
}

// DocumentStatistics contains document-level counts.
type DocumentStatistics struct {
	TotalPages      int
	TotalBlocks     int
	TotalChapters   int
	TotalParagraphs int
	TotalSentences  int
	TotalHeaders    int
	TotalTables     int
	TotalImages     int
	TotalWords      int
	TotalCharacters int
}

// Converter reconstructs papers opened through pdfium.
type Converter struct {
	instance pdfium.Pdfium
	engine   *Engine
}

// NewConverter creates a converter with the default configuration.
func NewConverter(instance pdfium.Pdfium, opts ...Option) *Converter {
	return NewConverterWithConfig(instance, DefaultConfig(), opts...)
}

// NewConverterWithConfig creates a converter with a custom configuration.
func NewConverterWithConfig(instance pdfium.Pdfium, config Config, opts ...Option) *Converter {
	return &Converter{
		instance: instance,
		engine:   NewEngine(config, opts...),
	}
}

// Engine returns the engine the converter runs.
func (c *Converter) Engine() *Engine {
	return c.engine
}

// ConvertFile reconstructs a PDF file.
func (c *Converter) ConvertFile(ctx context.Context, filePath string) (*Document, error) {
	doc, _, err := c.convert(ctx, &requests.OpenDocument{FilePath: &filePath}, nil)
	return doc, err
}

// ConvertBytes reconstructs a PDF held in memory.
func (c *Converter) ConvertBytes(ctx context.Context, pdfBytes []byte) (*Document, error) {
	doc, _, err := c.convert(ctx, &requests.OpenDocument{File: &pdfBytes}, nil)
	return doc, err
}

// ConvertReader reconstructs a PDF read from r.
func (c *Converter) ConvertReader(ctx context.Context, r io.ReadSeeker) (*Document, error) {
	doc, _, err := c.convert(ctx, &requests.OpenDocument{FileReader: r}, nil)
	return doc, err
}

// ConvertPageRange reconstructs the pages start..end (0-indexed, inclusive)
// of a PDF file. Negative bounds select the first and last page.
func (c *Converter) ConvertPageRange(ctx context.Context, filePath string, start, end int) (*Document, error) {
	doc, _, err := c.convert(ctx, &requests.OpenDocument{FilePath: &filePath}, func(src PageSource) (PageSource, error) {
		if start < 0 {
			start = 0
		}
		if end < 0 || end >= src.PageCount() {
			end = src.PageCount() - 1
		}
		if start > end {
			return nil, errors.New("invalid page range: start page must be <= end page")
		}
		return &pageRange{PageSource: src, start: start, count: end - start + 1}, nil
	})
	return doc, err
}

// ConvertFileWithMetrics reconstructs a PDF file and returns its metrics.
func (c *Converter) ConvertFileWithMetrics(ctx context.Context, filePath string) (*Document, ProcessingMetrics, error) {
	return c.convert(ctx, &requests.OpenDocument{FilePath: &filePath}, nil)
}

// convert opens a document, runs the engine over it and closes it again.
// Rendered pictures are copied out before the document is closed.
func (c *Converter) convert(ctx context.Context, open *requests.OpenDocument, wrap func(PageSource) (PageSource, error)) (*Document, ProcessingMetrics, error) {
	startTime := time.Now()

	opened, err := c.instance.OpenDocument(open)
	if err != nil {
		return nil, ProcessingMetrics{}, errors.Wrap(err, "failed to open PDF document")
	}
	defer c.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: opened.Document,
	})
	documentOpen := time.Since(startTime)

	source, err := NewPdfiumSource(c.instance, opened.Document)
	if err != nil {
		return nil, ProcessingMetrics{}, err
	}
	var src PageSource = source
	if wrap != nil {
		if src, err = wrap(source); err != nil {
			return nil, ProcessingMetrics{}, err
		}
	}

	doc, err := c.engine.Reconstruct(ctx, src)
	if err != nil {
		return nil, ProcessingMetrics{}, err
	}
	doc.source = nil

	metrics := ProcessingMetrics{
		TotalTime:       time.Since(startTime),
		DocumentOpen:    documentOpen,
		PageExtractions: source.Timings,
		Phases:          doc.Timings,
		Statistics:      calculateDocumentStatistics(doc),
	}
	if c.engine.config.EnableMetricsLogging {
		logProcessingMetrics(c.engine.log(), metrics)
	}
	return doc, metrics, nil
}

// pageRange exposes a contiguous slice of another source's pages. Page
// numbers keep their position in the full document.
type pageRange struct {
	PageSource
	start int
	count int
}

func (r *pageRange) PageCount() int {
	return r.count
}

func (r *pageRange) PageGeometry(page int) (*PageGeometry, error) {
	return r.PageSource.PageGeometry(r.start + page)
}

func (r *pageRange) RenderRegion(page int, rect Rect) (image.Image, error) {
	return r.PageSource.RenderRegion(page, rect)
}

// calculateDocumentStatistics counts the reconstructed structure.
func calculateDocumentStatistics(doc *Document) DocumentStatistics {
	stats := DocumentStatistics{
		TotalPages:    len(doc.Pages),
		TotalBlocks:   len(doc.Blocks),
		TotalChapters: len(doc.Chapters),
		TotalTables:   len(doc.Tables),
	}

	for _, ch := range doc.Chapters {
		if ch.Header != nil {
			stats.TotalHeaders++
		}
		stats.TotalParagraphs += len(ch.Paragraphs)
		for _, p := range ch.Paragraphs {
			stats.TotalSentences += len(p.Sentences)
			for _, s := range p.Sentences {
				stats.TotalWords += wordCount(s)
				stats.TotalCharacters += nonSpaceCount(s)
			}
		}
	}
	for _, img := range doc.Images {
		if img.IsImage {
			stats.TotalImages++
		}
	}
	return stats
}

// logProcessingMetrics writes the metrics as structured log entries.
func logProcessingMetrics(log *zap.Logger, metrics ProcessingMetrics) {
	s := metrics.Statistics
	log.Info("processing metrics",
		zap.Duration("total", metrics.TotalTime.Round(time.Millisecond)),
		zap.Duration("open", metrics.DocumentOpen.Round(time.Millisecond)),
		zap.Int("pages", s.TotalPages),
		zap.Int("blocks", s.TotalBlocks),
		zap.Int("chapters", s.TotalChapters),
		zap.Int("headers", s.TotalHeaders),
		zap.Int("paragraphs", s.TotalParagraphs),
		zap.Int("sentences", s.TotalSentences),
		zap.Int("tables", s.TotalTables),
		zap.Int("images", s.TotalImages),
		zap.Int("words", s.TotalWords),
		zap.Int("characters", s.TotalCharacters))

	for _, pm := range metrics.PageExtractions {
		log.Debug("page extracted",
			zap.Int("page", pm.PageNumber),
			zap.Duration("duration", pm.Duration.Round(time.Millisecond)))
	}

	if len(metrics.PageExtractions) > 0 {
		avg := metrics.TotalTime / time.Duration(len(metrics.PageExtractions))
		log.Info("average per page", zap.Duration("duration", avg.Round(time.Millisecond)))
	}
}

// GetDocumentInfo returns basic information about a PDF without reconstructing it.
func (c *Converter) GetDocumentInfo(filePath string) (*DocumentInfo, error) {
	doc, err := c.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &filePath,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer c.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	return documentInfo(c.instance, doc.Document)
}

func documentInfo(instance pdfium.Pdfium, document references.FPDF_DOCUMENT) (*DocumentInfo, error) {
	pageCount, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: document,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}
	return &DocumentInfo{PageCount: pageCount.PageCount}, nil
}

// DocumentInfo contains basic information about a PDF document.
type DocumentInfo struct {
	PageCount int
}
