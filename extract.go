package paperlayout

import (
	"image"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultRenderDPI is the resolution used for detection and pictures.
	DefaultRenderDPI = 150

	// spanBreakFactor times the average char width splits a span.
	spanBreakFactor = 1.5
)

// PageMetrics contains timing for a single page.
type PageMetrics struct {
	PageNumber int
	Duration   time.Duration
}

// PdfiumSource reads page primitives from a document opened in pdfium.
type PdfiumSource struct {
	instance pdfium.Pdfium
	document references.FPDF_DOCUMENT
	pages    int

	// DPI is the render resolution (default: DefaultRenderDPI)
	DPI int

	// Timings records geometry extraction per page.
	Timings []PageMetrics
}

// NewPdfiumSource wraps an open document.
func NewPdfiumSource(instance pdfium.Pdfium, document references.FPDF_DOCUMENT) (*PdfiumSource, error) {
	pageCount, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: document,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}
	return &PdfiumSource{
		instance: instance,
		document: document,
		pages:    pageCount.PageCount,
		DPI:      DefaultRenderDPI,
	}, nil
}

// PageCount implements PageSource.
func (s *PdfiumSource) PageCount() int {
	return s.pages
}

// withPage loads a page for the duration of fn.
func (s *PdfiumSource) withPage(index int, fn func(page references.FPDF_PAGE) error) error {
	pageResp, err := s.instance.FPDF_LoadPage(&requests.FPDF_LoadPage{
		Document: s.document,
		Index:    index,
	})
	if err != nil {
		return errors.Wrap(err, "failed to load page")
	}
	defer s.instance.FPDF_ClosePage(&requests.FPDF_ClosePage{
		Page: pageResp.Page,
	})
	return fn(pageResp.Page)
}

// pageSize returns the page dimensions in points.
func (s *PdfiumSource) pageSize(page references.FPDF_PAGE) (float64, float64, error) {
	width, err := s.instance.FPDF_GetPageWidthF(&requests.FPDF_GetPageWidthF{
		Page: requests.Page{ByReference: &page},
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to get page width")
	}
	height, err := s.instance.FPDF_GetPageHeightF(&requests.FPDF_GetPageHeightF{
		Page: requests.Page{ByReference: &page},
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to get page height")
	}
	return float64(width.PageWidth), float64(height.PageHeight), nil
}

// PageGeometry implements PageSource. Ruling extraction failures are not
// fatal; the page is returned without rulings.
func (s *PdfiumSource) PageGeometry(index int) (*PageGeometry, error) {
	start := time.Now()
	geo := &PageGeometry{Number: index}

	err := s.withPage(index, func(page references.FPDF_PAGE) error {
		width, height, err := s.pageSize(page)
		if err != nil {
			return err
		}
		geo.Width, geo.Height = width, height

		textPage, err := s.instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
			Page: requests.Page{ByReference: &page},
		})
		if err != nil {
			return errors.Wrap(err, "failed to load text page")
		}
		defer s.instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
			TextPage: textPage.TextPage,
		})

		chars, err := s.pageChars(textPage.TextPage, index, height)
		if err != nil {
			return errors.Wrap(err, "failed to extract characters")
		}
		for _, ch := range chars {
			geo.Chars = append(geo.Chars, Char{Text: ch.text, Box: ch.box})
		}
		geo.Spans = buildSpans(chars)

		if rulings, err := pageRulings(s.instance, page, width, height); err == nil {
			geo.Rulings = rulings
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Timings = append(s.Timings, PageMetrics{PageNumber: index + 1, Duration: time.Since(start)})
	return geo, nil
}

// pdfChar is one character with the font data spans are built from.
type pdfChar struct {
	text  rune
	box   Rect
	font  string
	size  float64
	angle float64
}

// pageChars reads every character of a text page in content order.
func (s *PdfiumSource) pageChars(textPage references.FPDF_TEXTPAGE, pageIndex int, pageHeight float64) ([]pdfChar, error) {
	countResp, err := s.instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count characters")
	}

	chars := make([]pdfChar, 0, countResp.Count)
	for i := range countResp.Count {
		unicodeRes, err := s.instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage,
			Index:    i,
		})
		if err != nil || unicodeRes.Unicode == 0 {
			continue
		}

		charBox, err := s.instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		ch := pdfChar{
			text: rune(unicodeRes.Unicode),
			box: Rect{
				Page: pageIndex,
				X0:   charBox.Left,
				Y0:   pageHeight - charBox.Top,
				X1:   charBox.Right,
				Y1:   pageHeight - charBox.Bottom,
			},
			size: 12,
		}

		if fontSize, err := s.instance.FPDFText_GetFontSize(&requests.FPDFText_GetFontSize{
			TextPage: textPage,
			Index:    i,
		}); err == nil {
			ch.size = fontSize.FontSize
		}
		if fontInfo, err := s.instance.FPDFText_GetFontInfo(&requests.FPDFText_GetFontInfo{
			TextPage: textPage,
			Index:    i,
		}); err == nil {
			ch.font = fontInfo.FontName
		}
		if angle, err := s.instance.FPDFText_GetCharAngle(&requests.FPDFText_GetCharAngle{
			TextPage: textPage,
			Index:    i,
		}); err == nil {
			ch.angle = float64(angle.CharAngle)
		}

		chars = append(chars, ch)
	}
	return chars, nil
}

// averageCharWidth is the mean width of non-space characters.
func averageCharWidth(chars []pdfChar) float64 {
	total, n := 0.0, 0
	for _, ch := range chars {
		if !unicode.IsSpace(ch.text) {
			total += math.Max(ch.box.Width(), ch.box.Height()*0.1)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// buildSpans groups characters in content order into runs of one font,
// rounded size and direction on one row. A gap wider than spanBreakFactor
// average char widths also ends a span, so that table cells stay apart.
// Whitespace becomes a single space inside a span.
func buildSpans(chars []pdfChar) []Span {
	maxGap := spanBreakFactor * averageCharWidth(chars)

	var spans []Span
	var text strings.Builder
	var current *Span
	var last *pdfChar
	pendingSpace := false

	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(norm.NFKC.String(text.String()))
			if current.Text != "" {
				spans = append(spans, *current)
			}
		}
		current, last = nil, nil
		text.Reset()
		pendingSpace = false
	}

	for i := range chars {
		ch := &chars[i]
		if unicode.IsSpace(ch.text) {
			pendingSpace = current != nil
			continue
		}

		dir := directionFromAngle(ch.angle)
		if current != nil {
			gap := axisStart(ch.box, dir) - axisEnd(last.box, dir)
			sameRun := ch.font == current.Font &&
				math.Round(ch.size) == math.Round(current.Size) &&
				orientationOf(dir) == orientationOf(current.Dir) &&
				sameCharRow(last.box, ch.box, dir) &&
				gap <= maxGap && gap > -maxGap
			if !sameRun {
				flush()
			}
		}

		if current == nil {
			current = &Span{Font: ch.font, Size: ch.size, Box: ch.box, Dir: dir}
		} else {
			current.Box = mergeRects(current.Box, ch.box)
			if pendingSpace {
				text.WriteByte(' ')
			}
		}
		text.WriteRune(ch.text)
		last = ch
		pendingSpace = false
	}
	flush()
	return spans
}

// sameCharRow reports whether two characters overlap across the writing direction.
func sameCharRow(a, b Rect, dir [2]float64) bool {
	if isVerticalDir(dir) {
		return overlapRatio(a.X0, a.X1, b.X0, b.X1) > 0
	}
	return overlapRatio(a.Y0, a.Y1, b.Y0, b.Y1) > 0
}

// RenderRegion implements PageSource. The page is rendered at DPI and the
// region, in page units, is copied out of the bitmap.
func (s *PdfiumSource) RenderRegion(index int, r Rect) (image.Image, error) {
	var out *image.RGBA
	err := s.withPage(index, func(page references.FPDF_PAGE) error {
		width, _, err := s.pageSize(page)
		if err != nil {
			return err
		}

		dpi := s.DPI
		if dpi <= 0 {
			dpi = DefaultRenderDPI
		}
		resp, err := s.instance.RenderPageInDPI(&requests.RenderPageInDPI{
			DPI:  dpi,
			Page: requests.Page{ByReference: &page},
		})
		if err != nil {
			return errors.Wrap(err, "failed to render page")
		}
		defer resp.Cleanup()

		src := resp.Result.Image
		scale := float64(src.Bounds().Dx()) / width
		rect := image.Rect(
			int(math.Floor(r.X0*scale)), int(math.Floor(r.Y0*scale)),
			int(math.Ceil(r.X1*scale)), int(math.Ceil(r.Y1*scale)),
		).Intersect(src.Bounds())
		if rect.Empty() {
			return errors.Wrapf(ErrInvalidRect, "region %+v outside page %d", r, index+1)
		}

		out = image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		draw.Copy(out, image.Point{}, src, rect, draw.Src, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
