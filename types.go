package paperlayout

import (
	"image"
	"math"
)

// Rect represents a bounding box in page units on a given page.
// Y grows downwards (top-left origin).
type Rect struct {
	Page int     `json:"page"`
	X0   float64 `json:"x0"` // Left
	Y0   float64 `json:"y0"` // Top
	X1   float64 `json:"x1"` // Right
	Y1   float64 `json:"y1"` // Bottom
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 {
	return (r.X0 + r.X1) / 2
}

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 {
	return (r.Y0 + r.Y1) / 2
}

// Area returns the area of the rectangle.
func (r Rect) Area() float64 {
	return r.Width() * r.Height()
}

// Valid reports whether the rectangle is well formed.
func (r Rect) Valid() bool {
	if math.IsNaN(r.X0) || math.IsNaN(r.Y0) || math.IsNaN(r.X1) || math.IsNaN(r.Y1) {
		return false
	}
	return r.X0 <= r.X1 && r.Y0 <= r.Y1
}

// Corners returns the four corners clockwise from top-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.X0, Y: r.Y0},
		{X: r.X1, Y: r.Y0},
		{X: r.X1, Y: r.Y1},
		{X: r.X0, Y: r.Y1},
	}
}

// Point is a position on a page.
type Point struct {
	X float64
	Y float64
}

// Span is the smallest text unit produced by the page source: a run of
// characters sharing one font and size.
type Span struct {
	Text string  `json:"text"`
	Font string  `json:"font"`
	Size float64 `json:"size"`
	Box  Rect    `json:"box"`

	// Dir is the writing direction as a unit vector, (1, 0) for
	// horizontal left-to-right text.
	Dir [2]float64 `json:"dir"`
}

// Char is a single raw character box used for spacing statistics.
type Char struct {
	Text rune
	Box  Rect
}

// PageGeometry is everything the page source knows about one page.
type PageGeometry struct {
	Number  int
	Width   float64
	Height  float64
	Spans   []Span
	Chars   []Char
	Rulings []Edge // Explicit line objects, used to find bordered tables
}

// PageSource provides page primitives and rendering.
type PageSource interface {
	PageCount() int
	PageGeometry(page int) (*PageGeometry, error)
	RenderRegion(page int, r Rect) (image.Image, error)
}

// Line is a row (or column, for vertical text) of spans.
type Line struct {
	Spans []Span
	Text  string
	Box   Rect
	Fonts []string // Ranked by span count
	Font  string
	Size  int
	Dir   [2]float64

	// Block is the arena index of the owning block, -1 until assembled.
	Block int

	// AbsY0 and AbsY1 place the line in document reading order.
	AbsY0 float64
	AbsY1 float64
}

// Block is a geometric cluster of lines treated as one layout unit.
type Block struct {
	Index       int
	Page        int
	Box         Rect
	Lines       []int // Arena indices into Document.Lines
	Text        string
	Font        string
	Size        int
	Orientation Orientation

	// Column is the reading-order band (0-4) and AbsY0/AbsY1 the
	// document-wide reading-order keys.
	Column int
	AbsY0  float64
	AbsY1  float64

	Features TextFeatures
	History  []RoleChange

	role Role
}

// Role returns the block's current classification.
func (b *Block) Role() Role {
	return b.role
}

// TextFeatures records the typographic predicates computed for a block.
type TextFeatures struct {
	CommonFont  bool `json:"commonFont"`
	CommonSize  bool `json:"commonSize"`
	InOrder     bool `json:"inOrder"`
	NormalWidth bool `json:"normalWidth"`
}

// PageInfo holds the per-page data kept after ingestion.
type PageInfo struct {
	Number  int
	Width   float64
	Height  float64
	Rulings []Edge
}

// Header is a section header paired with a chapter.
type Header struct {
	Block int    `json:"block"`
	Text  string `json:"text"`
}

// Paragraph is a run of lines re-flowed into sentences.
type Paragraph struct {
	Lines     []int    `json:"-"`
	Sentences []string `json:"sentences"`
}

// Text returns the paragraph's sentences joined by spaces.
func (p Paragraph) Text() string {
	return joinSentences(p.Sentences)
}

// Chapter is a run of body-text lines with an optional header.
type Chapter struct {
	Header     *Header     `json:"header,omitempty"`
	Lines      []int       `json:"-"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Author is a paper author.
type Author struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family"`
}

// Reference is one entry of the paper's reference list.
type Reference struct {
	DOI    string `json:"doi,omitempty"`
	Author string `json:"author,omitempty"`
	Title  string `json:"title,omitempty"`
}

// Metadata holds bibliographic data found in or for the document.
type Metadata struct {
	DOI        string      `json:"doi,omitempty"`
	Title      string      `json:"title,omitempty"`
	Subtitle   string      `json:"subtitle,omitempty"`
	Authors    []Author    `json:"authors,omitempty"`
	ISSN       string      `json:"issn,omitempty"`
	Publisher  string      `json:"publisher,omitempty"`
	Journal    string      `json:"journal,omitempty"`
	References []Reference `json:"references,omitempty"`
	Abstract   string      `json:"abstract,omitempty"`
}

// Image is a figure caption with the picture region it describes.
type Image struct {
	Name        string
	Caption     int // Block index
	CaptionText string
	Page        int
	Box         Rect
	Centered    bool

	// Neighbours holds the bounding block index per side, -1 for the page edge.
	Neighbours [4]int
	IsImage    bool
	Picture    image.Image
}

// Document is the aggregate root of one reconstruction run.
type Document struct {
	ID     string
	Pages  []PageInfo
	Lines  []Line
	Blocks []Block
	Stats  Statistics

	Chapters []Chapter
	Tables   []Table
	Images   []Image
	Metadata Metadata

	Timings []PhaseTiming

	source PageSource
}

// Page returns the page info for a page number, or a zero value.
func (d *Document) Page(number int) PageInfo {
	for _, p := range d.Pages {
		if p.Number == number {
			return p
		}
	}
	return PageInfo{Number: number}
}

// BlockLines returns the lines of a block.
func (d *Document) BlockLines(b int) []Line {
	block := d.Blocks[b]
	lines := make([]Line, 0, len(block.Lines))
	for _, li := range block.Lines {
		lines = append(lines, d.Lines[li])
	}
	return lines
}

// BlocksWithRole returns the indices of blocks holding role, in arena order.
func (d *Document) BlocksWithRole(role Role) []int {
	var out []int
	for i := range d.Blocks {
		if d.Blocks[i].role == role {
			out = append(out, i)
		}
	}
	return out
}
