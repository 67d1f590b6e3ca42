package paperlayout

import (
	"github.com/ivanvanderbyl/paperlayout/detect"
	"github.com/ivanvanderbyl/paperlayout/nlp"
)

// Edge represents a horizontal or vertical ruling drawn on the page.
// Based on pdfplumber's edge structure.
type Edge struct {
	X0          float64 // Left x coordinate
	X1          float64 // Right x coordinate
	Top         float64 // Top y coordinate
	Bottom      float64 // Bottom y coordinate
	Width       float64 // Width (for horizontal edges)
	Height      float64 // Height (for vertical edges)
	Orientation string  // "h" for horizontal, "v" for vertical
}

// Table is a reconstructed table: the detected region, its description
// block, and a grid of cells addressed by index.
type Table struct {
	Name            string        `json:"name,omitempty"`
	Page            int           `json:"page"`
	Box             Rect          `json:"box"`
	Region          detect.Region `json:"region"`
	Description     int           `json:"description"` // Block index
	DescriptionText string        `json:"descriptionText"`
	Blocks          []int         `json:"blocks"`
	Orientation     Orientation   `json:"orientation"`

	// Cells is the arena every Row and Column refers into.
	Cells    []Cell   `json:"cells"`
	Rows     []Row    `json:"rows"`
	Columns  []Column `json:"columns"`
	Rejected []Row    `json:"rejected,omitempty"`

	Header *TableHeader `json:"header,omitempty"`
}

// HeaderKind tells whether a table header is a row or a column.
type HeaderKind int

const (
	HeaderRow HeaderKind = iota
	HeaderColumn
)

func (k HeaderKind) String() string {
	if k == HeaderColumn {
		return "column"
	}
	return "row"
}

// MarshalText implements encoding.TextMarshaler.
func (k HeaderKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// TableHeader is the row or column removed from the data grid as header.
type TableHeader struct {
	Kind  HeaderKind `json:"kind"`
	Cells []int      `json:"cells"`
}

// Row is a run of cells along the table's primary axis.
type Row struct {
	Box      Rect   `json:"box"`
	Lines    []int  `json:"-"`
	Text     string `json:"text"`
	Cells    []int  `json:"cells"`
	Accepted bool   `json:"accepted"`
	IsHeader bool   `json:"isHeader,omitempty"`
}

// Column is a run of cells across rows.
type Column struct {
	Box      Rect  `json:"box"`
	Cells    []int `json:"cells"`
	IsHeader bool  `json:"isHeader,omitempty"`
}

// Cell is one table cell. Placeholder cells pad rows to the grid width;
// Activated marks grid positions bound to real content.
type Cell struct {
	Box         Rect         `json:"box"`
	Text        string       `json:"text"`
	WordType    nlp.WordType `json:"wordType"`
	Activated   bool         `json:"activated"`
	Placeholder bool         `json:"placeholder,omitempty"`
}

// RowCells returns the cells of row r.
func (t *Table) RowCells(r Row) []Cell {
	out := make([]Cell, 0, len(r.Cells))
	for _, ci := range r.Cells {
		out = append(out, t.Cells[ci])
	}
	return out
}

// HeaderTexts returns the texts of the header cells, if any.
func (t *Table) HeaderTexts() []string {
	if t.Header == nil {
		return nil
	}
	out := make([]string, 0, len(t.Header.Cells))
	for _, ci := range t.Header.Cells {
		out = append(out, t.Cells[ci].Text)
	}
	return out
}
