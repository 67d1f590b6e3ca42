package paperlayout

import (
	"encoding/json"
)

// Result is the serialisable view of a reconstructed document.
type Result struct {
	ID       string          `json:"id"`
	Metadata Metadata        `json:"metadata"`
	Stats    Statistics      `json:"stats"`
	Chapters []ChapterResult `json:"chapters"`
	Tables   []TableResult   `json:"tables"`
	Images   []ImageResult   `json:"images"`
	Blocks   []BlockResult   `json:"blocks,omitempty"`
	Timings  []PhaseTiming   `json:"timings,omitempty"`
}

// ChapterResult is a chapter with its paragraphs' sentences.
type ChapterResult struct {
	Header     string     `json:"header,omitempty"`
	Paragraphs [][]string `json:"paragraphs"`
}

// TableResult is a table flattened to cell texts.
type TableResult struct {
	Name        string      `json:"name,omitempty"`
	Page        int         `json:"page"`
	Box         Rect        `json:"box"`
	Description string      `json:"description"`
	Orientation Orientation `json:"orientation"`
	HeaderKind  string      `json:"headerKind,omitempty"`
	Header      []string    `json:"header,omitempty"`
	Rows        [][]string  `json:"rows"`
	Rejected    []string    `json:"rejected,omitempty"`
}

// ImageResult is an accepted figure.
type ImageResult struct {
	Name     string `json:"name,omitempty"`
	Page     int    `json:"page"`
	Caption  string `json:"caption"`
	Box      Rect   `json:"box"`
	Centered bool   `json:"centered"`
}

// BlockResult is a block with its final role and how it got there.
type BlockResult struct {
	Index   int          `json:"index"`
	Page    int          `json:"page"`
	Box     Rect         `json:"box"`
	Text    string       `json:"text"`
	Role    Role         `json:"role"`
	History []RoleChange `json:"history,omitempty"`
}

// Result builds the serialisable view. Blocks are included when withBlocks is set.
func (d *Document) Result(withBlocks bool) Result {
	res := Result{
		ID:       d.ID,
		Metadata: d.Metadata,
		Stats:    d.Stats,
		Chapters: make([]ChapterResult, 0, len(d.Chapters)),
		Tables:   make([]TableResult, 0, len(d.Tables)),
		Images:   []ImageResult{},
		Timings:  d.Timings,
	}

	for _, ch := range d.Chapters {
		cr := ChapterResult{Paragraphs: make([][]string, 0, len(ch.Paragraphs))}
		if ch.Header != nil {
			cr.Header = ch.Header.Text
		}
		for _, p := range ch.Paragraphs {
			cr.Paragraphs = append(cr.Paragraphs, p.Sentences)
		}
		res.Chapters = append(res.Chapters, cr)
	}

	for i := range d.Tables {
		t := &d.Tables[i]
		tr := TableResult{
			Name:        t.Name,
			Page:        t.Page,
			Box:         t.Box,
			Description: t.DescriptionText,
			Orientation: t.Orientation,
			Header:      t.HeaderTexts(),
			Rows:        make([][]string, 0, len(t.Rows)),
		}
		if t.Header != nil {
			tr.HeaderKind = t.Header.Kind.String()
		}
		for _, row := range t.Rows {
			texts := make([]string, 0, len(row.Cells))
			for _, cell := range t.RowCells(row) {
				texts = append(texts, cell.Text)
			}
			tr.Rows = append(tr.Rows, texts)
		}
		for _, row := range t.Rejected {
			tr.Rejected = append(tr.Rejected, row.Text)
		}
		res.Tables = append(res.Tables, tr)
	}

	for _, img := range d.Images {
		if !img.IsImage {
			continue
		}
		res.Images = append(res.Images, ImageResult{
			Name:     img.Name,
			Page:     img.Page,
			Caption:  img.CaptionText,
			Box:      img.Box,
			Centered: img.Centered,
		})
	}

	if withBlocks {
		for _, b := range d.Blocks {
			res.Blocks = append(res.Blocks, BlockResult{
				Index:   b.Index,
				Page:    b.Page,
				Box:     b.Box,
				Text:    b.Text,
				Role:    b.role,
				History: b.History,
			})
		}
	}
	return res
}

// MarshalJSON encodes the document through its Result view, without blocks.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Result(false))
}
