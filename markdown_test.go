package paperlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func markdownTestDoc() *Document {
	return &Document{
		Metadata: Metadata{
			Title:    "Layout",
			Authors:  []Author{{Given: "Ada", Family: "Lovelace"}},
			DOI:      "10.1234/abcd",
			Abstract: "We rebuild page layout.",
		},
		Chapters: []Chapter{
			{
				Header:     &Header{Block: 0, Text: "1 Introduction"},
				Paragraphs: []Paragraph{{Sentences: []string{"Papers are hard.", "Layout helps."}}},
			},
			{
				Header:     &Header{Block: 2, Text: "2.1 Setup"},
				Paragraphs: []Paragraph{{Sentences: []string{"We use two pages."}}},
			},
		},
		Tables: []Table{{
			DescriptionText: "Table 1: Masses",
			Cells: []Cell{
				{Text: "ID"}, {Text: "Mass"},
				{Text: "101"}, {Text: "7.5"},
			},
			Header: &TableHeader{Kind: HeaderRow, Cells: []int{0, 1}},
			Rows:   []Row{{Cells: []int{2, 3}, Accepted: true}},
		}},
		Images: []Image{
			{CaptionText: "Figure 1: Overview", IsImage: true},
			{CaptionText: "Figure 2: Released", IsImage: false},
		},
	}
}

func TestDocument_ToMarkdown(t *testing.T) {
	md := markdownTestDoc().ToMarkdown()

	assert.Contains(t, md, "# Layout")
	assert.Contains(t, md, "Ada Lovelace")
	assert.Contains(t, md, "10.1234/abcd")
	assert.Contains(t, md, "## Abstract")
	assert.Contains(t, md, "We rebuild page layout.")
	assert.Contains(t, md, "## 1 Introduction")
	assert.Contains(t, md, "Papers are hard. Layout helps.")
	assert.Contains(t, md, "### 2.1 Setup")
	assert.Contains(t, md, "**Table 1: Masses**")
	assert.Contains(t, md, "Mass")
	assert.Contains(t, md, "7.5")
	assert.Contains(t, md, "Figure 1: Overview")
	assert.NotContains(t, md, "Figure 2")
}

func TestDocument_ToMarkdown_Empty(t *testing.T) {
	doc := &Document{}
	assert.NotContains(t, doc.ToMarkdown(), "#")
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Results", 2},
		{"3 Results", 2},
		{"3.1 Setup", 3},
		{"3.1.2", 4},
		{"1.2.3.4.5.6 Deep", 6},
		{"3a Appendix", 2},
		{"3. Methods", 2},
		{"", 2},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, headingLevel(tt.text))
		})
	}
}
