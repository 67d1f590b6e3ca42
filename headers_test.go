package paperlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHeaderMatcher_Match(t *testing.T) {
	m := newHeaderMatcher(DefaultConfig())

	tests := []struct {
		name     string
		text     string
		prev     string
		hasPrev  bool
		expected bool
	}{
		{"lexicon entry", "References", "", false, true},
		{"numbered after sentence", "2 Methods", "The end of the section.", true, true},
		{"numbered without sentence before", "2 Methods", "a dangling clause", true, false},
		{"numbered at document start", "2 Methods", "", false, false},
		{"multi-word lexicon entry", "Conflicts of Interest", "", false, true},
		{"too short", "of", "", false, false},
		{"too long", "Results of the one experiment we ran in the lab today", "", false, false},
		{"lexicon substring", "Experimental setup", "", false, true},
		{"word inside lexicon entry", "Conflicts", "", false, true},
		{"short words ignored", "Interest of", "", false, true},
		{"words under four runes never match an entry", "Set up", "", false, false},
		{"unrelated", "Acknowledgements", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.match(tt.text, tt.prev, tt.hasPrev))
		})
	}
}

func TestFoldText(t *testing.T) {
	assert.Equal(t, "results", foldText("  RESULTS "))
	assert.Equal(t, "fig", foldText("ﬁg"))
}

func TestIdentifyHeaders(t *testing.T) {
	doc := newTestDoc(
		[]Line{line(0, 50, 100, 550, 110, "Body text that ends here.")},
		[]Line{line(0, 50, 130, 150, 140, "Results")},
		[]Line{line(0, 50, 160, 150, 170, "References")},
		[]Line{line(0, 50, 20, 150, 30, "Introduction")},
		[]Line{line(0, 50, 200, 150, 210, "Discussion")},
	)
	doc.Blocks[0].Claim(RoleText, stageText, "body typography")
	doc.Blocks[3].Claim(RoleRecurring, stageText, "running head")
	doc.Blocks[4].Claim(RoleMeta, stageText, "pattern")
	doc.Tables = []Table{{Page: 0, Box: Rect{X0: 40, Y0: 125, X1: 560, Y1: 145}}}

	n := identifyHeaders(doc, DefaultConfig(), zap.NewNop())
	require.Equal(t, 1, n)
	assert.Equal(t, []Role{RoleText, RoleUnclassified, RoleHeader, RoleRecurring, RoleMeta}, roles(doc))
}

func TestPairHeaders(t *testing.T) {
	doc := newTestDoc(
		[]Line{line(0, 50, 100, 200, 110, "1 Introduction")},
		[]Line{line(0, 50, 120, 550, 130, "Chapter one body.")},
		[]Line{line(0, 50, 300, 200, 310, "2 Methods")},
		[]Line{line(0, 50, 400, 550, 410, "Chapter two body.")},
	)
	doc.Blocks[0].Claim(RoleHeader, stageText, "header predicate")
	doc.Blocks[2].Claim(RoleHeader, stageText, "header predicate")
	doc.Chapters = []Chapter{{Lines: []int{1}}, {Lines: []int{3}}}

	pairHeaders(doc, DefaultConfig())

	require.NotNil(t, doc.Chapters[0].Header)
	assert.Equal(t, Header{Block: 0, Text: "1 Introduction"}, *doc.Chapters[0].Header)
	assert.Nil(t, doc.Chapters[1].Header, "chapter starts beyond the window")
}

func TestPairHeaders_EarlierHeaderWins(t *testing.T) {
	doc := newTestDoc(
		[]Line{line(0, 50, 100, 200, 110, "Results")},
		[]Line{line(0, 50, 115, 200, 125, "Discussion")},
		[]Line{line(0, 50, 130, 550, 140, "Shared chapter body.")},
	)
	doc.Blocks[0].Claim(RoleHeader, stageText, "header predicate")
	doc.Blocks[1].Claim(RoleHeader, stageText, "header predicate")
	doc.Chapters = []Chapter{{Lines: []int{2}}}

	pairHeaders(doc, DefaultConfig())

	require.NotNil(t, doc.Chapters[0].Header)
	assert.Equal(t, 0, doc.Chapters[0].Header.Block)
}
