package paperlayout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ivanvanderbyl/paperlayout/nlp"
)

// notSentences judges nothing to be a sentence, so table rows survive.
var notSentences = stubNLP{sentence: func(string) bool { return false }}

func newTestTableBuilder(doc *Document, fitter GridFitter) *tableBuilder {
	return &tableBuilder{
		doc:    doc,
		config: DefaultConfig(),
		lang:   nlpGuard{model: notSentences, log: zap.NewNop()},
		fitter: fitter,
	}
}

func tableTestDoc() (*Document, Table) {
	doc := newTestDoc(
		[]Line{lineOf(
			span(0, 50, 100, 80, 110, "ID", "Times", 10),
			span(0, 150, 100, 180, 110, "Mass", "Times", 10),
			span(0, 250, 100, 290, 110, "Speed", "Times", 10),
		)},
		[]Line{lineOf(
			span(0, 50, 120, 70, 130, "101", "Times", 10),
			span(0, 150, 120, 170, 130, "12.5", "Times", 10),
			span(0, 250, 120, 265, 130, "3.1", "Times", 10),
		)},
		[]Line{lineOf(
			span(0, 50, 140, 75, 150, "102", "Times", 10),
			span(0, 250, 140, 265, 150, "7.0", "Times", 10),
		)},
	)
	t := Table{
		Page:   0,
		Box:    Rect{X0: 40, Y0: 90, X1: 300, Y1: 160},
		Blocks: []int{0, 1, 2},
	}
	return doc, t
}

func TestTableBuilder_Build(t *testing.T) {
	doc, table := tableTestDoc()
	newTestTableBuilder(doc, GreedyFitter{}).build(context.Background(), &table)

	require.Len(t, table.Rows, 3)
	require.Empty(t, table.Rejected)
	require.Len(t, table.Columns, 3)

	for _, row := range table.Rows {
		require.Len(t, row.Cells, 3)
		assert.True(t, row.Accepted)
	}
	for _, col := range table.Columns {
		assert.Len(t, col.Cells, 3)
		assert.Equal(t, 90.0, col.Box.Y0)
		assert.Equal(t, 160.0, col.Box.Y1)
	}

	texts := func(r Row) []string {
		var out []string
		for _, c := range table.RowCells(r) {
			out = append(out, c.Text)
		}
		return out
	}
	assert.Equal(t, []string{"ID", "Mass", "Speed"}, texts(table.Rows[0]))
	assert.Equal(t, []string{"101", "12.5", "3.1"}, texts(table.Rows[1]))
	assert.Equal(t, []string{"102", "", "7.0"}, texts(table.Rows[2]))

	gap := table.Cells[table.Rows[2].Cells[1]]
	assert.True(t, gap.Placeholder)
	assert.False(t, gap.Activated)
	assert.Equal(t, nlp.Unknown, gap.WordType)

	for _, c := range table.Cells {
		if !c.Placeholder {
			assert.True(t, c.Activated, c.Text)
		}
	}

	assert.Equal(t, nlp.Unknown, table.Cells[table.Rows[0].Cells[0]].WordType, "short tokens are forced unknown")
	assert.Equal(t, nlp.Word, table.Cells[table.Rows[0].Cells[1]].WordType)
	assert.Equal(t, nlp.Num, table.Cells[table.Rows[1].Cells[1]].WordType)

	resolveHeader(&table)
	require.NotNil(t, table.Header)
	assert.Equal(t, HeaderRow, table.Header.Kind)
	assert.Equal(t, []string{"ID", "Mass", "Speed"}, table.HeaderTexts())
	assert.Len(t, table.Rows, 2)
	assert.Len(t, table.Columns[0].Cells, 2)
}

// unboundFitter leaves every cell unbound.
type unboundFitter struct{}

func (unboundFitter) Assign(cells []GridCell, _ []GridSlot) Assignment {
	out := make(Assignment, len(cells))
	for i := range out {
		out[i] = -1
	}
	return out
}

func TestTableBuilder_UsesFitter(t *testing.T) {
	doc, table := tableTestDoc()
	newTestTableBuilder(doc, unboundFitter{}).build(context.Background(), &table)

	require.Len(t, table.Rows, 3)
	for _, row := range table.Rows {
		for _, c := range table.RowCells(row) {
			assert.True(t, c.Placeholder)
		}
	}
}

func TestResolveHeader_Column(t *testing.T) {
	table := Table{
		Cells: []Cell{
			{Text: "Mass", WordType: nlp.Word},
			{Text: "12.5", WordType: nlp.Num},
			{Text: "Speed", WordType: nlp.Word},
			{Text: "3.1", WordType: nlp.Num},
		},
		Rows:    []Row{{Cells: []int{0, 1}}, {Cells: []int{2, 3}}},
		Columns: []Column{{Cells: []int{0, 2}}, {Cells: []int{1, 3}}},
	}

	resolveHeader(&table)
	require.NotNil(t, table.Header)
	assert.Equal(t, HeaderColumn, table.Header.Kind)
	assert.Equal(t, []string{"Mass", "Speed"}, table.HeaderTexts())
	assert.Len(t, table.Columns, 1)
	assert.Len(t, table.Rows, 2)
}

func TestResolveHeader_TieGoesToColumn(t *testing.T) {
	table := Table{
		Cells: []Cell{
			{Text: "Name", WordType: nlp.Word},
			{Text: "Value", WordType: nlp.Word},
			{Text: "Alpha", WordType: nlp.Word},
			{Text: "1", WordType: nlp.Num},
		},
		Rows:    []Row{{Cells: []int{0, 1}}, {Cells: []int{2, 3}}},
		Columns: []Column{{Cells: []int{0, 2}}, {Cells: []int{1, 3}}},
	}

	resolveHeader(&table)
	assert.Equal(t, HeaderColumn, table.Header.Kind)
}

func TestAcceptRows(t *testing.T) {
	doc, table := tableTestDoc()
	tb := newTestTableBuilder(doc, GreedyFitter{})

	withCells := func(counts ...int) []Row {
		rows := make([]Row, len(counts))
		for i, n := range counts {
			rows[i].Text = "cell text"
			for c := 0; c < n; c++ {
				rows[i].Cells = append(rows[i].Cells, c)
			}
		}
		return rows
	}
	accepted := func(rows []Row) []bool {
		out := make([]bool, len(rows))
		for i, r := range rows {
			out[i] = r.Accepted
		}
		return out
	}

	rows := withCells(3, 1, 3)
	tb.acceptRows(context.Background(), &table, rows)
	assert.Equal(t, []bool{true, true, true}, accepted(rows), "a sandwiched row is reinstated")

	rows = withCells(3, 3, 1)
	tb.acceptRows(context.Background(), &table, rows)
	assert.Equal(t, []bool{true, true, false}, accepted(rows))

	rows = withCells(4, 4, 4, 4, 4, 4, 30)
	tb.acceptRows(context.Background(), &table, rows)
	assert.Equal(t, []bool{true, true, true, true, true, true, false}, accepted(rows), "too many cells")

	tb.lang = nlpGuard{model: stubNLP{}, log: zap.NewNop()}
	rows = withCells(3, 3)
	tb.acceptRows(context.Background(), &table, rows)
	assert.Equal(t, []bool{false, false}, accepted(rows), "sentences are not rows")
}
