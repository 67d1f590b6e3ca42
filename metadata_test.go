package paperlayout

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/paperlayout/crossref"
)

// fakeLookup returns a fixed record and remembers the DOIs asked for.
type fakeLookup struct {
	md    *Metadata
	err   error
	asked []string
}

func (l *fakeLookup) Lookup(_ context.Context, doi string) (*Metadata, error) {
	l.asked = append(l.asked, doi)
	return l.md, l.err
}

func TestFindDOI(t *testing.T) {
	doc := newTestDoc(
		[]Line{line(0, 50, 50, 550, 60, "Plain text without identifiers")},
		[]Line{line(0, 50, 700, 550, 710, "https://doi.org/10.1016/j.cell.2020.01.001.")},
		[]Line{line(1, 50, 700, 550, 710, "doi: 10.9999/later")},
	)

	require.Equal(t, "10.1016/j.cell.2020.01.001", findDOI(doc, 3))
}

func TestFindDOI_OnlyLeadingPages(t *testing.T) {
	doc := newTestDoc(
		[]Line{line(0, 50, 50, 550, 60, "First page")},
		[]Line{line(3, 50, 700, 550, 710, "doi: 10.1234/too.late")},
	)

	require.Empty(t, findDOI(doc, 3))
	require.Equal(t, "10.1234/too.late", findDOI(doc, 4))
}

func TestStripAbstractMarker(t *testing.T) {
	assert.Equal(t, "We study layout.", stripAbstractMarker("Abstract: We study layout."))
	assert.Equal(t, "We study layout", stripAbstractMarker("ABSTRACT — We study layout"))
	assert.Equal(t, "No marker here", stripAbstractMarker("  No marker here "))
	assert.Equal(t, "", stripAbstractMarker("Abstract."))
}

func metadataTestDoc() *Document {
	return newTestDoc(
		[]Line{styledLine(0, 50, 30, 500, 44, "Layout Reconstruction of Papers", "Arial", 14)},
		[]Line{line(0, 50, 56, 400, 66, "Ada Lovelace and Alan Turing")},
		[]Line{line(0, 50, 80, 400, 90, "doi: 10.1234/abcd.5678")},
		[]Line{line(0, 50, 110, 150, 120, "Abstract")},
		[]Line{
			line(0, 50, 124, 550, 134, "We study how page"),
			line(0, 50, 138, 550, 148, "layout is rebuilt."),
		},
		[]Line{styledLine(0, 50, 160, 300, 174, "1 Introduction", "Arial", 14)},
	)
}

func runMetadataStage(t *testing.T, e *Engine, doc *Document) {
	t.Helper()
	s := &MetadataStage{engine: e}
	require.NoError(t, s.Preprocess(context.Background(), doc))
	require.NoError(t, s.Process(context.Background(), doc))
	require.NoError(t, s.Postprocess(context.Background(), doc))
}

func TestMetadataStage(t *testing.T) {
	lookup := &fakeLookup{md: &Metadata{
		DOI:     "10.1234/ABCD.5678",
		Title:   "Layout Reconstruction of Papers",
		Journal: "Journal of Layout",
		Authors: []Author{{Given: "Ada", Family: "Lovelace"}, {Given: "Alan", Family: "Turing"}},
	}}
	doc := metadataTestDoc()
	runMetadataStage(t, NewEngine(DefaultConfig(), WithNLP(stubNLP{}), WithLookup(lookup)), doc)

	assert.Equal(t, []string{"10.1234/abcd.5678"}, lookup.asked)
	assert.Equal(t, "10.1234/abcd.5678", doc.Metadata.DOI, "the DOI found in the document is kept")
	assert.Equal(t, "Layout Reconstruction of Papers", doc.Metadata.Title)
	assert.Equal(t, "Journal of Layout", doc.Metadata.Journal)
	assert.Equal(t, "We study how page layout is rebuilt.", doc.Metadata.Abstract)

	assert.Equal(t, []Role{RoleMeta, RoleMeta, RoleMeta, RoleMeta, RoleMeta, RoleUnclassified}, roles(doc))
	assert.Equal(t, "bibliographic field", doc.Blocks[0].History[0].Reason)
	assert.Equal(t, "author list", doc.Blocks[1].History[0].Reason)
	assert.Equal(t, "abstract", doc.Blocks[4].History[0].Reason)
}

func TestMetadataStage_LookupFailureDegrades(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("service down")}
	doc := metadataTestDoc()
	runMetadataStage(t, NewEngine(DefaultConfig(), WithNLP(stubNLP{}), WithLookup(lookup)), doc)

	assert.Equal(t, "10.1234/abcd.5678", doc.Metadata.DOI)
	assert.Empty(t, doc.Metadata.Title)
	assert.Equal(t, "We study how page layout is rebuilt.", doc.Metadata.Abstract)
	assert.Equal(t, RoleMeta, doc.Blocks[2].Role(), "the DOI block is still bibliographic")
	assert.Equal(t, RoleUnclassified, doc.Blocks[0].Role())
}

func TestMetadataStage_InlineAbstractMarker(t *testing.T) {
	doc := newTestDoc(
		[]Line{
			line(0, 50, 100, 550, 110, "Abstract: Tables and figures are"),
			line(0, 50, 114, 550, 124, "recovered from page geometry."),
		},
		[]Line{line(0, 50, 300, 550, 310, "Unrelated text far below.")},
	)
	runMetadataStage(t, NewEngine(DefaultConfig(), WithNLP(stubNLP{})), doc)

	assert.Equal(t, "Tables and figures are recovered from page geometry.", doc.Metadata.Abstract)
	assert.Equal(t, []Role{RoleMeta, RoleUnclassified}, roles(doc))
}

func TestCrossrefLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": "ok",
  "message": {
    "DOI": "10.1234/abcd.5678",
    "title": ["Layout of Papers"],
    "author": [{"given": "Ada", "family": "Lovelace"}],
    "ISSN": ["1234-5678"],
    "container-title": ["Journal of Layout"],
    "reference": [{"DOI": "10.1/x", "author": "Knuth", "article-title": "TeX"}]
  }
}`))
	}))
	defer srv.Close()

	client := crossref.NewClient("")
	client.BaseURL = srv.URL

	md, err := CrossrefLookup(client).Lookup(context.Background(), "10.1234/abcd.5678")
	require.NoError(t, err)
	assert.Equal(t, "Layout of Papers", md.Title)
	assert.Equal(t, "1234-5678", md.ISSN)
	assert.Equal(t, "Journal of Layout", md.Journal)
	assert.Equal(t, []Author{{Given: "Ada", Family: "Lovelace"}}, md.Authors)
	assert.Equal(t, []Reference{{DOI: "10.1/x", Author: "Knuth", Title: "TeX"}}, md.References)
}

func TestMetadataStage_AbstractFromGeometry(t *testing.T) {
	doc := newTestDoc(
		[]Line{styledLine(0, 50, 30, 500, 44, "Layout Reconstruction of Papers", "Arial", 14)},
		[]Line{line(0, 50, 56, 400, 66, "Ada Lovelace and Alan Turing")},
		[]Line{
			line(0, 50, 80, 550, 90, "We study how the layout of scientific papers can be rebuilt from page"),
			line(0, 50, 94, 550, 104, "geometry without any labels in the source documents."),
		},
		[]Line{styledLine(0, 50, 130, 300, 144, "1 Introduction", "Arial", 14)},
	)
	runMetadataStage(t, NewEngine(DefaultConfig(), WithNLP(stubNLP{})), doc)

	assert.Equal(t, "We study how the layout of scientific papers can be rebuilt from page "+
		"geometry without any labels in the source documents.", doc.Metadata.Abstract)
	assert.Equal(t, []Role{RoleUnclassified, RoleUnclassified, RoleMeta, RoleUnclassified}, roles(doc))
}

func TestGeometricAbstract_NeedsLongBodyBlock(t *testing.T) {
	doc := newTestDoc(
		[]Line{line(0, 50, 80, 550, 90, "A short body block.")},
		[]Line{line(1, 50, 80, 550, 90, "A block on the second page that is long enough to be an abstract but too late.")},
	)
	order := readingOrder(doc, func(*Block) bool { return true })
	assert.Equal(t, -1, geometricAbstract(doc, order))
}
