package paperlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMetaPatterns(t *testing.T) {
	patterns := DefaultMetaPatterns()
	require.NotEmpty(t, patterns)

	tests := []struct {
		text     string
		expected string
		ok       bool
	}{
		{"Contact: jane.doe@example.org", "email", true},
		{"© 2021 Elsevier B.V. All rights reserved.", "copyright", true},
		{"Copyright 2019 by the authors", "copyright", true},
		{"Received 12 March 2020; accepted 3 May 2020", "history", true},
		{"ISSN: 1234-567X", "issn", true},
		{"Keywords: layout, tables", "keywords", true},
		{"The results are robust across all samples.", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, ok := matchMetaPattern(patterns, tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestParseMetaPatterns(t *testing.T) {
	patterns, err := ParseMetaPatterns([]byte(`
patterns:
  - name: funding
    expr: 'funded\s+by'
`))
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.True(t, patterns[0].Match("This work was FUNDED by the council."))

	_, err = ParseMetaPatterns([]byte(`patterns: [{name: broken, expr: '(['}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	_, err = ParseMetaPatterns([]byte("patterns: {"))
	require.Error(t, err)
}

func TestMarkMetaPatterns(t *testing.T) {
	doc := newTestDoc(
		[]Line{line(0, 50, 700, 550, 710, "Received 12 March 2020")},
		[]Line{line(0, 50, 100, 550, 110, "Plain body text.")},
	)

	require.Equal(t, 1, markMetaPatterns(doc, DefaultMetaPatterns()))
	assert.Equal(t, []Role{RoleMeta, RoleUnclassified}, roles(doc))
	assert.Equal(t, "pattern history", doc.Blocks[0].History[0].Reason)
}
