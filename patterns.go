package paperlayout

import (
	_ "embed"
	"regexp"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultPatternsYAML []byte

// MetaPattern is a named expression identifying publication metadata.
type MetaPattern struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`

	re *regexp.Regexp
}

// Match reports whether text matches the pattern.
func (p MetaPattern) Match(text string) bool {
	return p.re != nil && p.re.MatchString(text)
}

// ParseMetaPatterns parses a YAML pattern list and compiles every
// expression case-insensitively.
func ParseMetaPatterns(data []byte) ([]MetaPattern, error) {
	var doc struct {
		Patterns []MetaPattern `yaml:"patterns"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse metadata patterns")
	}
	for i := range doc.Patterns {
		re, err := regexp.Compile("(?i)" + doc.Patterns[i].Expr)
		if err != nil {
			return nil, errors.Wrapf(err, "pattern %q", doc.Patterns[i].Name)
		}
		doc.Patterns[i].re = re
	}
	return doc.Patterns, nil
}

// DefaultMetaPatterns returns the built-in pattern set.
func DefaultMetaPatterns() []MetaPattern {
	patterns, err := ParseMetaPatterns(defaultPatternsYAML)
	if err != nil {
		panic(err)
	}
	return patterns
}

// matchMetaPattern returns the name of the first pattern matching text.
func matchMetaPattern(patterns []MetaPattern, text string) (string, bool) {
	for _, p := range patterns {
		if p.Match(text) {
			return p.Name, true
		}
	}
	return "", false
}
