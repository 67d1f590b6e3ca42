// Package nlp defines the natural-language judgements used during layout
// reconstruction and a heuristic English implementation of them.
package nlp

import (
	"context"
	"strings"
	"unicode/utf8"
)

// WordType is the coarse type of a token.
type WordType int

const (
	Unknown WordType = iota
	Word
	Num
)

func (t WordType) String() string {
	switch t {
	case Word:
		return "WORD"
	case Num:
		return "NUM"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t WordType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Model answers the language questions the layout engine asks.
type Model interface {
	// IsSentence reports whether text is a grammatical sentence.
	IsSentence(ctx context.Context, text string) (bool, error)

	// ClassifyWord returns the type of a single token.
	ClassifyWord(ctx context.Context, token string) (WordType, error)

	// SplitSentences splits text at sentence boundaries.
	SplitSentences(ctx context.Context, text string) ([]string, error)
}

var unknownTokens = map[string]bool{
	"N/A": true,
	"-":   true,
	"/":   true,
	".":   true,
}

// ForcedUnknown reports whether a token is UNKNOWN regardless of the model:
// placeholders like "N/A" and anything shorter than three runes.
func ForcedUnknown(token string) bool {
	token = strings.TrimSpace(token)
	return unknownTokens[token] || utf8.RuneCountInString(token) < 3
}
