package nlp

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/pkg/errors"
)

// Heuristic is a rule-based English model. Sentence boundaries come from a
// trained Punkt tokenizer; grammaticality is approximated by requiring enough
// alphabetic words and a finite verb marker.
type Heuristic struct {
	tokenizer *sentences.DefaultSentenceTokenizer

	// MinWords is the smallest word count accepted as a sentence (default: 4)
	MinWords int
}

// NewHeuristic loads the English tokenizer.
func NewHeuristic() (*Heuristic, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load english sentence tokenizer")
	}
	return &Heuristic{tokenizer: tokenizer, MinWords: 4}, nil
}

// SplitSentences splits text with the Punkt tokenizer.
func (h *Heuristic) SplitSentences(_ context.Context, text string) ([]string, error) {
	var out []string
	for _, s := range h.tokenizer.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// verbMarkers are auxiliaries, modals and verbs common in scientific prose.
var verbMarkers = map[string]bool{
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true, "being": true,
	"has": true, "have": true, "had": true, "do": true, "does": true, "did": true,
	"can": true, "could": true, "may": true, "might": true, "will": true, "would": true,
	"shall": true, "should": true, "must": true,
	"show": true, "shows": true, "present": true, "presents": true, "propose": true, "proposes": true,
	"use": true, "uses": true, "find": true, "finds": true, "found": true, "describe": true,
	"describes": true, "provide": true, "provides": true, "allow": true, "allows": true,
	"suggest": true, "suggests": true, "indicate": true, "indicates": true, "remain": true,
	"remains": true, "increase": true, "increases": true, "decrease": true, "decreases": true,
	"lead": true, "leads": true, "depend": true, "depends": true, "contain": true, "contains": true,
}

// IsSentence accepts text with at least MinWords words, a majority of
// alphabetic words and a verb marker.
func (h *Heuristic) IsSentence(_ context.Context, text string) (bool, error) {
	words := strings.Fields(text)
	if len(words) < h.MinWords {
		return false, nil
	}

	alpha := 0
	verb := false
	for _, w := range words {
		w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) }))
		if w == "" || !isAlphabetic(w) {
			continue
		}
		alpha++
		if verbMarkers[w] || (len(w) > 4 && strings.HasSuffix(w, "ed")) {
			verb = true
		}
	}

	return verb && alpha*2 > len(words), nil
}

// ClassifyWord labels numbers as NUM, other tokens of three or more runes as
// WORD, and the rest as UNKNOWN.
func (h *Heuristic) ClassifyWord(_ context.Context, token string) (WordType, error) {
	return classifyToken(token), nil
}

func classifyToken(token string) WordType {
	token = strings.TrimSpace(token)
	if ForcedUnknown(token) {
		return Unknown
	}
	if isNumeric(token) {
		return Num
	}
	return Word
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

// isNumeric accepts plain numbers with optional sign, grouping, percent and
// plus-minus decorations.
func isNumeric(s string) bool {
	cleaned := strings.NewReplacer(",", "", "%", "", "±", "", "+", "", "(", "", ")", "").Replace(s)
	cleaned = strings.TrimPrefix(cleaned, "−")
	if cleaned == "" {
		return false
	}
	if _, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return true
	}
	digits := 0
	for _, r := range cleaned {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits*2 > len([]rune(cleaned))
}
