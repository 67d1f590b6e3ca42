package paperlayout

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ivanvanderbyl/paperlayout/nlp"
)

// nlpGuard wraps the NLP collaborator so that failures degrade to exclusion:
// a failed judgement is "not a sentence" or UNKNOWN, a failed split keeps the
// text whole.
type nlpGuard struct {
	model nlp.Model
	log   *zap.Logger
}

func (e *Engine) language() nlpGuard {
	return nlpGuard{model: e.nlp, log: e.log()}
}

func (g nlpGuard) isSentence(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if g.model == nil || text == "" {
		return false
	}
	ok, err := g.model.IsSentence(ctx, text)
	if err != nil {
		g.log.Warn("nlp is_sentence failed", zap.Error(unavailable(err, "nlp")))
		return false
	}
	return ok
}

func (g nlpGuard) classifyWord(ctx context.Context, token string) nlp.WordType {
	if nlp.ForcedUnknown(token) || g.model == nil {
		return nlp.Unknown
	}
	t, err := g.model.ClassifyWord(ctx, token)
	if err != nil {
		g.log.Warn("nlp classify_word failed", zap.Error(unavailable(err, "nlp")))
		return nlp.Unknown
	}
	return t
}

// classifyText returns the most common word type among the tokens of text.
func (g nlpGuard) classifyText(ctx context.Context, text string) nlp.WordType {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nlp.Unknown
	}
	types := make([]nlp.WordType, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, g.classifyWord(ctx, tok))
	}
	t, _ := mostCommon(types)
	return t
}

func (g nlpGuard) splitSentences(ctx context.Context, text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if g.model == nil {
		return []string{text}
	}
	parts, err := g.model.SplitSentences(ctx, text)
	if err != nil {
		g.log.Warn("nlp split_sentences failed", zap.Error(unavailable(err, "nlp")))
		return []string{text}
	}
	return parts
}

// countSentences counts the grammatical sentences in text.
func (g nlpGuard) countSentences(ctx context.Context, text string) int {
	n := 0
	for _, s := range g.splitSentences(ctx, text) {
		if g.isSentence(ctx, s) {
			n++
		}
	}
	return n
}
