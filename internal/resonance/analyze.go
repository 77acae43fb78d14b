package resonance

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/talgya/resonance/internal/glyph"
	"github.com/talgya/resonance/internal/vmath"
)

// Analyze scores text into a resonance vector. It never fails: empty
// input returns the default vector, and an internal panic is recovered
// into the default vector rather than propagated, so one malformed
// input cannot take down a caller's render loop.
func Analyze(text string) (v Vector) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("analysis failed, substituting default vector", "panic", r)
			v = Default()
		}
	}()

	text = strings.TrimSpace(text)
	if text == "" {
		return Default()
	}

	words := tokenize(text)
	sentences := splitSentences(text)

	cognitive := cognitiveLoad(words, sentences)
	emotional := emotionalIntensity(text, words)
	symbolic := symbolicDensity(text, words)

	return Vector{
		CognitiveLoad:      cognitive,
		EmotionalIntensity: emotional,
		SymbolicDensity:    symbolic,
		TemporalFlow:       temporalFlow(words),
		EmergencePoints:    emergencePoints(sentences),
		MeaningSignature:   signature(text, words),
		Glyph:              glyph.FromMetrics(cognitive, emotional, symbolic),
	}
}

// tokenize lowercases text and splits it into words, trimming
// punctuation stuck to either end so "Love," and "love" count as the
// same token.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// splitSentences breaks text on '.', '!' and '?' runs, discarding
// empty fragments.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// cognitiveLoad weighs average word length, words longer than six
// runes, and the total clause count across sentences.
func cognitiveLoad(words, sentences []string) float64 {
	if len(words) == 0 {
		return 0
	}
	var totalLen, complexCount int
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		totalLen += n
		if n > 6 {
			complexCount++
		}
	}
	avgLen := float64(totalLen) / float64(len(words))

	clauses := 0
	for _, s := range sentences {
		clauses += clauseCount(s)
	}
	return vmath.Clamp(avgLen*10+float64(complexCount)*2+float64(clauses), 0, 100)
}

// clauseCount is the number of comma/semicolon/colon delimited
// segments in one sentence. A sentence without any delimiter is a
// single clause.
func clauseCount(sentence string) int {
	n := 0
	for _, seg := range strings.FieldsFunc(sentence, func(r rune) bool {
		return r == ',' || r == ';' || r == ':'
	}) {
		if strings.TrimSpace(seg) != "" {
			n++
		}
	}
	return n
}

func emotionalIntensity(text string, words []string) float64 {
	emo := countMatches(words, emotionalWords)
	intens := countMatches(words, intensifierWords)
	runs := punctuationRuns(text)
	return vmath.Clamp(float64(emo)*15+float64(intens)*5+float64(runs)*10, 0, 100)
}

// punctuationRuns counts runs of two or more consecutive '!' or '?'
// characters; "!?" and "!!!" are each one run.
func punctuationRuns(text string) int {
	runs, length := 0, 0
	for _, r := range text {
		if r == '!' || r == '?' {
			length++
			if length == 2 {
				runs++
			}
			continue
		}
		length = 0
	}
	return runs
}

func symbolicDensity(text string, words []string) float64 {
	symbols := 0
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			continue
		}
		symbols++
	}
	comparisons := countMatches(words, comparisonWords)
	abstract := countMatches(words, abstractWords)
	return vmath.Clamp(float64(symbols)*2+float64(comparisons)*10+float64(abstract)*20, 0, 100)
}

func temporalFlow(words []string) float64 {
	times := countMatches(words, timeWords)
	transitions := countMatches(words, transitionWords)
	return vmath.Clamp(float64(times)*8+float64(transitions)*12, 0, 100)
}

// emergencePoints marks where individual sentences spike: sentence i
// of n contributes (i/n)*100 when its own emotional intensity exceeds
// 60 or its own cognitive load exceeds 70. Points are ascending by
// construction.
func emergencePoints(sentences []string) []float64 {
	points := make([]float64, 0, len(sentences))
	n := len(sentences)
	for i, s := range sentences {
		words := tokenize(s)
		emo := emotionalIntensity(s, words)
		cog := cognitiveLoad(words, []string{s})
		if emo > 60 || cog > 70 {
			points = append(points, float64(i)/float64(n)*100)
		}
	}
	return points
}

// A SentenceScore holds the per-sentence metrics behind emergence
// detection, in input order.
type SentenceScore struct {
	Sentence           string
	EmotionalIntensity float64
	CognitiveLoad      float64
}

// SentenceScores scores each sentence of text independently, using
// the same per-sentence metrics that drive emergence points. Empty or
// whitespace-only text yields nil.
func SentenceScores(text string) []SentenceScore {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	sentences := splitSentences(text)
	scores := make([]SentenceScore, 0, len(sentences))
	for _, s := range sentences {
		words := tokenize(s)
		scores = append(scores, SentenceScore{
			Sentence:           s,
			EmotionalIntensity: emotionalIntensity(s, words),
			CognitiveLoad:      cognitiveLoad(words, []string{s}),
		})
	}
	return scores
}

func countMatches(words []string, set map[string]struct{}) int {
	n := 0
	for _, w := range words {
		if _, ok := set[w]; ok {
			n++
		}
	}
	return n
}
